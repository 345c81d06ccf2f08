package utils

import (
	"fmt"
	"math"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count as a human readable string, e.g.
// 1536 -> "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}

	value := float64(bytes) / math.Pow(1024, float64(i))
	rounded := math.Round(value*100) / 100

	if rounded == math.Trunc(rounded) {
		return fmt.Sprintf("%d %s", int64(rounded), sizeUnits[i])
	}
	return fmt.Sprintf("%g %s", rounded, sizeUnits[i])
}
