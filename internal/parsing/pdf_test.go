package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("resume.pdf"))
	assert.True(t, IsPDF("RESUME.PDF"))
	assert.True(t, IsPDF("weird.Pdf"))
	assert.False(t, IsPDF("resume.docx"))
	assert.False(t, IsPDF("pdf"))
	assert.False(t, IsPDF(""))
}

func TestExtractTextFromPDFRejectsGarbage(t *testing.T) {
	_, err := ExtractTextFromPDF([]byte("this is not a pdf"))
	assert.Error(t, err)
}
