package main

import (
	"os"

	"github.com/prepmate/prepmate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
