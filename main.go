package main

import (
	"os"

	"github.com/conneroisu/opaque/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
