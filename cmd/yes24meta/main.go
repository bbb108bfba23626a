// Package main is the entry point for the yes24meta executable.
package main

import (
	"fmt"
	"os"

	"github.com/bookfetch/yes24-metadata/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "yes24meta: %v\n", err)
		os.Exit(1)
	}
}
