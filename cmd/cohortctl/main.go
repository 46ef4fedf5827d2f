// Package main is cohortctl, a command-line tool for synthesizing cohorts,
// summarizing them and exporting them to Parquet.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
