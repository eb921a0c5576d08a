// Package main is the entry point for the strr-reports CLI.
// It produces the registry's scheduled CSV exports and summary report.
package main

import (
	"strr/reports/cmd"
)

func main() {
	cmd.Execute()
}
