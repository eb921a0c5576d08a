// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for strr-reports.
// It implements the subcommands for running the scheduled export job,
// configuring the database connection and inspecting the configured
// extracts, using the Cobra CLI framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "strr-reports",
	Short:         "Scheduled CSV exports and summary report for the rental registry",
	Long: `strr-reports runs the registry's nightly data extracts: each configured SQL
query is executed in pages, spooled to batch files and merged into a single
CSV, two extracts have their submitter column rewritten to organization
names, and an HTML summary report is rendered and emailed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("strr-reports %s\n", Version)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
}
