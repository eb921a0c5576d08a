// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strr/reports/internal/dsn"
	"strr/reports/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// dbinfoCmd shows which database connection a run would use and where it
// was resolved from, with credentials masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show the configured database connection (masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		rawDSN, source := dsn.Resolve()
		if rawDSN == "" {
			pterm.Println("⚠️  No database connection configured")
			pterm.Println("   Please run: strr-reports connect")
			return nil
		}

		normalized, err := dsn.Parse(rawDSN)
		if err != nil {
			pterm.Println("❌ Stored connection string is invalid")
			pterm.Println("   " + err.Error())
			return err
		}

		content := "DSN:    " + logging.Mask(normalized) + "\n" +
			"Source: " + string(source)
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			Println(content)
		pterm.Println()
		pterm.Println("To update this connection, run: strr-reports connect")
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
