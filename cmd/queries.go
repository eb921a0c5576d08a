// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strconv"

	"strr/reports/internal/config"
	"strr/reports/internal/export"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// queriesCmd lists the configured extracts and which of them carry the
// submitter substitution.
var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "List the configured extracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		data := pterm.TableData{{"ID", "Title", "Page size", "Substituted column"}}
		for _, spec := range export.Specs(cfg.PageSize) {
			sub := "-"
			if spec.SubstituteColumn != "" {
				sub = spec.SubstituteColumn
			}
			data = append(data, []string{spec.ID, spec.Title, strconv.Itoa(spec.PageSize), sub})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}

		pterm.Println()
		pterm.Printf("Substitution table: %d platform accounts\n", len(export.Substitutions))
		for _, s := range export.OrderedSubstitutions() {
			pterm.Printf("   %-16s → %s\n", s.Username, s.Organization)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queriesCmd)
}
