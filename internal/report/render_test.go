// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"strr/reports/internal/export"
)

func sampleReport() *Report {
	return &Report{
		RunID:       "7f2c9a1e-0000-0000-0000-000000000000",
		RunDate:     "2025-08-30",
		GeneratedAt: time.Date(2025, 8, 30, 2, 15, 0, 0, time.UTC),
		Stats: []QueryStats{
			{
				ID:        "sbc_accounts",
				Title:     "SBC Account IDs",
				TotalRows: 3,
				FileSize:  58,
				Path:      "/var/exports/sbc_accounts_2025-08-30.csv",
			},
			{
				ID:    "applications",
				Title: "Applications",
				Error: "query_failed: applications: connection refused",
			},
		},
		Substitutions: export.OrderedSubstitutions(),
	}
}

func TestRenderSuccessAndError(t *testing.T) {
	html, err := sampleReport().Render()
	require.NoError(t, err)
	body := string(html)

	// Failed extract renders the literal error text.
	require.Contains(t, body, "Error: query_failed: applications: connection refused")
	// Successful extract renders Success with the literal row count.
	require.Contains(t, body, "Success")
	require.Contains(t, body, "Rows: 3")
	require.Contains(t, body, "/var/exports/sbc_accounts_2025-08-30.csv")
	require.Contains(t, body, "2025-08-30")
}

func TestRenderMissingFieldsAsNA(t *testing.T) {
	r := sampleReport()
	html, err := r.Render()
	require.NoError(t, err)

	// The failed extract has no rows, size or path.
	failedRow := string(html)[strings.Index(string(html), "Applications"):]
	require.Contains(t, failedRow, "Rows: N/A")
	require.Contains(t, failedRow, ">N/A<")
}

func TestRenderSubstitutionTable(t *testing.T) {
	html, err := sampleReport().Render()
	require.NoError(t, err)
	body := string(html)

	for _, s := range export.OrderedSubstitutions() {
		require.Contains(t, body, s.Username)
		require.Contains(t, body, s.Organization)
	}
}

func TestSubject(t *testing.T) {
	r := sampleReport()
	require.Equal(t, "STRR Data Export Report - 2025-08-30 (1 failed)", r.Subject())

	r.Stats[1].Error = ""
	require.Equal(t, "STRR Data Export Report - 2025-08-30", r.Subject())
}

func TestQueryStatsDisplays(t *testing.T) {
	ok := QueryStats{TotalRows: 412, FileSize: 2048, Path: "/tmp/x.csv"}
	require.Equal(t, "412", ok.RowsDisplay())
	require.Equal(t, "2.0 KiB", ok.SizeDisplay())
	require.Equal(t, "/tmp/x.csv", ok.PathDisplay())

	failed := QueryStats{Error: "boom"}
	require.False(t, failed.Succeeded())
	require.Equal(t, "N/A", failed.RowsDisplay())
	require.Equal(t, "N/A", failed.SizeDisplay())
	require.Equal(t, "N/A", failed.PathDisplay())
}
