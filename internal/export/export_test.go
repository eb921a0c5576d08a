// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRunner serves pre-built rows for one spec, slicing them by limit/offset
// the way the database would.
type fakeRunner struct {
	columns []string
	rows    [][]string
	err     error
	pages   int
}

func (f *fakeRunner) Page(_ context.Context, _ QuerySpec, limit, offset int) (*Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.pages++
	page := &Page{Columns: f.columns}
	for i := offset; i < len(f.rows) && i < offset+limit; i++ {
		page.Rows = append(page.Rows, f.rows[i])
	}
	return page, nil
}

func accountRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("30%02d", i)}
	}
	return rows
}

func TestExportPaginatesAndMerges(t *testing.T) {
	// 3 rows with page size 2: two pages (2 + 1), like the SBC account
	// extract on a small day.
	runner := &fakeRunner{columns: []string{"payment_account"}, rows: accountRows(3)}
	e := NewExporter(runner, t.TempDir(), zap.NewNop())

	spec := QuerySpec{ID: "sbc_accounts", Title: "SBC Account IDs", PageSize: 2}
	res, err := e.Export(context.Background(), spec, "2025-08-30")
	require.NoError(t, err)

	require.EqualValues(t, 3, res.Rows)
	require.Equal(t, 2, runner.pages)
	require.Greater(t, res.Bytes, int64(0))

	records := readCSV(t, res.Path)
	require.Len(t, records, 4) // 1 header + 3 data rows
	require.Equal(t, []string{"payment_account"}, records[0])
}

func TestExportFullPageBoundary(t *testing.T) {
	// Exactly one full page forces a trailing empty page; the merged file
	// still has the right count.
	runner := &fakeRunner{columns: []string{"payment_account"}, rows: accountRows(4)}
	e := NewExporter(runner, t.TempDir(), zap.NewNop())

	res, err := e.Export(context.Background(), QuerySpec{ID: "sbc_accounts", PageSize: 2}, "2025-08-30")
	require.NoError(t, err)
	require.EqualValues(t, 4, res.Rows)
	require.Equal(t, 3, runner.pages)
	require.Len(t, readCSV(t, res.Path), 5)
}

func TestExportZeroRows(t *testing.T) {
	runner := &fakeRunner{columns: []string{"id", "status"}}
	e := NewExporter(runner, t.TempDir(), zap.NewNop())

	res, err := e.Export(context.Background(), QuerySpec{ID: "review_queue", PageSize: 100}, "2025-08-30")
	require.NoError(t, err)
	require.EqualValues(t, 0, res.Rows)

	records := readCSV(t, res.Path)
	require.Len(t, records, 1) // header only
}

func TestExportQueryError(t *testing.T) {
	runner := &fakeRunner{err: errors.New(`relation "application" does not exist`)}
	e := NewExporter(runner, t.TempDir(), zap.NewNop())

	_, err := e.Export(context.Background(), QuerySpec{ID: "applications", PageSize: 100}, "2025-08-30")
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestExportAppliesSubstitution(t *testing.T) {
	runner := &fakeRunner{
		columns: []string{"application_number", "submitter"},
		rows: [][]string{
			{"10000000000001", "airbnb-api"},
			{"10000000000002", "jdoe"},
		},
	}
	e := NewExporter(runner, t.TempDir(), zap.NewNop())

	spec := QuerySpec{ID: "applications", PageSize: 10, SubstituteColumn: "submitter"}
	res, err := e.Export(context.Background(), spec, "2025-08-30")
	require.NoError(t, err)

	records := readCSV(t, res.Path)
	require.Equal(t, "Airbnb", records[1][1])
	require.Equal(t, "jdoe", records[2][1])
}

func TestSpecsAreComplete(t *testing.T) {
	specs := Specs(500)
	require.Len(t, specs, 4)

	substituted := 0
	for _, s := range specs {
		require.NotEmpty(t, s.ID)
		require.NotEmpty(t, s.Title)
		require.Contains(t, s.SQL, "LIMIT $1 OFFSET $2")
		require.Equal(t, 500, s.PageSize)
		if s.SubstituteColumn != "" {
			substituted++
		}
	}
	// Exactly two extracts carry the submitter rewrite.
	require.Equal(t, 2, substituted)
	require.Len(t, OrderedSubstitutions(), 7)
}
