// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package job

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"strr/reports/internal/export"
	"strr/reports/internal/report"
)

// scriptedRunner fails specific extracts and serves a fixed row set for the
// rest.
type scriptedRunner struct {
	failing map[string]error
	rows    map[string][][]string
}

func (r *scriptedRunner) Page(_ context.Context, spec export.QuerySpec, limit, offset int) (*export.Page, error) {
	if err, ok := r.failing[spec.ID]; ok {
		return nil, err
	}
	page := &export.Page{Columns: []string{"id", "submitter"}}
	rows := r.rows[spec.ID]
	for i := offset; i < len(rows) && i < offset+limit; i++ {
		page.Rows = append(page.Rows, rows[i])
	}
	return page, nil
}

type captureDeliverer struct {
	rpt  *report.Report
	html []byte
	err  error
}

func (d *captureDeliverer) Deliver(_ context.Context, rpt *report.Report, html []byte) error {
	d.rpt = rpt
	d.html = html
	return d.err
}

func testSpecs() []export.QuerySpec {
	return []export.QuerySpec{
		{ID: "registrations", Title: "Registrations", PageSize: 10, SubstituteColumn: "submitter"},
		{ID: "applications", Title: "Applications", PageSize: 10, SubstituteColumn: "submitter"},
		{ID: "sbc_accounts", Title: "SBC Account IDs", PageSize: 10},
		{ID: "review_queue", Title: "Applications Awaiting Review", PageSize: 10},
	}
}

func TestRunFailureIsIsolatedPerQuery(t *testing.T) {
	runner := &scriptedRunner{
		failing: map[string]error{"applications": errors.New("connection reset by peer")},
		rows: map[string][][]string{
			"registrations": {{"1", "airbnb-api"}, {"2", "jdoe"}},
			"sbc_accounts":  {{"1", "3040"}},
		},
	}
	outDir := t.TempDir()
	deliverer := &captureDeliverer{}

	j := New(runner, Options{
		Specs:     testSpecs(),
		OutDir:    outDir,
		RunDate:   "2025-08-30",
		Deliverer: deliverer,
	})
	rpt, err := j.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rpt.Stats, 4)
	require.Equal(t, 1, rpt.Failed())

	byID := map[string]report.QueryStats{}
	for _, s := range rpt.Stats {
		byID[s.ID] = s
	}
	require.False(t, byID["applications"].Succeeded())
	require.Contains(t, byID["applications"].Error, "connection reset by peer")

	// The other three extracts still produced merged files.
	for _, id := range []string{"registrations", "sbc_accounts", "review_queue"} {
		s := byID[id]
		require.True(t, s.Succeeded(), "%s should have succeeded", id)
		_, statErr := os.Stat(s.Path)
		require.NoError(t, statErr)
	}
	require.EqualValues(t, 2, byID["registrations"].TotalRows)
	require.EqualValues(t, 0, byID["review_queue"].TotalRows)

	// Delivery received the rendered report with the error text inline.
	require.NotNil(t, deliverer.rpt)
	require.Contains(t, string(deliverer.html), "Error: ")
	require.Contains(t, string(deliverer.html), "Success")
}

func TestRunWritesReportArtifact(t *testing.T) {
	runner := &scriptedRunner{rows: map[string][][]string{}}
	outDir := t.TempDir()

	j := New(runner, Options{Specs: testSpecs(), OutDir: outDir, RunDate: "2025-08-30"})
	_, err := j.Run(context.Background())
	require.NoError(t, err)

	html, err := os.ReadFile(filepath.Join(outDir, "report_2025-08-30.html"))
	require.NoError(t, err)
	require.Contains(t, string(html), "STRR Data Export Report")
}

func TestRunDeliveryFailureFailsTheRun(t *testing.T) {
	runner := &scriptedRunner{rows: map[string][][]string{}}
	deliverer := &captureDeliverer{err: errors.New("smtp: 550 relay denied")}

	j := New(runner, Options{
		Specs:     testSpecs(),
		OutDir:    t.TempDir(),
		RunDate:   "2025-08-30",
		Deliverer: deliverer,
	})
	rpt, err := j.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "relay denied")
	// Stats are intact even when delivery fails.
	require.NotNil(t, rpt)
	require.Len(t, rpt.Stats, 4)
}

func TestRunProgressCallbackOrder(t *testing.T) {
	runner := &scriptedRunner{
		failing: map[string]error{"sbc_accounts": errors.New("boom")},
		rows:    map[string][][]string{},
	}
	var seen []string
	j := New(runner, Options{
		Specs:   testSpecs(),
		OutDir:  t.TempDir(),
		RunDate: "2025-08-30",
		Progress: func(spec export.QuerySpec, status Status) {
			seen = append(seen, spec.ID+":"+string(status))
		},
	})
	_, err := j.Run(context.Background())
	require.NoError(t, err)

	joined := strings.Join(seen, ",")
	require.Contains(t, joined, "sbc_accounts:running,sbc_accounts:failed,review_queue:running")
}

func TestStateTransitionsAreTerminal(t *testing.T) {
	s := NewState([]string{"a", "b"})
	require.Equal(t, StatusPending, s.Status("a"))

	s.Start("a")
	require.Equal(t, StatusRunning, s.Status("a"))

	s.Fail("a", "boom")
	require.Equal(t, StatusFailed, s.Status("a"))
	require.Equal(t, "boom", s.Reason("a"))

	// Terminal states never change.
	s.Succeed("a")
	s.Start("a")
	require.Equal(t, StatusFailed, s.Status("a"))

	s.Start("b")
	s.Succeed("b")
	s.Fail("b", "late")
	require.Equal(t, StatusSucceeded, s.Status("b"))
	require.Equal(t, 1, s.FailedCount())
}
