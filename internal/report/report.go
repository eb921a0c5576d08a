// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package report models the per-run summary and renders it to HTML.
// A Report aggregates one QueryStats per extract plus the static substitution
// table; it is built once per run and discarded after delivery.
package report

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"strr/reports/internal/export"
)

// QueryStats is the outcome of one extract: either a success with row count,
// file size and path, or a failure with the captured error text. The two
// states are mutually exclusive.
type QueryStats struct {
	ID        string
	Title     string
	TotalRows int64
	FileSize  int64
	Path      string
	Error     string
}

// Succeeded reports whether the extract produced a merged file.
func (s QueryStats) Succeeded() bool { return s.Error == "" }

// RowsDisplay renders the row count, or "N/A" for a failed extract.
func (s QueryStats) RowsDisplay() string {
	if !s.Succeeded() {
		return "N/A"
	}
	return strconv.FormatInt(s.TotalRows, 10)
}

// SizeDisplay renders a human-readable file size, or "N/A".
func (s QueryStats) SizeDisplay() string {
	if !s.Succeeded() {
		return "N/A"
	}
	return humanize.IBytes(uint64(s.FileSize))
}

// PathDisplay renders the output path, or "N/A".
func (s QueryStats) PathDisplay() string {
	if !s.Succeeded() || s.Path == "" {
		return "N/A"
	}
	return s.Path
}

// Report aggregates every extract's stats for one run.
type Report struct {
	RunID         string
	RunDate       string
	GeneratedAt   time.Time
	Stats         []QueryStats
	Substitutions []export.Substitution
}

// Failed counts extracts that ended in error.
func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Stats {
		if !s.Succeeded() {
			n++
		}
	}
	return n
}

// SuccessfulPaths returns the merged-file paths of every successful extract,
// in report order. Used for email attachments and uploads.
func (r *Report) SuccessfulPaths() []string {
	var paths []string
	for _, s := range r.Stats {
		if s.Succeeded() && s.Path != "" {
			paths = append(paths, s.Path)
		}
	}
	return paths
}
