// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	apperrors "strr/reports/internal/errors"
)

// Result is the successful outcome of one extract.
type Result struct {
	Spec QuerySpec
	// Rows is the number of data rows in the merged file, header excluded.
	Rows  int64
	Bytes int64
	Path  string
}

// Exporter drives a single extract end to end: page, spool, merge,
// substitute. It holds no per-extract state and is safe to reuse across the
// run's sequential queries.
type Exporter struct {
	runner Runner
	outDir string
	log    *zap.Logger
}

// NewExporter creates an Exporter writing merged files into outDir.
func NewExporter(runner Runner, outDir string, log *zap.Logger) *Exporter {
	return &Exporter{runner: runner, outDir: outDir, log: log}
}

// Export runs one extract. The merged file is named <id>_<runDate>.csv.
// Database failures and file I/O failures both surface as errors here and are
// recorded per query by the caller; they never abort the remaining extracts.
func (e *Exporter) Export(ctx context.Context, spec QuerySpec, runDate string) (*Result, error) {
	batchDir := filepath.Join(e.outDir, ".batches", spec.ID)
	if err := os.MkdirAll(batchDir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.ExportFailed, "create batch dir", err)
	}
	// Best-effort cleanup: on the happy path Merge already deleted every
	// batch file, this only matters after a failure.
	defer os.RemoveAll(batchDir)

	var batchPaths []string
	offset := 0
	for pageIdx := 0; ; pageIdx++ {
		page, err := e.runner.Page(ctx, spec, spec.PageSize, offset)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.QueryFailed, spec.ID, err)
		}

		batchPath := filepath.Join(batchDir, fmt.Sprintf("%s_%04d.csv", spec.ID, pageIdx))
		n, err := WriteBatch(batchPath, page)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ExportFailed, spec.ID, err)
		}
		batchPaths = append(batchPaths, batchPath)
		e.log.Debug("spooled batch",
			zap.String("query", spec.ID),
			zap.Int("page", pageIdx),
			zap.Int("rows", n))

		if len(page.Rows) < spec.PageSize {
			break
		}
		offset += spec.PageSize
	}

	outPath := filepath.Join(e.outDir, fmt.Sprintf("%s_%s.csv", spec.ID, runDate))
	rows, err := Merge(batchPaths, outPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ExportFailed, spec.ID, err)
	}

	if spec.SubstituteColumn != "" {
		if err := SubstituteColumn(outPath, spec.SubstituteColumn, Substitutions); err != nil {
			return nil, apperrors.Wrap(apperrors.ExportFailed, spec.ID, err)
		}
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ExportFailed, spec.ID, err)
	}

	e.log.Info("extract complete",
		zap.String("query", spec.ID),
		zap.Int64("rows", rows),
		zap.Int64("bytes", info.Size()),
		zap.String("path", outPath))

	return &Result{Spec: spec, Rows: rows, Bytes: info.Size(), Path: outPath}, nil
}
