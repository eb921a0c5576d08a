// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "strr/reports/internal/errors"
	"strr/reports/internal/export"
	"strr/reports/internal/logging"
	"strr/reports/internal/report"
)

// Deliverer hands the finished report to its audience. The SMTP mailer is
// the production implementation.
type Deliverer interface {
	Deliver(ctx context.Context, rpt *report.Report, html []byte) error
}

// Uploader pushes run artifacts to external storage.
type Uploader interface {
	Upload(ctx context.Context, runDate string, paths []string) error
}

// Options configures a run.
type Options struct {
	Specs   []export.QuerySpec
	OutDir  string
	RunDate string
	// Deliverer may be nil, in which case the report is only written to disk.
	Deliverer Deliverer
	// Uploader may be nil, in which case no artifacts leave the machine.
	Uploader Uploader
	Log      *zap.Logger
	// Progress, when set, is called on every extract state change.
	Progress func(spec export.QuerySpec, status Status)
}

// Job runs the extracts sequentially and produces the run report.
type Job struct {
	exporter *export.Exporter
	opts     Options
}

// New creates a Job over the given query runner.
func New(runner export.Runner, opts Options) *Job {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Job{
		exporter: export.NewExporter(runner, opts.OutDir, opts.Log),
		opts:     opts,
	}
}

// Run executes every extract, builds the report, writes it next to the CSVs
// and hands it to delivery. A failed extract is recorded in its stats and
// never blocks the remaining ones; only report delivery or upload failures
// make the run itself fail. The report is returned in both cases.
func (j *Job) Run(ctx context.Context) (*report.Report, error) {
	runID := uuid.NewString()
	log := j.opts.Log.With(zap.String("run_id", runID), zap.String("run_date", j.opts.RunDate))
	log.Info("starting report run", zap.Int("extracts", len(j.opts.Specs)))

	state := NewState(specIDs(j.opts.Specs))
	rpt := &report.Report{
		RunID:         runID,
		RunDate:       j.opts.RunDate,
		GeneratedAt:   time.Now(),
		Substitutions: export.OrderedSubstitutions(),
	}

	for _, spec := range j.opts.Specs {
		state.Start(spec.ID)
		j.progress(spec, StatusRunning)
		start := time.Now()

		res, err := j.exporter.Export(ctx, spec, j.opts.RunDate)
		if err != nil {
			state.Fail(spec.ID, err.Error())
			j.progress(spec, StatusFailed)
			log.Error("extract failed",
				zap.String("query", spec.ID),
				zap.String("error", logging.Mask(err.Error())),
				zap.Duration("elapsed", time.Since(start)))
			rpt.Stats = append(rpt.Stats, report.QueryStats{
				ID:    spec.ID,
				Title: spec.Title,
				Error: err.Error(),
			})
			continue
		}

		state.Succeed(spec.ID)
		j.progress(spec, StatusSucceeded)
		log.Info("extract succeeded",
			zap.String("query", spec.ID),
			zap.Int64("rows", res.Rows),
			zap.Duration("elapsed", time.Since(start)))
		rpt.Stats = append(rpt.Stats, report.QueryStats{
			ID:        spec.ID,
			Title:     spec.Title,
			TotalRows: res.Rows,
			FileSize:  res.Bytes,
			Path:      res.Path,
		})
	}

	html, err := rpt.Render()
	if err != nil {
		return rpt, err
	}
	reportPath := filepath.Join(j.opts.OutDir, fmt.Sprintf("report_%s.html", j.opts.RunDate))
	if err := os.WriteFile(reportPath, html, 0o644); err != nil {
		return rpt, apperrors.Wrap(apperrors.DeliveryFailed, "write report artifact", err)
	}
	log.Info("report rendered",
		zap.String("path", reportPath),
		zap.Int("failed_extracts", state.FailedCount()))

	if j.opts.Deliverer != nil {
		if err := j.opts.Deliverer.Deliver(ctx, rpt, html); err != nil {
			return rpt, err
		}
		log.Info("report delivered")
	}

	if j.opts.Uploader != nil {
		artifacts := append(rpt.SuccessfulPaths(), reportPath)
		if err := j.opts.Uploader.Upload(ctx, j.opts.RunDate, artifacts); err != nil {
			return rpt, err
		}
	}

	return rpt, nil
}

func (j *Job) progress(spec export.QuerySpec, status Status) {
	if j.opts.Progress != nil {
		j.opts.Progress(spec, status)
	}
}

func specIDs(specs []export.QuerySpec) []string {
	ids := make([]string, len(specs))
	for i, s := range specs {
		ids[i] = s.ID
	}
	return ids
}
