// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"strr/reports/internal/config"
	"strr/reports/internal/db"
	"strr/reports/internal/dsn"
	apperrors "strr/reports/internal/errors"
	"strr/reports/internal/export"
	"strr/reports/internal/job"
	"strr/reports/internal/keychain"
	"strr/reports/internal/logging"
	"strr/reports/internal/mail"
	"strr/reports/internal/report"
	"strr/reports/internal/storage"
	"strr/reports/internal/xdg"

	"atomicgo.dev/cursor"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	runNoEmail bool
	runOutput  string
	runDate    string
)

// runCmd executes the full export job: the four extracts in sequence, the
// rendered report, email delivery and the optional object-storage upload.
// This is the command the scheduler invokes nightly.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the registry exports and deliver the summary report",
	Long: `The run command executes every configured extract against the registry
database, pages the results into batch files, merges them into one CSV per
extract and applies the platform-account substitutions. When all extracts
have finished (successfully or not) it renders the HTML summary report,
emails it to the configured recipients with the CSVs attached, and uploads
the artifacts to object storage when an S3 endpoint is configured.

A failing extract is reported in the summary; it never aborts the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return apperrors.Wrap(apperrors.ConfigInvalid, "load configuration", err)
		}

		log, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		// Resolve DSN from env or keychain (never from the config file).
		rawDSN, source := dsn.Resolve()
		if rawDSN == "" {
			pterm.Println("⚠️  No database connection configured.")
			pterm.Println("   Set STRR_REPORTS_DSN or run 'strr-reports connect'.")
			return apperrors.New(apperrors.ConfigInvalid, "no database connection configured")
		}
		normalizedDSN, err := dsn.Parse(rawDSN)
		if err != nil {
			pterm.Println("❌ Invalid database connection string.")
			return err
		}

		info, _ := dsn.ParseInfo(normalizedDSN)
		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Database:   ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(info.Database))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Connection: ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(logging.Mask(normalizedDSN)))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ DSN source: ") + string(source))
		pterm.Println()

		pool, err := db.Connect(ctx, normalizedDSN)
		if err != nil {
			pterm.Printf("❌ Failed to connect to the registry database\n")
			pterm.Println(logging.PresentError("", err))
			return err
		}
		defer pool.Close()

		outDir, err := resolveOutputDir(cfg)
		if err != nil {
			return err
		}
		date, err := resolveRunDate(cfg)
		if err != nil {
			return err
		}

		opts := job.Options{
			Specs:   export.Specs(cfg.PageSize),
			OutDir:  outDir,
			RunDate: date,
			Log:     log,
			Progress: func(spec export.QuerySpec, status job.Status) {
				switch status {
				case job.StatusRunning:
					pterm.Printf("→ %s...\n", spec.Title)
				case job.StatusSucceeded:
					pterm.Printf("✅ %s\n", spec.Title)
				case job.StatusFailed:
					pterm.Printf("❌ %s\n", spec.Title)
				}
			},
		}

		if !runNoEmail && cfg.Mail.Enabled() {
			opts.Deliverer = mail.New(cfg.Mail, smtpPassword())
		}
		if cfg.S3.Enabled() {
			uploader, err := storage.New(cfg.S3, s3SecretKey(), log)
			if err != nil {
				return err
			}
			opts.Uploader = uploader
		}

		cursor.Hide()
		defer cursor.Show()

		rpt, runErr := job.New(export.NewPoolRunner(pool), opts).Run(ctx)
		if rpt != nil {
			printSummary(rpt)
		}
		if runErr != nil {
			pterm.Println(logging.PresentError("run failed", runErr))
			return runErr
		}
		return nil
	},
}

// printSummary renders the per-extract outcome to the terminal.
func printSummary(rpt *report.Report) {
	pterm.Println()
	for _, s := range rpt.Stats {
		if s.Succeeded() {
			pterm.Printf("   %-30s %s rows  %s\n", s.Title, s.RowsDisplay(), s.PathDisplay())
		} else {
			pterm.Printf("   %-30s %s\n", s.Title, logging.Mask("Error: "+s.Error))
		}
	}
	pterm.Println()
	if n := rpt.Failed(); n > 0 {
		pterm.Printf("⚠️  Run %s finished with %d failed extract(s)\n", rpt.RunDate, n)
	} else {
		pterm.Printf("🎯 Run %s finished: all extracts succeeded\n", rpt.RunDate)
	}
}

// resolveOutputDir picks the artifact directory: flag, then config, then the
// XDG state dir.
func resolveOutputDir(cfg config.Config) (string, error) {
	dir := runOutput
	if dir == "" {
		dir = cfg.OutputDir
	}
	if dir == "" {
		return xdg.StateDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

// resolveRunDate picks the run date: flag, then STRR_REPORTS_RUN_DATE for
// backfills, then today in the configured timezone.
func resolveRunDate(cfg config.Config) (string, error) {
	date := runDate
	if date == "" {
		date = strings.TrimSpace(os.Getenv("STRR_REPORTS_RUN_DATE"))
	}
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return "", apperrors.Wrap(apperrors.ConfigInvalid, "run date must be YYYY-MM-DD", err)
		}
		return date, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.Local
	}
	return time.Now().In(loc).Format("2006-01-02"), nil
}

// smtpPassword resolves the SMTP password, environment first, then keychain.
func smtpPassword() string {
	if v := strings.TrimSpace(os.Getenv("STRR_REPORTS_SMTP_PASSWORD")); v != "" {
		return v
	}
	if km, err := keychain.GetManager(); err == nil {
		if v, err := km.LoadSMTPPassword(); err == nil {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// s3SecretKey resolves the object-storage secret key, environment first,
// then keychain.
func s3SecretKey() string {
	if v := strings.TrimSpace(os.Getenv("STRR_REPORTS_S3_SECRET_KEY")); v != "" {
		return v
	}
	if km, err := keychain.GetManager(); err == nil {
		if v, err := km.LoadS3SecretKey(); err == nil {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func init() {
	runCmd.Flags().BoolVar(&runNoEmail, "no-email", false, "Skip report delivery, only write artifacts locally")
	runCmd.Flags().StringVar(&runOutput, "output", "", "Directory for merged CSVs and the report")
	runCmd.Flags().StringVar(&runDate, "run-date", "", "Run date override (YYYY-MM-DD) for backfills")
	rootCmd.AddCommand(runCmd)
}
