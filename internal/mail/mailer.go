// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package mail delivers the rendered report over SMTP.
package mail

import (
	"context"

	gomail "github.com/wneessen/go-mail"

	"strr/reports/internal/config"
	apperrors "strr/reports/internal/errors"
	"strr/reports/internal/report"
)

// Mailer sends the HTML report, with the merged CSVs attached, to the
// configured recipients.
type Mailer struct {
	cfg      config.MailConfig
	password string
}

// New creates a Mailer. The password comes from the environment or the OS
// keychain, never from the config file.
func New(cfg config.MailConfig, password string) *Mailer {
	return &Mailer{cfg: cfg, password: password}
}

// Deliver emails the report. A delivery failure is the only run-level
// failure in the job.
func (m *Mailer) Deliver(ctx context.Context, rpt *report.Report, html []byte) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return apperrors.Wrap(apperrors.DeliveryFailed, "invalid sender address", err)
	}
	if err := msg.To(m.cfg.Recipients...); err != nil {
		return apperrors.Wrap(apperrors.DeliveryFailed, "invalid recipient address", err)
	}
	msg.Subject(rpt.Subject())
	msg.SetBodyString(gomail.TypeTextHTML, string(html))
	for _, path := range rpt.SuccessfulPaths() {
		msg.AttachFile(path)
	}

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return apperrors.Wrap(apperrors.DeliveryFailed, "smtp client", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return apperrors.Wrap(apperrors.DeliveryFailed, "send report", err)
	}
	return nil
}
