// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
)

//go:embed template.html
var templateHTML string

var tmpl = template.Must(template.New("report").Parse(templateHTML))

// Render produces the HTML report document. Rendering is purely
// presentational; it never fails on partial stats.
func (r *Report) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// Subject returns the email subject line for this run.
func (r *Report) Subject() string {
	if n := r.Failed(); n > 0 {
		return fmt.Sprintf("STRR Data Export Report - %s (%d failed)", r.RunDate, n)
	}
	return fmt.Sprintf("STRR Data Export Report - %s", r.RunDate)
}
