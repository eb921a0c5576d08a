// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"os"
	"strings"

	"strr/reports/internal/keychain"
)

// Source identifies where a resolved DSN came from.
type Source string

const (
	SourceEnv      Source = "environment"
	SourceKeychain Source = "keychain"
	SourceNone     Source = "none"
)

// Resolve locates the database DSN, environment first, then the OS keychain.
// STRR_REPORTS_DSN takes precedence over DATABASE_URL. The returned DSN is
// raw; callers should pass it through Parse before connecting.
func Resolve() (string, Source) {
	if env := strings.TrimSpace(os.Getenv("STRR_REPORTS_DSN")); env != "" {
		return env, SourceEnv
	}
	if env := strings.TrimSpace(os.Getenv("DATABASE_URL")); env != "" {
		return env, SourceEnv
	}
	if km, err := keychain.GetManager(); err == nil {
		if v, err := km.LoadDBDSN(); err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), SourceKeychain
		}
	}
	return "", SourceNone
}
