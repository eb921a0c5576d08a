// Package config loads and stores job configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets (DSN, SMTP password, S3
// secret key) resolve from the environment or the OS keychain. Environment
// variables always win over the config file so scheduled runs can be driven
// entirely from the process environment.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"strr/reports/internal/xdg"
)

// DefaultPageSize is the number of rows fetched and spooled per batch file.
const DefaultPageSize = 500

// Config holds non-sensitive job settings.
type Config struct {
	LogLevel  string     `json:"log_level"`
	OutputDir string     `json:"output_dir"`
	PageSize  int        `json:"page_size"`
	Timezone  string     `json:"timezone"`
	Mail      MailConfig `json:"mail"`
	S3        S3Config   `json:"s3"`
}

// MailConfig holds SMTP delivery settings. The password is never stored here.
type MailConfig struct {
	Host       string   `json:"host"`
	Port       int      `json:"port"`
	From       string   `json:"from"`
	Username   string   `json:"username"`
	Recipients []string `json:"recipients"`
}

// Enabled reports whether enough is configured to attempt delivery.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.From != "" && len(m.Recipients) > 0
}

// S3Config holds optional object-storage upload settings.
// The secret key is never stored here.
type S3Config struct {
	Endpoint  string `json:"endpoint"`
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix"`
	AccessKey string `json:"access_key"`
	UseSSL    bool   `json:"use_ssl"`
}

// Enabled reports whether uploads should be attempted.
func (s S3Config) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func defaults() Config {
	return Config{
		LogLevel: "info",
		PageSize: DefaultPageSize,
		Timezone: "America/Vancouver",
		Mail:     MailConfig{Port: 587},
	}
}

// Load reads configuration; a missing file returns defaults. Environment
// overrides are applied last.
func Load() (Config, error) {
	c := defaults()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&c)
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	applyEnv(&c)
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// applyEnv overlays STRR_REPORTS_* environment variables onto the config.
func applyEnv(c *Config) {
	if v := env("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := env("OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := env("PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PageSize = n
		}
	}
	if v := env("TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := env("SMTP_HOST"); v != "" {
		c.Mail.Host = v
	}
	if v := env("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Mail.Port = n
		}
	}
	if v := env("SMTP_FROM"); v != "" {
		c.Mail.From = v
	}
	if v := env("SMTP_USERNAME"); v != "" {
		c.Mail.Username = v
	}
	if v := env("RECIPIENTS"); v != "" {
		var rcpts []string
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				rcpts = append(rcpts, r)
			}
		}
		c.Mail.Recipients = rcpts
	}
	if v := env("S3_ENDPOINT"); v != "" {
		c.S3.Endpoint = v
	}
	if v := env("S3_BUCKET"); v != "" {
		c.S3.Bucket = v
	}
	if v := env("S3_PREFIX"); v != "" {
		c.S3.Prefix = v
	}
	if v := env("S3_ACCESS_KEY"); v != "" {
		c.S3.AccessKey = v
	}
	if v := env("S3_USE_SSL"); v != "" {
		c.S3.UseSSL = v == "1" || strings.EqualFold(v, "true")
	}
}

func env(suffix string) string {
	return strings.TrimSpace(os.Getenv("STRR_REPORTS_" + suffix))
}
