// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for strr-reports.
// This module manages all interactions with the OS keychain/credential store,
// providing a unified interface for storing and retrieving sensitive data such as
// the database DSN, the SMTP password and the object-storage secret key.
//
// Secrets are always resolved environment-first by callers; the keychain is the
// fallback for operator workstations where exporting credentials per run is
// inconvenient. macOS Keychain, Windows Credential Manager and the freedesktop
// Secret Service are supported.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
}

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "strr-reports"

// Keys used for storing secrets in the OS keychain.
const (
	KeyDBDSN        = "db_dsn"
	KeySMTPPassword = "smtp_password"
	KeyS3SecretKey  = "s3_secret_key"
)

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	// Try native security backend first on macOS
	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend()
		if err == nil {
			return &Manager{backend: backend}, nil
		}
		// Fall through to keyring library if security command fails
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}

	return &Manager{
		ring: ring,
	}, nil
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}

	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		// Try macOS Keychain first, then pass (password store) as fallback
		allowedBackends = []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.PassBackend,
		}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.PassBackend,
		}
	default:
		return nil, errors.New("secure storage not supported on this OS")
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
	}

	// Hint prefixes where supported to minimize namespace collisions
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}
	if runtime.GOOS == "linux" {
		cfg.LibSecretCollectionName = ServiceName
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, err
	}

	return ring, nil
}

// set stores a key/value pair via the native backend or the keyring library.
func (m *Manager) set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(key, value)
	}
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value)})
}

// get retrieves a value via the native backend or the keyring library.
func (m *Manager) get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		return m.backend.Get(key)
	}
	it, err := m.ring.Get(key)
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

// delete removes a key, ignoring not-found conditions.
func (m *Manager) delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Delete(key)
	}
	return m.ring.Remove(key)
}

// SaveDBDSN stores the database DSN in the keychain.
func (m *Manager) SaveDBDSN(dsn string) error { return m.set(KeyDBDSN, dsn) }

// LoadDBDSN retrieves the database DSN from the keychain.
func (m *Manager) LoadDBDSN() (string, error) { return m.get(KeyDBDSN) }

// ClearDB removes DB-related secrets from the keychain.
func (m *Manager) ClearDB() error { return m.delete(KeyDBDSN) }

// SaveSMTPPassword stores the SMTP password in the keychain.
func (m *Manager) SaveSMTPPassword(pw string) error { return m.set(KeySMTPPassword, pw) }

// LoadSMTPPassword retrieves the SMTP password from the keychain.
func (m *Manager) LoadSMTPPassword() (string, error) { return m.get(KeySMTPPassword) }

// SaveS3SecretKey stores the object-storage secret key in the keychain.
func (m *Manager) SaveS3SecretKey(sk string) error { return m.set(KeyS3SecretKey, sk) }

// LoadS3SecretKey retrieves the object-storage secret key from the keychain.
func (m *Manager) LoadS3SecretKey() (string, error) { return m.get(KeyS3SecretKey) }

// ClearAll removes all strr-reports secrets from the keychain.
func (m *Manager) ClearAll() error {
	_ = m.delete(KeyDBDSN)
	_ = m.delete(KeySMTPPassword)
	_ = m.delete(KeyS3SecretKey)
	return nil
}
