// Package keyring keeps the PostgreSQL connection string in the OS keyring so
// it never has to live in a config file or shell history.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/smartsteps/internal/constants"
)

var (
	ErrNotFound           = errors.New("no connection string in the OS keyring")
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Source says where a resolved connection string came from.
type Source string

const (
	SourceNone    Source = ""
	SourceEnv     Source = "env"
	SourceKeyring Source = "keyring"
)

// probeUser is looked up by IsAvailable and is never written.
const probeUser = "availability-probe"

// entry is one secret slot under the application's keyring service.
type entry string

var connectionEntry = entry(constants.DefaultKeyringUser)

func (e entry) get() (string, error) {
	v, err := keyring.Get(constants.AppName, string(e))
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func (e entry) set(v string) error {
	if err := keyring.Set(constants.AppName, string(e), v); err != nil {
		return fmt.Errorf("store %s in keyring: %w", e, err)
	}
	return nil
}

func (e entry) delete() error {
	err := keyring.Delete(constants.AppName, string(e))
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return ErrNotFound
	case err != nil:
		return fmt.Errorf("delete %s from keyring: %w", e, err)
	}
	return nil
}

// GetConnectionString returns the stored connection string or ErrNotFound.
func GetConnectionString() (string, error) {
	return connectionEntry.get()
}

func SetConnectionString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return errors.New("connection string cannot be empty")
	}
	return connectionEntry.set(connStr)
}

func DeleteConnectionString() error {
	return connectionEntry.delete()
}

// ResolveConnectionString picks the connection string to use. A non-blank
// envValue wins; otherwise the keyring is consulted, and any keyring failure
// yields SourceNone.
func ResolveConnectionString(envValue string) (string, Source) {
	if v := strings.TrimSpace(envValue); v != "" {
		return v, SourceEnv
	}
	if v, err := connectionEntry.get(); err == nil {
		return v, SourceKeyring
	}
	return "", SourceNone
}

// IsAvailable reports whether the OS keyring answers lookups at all.
func IsAvailable() bool {
	_, err := entry(probeUser).get()
	return err == nil || errors.Is(err, ErrNotFound)
}
