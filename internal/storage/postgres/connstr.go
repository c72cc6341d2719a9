package postgres

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	pq "github.com/lib/pq"

	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/utils"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// connParams returns the lower-cased parameter names of a URL or key=value
// connection string. URLs are first rewritten to key=value form by lib/pq so
// both spellings are inspected the same way.
func connParams(connStr string) (map[string]bool, error) {
	dsn := connStr
	if utils.IsPostgresURL(connStr) {
		var err error
		if dsn, err = pq.ParseURL(connStr); err != nil {
			return nil, err
		}
	}
	params := make(map[string]bool)
	for _, field := range strings.Fields(dsn) {
		if key, _, ok := strings.Cut(field, "="); ok {
			params[strings.ToLower(strings.TrimSpace(key))] = true
		}
	}
	return params, nil
}

func hasParam(connStr, key string) bool {
	params, err := connParams(connStr)
	return err == nil && params[key]
}

// ValidateConnString accepts a URL or key=value connection string that lib/pq
// can parse and that carries no password. A password yields
// ErrEmbeddedCredentials; anything else malformed wraps
// ErrInvalidConnectionString.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	params, err := connParams(connStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	if params["password"] {
		return ErrEmbeddedCredentials
	}
	if utils.IsPostgresURL(connStr) && !params["host"] && !params["user"] && !params["dbname"] {
		return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
	}
	return nil
}

// withSearchPath points the session at the application schema unless the
// caller already chose a search_path.
func withSearchPath(connStr string) string {
	if hasParam(connStr, "search_path") {
		return connStr
	}
	if !utils.IsPostgresURL(connStr) {
		return strings.TrimSpace(connStr) + " search_path=" + constants.AppName
	}
	u, err := url.Parse(connStr)
	if err != nil {
		return connStr
	}
	q := u.Query()
	q.Set("search_path", constants.AppName)
	u.RawQuery = q.Encode()
	return u.String()
}
