package system

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/julianstephens/smartsteps/internal/cli"
	"github.com/julianstephens/smartsteps/internal/constants"
	"github.com/julianstephens/smartsteps/internal/keyring"
	"github.com/julianstephens/smartsteps/internal/storage/postgres"
	"github.com/julianstephens/smartsteps/internal/utils"
)

var errNoStoredConnection = errors.New("no connection string stored in the OS keyring; add one with 'smartsteps keyring set'")

// KeyringCmd manages the PostgreSQL connection string used when --config is
// left at its default.
type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	Status KeyringStatusCmd `cmd:"" help:"Check whether the OS keyring is available."`
}

type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL URL or key=value DSN."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	connStr := strings.TrimSpace(cmd.ConnectionString)
	if !utils.IsPostgresURL(connStr) && !strings.Contains(connStr, "host=") {
		return errors.New("connection string must be a PostgreSQL URL or a DSN with host=")
	}

	// The keyring is encrypted, so a password inside the string is accepted here.
	if err := postgres.ValidateConnString(connStr); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		ctx.Println("⚠️  The connection string contains a password; it is stored as-is in the OS keyring.")
	}

	if err := keyring.SetConnectionString(connStr); err != nil {
		return err
	}
	ctx.Println("✓ Connection string stored in the OS keyring")
	ctx.Printf("  Used whenever --config is left at its default and $%s is unset\n", constants.EnvDBConnection)
	return nil
}

type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if errors.Is(err, keyring.ErrNotFound) {
		return errNoStoredConnection
	}
	if err != nil {
		return err
	}
	ctx.Println(maskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	err := keyring.DeleteConnectionString()
	if errors.Is(err, keyring.ErrNotFound) {
		return errNoStoredConnection
	}
	if err != nil {
		return err
	}
	ctx.Println("✓ Connection string removed from the OS keyring")
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring: unavailable")
		return keyring.ErrKeyringUnavailable
	}
	ctx.Println("✓ OS keyring: available")

	switch _, err := keyring.GetConnectionString(); {
	case err == nil:
		ctx.Println("✓ Connection string: stored")
	case errors.Is(err, keyring.ErrNotFound):
		ctx.Println("ℹ Connection string: not stored")
	default:
		ctx.Printf("⚠ Connection string: %v\n", err)
	}
	return nil
}

// maskPassword hides the password of a URL or key=value connection string.
func maskPassword(connStr string) string {
	if utils.IsPostgresURL(connStr) {
		if u, err := url.Parse(connStr); err == nil {
			return u.Redacted()
		}
		// Unescaped characters in the password make the URL unparsable.
		scheme, rest, _ := strings.Cut(connStr, "://")
		at := strings.LastIndex(rest, "@")
		if at < 0 {
			return connStr
		}
		user, _, hasPassword := strings.Cut(rest[:at], ":")
		if !hasPassword {
			return connStr
		}
		return scheme + "://" + user + ":xxxxx" + rest[at:]
	}

	fields := strings.Fields(connStr)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=xxxxx"
		}
	}
	return strings.Join(fields, " ")
}
