package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/keepstreak/internal/cli"
	"github.com/julianstephens/keepstreak/internal/keyring"
	"github.com/julianstephens/keepstreak/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
	Status KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
}

// KeyringSetCmd stores the database connection string, or with --jwt the
// HTTP API signing secret, in the OS keyring
type KeyringSetCmd struct {
	Value string `arg:"" help:"PostgreSQL connection string, or the JWT secret with --jwt."`
	JWT   bool   `name:"jwt" help:"Store the value as the JWT signing secret."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if cmd.JWT {
		if len(cmd.Value) < 16 {
			return errors.New("jwt secret must be at least 16 characters")
		}
		if err := keyring.Set(keyring.SecretJWTSecret, cmd.Value); err != nil {
			return fmt.Errorf("failed to store jwt secret in keyring: %w", err)
		}
		ctx.Println("✓ JWT secret stored successfully in OS keyring")
		return nil
	}

	if !cli.IsPostgres(cmd.Value) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.Value); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
		ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
		ctx.Println("   To keep passwords out of connection strings, use .pgpass or environment variables instead.")
	}

	if err := keyring.SetConnectionString(cmd.Value); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	ctx.Println("✓ Connection string stored successfully in OS keyring")
	ctx.Println("  Use it with --config keyring")
	return nil
}

type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'keepstreak keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	ctx.Println("Connection string retrieved from keyring:")
	ctx.Println(maskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct {
	JWT bool `name:"jwt" help:"Delete the JWT signing secret instead."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	name, label := keyring.SecretDatabase, "connection string"
	if cmd.JWT {
		name, label = keyring.SecretJWTSecret, "jwt secret"
	}

	if err := keyring.Delete(name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", label)
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", label, err)
	}

	ctx.Printf("✓ Removed %s from OS keyring\n", label)
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}

	ctx.Println("✓ OS keyring is available")
	for _, secret := range []struct{ name, label string }{
		{keyring.SecretDatabase, "Connection string"},
		{keyring.SecretJWTSecret, "JWT secret"},
	} {
		if _, err := keyring.Get(secret.name); err == nil {
			ctx.Printf("✓ %s is stored in keyring\n", secret.label)
		} else if errors.Is(err, keyring.ErrNotFound) {
			ctx.Printf("ℹ No %s stored in keyring\n", strings.ToLower(secret.label))
		}
	}
	return nil
}

// maskPassword masks passwords in connection strings for display
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		if idx := strings.Index(connStr, "://"); idx != -1 {
			remaining := connStr[idx+3:]
			// The last @ separates user info from host
			if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
				userInfo := remaining[:atIdx]
				if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
					return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
				}
			}
		}
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}

	return connStr
}
