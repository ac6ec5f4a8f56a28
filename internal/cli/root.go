package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/keepstreak/internal/backup"
	"github.com/julianstephens/keepstreak/internal/keyring"
	"github.com/julianstephens/keepstreak/internal/logger"
	"github.com/julianstephens/keepstreak/internal/storage"
	"github.com/julianstephens/keepstreak/internal/storage/memory"
	"github.com/julianstephens/keepstreak/internal/storage/postgres"
	"github.com/julianstephens/keepstreak/internal/storage/sqlite"
	"github.com/julianstephens/keepstreak/internal/tracker"
)

// KeyringScheme as --config reads the connection string from the OS keyring
const KeyringScheme = "keyring"

// MemoryDSN selects the in-process store. Nothing survives the process.
const MemoryDSN = "memory"

type Context struct {
	Store   storage.Provider
	Service *tracker.Service
	UserID  string
	Out     io.Writer
}

// Load opens the store for commands that expect an initialized database
func (c *Context) Load() error {
	return c.Store.Load()
}

// Printf writes to the command output
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// PerformAutomaticBackup snapshots SQLite stores and only logs failures
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	if _, err := backup.NewManager(c.Store.GetConfigPath()).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// IsPostgres reports whether dsn is a PostgreSQL URL or key/value DSN
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") ||
		strings.Contains(dsn, "dbname=")
}

// ResolveDSN turns the --config value into a data source name. The keyring
// scheme looks the connection string up in the OS keyring; trusted reports
// whether the value came from there.
func ResolveDSN(config string) (dsn string, trusted bool, err error) {
	config = strings.TrimSpace(config)
	if config != KeyringScheme && config != KeyringScheme+"://" {
		return config, false, nil
	}

	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, errors.New("no connection string found in keyring. Use 'keepstreak keyring set' to store one")
		}
		return "", false, err
	}
	return connStr, true, nil
}

// OpenStore picks the storage backend for dsn. Unless trusted, PostgreSQL
// connection strings carrying a password are rejected.
func OpenStore(dsn string, trusted bool) (storage.Provider, error) {
	switch {
	case dsn == MemoryDSN:
		return memory.NewStore(), nil
	case IsPostgres(dsn):
		if _, err := postgres.ValidateConnString(dsn); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, err
			}
			if !trusted {
				return nil, fmt.Errorf("%w. Store the connection string with 'keepstreak keyring set', export KEEPSTREAK_DB_CONNECTION, or use a .pgpass file", err)
			}
		}
		return postgres.New(dsn), nil
	case dsn == "":
		return nil, errors.New("no database configured")
	default:
		return sqlite.NewStore(ExpandPath(dsn)), nil
	}
}
