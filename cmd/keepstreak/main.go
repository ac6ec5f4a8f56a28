package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/keepstreak/internal/cli"
	"github.com/julianstephens/keepstreak/internal/cli/achievements"
	"github.com/julianstephens/keepstreak/internal/cli/backups"
	"github.com/julianstephens/keepstreak/internal/cli/habits"
	"github.com/julianstephens/keepstreak/internal/cli/system"
	"github.com/julianstephens/keepstreak/internal/constants"
	"github.com/julianstephens/keepstreak/internal/logger"
	"github.com/julianstephens/keepstreak/internal/storage"
	"github.com/julianstephens/keepstreak/internal/storage/memory"
	"github.com/julianstephens/keepstreak/internal/tracker"
)

const dbEnv = "KEEPSTREAK_DB_CONNECTION"

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite path, PostgreSQL connection string, 'keyring' or 'memory'. For PostgreSQL, credentials must NOT be embedded in the connection string unless it comes from the keyring or the environment." type:"string" env:"KEEPSTREAK_DB_CONNECTION" default:"${db_path}"`
	User    string `help:"User whose habits are tracked." env:"KEEPSTREAK_USER" default:"${user}"`
	Debug   bool   `help:"Enable debug logging to stderr." env:"KEEPSTREAK_DEBUG"`

	Init     system.InitCmd     `cmd:"" help:"Initialize keepstreak storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Validate stored habits for conflicts."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Serve    system.ServeCmd    `cmd:"" help:"Run the HTTP API."`
	Token    system.TokenCmd    `cmd:"" help:"Issue a signed API token."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage secrets in the OS keyring."`
	Backup   backups.BackupCmd  `cmd:"" help:"Manage database backups."`

	Habit       habits.HabitCmd             `cmd:"" help:"Manage habits and record progress."`
	Achievement achievements.AchievementCmd `cmd:"" aliases:"ach" help:"Show and check achievements."`
	Stats       achievements.StatsCmd       `cmd:"" help:"Show aggregate statistics."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, statistics and achievements"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": constants.Version,
			"db_path": constants.DefaultConfigPath,
			"user":    constants.DefaultUserID,
		},
	)

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: cli.ExpandPath(constants.DefaultConfigDir),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := openStore(strings.HasPrefix(ctx.Command(), "keyring"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	svc := tracker.New(store)
	appCtx := &cli.Context{
		Store:   store,
		Service: svc,
		UserID:  CLI.User,
		Out:     os.Stdout,
	}

	err = ctx.Run(appCtx)
	// Background evaluations must finish before the store goes away
	svc.Wait()
	if cerr := appCtx.Store.Close(); cerr != nil {
		logger.Warn("Failed to close store", "error", cerr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore resolves --config into a store. Keyring commands get a memory
// store when the configured database cannot be resolved, so they can be used
// to fix the keyring itself.
func openStore(keyringCmd bool) (storage.Provider, error) {
	store, err := resolveStore()
	if err != nil && keyringCmd {
		return memory.NewStore(), nil
	}
	return store, err
}

func resolveStore() (storage.Provider, error) {
	dsn, trusted, err := cli.ResolveDSN(CLI.Config)
	if err != nil {
		return nil, err
	}
	if env := os.Getenv(dbEnv); env != "" && env == dsn {
		trusted = true
	}
	return cli.OpenStore(dsn, trusted)
}
