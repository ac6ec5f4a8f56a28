package system

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/keepstreak/internal/achievements"
	"github.com/julianstephens/keepstreak/internal/backup"
	"github.com/julianstephens/keepstreak/internal/cli"
	"github.com/julianstephens/keepstreak/internal/keyring"
	"github.com/julianstephens/keepstreak/internal/migration"
	"github.com/julianstephens/keepstreak/internal/storage/postgres"
	"github.com/julianstephens/keepstreak/internal/storage/sqlite"
	"github.com/julianstephens/keepstreak/migrations"
)

// errSkipped marks a check that does not apply to the configured store
var errSkipped = errors.New("not applicable")

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database cannot be reached
	needsDB bool
	// warnOnly failures are reported without failing the command
	warnOnly bool
	run      func(*cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Data validation", needsDB: true, run: checkValidation},
	{name: "Completion integrity", needsDB: true, run: checkCompletionIntegrity},
	{name: "Achievement unlocks", needsDB: true, run: checkUnlocks},
	{name: "Keyring", warnOnly: true, run: checkKeyring},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			ctx.Printf("⊘ %s: SKIPPED (%v)\n", c.name, err)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

// sqlDB returns the connection and migration set of SQL-backed stores
func sqlDB(ctx *cli.Context) (*sql.DB, *migration.Runner, error) {
	var db *sql.DB
	var runner *migration.Runner
	var err error
	switch s := ctx.Store.(type) {
	case *sqlite.Store:
		db = s.GetDB()
		if db != nil {
			runner, err = migration.NewRunner(db, migrations.SQLite(), migration.DriverSQLite)
		}
	case *postgres.Store:
		db = s.GetDB()
		if db != nil {
			runner, err = migration.NewRunner(db, migrations.Postgres(), migration.DriverPostgres)
		}
	default:
		return nil, nil, fmt.Errorf("%w: %s storage has no schema", errSkipped, ctx.Store.GetConfigPath())
	}
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		return nil, nil, fmt.Errorf("database connection is nil")
	}
	return db, runner, nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	db, _, err := sqlDB(ctx)
	if errors.Is(err, errSkipped) {
		return nil
	}
	if err != nil {
		return err
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func schemaStatus(ctx *cli.Context) (migration.Status, error) {
	_, runner, err := sqlDB(ctx)
	if err != nil {
		return migration.Status{}, err
	}
	st, err := runner.Status()
	if err != nil {
		return migration.Status{}, fmt.Errorf("failed to read schema status: %w", err)
	}
	return st, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	st, err := schemaStatus(ctx)
	if err != nil {
		return err
	}
	if st.TooNew() {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", st.Current, st.Latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	st, err := schemaStatus(ctx)
	if err != nil {
		return err
	}
	if len(st.Pending) > 0 {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'keepstreak migrate')", st.Current, st.Latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("%w: backups are only taken for SQLite", errSkipped)
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'keepstreak backup create'")
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	result, err := ctx.Service.Check(context.Background(), ctx.UserID)
	if err != nil {
		return err
	}
	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found; run 'keepstreak validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkCompletionIntegrity(ctx *cli.Context) error {
	db, _, err := sqlDB(ctx)
	if err != nil {
		return err
	}

	var orphaned int
	err = db.QueryRow(`
		SELECT COUNT(*)
		FROM habit_completions c
		LEFT JOIN habits h ON c.habit_id = h.id
		WHERE h.id IS NULL
	`).Scan(&orphaned)
	if err != nil {
		return fmt.Errorf("failed to check orphaned completions: %w", err)
	}
	if orphaned > 0 {
		return fmt.Errorf("found %d completions referencing non-existent habits", orphaned)
	}
	return nil
}

func checkUnlocks(ctx *cli.Context) error {
	unlocks, err := ctx.Store.GetUnlocks(context.Background(), ctx.UserID)
	if err != nil {
		return err
	}
	for _, u := range unlocks {
		if _, ok := achievements.ByID(u.AchievementID); !ok {
			return fmt.Errorf("unlock references unknown achievement %q", u.AchievementID)
		}
	}
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("OS keyring is not available; secrets must come from flags or the environment")
	}
	return nil
}

func checkClockTimezone(*cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
