package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"slices"
	"time"
)

// MigrationType is the direction of a migration.
type MigrationType string

// Migration types.
const (
	MigrationUp   MigrationType = "up"
	MigrationDown MigrationType = "down"
)

// Execer runs SQL statements. It is satisfied by *sql.DB, *sql.Conn and
// *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Migration is a schema migration loaded from a pair of SQL files.
type Migration struct {
	Name    string
	Applied bool
	Up      sql.Null[string]
	Down    sql.Null[string]
}

var fnameRx = regexp.MustCompile(`^(?P<name>\d+-[a-z0-9-_]+)\.(?P<type>up|down)\.sql$`)

// LoadMigrations reads "<name>.up.sql" and "<name>.down.sql" files from the
// root of dir, and returns them sorted by name. Files not matching that
// pattern are ignored.
func LoadMigrations(dir fs.FS) ([]*Migration, error) {
	migrationMap := make(map[string]*Migration)

	err := fs.WalkDir(dir, ".", func(p string, d fs.DirEntry, e error) error {
		if e != nil {
			return e
		}
		if !d.Type().IsRegular() || path.Ext(d.Name()) != ".sql" {
			return nil
		}

		matched := fnameRx.FindStringSubmatch(d.Name())
		if len(matched) == 0 {
			return nil
		}
		data, err := fs.ReadFile(dir, p)
		if err != nil {
			return err
		}

		name := matched[fnameRx.SubexpIndex("name")]
		m, ok := migrationMap[name]
		if !ok {
			m = &Migration{Name: name}
			migrationMap[name] = m
		}
		val := sql.Null[string]{V: string(data), Valid: true}
		if matched[fnameRx.SubexpIndex("type")] == string(MigrationUp) {
			m.Up = val
		} else {
			m.Down = val
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed loading migrations: %w", err)
	}

	migrations := make([]*Migration, 0, len(migrationMap))
	for _, m := range migrationMap {
		migrations = append(migrations, m)
	}
	slices.SortFunc(migrations, func(a, b *Migration) int {
		if a.Name < b.Name {
			return -1
		} else if a.Name > b.Name {
			return 1
		}
		return 0
	})

	return migrations, nil
}

// RunMigrations applies or rolls back migrations up to and including the named
// one. to can either be a migration name, or "all".
func RunMigrations(
	ctx context.Context, d Execer, migrations []*Migration, typ MigrationType,
	to string, logger *slog.Logger,
) error {
	if err := createMigrationSchema(ctx, d); err != nil {
		return fmt.Errorf("failed creating migrations schema: %w", err)
	}

	if err := loadHistory(ctx, d, migrations); err != nil {
		return err
	}

	runPlan, err := createMigrationPlan(migrations, typ, to)
	if err != nil {
		return err
	}

	for _, run := range runPlan {
		if _, err := d.ExecContext(ctx, run.sql); err != nil {
			return fmt.Errorf("failed running migration '%s': %w", run.name, err)
		}
		_, err = d.ExecContext(ctx, `
			INSERT INTO _migration_history (name, type, time)
			VALUES (?, ?, ?);`, run.name, string(run.typ), time.Now().UTC())
		if err != nil {
			return err
		}

		msg := "applied"
		if run.typ == MigrationDown {
			msg = "rolled back"
		}
		logger.Debug(fmt.Sprintf("%s DB migration", msg), "name", run.name)
	}

	return nil
}

func loadHistory(ctx context.Context, d Execer, migrations []*Migration) error {
	migrationMap := make(map[string]*Migration, len(migrations))
	for _, m := range migrations {
		migrationMap[m.Name] = m
	}

	rows, err := d.QueryContext(ctx, `SELECT name, type
		FROM _migration_history
		ORDER BY time, rowid;`)
	if err != nil {
		return fmt.Errorf("failed retrieving migration history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return fmt.Errorf("failed reading from database: %w", err)
		}

		m, ok := migrationMap[name]
		if !ok {
			return fmt.Errorf("found unknown migration in history: '%s'", name)
		}
		m.Applied = MigrationType(typ) == MigrationUp
	}

	return rows.Err()
}

type migrationRun struct {
	name string
	typ  MigrationType
	sql  string
}

func createMigrationPlan(
	migrations []*Migration, typ MigrationType, to string,
) ([]migrationRun, error) {
	runPlan := []migrationRun{}

	toIdx := slices.IndexFunc(migrations, func(m *Migration) bool {
		return m.Name == to
	})
	if toIdx < 0 && to != "all" {
		return nil, fmt.Errorf("migration '%s' doesn't exist", to)
	}

	for idx, m := range migrations {
		switch {
		case typ == MigrationUp && !m.Applied && (to == "all" || idx <= toIdx):
			runPlan = append(runPlan, migrationRun{
				name: m.Name, typ: MigrationUp, sql: m.Up.V,
			})
		case typ == MigrationDown && m.Applied && (to == "all" || idx > toIdx):
			// Roll back in reverse order.
			runPlan = append([]migrationRun{{
				name: m.Name, typ: MigrationDown, sql: m.Down.V,
			}}, runPlan...)
		}
	}

	return runPlan, nil
}

func createMigrationSchema(ctx context.Context, d Execer) error {
	_, err := d.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _migration_history (
			name   VARCHAR(128) NOT NULL,
			type   VARCHAR(32) CHECK( type IN ('up','down') ) NOT NULL,
			time   TIMESTAMP NOT NULL
		);`)
	return err
}
