package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Migration is one linearly-ordered schema-migration step (spec.md §4.7):
// a schema change plus an optional in-place data migration, with an
// inverse for rollback.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
	Down        func(tx *sql.Tx) error
}

// migrations is the module's linear migration list. Version 1 is the
// base schema createSchema already establishes; later versions append
// here as the schema evolves.
var migrations = []Migration{
	{
		Version:     1,
		Description: "base snapshots/deltas/schema_migrations tables",
		Up:          func(tx *sql.Tx) error { return nil }, // createSchema already applies this
		Down:        func(tx *sql.Tx) error { return nil },
	},
}

// CurrentVersionApplied reads current_version from schema_migrations,
// returning 0 if no migration has ever been recorded.
func (s *Store) CurrentVersionApplied(ctx context.Context) (int, error) {
	var version sql.NullInt64
	row := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`)
	if err := row.Scan(&version); err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

// PendingMigrations returns the open tail of migrations beyond the
// currently applied version.
func (s *Store) PendingMigrations(ctx context.Context) ([]Migration, error) {
	current, err := s.CurrentVersionApplied(ctx)
	if err != nil {
		return nil, err
	}
	var pending []Migration
	for _, m := range migrations {
		if m.Version > current {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Migrate applies every pending migration in order, recording each in
// schema_migrations.
func (s *Store) Migrate(ctx context.Context) error {
	pending, err := s.PendingMigrations(ctx)
	if err != nil {
		return err
	}
	for _, m := range pending {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := m.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("persistence: migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
			m.Version, m.Description, time.Now().Unix()); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// Rollback reverts migrations in reverse, down to (and not including)
// targetVersion, using each step's inverse.
func (s *Store) Rollback(ctx context.Context, targetVersion int) error {
	current, err := s.CurrentVersionApplied(ctx)
	if err != nil {
		return err
	}
	for v := current; v > targetVersion; v-- {
		m := findMigration(v)
		if m == nil {
			return fmt.Errorf("persistence: no migration registered for version %d", v)
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := m.Down(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("persistence: rollback %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = ?`, v); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func findMigration(version int) *Migration {
	for i := range migrations {
		if migrations[i].Version == version {
			return &migrations[i]
		}
	}
	return nil
}
