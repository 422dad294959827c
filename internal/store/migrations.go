package store

import (
	"fmt"
	"strings"
)

// migrations lists the schema steps in order; step i brings the schema to
// version i+1.
var migrations = []func(db *DB) []string{
	(*DB).schemaV1,
}

// Migrate applies every schema step above the recorded version. Each step
// runs in its own transaction together with the version bump.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var version int
	if err := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		version = 0 // fresh database
	}

	for v := version; v < len(migrations); v++ {
		if err := db.applyStep(v+1, migrations[v](db)); err != nil {
			return fmt.Errorf("migration v%d: %w", v+1, err)
		}
	}
	return nil
}

func (db *DB) applyStep(version int, statements []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", firstLine(stmt), err)
		}
	}
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec(db.rebind("INSERT INTO schema_version (version) VALUES (?)"), version); err != nil {
		return err
	}
	return tx.Commit()
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}

// serialKey is the auto-increment primary key column type of the dialect.
func (db *DB) serialKey() string {
	if db.dialect == Postgres {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// schemaV1 creates the users, feedback and meal_entries tables.
func (db *DB) schemaV1() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT,
			is_admin   BOOLEAN NOT NULL DEFAULT false,
			created_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS feedback (
			id         ` + db.serialKey() + `,
			user_id    TEXT NOT NULL REFERENCES users(id),
			date       TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (user_id, date)
		)`,

		`CREATE TABLE IF NOT EXISTS meal_entries (
			feedback_id  BIGINT NOT NULL REFERENCES feedback(id) ON DELETE CASCADE,
			slot         TEXT NOT NULL,
			rating       INTEGER,
			comment      TEXT NOT NULL DEFAULT '',
			submitted_at TEXT,
			PRIMARY KEY (feedback_id, slot)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_feedback_date ON feedback(date)`,
		`CREATE INDEX IF NOT EXISTS idx_users_admin ON users(is_admin)`,
	}
}
