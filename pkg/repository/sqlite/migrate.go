package sqlite

import (
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
)

// migrations are applied in order, each exactly once, recorded in the
// schema_migrations ledger. Statements must stay idempotent (IF NOT
// EXISTS) so that concurrent process starts can race the apply safely.
var migrations = []struct {
	version int
	stmts   []string
}{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id                   TEXT NOT NULL,
				workspace_id         TEXT NOT NULL,
				name                 TEXT NOT NULL,
				real_name            TEXT,
				deleted              INTEGER NOT NULL DEFAULT 0,
				is_bot               INTEGER NOT NULL DEFAULT 0,
				is_admin             INTEGER NOT NULL DEFAULT 0,
				is_owner             INTEGER NOT NULL DEFAULT 0,
				tz                   TEXT,
				profile_email        TEXT,
				profile_display_name TEXT,
				profile_status_text  TEXT,
				snapshot             TEXT NOT NULL,
				cached_at            INTEGER NOT NULL,
				deleted_at           INTEGER,
				PRIMARY KEY (id, workspace_id)
			)`,
			`CREATE TABLE IF NOT EXISTS conversations (
				id           TEXT NOT NULL,
				workspace_id TEXT NOT NULL,
				name         TEXT NOT NULL,
				is_channel   INTEGER NOT NULL DEFAULT 0,
				is_group     INTEGER NOT NULL DEFAULT 0,
				is_im        INTEGER NOT NULL DEFAULT 0,
				is_mpim      INTEGER NOT NULL DEFAULT 0,
				is_private   INTEGER NOT NULL DEFAULT 0,
				is_archived  INTEGER NOT NULL DEFAULT 0,
				topic        TEXT,
				purpose      TEXT,
				num_members  INTEGER,
				snapshot     TEXT NOT NULL,
				cached_at    INTEGER NOT NULL,
				deleted_at   INTEGER,
				PRIMARY KEY (id, workspace_id)
			)`,
			`CREATE TABLE IF NOT EXISTS messages (
				conversation_id TEXT NOT NULL,
				workspace_id    TEXT NOT NULL,
				ts              TEXT NOT NULL,
				user_id         TEXT,
				text            TEXT NOT NULL,
				thread_ts       TEXT,
				permalink       TEXT,
				snapshot        TEXT NOT NULL,
				cached_at       INTEGER NOT NULL,
				deleted_at      INTEGER,
				PRIMARY KEY (conversation_id, workspace_id, ts)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_users_name
				ON users (workspace_id, name)`,
			`CREATE INDEX IF NOT EXISTS idx_conversations_name
				ON conversations (workspace_id, name)`,
		},
	},
}

// migrate applies pending migrations. Safe to call from concurrent
// process starts: the version check and the ledger insert run in one
// immediate transaction, and the DDL itself is apply-if-absent.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return goerr.Wrap(err, "failed to create schema ledger")
	}

	for _, m := range migrations {
		if err := applyMigration(db, m.version, m.stmts); err != nil {
			return goerr.Wrap(err, "failed to apply migration", goerr.V("version", m.version))
		}
	}
	return nil
}

func applyMigration(db *sql.DB, version int, stmts []string) error {
	tx, err := db.Begin()
	if err != nil {
		return goerr.Wrap(err, "failed to begin migration transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var applied int
	if err := tx.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version,
	).Scan(&applied); err != nil {
		return goerr.Wrap(err, "failed to read schema ledger")
	}
	if applied > 0 {
		return nil
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return goerr.Wrap(err, "failed to execute migration statement")
		}
	}

	if _, err := tx.Exec(
		"INSERT OR IGNORE INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		version, nowUnixNano(),
	); err != nil {
		return goerr.Wrap(err, "failed to record migration")
	}

	return tx.Commit()
}
