package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

// maxOpenConns bounds the connection pool. lurk is a single-process,
// low-concurrency tool; pool exhaustion queues on database/sql rather
// than failing.
const maxOpenConns = 4

// Store is the embedded cache repository backed by a SQLite file. WAL
// journaling lets concurrent readers proceed while a writer is active;
// cross-process contention is arbitrated by SQLite's own locking.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	users *userCache
	convs *conversationCache
	msgs  *messageCache
}

var _ interfaces.Repository = &Store{}

// Option is a functional option for Store configuration
type Option func(*Store)

// WithNowFunc replaces the clock used for cached_at stamps and freshness
// checks. Tests use it to simulate elapsed TTL.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New opens (creating if needed) the cache database at path and applies
// pending schema migrations.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, goerr.New("cache database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create cache directory", goerr.V("path", path))
	}

	dsn := "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open cache database", goerr.V("path", path))
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to migrate cache database", goerr.V("path", path))
	}

	s := &Store{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.users = &userCache{store: s}
	s.convs = &conversationCache{store: s}
	s.msgs = &messageCache{store: s}

	return s, nil
}

// Users returns the user cache
func (s *Store) Users() interfaces.UserCache {
	return s.users
}

// Conversations returns the conversation cache
func (s *Store) Conversations() interfaces.ConversationCache {
	return s.convs
}

// Messages returns the message cache
func (s *Store) Messages() interfaces.MessageCache {
	return s.msgs
}

// Clear hard-deletes every row of the workspace across all kinds,
// including soft-deleted rows.
func (s *Store) Clear(ctx context.Context, ws types.WorkspaceID) error {
	if err := ws.Validate(); err != nil {
		return err
	}
	for _, table := range []string{"messages", "conversations", "users"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE workspace_id = ?", string(ws)); err != nil {
			return goerr.Wrap(err, "failed to clear workspace cache",
				goerr.V("table", table), goerr.V("workspace_id", ws))
		}
	}
	return nil
}

// ClearAll hard-deletes every row of every workspace
func (s *Store) ClearAll(ctx context.Context) error {
	for _, table := range []string{"messages", "conversations", "users"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return goerr.Wrap(err, "failed to clear cache", goerr.V("table", table))
		}
	}
	return nil
}

// Stats reports per-kind row counts and cache ages for the workspace
func (s *Store) Stats(ctx context.Context, ws types.WorkspaceID) ([]interfaces.KindCount, error) {
	tables := map[types.ObjectKind]string{
		types.KindUser:         "users",
		types.KindConversation: "conversations",
		types.KindMessage:      "messages",
	}

	var counts []interfaces.KindCount
	for _, kind := range types.AllObjectKinds() {
		row := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*), COUNT(deleted_at), COALESCE(MIN(cached_at), 0), COALESCE(MAX(cached_at), 0)
			 FROM `+tables[kind]+` WHERE workspace_id = ?`, string(ws))

		var total, deleted int
		var oldest, newest int64
		if err := row.Scan(&total, &deleted, &oldest, &newest); err != nil {
			return nil, goerr.Wrap(err, "failed to count cache rows", goerr.V("kind", kind))
		}

		kc := interfaces.KindCount{Kind: kind, Rows: total, Deleted: deleted}
		if total > 0 {
			kc.Oldest = time.Unix(0, oldest)
			kc.Newest = time.Unix(0, newest)
		}
		counts = append(counts, kc)
	}

	return counts, nil
}

// Close releases the connection pool
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close cache database")
	}
	return nil
}

// fresh applies the freshness policy: a record is fresh iff
// now - cached_at < ttl. With IgnoreAge set, every record is fresh.
func (s *Store) fresh(cachedAtNano int64, kindTTL time.Duration, cfg interfaces.ReadConfig) bool {
	if cfg.IgnoreAge {
		return true
	}
	return s.now().Sub(time.Unix(0, cachedAtNano)) < cfg.TTL(kindTTL)
}
