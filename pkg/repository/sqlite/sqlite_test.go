package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
	"github.com/lurk-dev/lurk/pkg/repository/sqlite"
)

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	gt.NoError(t, err).Required()

	user := &model.User{ID: "U1", Name: "alice"}
	gt.NoError(t, store.Users().Put(ctx, "T001", []*model.User{user})).Required()
	gt.NoError(t, store.Close()).Required()

	// Reopening re-runs migrations; they must be a no-op on an
	// up-to-date database and the rows must survive
	store, err = sqlite.New(path)
	gt.NoError(t, err).Required()
	defer func() {
		gt.NoError(t, store.Close())
	}()

	got, err := store.Users().Get(ctx, "T001", "U1")
	gt.NoError(t, err).Required()
	gt.Value(t, got.Name).Equal("alice")
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	gt.NoError(t, err).Required()
	defer func() {
		gt.NoError(t, store.Close())
	}()

	gt.NoError(t, store.Users().Put(ctx, "T001", []*model.User{
		{ID: "U1", Name: "alice"},
	})).Required()

	// WAL mode: readers proceed while a writer is active. A command
	// invocation issues several concurrent lookups internally.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Users().Get(ctx, "T001", "U1")
			gt.NoError(t, err)
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Users().Put(ctx, "T001", []*model.User{
				{ID: types.UserID("U1"), Name: "alice"},
			})
			gt.NoError(t, err)
		}()
	}
	wg.Wait()
}

// A row whose snapshot no longer parses must behave exactly like an
// absent row: the callers re-fetch and the next upsert repairs it.
func TestCorruptSnapshotIsMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	store, err := sqlite.New(path)
	gt.NoError(t, err).Required()
	defer func() {
		gt.NoError(t, store.Close())
	}()

	gt.NoError(t, store.Users().Put(ctx, "T001", []*model.User{
		{ID: "U1", Name: "alice"},
		{ID: "U2", Name: "bob"},
	})).Required()

	// Damage one row behind the store's back
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	gt.NoError(t, err).Required()
	_, err = db.ExecContext(ctx,
		`UPDATE users SET snapshot = '{broken' WHERE id = 'U1' AND workspace_id = 'T001'`)
	gt.NoError(t, err).Required()
	gt.NoError(t, db.Close()).Required()

	_, err = store.Users().Get(ctx, "T001", "U1")
	gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()

	// The intact row is unaffected
	got, err := store.Users().Get(ctx, "T001", "U2")
	gt.NoError(t, err).Required()
	gt.Value(t, got.Name).Equal("bob")

	// One undecodable row poisons the full-set read
	_, err = store.Users().List(ctx, "T001")
	gt.Bool(t, errors.Is(err, interfaces.ErrCacheMiss)).True()

	// Resolution skips the damaged row instead of failing
	matches, err := store.Users().ResolveName(ctx, "T001", "bob")
	gt.NoError(t, err).Required()
	gt.Array(t, matches).Length(1)
}
