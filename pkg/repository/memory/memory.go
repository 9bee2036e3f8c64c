package memory

import (
	"sync"
	"time"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

// Memory is a map-backed cache repository with the same freshness and
// soft-delete semantics as the SQLite store. It backs the development
// mode and the shared behavior test suites.
type Memory struct {
	now   func() time.Time
	users *userCache
	convs *conversationCache
	msgs  *messageCache
}

var _ interfaces.Repository = &Memory{}

// Option is a functional option for Memory configuration
type Option func(*Memory)

// WithNowFunc replaces the clock used for cached_at stamps and freshness
// checks
func WithNowFunc(now func() time.Time) Option {
	return func(m *Memory) {
		m.now = now
	}
}

// New creates an empty in-memory repository
func New(opts ...Option) *Memory {
	m := &Memory{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.users = newUserCache(m)
	m.convs = newConversationCache(m)
	m.msgs = newMessageCache(m)
	return m
}

// Users returns the user cache
func (m *Memory) Users() interfaces.UserCache {
	return m.users
}

// Conversations returns the conversation cache
func (m *Memory) Conversations() interfaces.ConversationCache {
	return m.convs
}

// Messages returns the message cache
func (m *Memory) Messages() interfaces.MessageCache {
	return m.msgs
}

// Close is a no-op for the in-memory backend
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) fresh(cachedAt time.Time, kindTTL time.Duration, cfg interfaces.ReadConfig) bool {
	if cfg.IgnoreAge {
		return true
	}
	return m.now().Sub(cachedAt) < cfg.TTL(kindTTL)
}

// entry is one cached row: the object value, its cache stamp, and an
// optional soft-delete mark
type entry[T any] struct {
	value     T
	cachedAt  time.Time
	deletedAt *time.Time
}

// table is a workspace-keyed row store shared by the kind caches
type table[K comparable, T any] struct {
	mu   sync.RWMutex
	rows map[K]*entry[T]
}

func newTable[K comparable, T any]() *table[K, T] {
	return &table[K, T]{
		rows: make(map[K]*entry[T]),
	}
}

// get returns a copy of the row. Copying while the lock is held keeps
// readers safe from a concurrent markDeleted on the same row.
func (t *table[K, T]) get(key K) (entry[T], bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.rows[key]
	if !ok {
		return entry[T]{}, false
	}
	return *e, true
}

func (t *table[K, T]) put(key K, value T, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	// Last writer wins: replace the row wholesale and clear any prior
	// deletion mark.
	t.rows[key] = &entry[T]{value: value, cachedAt: now}
}

func (t *table[K, T]) markDeleted(key K, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.rows[key]; ok {
		e.deletedAt = &now
	}
}

// scan visits every live (non-soft-deleted) row
func (t *table[K, T]) scan(visit func(key K, e *entry[T])) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for key, e := range t.rows {
		if e.deletedAt != nil {
			continue
		}
		visit(key, e)
	}
}

// purge hard-deletes every row matching the predicate, including
// soft-deleted ones, and returns the number removed
func (t *table[K, T]) purge(match func(key K) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var n int
	for key := range t.rows {
		if match(key) {
			delete(t.rows, key)
			n++
		}
	}
	return n
}

// count summarizes rows matching the predicate for Stats
func (t *table[K, T]) count(match func(key K) bool) (total, deleted int, oldest, newest time.Time) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for key, e := range t.rows {
		if !match(key) {
			continue
		}
		total++
		if e.deletedAt != nil {
			deleted++
		}
		if oldest.IsZero() || e.cachedAt.Before(oldest) {
			oldest = e.cachedAt
		}
		if e.cachedAt.After(newest) {
			newest = e.cachedAt
		}
	}
	return total, deleted, oldest, newest
}

type objectKey[ID comparable] struct {
	ws types.WorkspaceID
	id ID
}

type messageKey struct {
	ws   types.WorkspaceID
	conv types.ConversationID
	ts   types.MessageTS
}
