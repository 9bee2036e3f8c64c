package interfaces

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

// ErrCacheMiss is the single miss signal of the cache read path. An absent
// row, a stale row, a soft-deleted row, and a row whose snapshot cannot be
// decoded are all indistinguishable to callers: the object must be fetched
// from the remote source.
var ErrCacheMiss = goerr.New("cache miss")

// ReadOption adjusts the freshness gate of a single cache read
type ReadOption func(*ReadConfig)

// ReadConfig holds the effective freshness settings for one read. MaxAge
// zero means "use the kind's default TTL".
type ReadConfig struct {
	MaxAge    time.Duration
	IgnoreAge bool
}

// NewReadConfig applies the options to a zero config
func NewReadConfig(opts ...ReadOption) ReadConfig {
	var cfg ReadConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// TTL resolves the effective freshness window given the kind's default
func (c ReadConfig) TTL(kindDefault time.Duration) time.Duration {
	if c.MaxAge > 0 {
		return c.MaxAge
	}
	return kindDefault
}

// WithMaxAge overrides the kind TTL for this read
func WithMaxAge(d time.Duration) ReadOption {
	return func(c *ReadConfig) {
		c.MaxAge = d
	}
}

// WithAnyAge disables the freshness gate entirely: any cached record is
// returned regardless of age. Name resolution uses this to trade accuracy
// for availability.
func WithAnyAge() ReadOption {
	return func(c *ReadConfig) {
		c.IgnoreAge = true
	}
}

// UserCache provides workspace-scoped cache operations for users
type UserCache interface {
	// Get returns the cached user, or ErrCacheMiss when the row is absent,
	// stale, or soft-deleted
	Get(ctx context.Context, ws types.WorkspaceID, id types.UserID, opts ...ReadOption) (*model.User, error)

	// List returns every cached user of the workspace, or ErrCacheMiss when
	// the set is empty or any row is stale
	List(ctx context.Context, ws types.WorkspaceID, opts ...ReadOption) ([]*model.User, error)

	// Put upserts the users, stamping cached_at and clearing any prior
	// deletion mark. Users that cannot be encoded are skipped.
	Put(ctx context.Context, ws types.WorkspaceID, users []*model.User) error

	// MarkDeleted soft-deletes the rows. Call it only when the remote
	// source explicitly reported deletion.
	MarkDeleted(ctx context.Context, ws types.WorkspaceID, ids []types.UserID) error

	// ResolveName returns all non-deleted users whose account name or
	// profile display name equals name case-insensitively. Zero, one, or
	// many matches; never an arbitrary pick.
	ResolveName(ctx context.Context, ws types.WorkspaceID, name string, opts ...ReadOption) ([]*model.User, error)
}

// ConversationCache provides workspace-scoped cache operations for conversations
type ConversationCache interface {
	Get(ctx context.Context, ws types.WorkspaceID, id types.ConversationID, opts ...ReadOption) (*model.Conversation, error)
	List(ctx context.Context, ws types.WorkspaceID, opts ...ReadOption) ([]*model.Conversation, error)
	Put(ctx context.Context, ws types.WorkspaceID, convs []*model.Conversation) error
	MarkDeleted(ctx context.Context, ws types.WorkspaceID, ids []types.ConversationID) error
	ResolveName(ctx context.Context, ws types.WorkspaceID, name string, opts ...ReadOption) ([]*model.Conversation, error)
}

// MessageCache provides workspace-scoped cache operations for messages of
// a single conversation
type MessageCache interface {
	Get(ctx context.Context, ws types.WorkspaceID, conv types.ConversationID, ts types.MessageTS, opts ...ReadOption) (*model.Message, error)

	// List returns the cached messages of the conversation ordered by
	// timestamp descending, or ErrCacheMiss when empty or any row is stale
	List(ctx context.Context, ws types.WorkspaceID, conv types.ConversationID, opts ...ReadOption) ([]*model.Message, error)

	Put(ctx context.Context, ws types.WorkspaceID, msgs []*model.Message) error
	MarkDeleted(ctx context.Context, ws types.WorkspaceID, conv types.ConversationID, tss []types.MessageTS) error
}

// KindCount summarizes one kind's rows for cache status reporting
type KindCount struct {
	Kind    types.ObjectKind
	Rows    int
	Deleted int
	Oldest  time.Time
	Newest  time.Time
}

// Repository aggregates the kind caches plus maintenance operations
type Repository interface {
	Users() UserCache
	Conversations() ConversationCache
	Messages() MessageCache

	// Clear hard-deletes every row of the workspace, including
	// soft-deleted ones. Destructive reset, no soft-delete semantics.
	Clear(ctx context.Context, ws types.WorkspaceID) error

	// ClearAll hard-deletes every row of every workspace
	ClearAll(ctx context.Context) error

	// Stats reports per-kind row counts for the workspace
	Stats(ctx context.Context, ws types.WorkspaceID) ([]KindCount, error)

	Close() error
}
