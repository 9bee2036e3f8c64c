package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/types"
	"github.com/lurk-dev/lurk/pkg/utils/logging"
)

// UseCases orchestrates the cache and the remote Slack service. The cache
// is advisory: its failures are logged and degraded to misses or no-ops,
// and only the remote fetch outcome decides whether a command succeeds.
type UseCases struct {
	repo          interfaces.Repository
	slack         interfaces.SlackService
	refresh       bool
	cacheMessages bool
	ttl           map[types.ObjectKind]time.Duration
	now           func() time.Time
}

// Option is a functional option for UseCases configuration
type Option func(*UseCases)

// WithRefresh makes every cache read a permanent miss while leaving the
// write-through path untouched: fresh fetches still repopulate the cache.
func WithRefresh(refresh bool) Option {
	return func(uc *UseCases) {
		uc.refresh = refresh
	}
}

// WithMessageCaching opts in to caching conversation history. Messages
// churn quickly, so they are not cached unless asked for.
func WithMessageCaching(enabled bool) Option {
	return func(uc *UseCases) {
		uc.cacheMessages = enabled
	}
}

// WithTTLOverrides replaces the built-in per-kind freshness windows for
// the kinds present in the map
func WithTTLOverrides(ttl map[types.ObjectKind]time.Duration) Option {
	return func(uc *UseCases) {
		uc.ttl = ttl
	}
}

// WithNowFunc replaces the clock (for tests)
func WithNowFunc(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

// New creates the usecase layer
func New(repo interfaces.Repository, slack interfaces.SlackService, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:  repo,
		slack: slack,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// readOpts returns the freshness options for reads of the kind: empty for
// the built-in default, a max-age override when configured
func (uc *UseCases) readOpts(kind types.ObjectKind) []interfaces.ReadOption {
	if d, ok := uc.ttl[kind]; ok {
		return []interfaces.ReadOption{interfaces.WithMaxAge(d)}
	}
	return nil
}

// cacheRead runs a cache lookup and reports whether it hit. A cache-
// internal failure is indistinguishable from a miss to the caller; it is
// only logged for diagnostics.
func cacheRead[T any](ctx context.Context, uc *UseCases, op string, read func() (T, error)) (T, bool) {
	var zero T
	if uc.refresh {
		return zero, false
	}

	v, err := read()
	if err == nil {
		logging.From(ctx).Debug("cache hit", "op", op)
		return v, true
	}
	if errors.Is(err, interfaces.ErrCacheMiss) {
		logging.From(ctx).Debug("cache miss", "op", op)
	} else {
		logging.From(ctx).Debug("cache read failed, treating as miss", "op", op, "error", err)
	}
	return zero, false
}

// cacheWrite runs a best-effort write-through. Failure never propagates:
// the freshly fetched objects are already in hand and must reach the
// caller regardless.
func (uc *UseCases) cacheWrite(ctx context.Context, op string, write func() error) {
	if err := write(); err != nil {
		logging.From(ctx).Debug("cache write-through failed", "op", op, "error", err)
	}
}
