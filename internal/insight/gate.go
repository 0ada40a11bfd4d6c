// Package insight coordinates narrative analyses that may be slow or fail.
//
// A Gate allows one in-flight computation per key, treats a repeated request
// for an already computed (key, revision) as a no-op, and discards a result
// whose revision was overtaken while it was being computed.
package insight

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrSuperseded reports that the input changed while the analysis was running.
var ErrSuperseded = errors.New("insight superseded by a newer revision")

// Key identifies one analysis. Scope is the owner whose revision is tracked
// (a profile id); Subject names the analysis within it ("growth:height").
type Key struct {
	Scope   string
	Subject string
}

func (k Key) String() string {
	return k.Scope + ":" + k.Subject
}

// Store keeps finished results. Implementations must be safe for concurrent use.
type Store[T any] interface {
	Get(ctx context.Context, key string) (T, bool, error)
	Set(ctx context.Context, key string, value T) error
}

type Gate[T any] struct {
	store  Store[T]
	logger zerolog.Logger
	group  singleflight.Group

	mu     sync.Mutex
	latest map[string]int64
}

func NewGate[T any](store Store[T], logger zerolog.Logger) *Gate[T] {
	return &Gate[T]{
		store:  store,
		logger: logger,
		latest: make(map[string]int64),
	}
}

// Observe records rev as the newest revision of scope. Older revisions are ignored.
func (g *Gate[T]) Observe(scope string, rev int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if rev > g.latest[scope] {
		g.latest[scope] = rev
	}
}

// Current reports whether rev is still the newest revision seen for scope.
func (g *Gate[T]) Current(scope string, rev int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return rev >= g.latest[scope]
}

// Do returns the result for key at revision rev. A stored result is returned
// as is; otherwise fn runs at most once per (key, rev) no matter how many
// callers arrive while it is pending. When fn fails, fallback supplies the
// result and nothing is stored, so a later call retries. When rev stops being
// current before fn returns, the result is dropped and ErrSuperseded returned.
//
// fn runs detached from the caller's cancellation because joined callers
// share its result; bound it with its own timeout.
func (g *Gate[T]) Do(ctx context.Context, key Key, rev int64, fn func(context.Context) (T, error), fallback func() T) (T, error) {
	var zero T
	g.Observe(key.Scope, rev)
	if !g.Current(key.Scope, rev) {
		return zero, ErrSuperseded
	}

	storeKey := fmt.Sprintf("%s@%d", key, rev)
	if v, ok, err := g.store.Get(ctx, storeKey); err != nil {
		g.logger.Warn().Err(err).Str("key", storeKey).Msg("insight store read failed")
	} else if ok {
		return v, nil
	}

	v, err, shared := g.group.Do(storeKey, func() (any, error) {
		runCtx := context.WithoutCancel(ctx)
		res, err := fn(runCtx)
		if err != nil {
			g.logger.Warn().Err(err).Str("key", storeKey).Msg("insight failed, using fallback")
			res = fallback()
			if !g.Current(key.Scope, rev) {
				return res, ErrSuperseded
			}
			return res, nil
		}

		if !g.Current(key.Scope, rev) {
			g.logger.Debug().Str("key", storeKey).Msg("discarding stale insight")
			return res, ErrSuperseded
		}
		if err := g.store.Set(runCtx, storeKey, res); err != nil {
			g.logger.Warn().Err(err).Str("key", storeKey).Msg("insight store write failed")
		}
		return res, nil
	})
	if shared {
		g.logger.Debug().Str("key", storeKey).Msg("joined in-flight insight")
	}
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
