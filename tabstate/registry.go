// Package tabstate holds the per browser tab context handed to every view:
// one session store and one search synchronizer.
package tabstate

import (
	"context"
	"sync"
	"time"

	"github.com/makita-adocao/makita-web/search"
	"github.com/makita-adocao/makita-web/session"
	"github.com/makita-adocao/makita-web/tokenstore"
	"github.com/rs/zerolog/log"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// API is everything a tab needs from the remote API
type API interface {
	session.API
	search.Searcher
}

type Tab struct {
	ID      string
	Session *session.Store
	Search  *search.Synchronizer

	restoreOnce sync.Once
	lastSeen    time.Time
}

const (
	defaultTokenRetention = 24 * time.Hour
	defaultRestoreTimeout = 10 * time.Second
)

// Registry creates tabs on first use and forgets them on logout or when idle
type Registry struct {
	api            API
	tokens         tokenstore.Repo
	maxIdle        time.Duration
	retention      time.Duration
	restoreTimeout time.Duration

	mu   sync.RWMutex
	tabs map[string]*Tab
}

type Option func(*Registry)

// WithTokenRetention sets how long a stored token outlives its last Set.
// It never drops below the max idle time.
func WithTokenRetention(d time.Duration) Option {
	return func(r *Registry) {
		r.retention = d
	}
}

// WithRestoreTimeout bounds the profile fetch that restores a new tab
func WithRestoreTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.restoreTimeout = d
	}
}

func NewRegistry(api API, tokens tokenstore.Repo, maxIdle time.Duration, opts ...Option) *Registry {
	r := &Registry{
		api:            api,
		tokens:         tokens,
		maxIdle:        maxIdle,
		retention:      defaultTokenRetention,
		restoreTimeout: defaultRestoreTimeout,
		tabs:           make(map[string]*Tab),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.retention < maxIdle {
		r.retention = maxIdle
	}
	return r
}

// Get returns the tab, creating it and restoring its session from the token
// store the first time the ID is seen
func (r *Registry) Get(ctx context.Context, tabID string) *Tab {
	now := NowTimeFunc()

	r.mu.Lock()
	tab, ok := r.tabs[tabID]
	if !ok {
		tab = &Tab{
			ID:      tabID,
			Session: session.New(r.api, r.tokens, tabID),
			Search:  search.NewSynchronizer(r.api),
		}
		r.tabs[tabID] = tab
	}
	tab.lastSeen = now
	r.mu.Unlock()

	tab.restoreOnce.Do(func() {
		// the first request may go away mid restore; that must not sign the tab out
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.restoreTimeout)
		defer cancel()
		tab.Session.Restore(rctx)
	})
	return tab
}

// Remove tears down the in-memory tab. Its persisted token is left to the session.
func (r *Registry) Remove(tabID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tabs, tabID)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tabs)
}

// Sweep drops tabs unused for longer than the max idle time and returns how many went.
// A swept tab that comes back is restored from its stored token.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, tab := range r.tabs {
		if now.Sub(tab.lastSeen) > r.maxIdle {
			delete(r.tabs, id)
			removed++
		}
	}
	return removed
}

// PurgeTokens deletes stored tokens not set within the retention window. Tabs
// whose cookie died with the browser never log out, so nothing else removes them.
func (r *Registry) PurgeTokens(ctx context.Context, now time.Time) (int, error) {
	return r.tokens.Purge(ctx, now.Add(-r.retention))
}

// RunSweeper calls Sweep and PurgeTokens every interval until ctx is done
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := NowTimeFunc()
			if n := r.Sweep(now); n > 0 {
				log.Debug().Int("removed", n).Msg("Swept idle tabs")
			}
			n, err := r.PurgeTokens(ctx, now)
			if err != nil {
				log.Error().Err(err).Msg("Purging stored tokens")
				continue
			}
			if n > 0 {
				log.Debug().Int("purged", n).Msg("Purged stale tokens")
			}
		}
	}
}
