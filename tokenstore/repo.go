// Package tokenstore persists the access token of each browser tab under the
// fixed name Key. Absence of the token means the tab is anonymous.
package tokenstore

import (
	"context"
	"time"
)

// NowTimeFunc stamps every Set. It can be overridden in tests.
var NowTimeFunc = time.Now

// Key is the only name tokens are stored under
const Key = "access_token"

type Repo interface {
	// Get returns errors.ErrTokenNotFound when the tab has no token
	Get(ctx context.Context, tabID string) (string, error)
	Set(ctx context.Context, tabID, token string) error
	// Delete is a no-op when the tab has no token
	Delete(ctx context.Context, tabID string) error
	// Purge deletes every token last set before olderThan and returns how many went
	Purge(ctx context.Context, olderThan time.Time) (int, error)
	Close() error
}
