package tokenstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/makita-adocao/makita-web/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo keeps tokens for the life of the process
type InMemoryRepo struct {
	mu      sync.RWMutex
	tokens  map[string]map[string]string // tabID -> name -> token
	updated map[string]time.Time
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		tokens:  make(map[string]map[string]string),
		updated: make(map[string]time.Time),
	}
}

func (r *InMemoryRepo) Get(_ context.Context, tabID string) (string, error) {
	if tabID == "" {
		return "", fmt.Errorf("tabID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[tabID][Key]
	if !ok {
		return "", apperrors.ErrTokenNotFound
	}
	return token, nil
}

func (r *InMemoryRepo) Set(_ context.Context, tabID, token string) error {
	if tabID == "" {
		return fmt.Errorf("tabID is required")
	}
	if token == "" {
		return fmt.Errorf("token is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[tabID]; !ok {
		r.tokens[tabID] = make(map[string]string)
	}
	r.tokens[tabID][Key] = token
	r.updated[tabID] = NowTimeFunc()
	return nil
}

func (r *InMemoryRepo) Delete(_ context.Context, tabID string) error {
	if tabID == "" {
		return fmt.Errorf("tabID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tabTokens, ok := r.tokens[tabID]
	if !ok {
		return nil
	}
	delete(tabTokens, Key)

	// Clean up empty tab map
	if len(tabTokens) == 0 {
		delete(r.tokens, tabID)
		delete(r.updated, tabID)
	}
	return nil
}

func (r *InMemoryRepo) Purge(_ context.Context, olderThan time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for tabID, at := range r.updated {
		if !at.Before(olderThan) {
			continue
		}
		purged += len(r.tokens[tabID])
		delete(r.tokens, tabID)
		delete(r.updated, tabID)
	}
	return purged, nil
}

func (r *InMemoryRepo) Close() error {
	return nil
}
