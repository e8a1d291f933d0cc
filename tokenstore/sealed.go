package tokenstore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	apperrors "github.com/makita-adocao/makita-web/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var _ Repo = (*SealedRepo)(nil)

// SealedRepo encrypts tokens with NaCl secretbox before handing them to the wrapped repo
type SealedRepo struct {
	next Repo
	key  [32]byte
}

// NewSealedRepo wraps next using a 32 byte key given as 64 hex characters
func NewSealedRepo(next Repo, hexKey string) (*SealedRepo, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("[tokenstore NewSealedRepo] key is not hex: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("[tokenstore NewSealedRepo] key must be 32 bytes, got %d", len(raw))
	}
	s := &SealedRepo{next: next}
	copy(s.key[:], raw)
	return s, nil
}

func (s *SealedRepo) Get(ctx context.Context, tabID string) (string, error) {
	sealed, err := s.next.Get(ctx, tabID)
	if err != nil {
		return "", err
	}
	return s.open(sealed)
}

func (s *SealedRepo) Set(ctx context.Context, tabID, token string) error {
	sealed, err := s.seal(token)
	if err != nil {
		return err
	}
	return s.next.Set(ctx, tabID, sealed)
}

func (s *SealedRepo) Delete(ctx context.Context, tabID string) error {
	return s.next.Delete(ctx, tabID)
}

func (s *SealedRepo) Purge(ctx context.Context, olderThan time.Time) (int, error) {
	return s.next.Purge(ctx, olderThan)
}

func (s *SealedRepo) Close() error {
	return s.next.Close()
}

func (s *SealedRepo) seal(token string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("[tokenstore seal] nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (s *SealedRepo) open(sealed string) (string, error) {
	box, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(box) < nonceSize {
		return "", apperrors.ErrSealedToken
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", apperrors.ErrSealedToken
	}
	return string(plain), nil
}
