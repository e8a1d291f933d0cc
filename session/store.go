// Package session owns the signed-in user of one browser tab and the lifecycle
// of the tab's access token. Every account operation goes through Store.
package session

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	apperrors "github.com/makita-adocao/makita-web/internal/errors"
	"github.com/makita-adocao/makita-web/tokenstore"
	"github.com/makita-adocao/makita-web/users"
	"github.com/rs/zerolog/log"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ResetTokenParam is the query parameter carrying the password reset token
const ResetTokenParam = "token"

type State int

const (
	Anonymous State = iota
	Restoring
	Authenticated
)

func (s State) String() string {
	switch s {
	case Restoring:
		return "restoring"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// API is the part of the remote API the session uses
type API interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	Profile(ctx context.Context, token string) (*users.User, error)
	UpdateProfile(ctx context.Context, token, name string) (string, error)
	DeleteProfile(ctx context.Context, token string) error
}

// Store is the single writer of a tab's session. Readers only see committed values.
type Store struct {
	api    API
	tokens tokenstore.Repo
	tabID  string

	mu    sync.RWMutex
	state State
	user  *users.User
}

func New(api API, tokens tokenstore.Repo, tabID string) *Store {
	return &Store{
		api:    api,
		tokens: tokens,
		tabID:  tabID,
		state:  Anonymous,
	}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Authenticated() bool {
	return s.State() == Authenticated
}

// User returns a copy of the signed-in user
func (s *Store) User() (users.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return users.User{}, false
	}
	return *s.user, true
}

// Restore silently re-authenticates from a stored token. Any failure ends anonymous
// with the token removed; nothing is returned to the caller.
func (s *Store) Restore(ctx context.Context) {
	token, err := s.tokens.Get(ctx, s.tabID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrTokenNotFound) {
			log.Err(err).Str("tab", s.tabID).Msg("Restore: stored token unreadable")
			s.SignOut(ctx)
		}
		return
	}

	s.setState(Restoring, nil)

	if tokenstore.Expired(token, NowTimeFunc()) {
		log.Info().Err(apperrors.ErrTokenExpired).Str("tab", s.tabID).Msg("Restore: stored token discarded")
		s.SignOut(ctx)
		return
	}

	user, err := s.api.Profile(ctx, token)
	if err != nil {
		log.Warn().Err(err).Str("tab", s.tabID).Msg("Restore: profile fetch failed")
		s.SignOut(ctx)
		return
	}
	s.setState(Authenticated, user)
}

// SignIn exchanges credentials for a token, stores it and loads the profile.
// Failures match errors.ErrInvalidCredentials and leave the token store untouched.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		return invalidCredentials(err)
	}

	if err := s.tokens.Set(ctx, s.tabID, token); err != nil {
		log.Err(err).Str("tab", s.tabID).Msg("SignIn: persist token failed")
		return userError(apperrors.ErrRequestFailed, MsgSessionStore)
	}
	s.setState(Restoring, nil)

	user, err := s.api.Profile(ctx, token)
	if err != nil {
		s.SignOut(ctx)
		return err
	}
	s.setState(Authenticated, user)
	log.Info().Str("tab", s.tabID).Str("email", user.Email).Msg("Signed in")
	return nil
}

// SignUp registers an account without signing in and returns the API's message
func (s *Store) SignUp(ctx context.Context, name, email, password string) (string, error) {
	return s.api.Register(ctx, name, email, password)
}

// SendLinkToEmail requests a password reset email
func (s *Store) SendLinkToEmail(ctx context.Context, email string) (string, error) {
	return s.api.ForgotPassword(ctx, email)
}

// ChangePasswordOfUser resets the password with the token found in currentURL
func (s *Store) ChangePasswordOfUser(ctx context.Context, currentURL *url.URL, newPassword string) error {
	var resetToken string
	if currentURL != nil {
		resetToken = strings.TrimSpace(currentURL.Query().Get(ResetTokenParam))
	}
	if resetToken == "" {
		return &opError{
			kind: errors.Join(apperrors.ErrValidation, apperrors.ErrInvalidResetToken),
			err:  errors.New(MsgInvalidResetToken),
		}
	}
	if newPassword == "" {
		return userError(apperrors.ErrValidation, MsgPasswordRequired)
	}
	return s.api.ResetPassword(ctx, resetToken, newPassword)
}

// DeleteMyAccount deletes the account. On success the tab is signed out and true
// tells the caller to navigate to the logged out view.
func (s *Store) DeleteMyAccount(ctx context.Context) (bool, error) {
	token, err := s.currentToken(ctx)
	if err != nil {
		return false, err
	}

	if err := s.api.DeleteProfile(ctx, token); err != nil {
		s.signOutIfUnauthenticated(ctx, err)
		return false, err
	}

	s.setState(Anonymous, nil)
	if err := s.tokens.Delete(ctx, s.tabID); err != nil {
		log.Err(err).Str("tab", s.tabID).Msg("DeleteMyAccount: token cleanup failed")
		return false, userError(apperrors.ErrRequestFailed, MsgSessionNotCleared)
	}
	log.Info().Str("tab", s.tabID).Msg("Account deleted")
	return true, nil
}

// UpdateAccount renames the user, keeping every other field
func (s *Store) UpdateAccount(ctx context.Context, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return userError(apperrors.ErrValidation, MsgNameRequired)
	}

	token, err := s.currentToken(ctx)
	if err != nil {
		return err
	}

	name, err := s.api.UpdateProfile(ctx, token, newName)
	if err != nil {
		s.signOutIfUnauthenticated(ctx, err)
		return err
	}

	s.mu.Lock()
	if s.user != nil {
		updated := s.user.WithName(name)
		s.user = &updated
	}
	s.mu.Unlock()
	return nil
}

// ReloadProfile refreshes the in-memory user from the API
func (s *Store) ReloadProfile(ctx context.Context) error {
	token, err := s.currentToken(ctx)
	if err != nil {
		return err
	}
	user, err := s.api.Profile(ctx, token)
	if err != nil {
		s.signOutIfUnauthenticated(ctx, err)
		return err
	}
	s.setState(Authenticated, user)
	return nil
}

// SignOut clears the token and the user. It never fails; store errors are logged.
func (s *Store) SignOut(ctx context.Context) {
	if err := s.tokens.Delete(ctx, s.tabID); err != nil {
		log.Err(err).Str("tab", s.tabID).Msg("SignOut: token removal failed")
	}
	s.setState(Anonymous, nil)
}

func (s *Store) signOutIfUnauthenticated(ctx context.Context, err error) {
	if errors.Is(err, apperrors.ErrUnauthenticated) {
		log.Info().Str("tab", s.tabID).Msg("API rejected token, signing out")
		s.SignOut(ctx)
	}
}

// currentToken fails fast when there is nothing to authenticate with
func (s *Store) currentToken(ctx context.Context) (string, error) {
	token, err := s.tokens.Get(ctx, s.tabID)
	if errors.Is(err, apperrors.ErrTokenNotFound) {
		return "", userError(apperrors.ErrNotAuthenticated, MsgNotAuthenticated)
	}
	if err != nil {
		log.Err(err).Str("tab", s.tabID).Msg("currentToken: token store failed")
		return "", userError(apperrors.ErrRequestFailed, MsgSessionStore)
	}
	return token, nil
}

func (s *Store) setState(state State, user *users.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.user = user
}
