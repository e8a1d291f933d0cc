package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/makita-adocao/makita-web/apiclient"
	"github.com/makita-adocao/makita-web/apiclient/apifake"
	apperrors "github.com/makita-adocao/makita-web/internal/errors"
	"github.com/makita-adocao/makita-web/session"
	"github.com/makita-adocao/makita-web/tokenstore"
	"github.com/stretchr/testify/require"
)

const (
	testTabID    = "tab-1"
	testName     = "Ana Souza"
	testEmail    = "ana@example.com"
	testPassword = "Secret123"
)

type testFixture struct {
	api    *apifake.FakeAPI
	tokens tokenstore.Repo
	store  *session.Store
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	api := apifake.New(t)
	api.AddUser(testName, testEmail, testPassword)

	client, err := apiclient.New(api.URL())
	require.NoError(t, err)

	tokens := tokenstore.NewInMemoryRepo()
	return &testFixture{
		api:    api,
		tokens: tokens,
		store:  session.New(client, tokens, testTabID),
	}
}

func (f *testFixture) signIn(t *testing.T) string {
	t.Helper()
	require.NoError(t, f.store.SignIn(context.Background(), testEmail, testPassword))
	token, err := f.tokens.Get(context.Background(), testTabID)
	require.NoError(t, err)
	return token
}

func (f *testFixture) requireSignedOut(t *testing.T) {
	t.Helper()
	require.Equal(t, session.Anonymous, f.store.State())
	_, ok := f.store.User()
	require.False(t, ok)
	_, err := f.tokens.Get(context.Background(), testTabID)
	require.True(t, errors.Is(err, apperrors.ErrTokenNotFound))
}

func TestSignIn_Success(t *testing.T) {
	f := setupTestFixture(t)
	require.Equal(t, session.Anonymous, f.store.State())

	token := f.signIn(t)

	require.NotEmpty(t, token)
	require.Equal(t, session.Authenticated, f.store.State())
	user, ok := f.store.User()
	require.True(t, ok)
	require.Equal(t, testName, user.Name)
	require.Equal(t, testEmail, user.Email)

	profile := f.api.RequestsTo(http.MethodGet, apiclient.PathProfile)
	require.Len(t, profile, 1)
	require.Equal(t, "Bearer "+token, profile[0].Authorization)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	f := setupTestFixture(t)

	err := f.store.SignIn(context.Background(), testEmail, "wrong")

	require.Error(t, err)
	require.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
	require.Equal(t, "Credenciais invalidas", err.Error())
	f.requireSignedOut(t)
	require.Empty(t, f.api.RequestsTo(http.MethodGet, apiclient.PathProfile))
}

func TestSignIn_ProfileFailureSignsOut(t *testing.T) {
	f := setupTestFixture(t)
	f.api.ForceStatus["GET "+apiclient.PathProfile] = http.StatusInternalServerError

	err := f.store.SignIn(context.Background(), testEmail, testPassword)

	require.Error(t, err)
	f.requireSignedOut(t)
}

func TestRestore(t *testing.T) {
	t.Run("no token stays anonymous without requests", func(t *testing.T) {
		f := setupTestFixture(t)

		f.store.Restore(context.Background())

		require.Equal(t, session.Anonymous, f.store.State())
		require.Empty(t, f.api.Requests())
	})

	t.Run("valid token authenticates", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.tokens.Set(context.Background(), testTabID, f.api.IssueToken(testEmail)))

		f.store.Restore(context.Background())

		require.Equal(t, session.Authenticated, f.store.State())
		user, ok := f.store.User()
		require.True(t, ok)
		require.Equal(t, testName, user.Name)
	})

	t.Run("rejected token signs out silently", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.tokens.Set(context.Background(), testTabID, "revoked"))

		f.store.Restore(context.Background())

		f.requireSignedOut(t)
		require.Len(t, f.api.RequestsTo(http.MethodGet, apiclient.PathProfile), 1)
	})

	t.Run("expired jwt is dropped without a request", func(t *testing.T) {
		f := setupTestFixture(t)
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": testEmail,
			"exp": time.Now().Add(-time.Hour).Unix(),
		}).SignedString([]byte("secret"))
		require.NoError(t, err)
		require.NoError(t, f.tokens.Set(context.Background(), testTabID, expired))

		f.store.Restore(context.Background())

		f.requireSignedOut(t)
		require.Empty(t, f.api.Requests())
	})
}

func TestSignUp_DoesNotAuthenticate(t *testing.T) {
	f := setupTestFixture(t)

	msg, err := f.store.SignUp(context.Background(), "Bruno", "bruno@example.com", "Secret123")

	require.NoError(t, err)
	require.Equal(t, "Usuario criado!", msg)
	require.Equal(t, session.Anonymous, f.store.State())

	_, err = f.store.SignUp(context.Background(), "Bruno", "bruno@example.com", "Secret123")
	require.Error(t, err)
	require.Equal(t, "E-mail ja cadastrado", err.Error())
}

func TestSendLinkToEmail(t *testing.T) {
	f := setupTestFixture(t)

	msg, err := f.store.SendLinkToEmail(context.Background(), testEmail)

	require.NoError(t, err)
	require.NotEmpty(t, msg)
	require.Equal(t, session.Anonymous, f.store.State())
}

func TestChangePasswordOfUser(t *testing.T) {
	t.Run("missing token fails without request", func(t *testing.T) {
		f := setupTestFixture(t)
		u, _ := url.Parse("http://localhost:8080/reset-password")

		err := f.store.ChangePasswordOfUser(context.Background(), u, "NewSecret1")

		require.True(t, errors.Is(err, apperrors.ErrInvalidResetToken))
		require.True(t, errors.Is(err, apperrors.ErrValidation))
		require.EqualError(t, err, session.MsgInvalidResetToken)
		require.Empty(t, f.api.Requests())
	})

	t.Run("missing password is reported in portuguese", func(t *testing.T) {
		f := setupTestFixture(t)
		u, _ := url.Parse("http://localhost:8080/reset-password?token=abc")

		err := f.store.ChangePasswordOfUser(context.Background(), u, "")

		require.True(t, errors.Is(err, apperrors.ErrValidation))
		require.EqualError(t, err, session.MsgPasswordRequired)
		require.Empty(t, f.api.Requests())
	})

	t.Run("token from url is sent as bearer", func(t *testing.T) {
		f := setupTestFixture(t)
		resetToken := f.api.IssueResetToken(testEmail)
		u, _ := url.Parse("http://localhost:8080/reset-password?token=" + url.QueryEscape(resetToken))

		err := f.store.ChangePasswordOfUser(context.Background(), u, "NewSecret1")

		require.NoError(t, err)
		_, password, _ := f.api.User(testEmail)
		require.Equal(t, "NewSecret1", password)
		reqs := f.api.RequestsTo(http.MethodPost, apiclient.PathResetPassword)
		require.Equal(t, "Bearer "+resetToken, reqs[0].Authorization)
		require.Equal(t, "NewSecret1", reqs[0].Body["newPassword"])
	})

	t.Run("rejected token gives generic error", func(t *testing.T) {
		f := setupTestFixture(t)
		u, _ := url.Parse("http://localhost:8080/reset-password?token=stale")

		err := f.store.ChangePasswordOfUser(context.Background(), u, "NewSecret1")

		require.Error(t, err)
		require.Equal(t, apiclient.ResetPasswordFailedMessage, err.Error())
	})
}

func TestUpdateAccount(t *testing.T) {
	t.Run("updates only the name", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t)

		require.NoError(t, f.store.UpdateAccount(context.Background(), "Ana Lima"))

		user, ok := f.store.User()
		require.True(t, ok)
		require.Equal(t, "Ana Lima", user.Name)
		require.Equal(t, testEmail, user.Email)
	})

	t.Run("without token fails fast", func(t *testing.T) {
		f := setupTestFixture(t)

		err := f.store.UpdateAccount(context.Background(), "Ana Lima")

		require.True(t, errors.Is(err, apperrors.ErrNotAuthenticated))
		require.Empty(t, f.api.Requests())
	})

	t.Run("401 signs out", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t)
		f.api.ForceStatus["PUT "+apiclient.PathProfile] = http.StatusUnauthorized

		err := f.store.UpdateAccount(context.Background(), "Ana Lima")

		require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
		f.requireSignedOut(t)
	})
}

func TestDeleteMyAccount(t *testing.T) {
	t.Run("success clears session and token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t)

		navigate, err := f.store.DeleteMyAccount(context.Background())

		require.NoError(t, err)
		require.True(t, navigate)
		f.requireSignedOut(t)
		_, _, exists := f.api.User(testEmail)
		require.False(t, exists)
	})

	t.Run("without token fails without request", func(t *testing.T) {
		f := setupTestFixture(t)

		navigate, err := f.store.DeleteMyAccount(context.Background())

		require.False(t, navigate)
		require.True(t, errors.Is(err, apperrors.ErrNotAuthenticated))
		require.Empty(t, f.api.Requests())
	})

	t.Run("403 and 404 keep the session", func(t *testing.T) {
		for _, status := range []int{http.StatusForbidden, http.StatusNotFound} {
			f := setupTestFixture(t)
			f.signIn(t)
			f.api.ForceStatus["DELETE "+apiclient.PathProfile] = status

			navigate, err := f.store.DeleteMyAccount(context.Background())

			require.False(t, navigate)
			require.Error(t, err)
			require.Equal(t, session.Authenticated, f.store.State())
		}
	})

	t.Run("401 signs out", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t)
		f.api.ForceStatus["DELETE "+apiclient.PathProfile] = http.StatusUnauthorized

		_, err := f.store.DeleteMyAccount(context.Background())

		require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
		f.requireSignedOut(t)
	})

	t.Run("token cleanup failure aborts with classified error", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signIn(t)
		token, err := f.tokens.Get(context.Background(), testTabID)
		require.NoError(t, err)

		client, err := apiclient.New(f.api.URL())
		require.NoError(t, err)
		broken := &failingDeleteRepo{Repo: f.tokens}
		store := session.New(client, broken, testTabID)
		require.NoError(t, broken.Set(context.Background(), testTabID, token))

		navigate, err := store.DeleteMyAccount(context.Background())

		require.False(t, navigate)
		require.True(t, errors.Is(err, apperrors.ErrRequestFailed))
		require.EqualError(t, err, session.MsgSessionNotCleared)
		require.Equal(t, session.Anonymous, store.State())
	})
}

type failingGetRepo struct {
	tokenstore.Repo
}

func (r *failingGetRepo) Get(context.Context, string) (string, error) {
	return "", errors.New("database is locked")
}

func TestUpdateAccount_TokenStoreFailureHidesDetail(t *testing.T) {
	f := setupTestFixture(t)
	client, err := apiclient.New(f.api.URL())
	require.NoError(t, err)
	store := session.New(client, &failingGetRepo{Repo: f.tokens}, testTabID)

	err = store.UpdateAccount(context.Background(), "Ana Lima")

	require.True(t, errors.Is(err, apperrors.ErrRequestFailed))
	require.EqualError(t, err, session.MsgSessionStore)
	require.NotContains(t, err.Error(), "database is locked")
	require.Empty(t, f.api.Requests())
}

func TestReloadProfile_401SignsOut(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)
	f.api.ForceStatus["GET "+apiclient.PathProfile] = http.StatusUnauthorized

	err := f.store.ReloadProfile(context.Background())

	require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
	f.requireSignedOut(t)
}

func TestSignOut(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	f.store.SignOut(context.Background())

	f.requireSignedOut(t)
}

type failingDeleteRepo struct {
	tokenstore.Repo
}

func (r *failingDeleteRepo) Delete(context.Context, string) error {
	return errors.New("disk full")
}
