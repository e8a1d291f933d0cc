package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/makita-adocao/makita-web/animals"
	"github.com/makita-adocao/makita-web/apiclient"
	"github.com/makita-adocao/makita-web/apiclient/apifake"
	apperrors "github.com/makita-adocao/makita-web/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const (
	testName     = "Ana Souza"
	testEmail    = "ana@example.com"
	testPassword = "Secret123"
)

type testFixture struct {
	api      *apifake.FakeAPI
	client   *apiclient.Client
	registry *prometheus.Registry
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	api := apifake.New(t)
	api.AddUser(testName, testEmail, testPassword)
	api.AddAnimal(animals.Animal{ID: 1, Name: "Rex", Description: "Brincalhao", Species: "cachorro", Sex: "macho"})
	api.AddAnimal(animals.Animal{ID: 2, Name: "Mia", Description: "Calma", Species: "gato", Sex: "fêmea"})
	api.AddAnimal(animals.Animal{ID: 3, Name: "Luna", Description: "Adora criancas", Species: "cachorro", Sex: "fêmea"})

	registry := prometheus.NewRegistry()
	client, err := apiclient.New(api.URL(), apiclient.WithMetrics(apiclient.NewMetrics(registry)))
	require.NoError(t, err)

	return &testFixture{api: api, client: client, registry: registry}
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := apiclient.New("/api")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be absolute")
}

func TestListAnimals(t *testing.T) {
	f := setupTestFixture(t)

	list, err := f.client.ListAnimals(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, 3, list[0].ID, "newest first")
	reqs := f.api.RequestsTo(http.MethodGet, apiclient.PathAnimals)
	require.Len(t, reqs, 1)
	require.Empty(t, reqs[0].Query)
	require.Empty(t, reqs[0].Authorization)
}

func TestSearchAnimals_SendsParams(t *testing.T) {
	f := setupTestFixture(t)

	list, err := f.client.SearchAnimals(context.Background(), url.Values{"species": {"cachorro"}})

	require.NoError(t, err)
	require.Len(t, list, 2)
	reqs := f.api.RequestsTo(http.MethodGet, apiclient.PathAnimals)
	require.Equal(t, "species=cachorro", reqs[0].Query)
}

func TestGetAnimal_NotFound(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.client.GetAnimal(context.Background(), 99)

	require.Error(t, err)
	require.True(t, errors.Is(err, apperrors.ErrNotFound))
	require.Equal(t, apiclient.KindNotFound, apiclient.KindOf(err))
	require.Equal(t, "Animal nao encontrado", err.Error())
}

func TestLogin_AndProfileUseBearer(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	token, err := f.client.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := f.client.Profile(ctx, token)
	require.NoError(t, err)
	require.Equal(t, testName, user.Name)
	require.Equal(t, testEmail, user.Email)

	reqs := f.api.RequestsTo(http.MethodGet, apiclient.PathProfile)
	require.Len(t, reqs, 1)
	require.Equal(t, "Bearer "+token, reqs[0].Authorization)
}

func TestLogin_InvalidCredentialsCarriesServerMessage(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.client.Login(context.Background(), testEmail, "wrong")

	require.Error(t, err)
	require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
	require.Equal(t, "Credenciais invalidas", err.Error())
}

func TestRegister_ConflictIsRequestFailed(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.client.Register(context.Background(), "Other", testEmail, "x")

	require.Error(t, err)
	require.Equal(t, apiclient.KindRequestFailed, apiclient.KindOf(err))
	require.Equal(t, "E-mail ja cadastrado", err.Error())
}

func TestResetPassword_GenericMessage(t *testing.T) {
	f := setupTestFixture(t)

	err := f.client.ResetPassword(context.Background(), "bogus", "NewSecret1")

	require.Error(t, err)
	require.Equal(t, apiclient.ResetPasswordFailedMessage, err.Error())
	require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
}

func TestUpdateAndDeleteProfile(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	token := f.api.IssueToken(testEmail)

	name, err := f.client.UpdateProfile(ctx, token, "Ana Lima")
	require.NoError(t, err)
	require.Equal(t, "Ana Lima", name)

	require.NoError(t, f.client.DeleteProfile(ctx, token))
	_, _, ok := f.api.User(testEmail)
	require.False(t, ok)
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    apiclient.Kind
		target  error
		message string
	}{
		{"401", http.StatusUnauthorized, `{"message":"expired"}`, apiclient.KindUnauthenticated, apperrors.ErrUnauthenticated, "expired"},
		{"403", http.StatusForbidden, ``, apiclient.KindForbidden, apperrors.ErrForbidden, "You are not allowed to perform this action."},
		{"404", http.StatusNotFound, `{"message":"gone"}`, apiclient.KindNotFound, apperrors.ErrNotFound, "gone"},
		{"500 with error field", http.StatusInternalServerError, `{"error":"boom"}`, apiclient.KindRequestFailed, apperrors.ErrRequestFailed, "boom"},
		{"409 without body", http.StatusConflict, `not json`, apiclient.KindRequestFailed, apperrors.ErrRequestFailed, "The request could not be completed."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := apiclient.New(srv.URL)
			require.NoError(t, err)

			err = client.Do(context.Background(), apiclient.Request{Op: "test", Method: http.MethodGet, Path: "/x"}, nil)

			require.Error(t, err)
			require.Equal(t, tt.kind, apiclient.KindOf(err))
			require.True(t, errors.Is(err, tt.target))
			require.Equal(t, tt.message, err.Error())
		})
	}
}

func TestTransportErrors(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"id":`))
		}))
		defer srv.Close()
		client, err := apiclient.New(srv.URL)
		require.NoError(t, err)

		_, err = client.ListAnimals(context.Background())

		require.True(t, errors.Is(err, apperrors.ErrTransport))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()
		client, err := apiclient.New(addr)
		require.NoError(t, err)

		_, err = client.ListAnimals(context.Background())

		require.Equal(t, apiclient.KindTransport, apiclient.KindOf(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.client.ListAnimals(ctx)

		require.True(t, errors.Is(err, apperrors.ErrTransport))
		require.True(t, errors.Is(err, context.Canceled))
	})
}

func TestOptions_TimeoutLeavesCallerClientUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	hc := &http.Client{}
	client, err := apiclient.New(srv.URL, apiclient.WithHTTPClient(hc), apiclient.WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = client.ListAnimals(context.Background())

	require.Equal(t, apiclient.KindTransport, apiclient.KindOf(err))
	require.Zero(t, hc.Timeout)
}

func TestOptions_NilHTTPClientKeepsDefault(t *testing.T) {
	f := setupTestFixture(t)
	client, err := apiclient.New(f.api.URL(), apiclient.WithHTTPClient(nil), apiclient.WithTimeout(5*time.Second))
	require.NoError(t, err)

	list, err := client.ListAnimals(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 3)
}

func TestMetricsRecorded(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.client.ListAnimals(ctx)
	require.NoError(t, err)
	_, err = f.client.GetAnimal(ctx, 42)
	require.Error(t, err)

	count, err := testutil.GatherAndCount(f.registry, "makita_api_requests_total")
	require.NoError(t, err)
	require.Equal(t, 2, count, "one series per op/outcome pair")
}
