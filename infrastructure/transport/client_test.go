package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blogclient/infrastructure/config"
	apperrors "blogclient/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler, breaker bool) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		APIBaseURL:     srv.URL,
		RequestTimeout: 5 * time.Second,
		BreakerEnabled: breaker,
	}
	return NewClient(cfg, zap.NewNop()), srv
}

func TestClientRequestHeaders(t *testing.T) {
	var got http.Header
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	}), false)

	t.Run("without token", func(t *testing.T) {
		require.NoError(t, client.Get(context.Background(), "/api/publicacoes", nil))
		assert.Empty(t, got.Get("Authorization"))
		assert.Equal(t, "application/json", got.Get("Accept"))
		assert.NotEmpty(t, got.Get("X-Request-ID"))
	})

	t.Run("with token", func(t *testing.T) {
		client.SetToken("t1")
		require.NoError(t, client.Get(context.Background(), "/api/publicacoes", nil))
		assert.Equal(t, "Bearer t1", got.Get("Authorization"))
	})

	t.Run("cleared token", func(t *testing.T) {
		client.ClearToken()
		require.NoError(t, client.Get(context.Background(), "/api/publicacoes", nil))
		assert.Empty(t, got.Get("Authorization"))
	})

	t.Run("request ids are unique", func(t *testing.T) {
		require.NoError(t, client.Get(context.Background(), "/api/publicacoes", nil))
		first := got.Get("X-Request-ID")
		require.NoError(t, client.Get(context.Background(), "/api/publicacoes", nil))
		assert.NotEqual(t, first, got.Get("X-Request-ID"))
	})
}

func TestClientStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
		msg    string
	}{
		{"not found", http.StatusNotFound, `{"error":"publicacao nao encontrada"}`, apperrors.IsNotFound, "publicacao nao encontrada"},
		{"unauthorized", http.StatusUnauthorized, `{"error":"token invalido"}`, apperrors.IsUnauthorized, "token invalido"},
		{"validation via message key", http.StatusUnprocessableEntity, `{"message":"titulo e obrigatorio"}`, apperrors.IsValidation, "titulo e obrigatorio"},
		{"forbidden", http.StatusForbidden, `{"error":"sem permissao"}`, apperrors.IsForbidden, "sem permissao"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}), false)

			err := client.Get(context.Background(), "/api/x", nil)
			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected error type: %v", err)

			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tc.msg, appErr.Message)
			assert.Equal(t, tc.status, appErr.HTTPStatus)
		})
	}
}

func TestClientTimeout(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}), false)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.Get(ctx, "/api/publicacoes", nil)
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeTimeout, appErr.Type)
}

func TestClientBreakerOpensAfterServerErrors(t *testing.T) {
	var hits int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}), true)

	// Five straight 5xx responses trip the breaker.
	for i := 0; i < 5; i++ {
		err := client.Get(context.Background(), "/api/publicacoes", nil)
		require.Error(t, err)
	}
	require.Equal(t, 5, hits)

	err := client.Get(context.Background(), "/api/publicacoes", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err), "expected the breaker to be open: %v", err)
	assert.Equal(t, 5, hits, "open breaker must not reach the server")
}

func TestClientDecodesResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"t1"}`))
	}), false)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, client.Post(context.Background(), "/api/login", map[string]string{"email": "a@b.com"}, &out))
	assert.Equal(t, "t1", out.Token)
}
