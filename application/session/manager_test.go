package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blogclient/domain/model"
	apperrors "blogclient/pkg/errors"
)

type fakeStorage struct {
	token    string
	userJSON string
	saves    int
	clears   int
}

func (f *fakeStorage) Load() (string, string, error) { return f.token, f.userJSON, nil }
func (f *fakeStorage) Save(token, userJSON string) error {
	f.token = token
	f.userJSON = userJSON
	f.saves++
	return nil
}
func (f *fakeStorage) Clear() error {
	f.token = ""
	f.userJSON = ""
	f.clears++
	return nil
}

type fakeAuthAPI struct {
	session   model.Session
	loginErr  error
	logoutErr error
	logouts   int
}

func (f *fakeAuthAPI) Login(_ context.Context, _, _ string) (model.Session, error) {
	return f.session, f.loginErr
}
func (f *fakeAuthAPI) Logout(_ context.Context) error {
	f.logouts++
	return f.logoutErr
}
func (f *fakeAuthAPI) Register(_ context.Context, name, email, _ string) (model.User, error) {
	return model.User{ID: 99, Name: name, Email: email}, nil
}

type fakeUserAPI struct {
	updated   model.User
	updateErr error
	deleteErr error
	deletes   int
}

func (f *fakeUserAPI) Get(_ context.Context, id int) (model.User, error) { return f.updated, nil }
func (f *fakeUserAPI) Update(_ context.Context, _ int, _, _ string) (model.User, error) {
	return f.updated, f.updateErr
}
func (f *fakeUserAPI) Delete(_ context.Context, _ int) error {
	f.deletes++
	return f.deleteErr
}

type fakeTokens struct {
	token string
}

func (f *fakeTokens) SetToken(token string) { f.token = token }
func (f *fakeTokens) ClearToken()           { f.token = "" }

func newTestManager(store *fakeStorage, authAPI *fakeAuthAPI, users *fakeUserAPI, tokens *fakeTokens) *Manager {
	return NewManager(store, authAPI, users, tokens, zap.NewNop())
}

func fixtureSession() model.Session {
	return model.Session{Token: "t1", User: model.User{ID: 1, Name: "A", Email: "a@b.com"}}
}

func TestLogin(t *testing.T) {
	t.Run("persists and hydrates, then fires the content load", func(t *testing.T) {
		store := &fakeStorage{}
		tokens := &fakeTokens{}
		m := newTestManager(store, &fakeAuthAPI{session: fixtureSession()}, &fakeUserAPI{}, tokens)

		loads := 0
		m.OnAuthenticated(func(context.Context) error {
			loads++
			return nil
		})

		require.NoError(t, m.Login(context.Background(), "a@b.com", "Secret1"))

		assert.Equal(t, "t1", store.token)
		assert.JSONEq(t, `{"id":1,"nome":"A","email":"a@b.com"}`, store.userJSON)
		assert.Equal(t, "t1", tokens.token)
		assert.Equal(t, 1, loads)

		sess, ok := m.Current()
		require.True(t, ok)
		assert.Equal(t, 1, sess.User.ID)
	})

	t.Run("rejects a malformed email before any request", func(t *testing.T) {
		authAPI := &fakeAuthAPI{loginErr: apperrors.NewInternalError("should not be called")}
		m := newTestManager(&fakeStorage{}, authAPI, &fakeUserAPI{}, &fakeTokens{})

		err := m.Login(context.Background(), "not-an-email", "Secret1")
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.False(t, m.IsAuthenticated())
	})

	t.Run("surfaces the server rejection verbatim", func(t *testing.T) {
		authAPI := &fakeAuthAPI{loginErr: apperrors.NewUnauthorizedError("credenciais invalidas")}
		m := newTestManager(&fakeStorage{}, authAPI, &fakeUserAPI{}, &fakeTokens{})

		err := m.Login(context.Background(), "a@b.com", "wrong")
		require.Error(t, err)
		assert.Equal(t, "credenciais invalidas", apperrors.GetAppError(err).Message)
	})
}

func TestRestore(t *testing.T) {
	userJSON := `{"id":1,"nome":"A","email":"a@b.com"}`

	t.Run("valid persisted pair hydrates the session", func(t *testing.T) {
		store := &fakeStorage{token: "t1", userJSON: userJSON}
		tokens := &fakeTokens{}
		m := newTestManager(store, &fakeAuthAPI{}, &fakeUserAPI{}, tokens)

		ok, err := m.Restore(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, m.IsAuthenticated())
		assert.Equal(t, "t1", tokens.token)
	})

	t.Run("rejects unusable stored values", func(t *testing.T) {
		for _, bad := range []string{"", "undefined", "null"} {
			store := &fakeStorage{token: bad, userJSON: userJSON}
			m := newTestManager(store, &fakeAuthAPI{}, &fakeUserAPI{}, &fakeTokens{})

			ok, err := m.Restore(context.Background())
			require.NoError(t, err)
			assert.False(t, ok, "token %q must not restore", bad)
			assert.False(t, m.IsAuthenticated())
			assert.Equal(t, 1, store.clears)
		}
	})

	t.Run("rejects a malformed user record", func(t *testing.T) {
		store := &fakeStorage{token: "t1", userJSON: "{broken"}
		m := newTestManager(store, &fakeAuthAPI{}, &fakeUserAPI{}, &fakeTokens{})

		ok, err := m.Restore(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, store.clears)
	})

	t.Run("rejects an expired jwt", func(t *testing.T) {
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(-time.Minute).Unix(),
		})
		signed, err := expired.SignedString([]byte("k"))
		require.NoError(t, err)

		store := &fakeStorage{token: signed, userJSON: userJSON}
		m := newTestManager(store, &fakeAuthAPI{}, &fakeUserAPI{}, &fakeTokens{})

		ok, err := m.Restore(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unauthorized content load forces logout", func(t *testing.T) {
		store := &fakeStorage{token: "t1", userJSON: userJSON}
		tokens := &fakeTokens{}
		m := newTestManager(store, &fakeAuthAPI{}, &fakeUserAPI{}, tokens)
		m.OnAuthenticated(func(context.Context) error {
			return apperrors.NewUnauthorizedError("token invalido")
		})

		ok, err := m.Restore(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, m.IsAuthenticated())
		assert.Empty(t, tokens.token)
		assert.Empty(t, store.token)
	})

	t.Run("transient content load failure keeps the session", func(t *testing.T) {
		store := &fakeStorage{token: "t1", userJSON: userJSON}
		m := newTestManager(store, &fakeAuthAPI{}, &fakeUserAPI{}, &fakeTokens{})
		m.OnAuthenticated(func(context.Context) error {
			return apperrors.NewNetworkError("connection refused", nil)
		})

		ok, err := m.Restore(context.Background())
		require.Error(t, err)
		assert.True(t, ok)
		assert.True(t, m.IsAuthenticated())
	})
}

func TestLogout(t *testing.T) {
	t.Run("clears state even when the server call fails", func(t *testing.T) {
		store := &fakeStorage{token: "t1", userJSON: `{"id":1}`}
		tokens := &fakeTokens{token: "t1"}
		authAPI := &fakeAuthAPI{logoutErr: apperrors.NewNetworkError("down", nil)}
		m := newTestManager(store, authAPI, &fakeUserAPI{}, tokens)
		m.hydrate(fixtureSession())

		m.Logout(context.Background())

		assert.Equal(t, 1, authAPI.logouts)
		assert.False(t, m.IsAuthenticated())
		assert.Empty(t, tokens.token)
		assert.Equal(t, 1, store.clears)
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("persists the updated record", func(t *testing.T) {
		store := &fakeStorage{}
		users := &fakeUserAPI{updated: model.User{ID: 1, Name: "Nova", Email: "nova@b.com"}}
		m := newTestManager(store, &fakeAuthAPI{}, users, &fakeTokens{})
		m.hydrate(fixtureSession())

		require.NoError(t, m.UpdateProfile(context.Background(), "Nova", "nova@b.com"))

		sess, ok := m.Current()
		require.True(t, ok)
		assert.Equal(t, "Nova", sess.User.Name)
		assert.JSONEq(t, `{"id":1,"nome":"Nova","email":"nova@b.com"}`, store.userJSON)
	})

	t.Run("requires a session", func(t *testing.T) {
		m := newTestManager(&fakeStorage{}, &fakeAuthAPI{}, &fakeUserAPI{}, &fakeTokens{})
		err := m.UpdateProfile(context.Background(), "Nova", "nova@b.com")
		assert.True(t, apperrors.IsUnauthorized(err))
	})
}

func TestDeleteAccount(t *testing.T) {
	t.Run("clears local state on success", func(t *testing.T) {
		store := &fakeStorage{token: "t1", userJSON: `{"id":1}`}
		users := &fakeUserAPI{}
		m := newTestManager(store, &fakeAuthAPI{}, users, &fakeTokens{})
		m.hydrate(fixtureSession())

		require.NoError(t, m.DeleteAccount(context.Background()))
		assert.Equal(t, 1, users.deletes)
		assert.False(t, m.IsAuthenticated())
	})

	t.Run("clears local state even when the server fails", func(t *testing.T) {
		store := &fakeStorage{token: "t1", userJSON: `{"id":1}`}
		users := &fakeUserAPI{deleteErr: apperrors.NewNetworkError("down", nil)}
		m := newTestManager(store, &fakeAuthAPI{}, users, &fakeTokens{})
		m.hydrate(fixtureSession())

		err := m.DeleteAccount(context.Background())
		require.Error(t, err)
		assert.False(t, m.IsAuthenticated())
		assert.Equal(t, 1, store.clears)
	})
}
