// Package session owns the authentication lifecycle: restoring a
// persisted session on startup, login/logout, profile updates and
// account deletion. The in-memory session and the persisted one move
// together; there is no state where only one of them is populated.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"blogclient/application/ports"
	"blogclient/domain/model"
	"blogclient/pkg/auth"
	apperrors "blogclient/pkg/errors"
	"blogclient/pkg/validate"
)

// Manager coordinates the session store, the transport token and the
// authentication endpoints.
type Manager struct {
	store  ports.SessionStorage
	auth   ports.AuthAPI
	users  ports.UserAPI
	tokens ports.TokenHolder
	logger *zap.Logger

	mu      sync.RWMutex
	session model.Session

	// onAuthenticated is fired after a session is hydrated (login or
	// restore); the coordinator uses it to trigger the content load.
	onAuthenticated func(ctx context.Context) error
}

// NewManager creates a session manager.
func NewManager(store ports.SessionStorage, authAPI ports.AuthAPI, users ports.UserAPI, tokens ports.TokenHolder, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		auth:   authAPI,
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// OnAuthenticated registers the hook fired after hydration.
func (m *Manager) OnAuthenticated(fn func(ctx context.Context) error) {
	m.onAuthenticated = fn
}

// Current returns the in-memory session.
func (m *Manager) Current() (model.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, m.session.Valid()
}

// IsAuthenticated reports whether a session is hydrated.
func (m *Manager) IsAuthenticated() bool {
	_, ok := m.Current()
	return ok
}

// Restore hydrates the session from durable storage on startup. Both
// persisted entries must be present, well-formed, and not the literal
// strings "undefined" or "null"; a JWT token must not be expired. Any
// malformed pair clears the persisted state and leaves the client
// unauthenticated.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	token, userJSON, err := m.store.Load()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read persisted session")
	}

	if !storedValueUsable(token) || !storedValueUsable(userJSON) {
		m.clearLocal()
		return false, nil
	}

	var user model.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil || user.ID == 0 {
		m.logger.Warn("Persisted user record is malformed; discarding session")
		m.clearLocal()
		return false, nil
	}

	if !auth.Usable(token) {
		m.logger.Info("Persisted token expired; discarding session")
		m.clearLocal()
		return false, nil
	}

	m.hydrate(model.Session{Token: token, User: user})
	m.logger.Info("Session restored",
		zap.Int("user_id", user.ID),
		zap.String("email", user.Email),
	)

	return m.fireAuthenticated(ctx)
}

// Login authenticates, persists the session and hydrates it.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := validate.Struct(validate.Credentials{Email: email, Password: password}); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	sess, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := m.persist(sess); err != nil {
		return err
	}
	m.hydrate(sess)

	m.logger.Info("Logged in", zap.Int("user_id", sess.User.ID))

	_, err = m.fireAuthenticated(ctx)
	return err
}

// Register creates a new account. The caller logs in afterwards.
func (m *Manager) Register(ctx context.Context, name, email, password string) (model.User, error) {
	if err := validate.Struct(validate.Registration{Name: name, Email: email, Password: password}); err != nil {
		return model.User{}, apperrors.NewValidationError(err.Error())
	}
	return m.auth.Register(ctx, name, email, password)
}

// Logout informs the server best-effort, then unconditionally clears
// the persisted and in-memory session and the transport token. A
// server failure is logged, never surfaced as blocking.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.auth.Logout(ctx); err != nil {
		m.logger.Warn("Server logout failed; clearing client state anyway", zap.Error(err))
	}
	m.clearLocal()
	m.logger.Info("Logged out")
}

// ForceLogout clears the session without a server round-trip. Used when
// a content load comes back unauthorized.
func (m *Manager) ForceLogout(reason string) {
	m.logger.Info("Forcing logout", zap.String("reason", reason))
	m.clearLocal()
}

// UpdateProfile replaces the account's name and email, then updates the
// in-memory and persisted user record.
func (m *Manager) UpdateProfile(ctx context.Context, name, email string) error {
	if err := validate.Struct(validate.Profile{Name: name, Email: email}); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	sess, ok := m.Current()
	if !ok {
		return apperrors.NewUnauthorizedError("not logged in")
	}

	updated, err := m.users.Update(ctx, sess.User.ID, name, email)
	if err != nil {
		return err
	}

	sess.User = updated
	if err := m.persist(sess); err != nil {
		return err
	}
	m.hydrate(sess)

	m.logger.Info("Profile updated", zap.Int("user_id", updated.ID))
	return nil
}

// DeleteAccount deletes the account server-side. The local session is
// cleared whether or not the call succeeds: a deletion attempt is
// terminal for the client.
func (m *Manager) DeleteAccount(ctx context.Context) error {
	sess, ok := m.Current()
	if !ok {
		return apperrors.NewUnauthorizedError("not logged in")
	}

	err := m.users.Delete(ctx, sess.User.ID)
	m.clearLocal()
	if err != nil {
		m.logger.Warn("Account deletion failed server-side; client state cleared regardless", zap.Error(err))
		return err
	}

	m.logger.Info("Account deleted", zap.Int("user_id", sess.User.ID))
	return nil
}

// hydrate installs the session in memory and on the transport.
func (m *Manager) hydrate(sess model.Session) {
	m.mu.Lock()
	m.session = sess
	m.mu.Unlock()
	m.tokens.SetToken(sess.Token)
}

// persist writes the session to durable storage.
func (m *Manager) persist(sess model.Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return apperrors.NewInternalError("failed to serialize user record").WithCause(err)
	}
	if err := m.store.Save(sess.Token, string(userJSON)); err != nil {
		return apperrors.Wrap(err, "failed to persist session")
	}
	return nil
}

// clearLocal drops the persisted session, the transport token and the
// in-memory state. Never fails; a storage error is logged.
func (m *Manager) clearLocal() {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("Failed to clear persisted session", zap.Error(err))
	}
	m.tokens.ClearToken()
	m.mu.Lock()
	m.session = model.Session{}
	m.mu.Unlock()
}

// fireAuthenticated runs the post-hydration hook. An unauthorized
// failure there means the token is stale after all: the session is
// cleared and the client lands unauthenticated. Transient failures
// leave the session in place and propagate.
func (m *Manager) fireAuthenticated(ctx context.Context) (bool, error) {
	if m.onAuthenticated == nil {
		return true, nil
	}
	if err := m.onAuthenticated(ctx); err != nil {
		if apperrors.IsUnauthorized(err) {
			m.ForceLogout("content load rejected the token")
			return false, nil
		}
		return true, err
	}
	return true, nil
}

// storedValueUsable rejects empty values and the literal "undefined" /
// "null" strings that a broken writer can leave behind.
func storedValueUsable(v string) bool {
	return v != "" && v != "undefined" && v != "null"
}
