package di

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"blogclient/application/content"
	"blogclient/application/passwordreset"
	"blogclient/application/ports"
	"blogclient/application/session"
	"blogclient/infrastructure/api"
	"blogclient/infrastructure/config"
	"blogclient/infrastructure/storage"
	"blogclient/infrastructure/transport"
)

// Container holds all client dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Transport *transport.Client
	Watcher   *config.Watcher
	Session   *session.Manager
	Content   *content.Cache
	Reset     *passwordreset.Flow
}

// ProvideLogger creates the logger for the configured environment.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideTransport creates the HTTP client.
func ProvideTransport(cfg *config.Config, logger *zap.Logger) *transport.Client {
	return transport.NewClient(cfg, logger)
}

// ProvideConfigWatcher creates the hot-reload watcher. It is inert
// outside development, and keeps the transport pointed at the current
// base URL when the config file changes.
func ProvideConfigWatcher(cfg *config.Config, client *transport.Client, logger *zap.Logger) (*config.Watcher, error) {
	watcher, err := config.NewWatcher(cfg, os.Getenv("BLOG_CONFIG_FILE"), logger)
	if err != nil {
		return nil, err
	}
	watcher.OnChange(func(updated *config.Config) {
		client.SetBaseURL(updated.APIBaseURL)
	})
	return watcher, nil
}

// ProvideSessionStorage creates the durable session store.
func ProvideSessionStorage(cfg *config.Config, logger *zap.Logger) (ports.SessionStorage, error) {
	return storage.NewSessionStore(cfg.StateDir, logger)
}

// ProvideAuthAPI creates the authentication endpoint binding.
func ProvideAuthAPI(client *transport.Client) ports.AuthAPI {
	return api.NewAuthService(client)
}

// ProvideUserAPI creates the user endpoint binding.
func ProvideUserAPI(client *transport.Client) ports.UserAPI {
	return api.NewUserService(client)
}

// ProvidePostAPI creates the post endpoint binding.
func ProvidePostAPI(client *transport.Client) ports.PostAPI {
	return api.NewPostService(client)
}

// ProvideCommentAPI creates the comment endpoint binding.
func ProvideCommentAPI(client *transport.Client) ports.CommentAPI {
	return api.NewCommentService(client)
}

// ProvideFavoriteAPI creates the favorite endpoint binding.
func ProvideFavoriteAPI(client *transport.Client) ports.FavoriteAPI {
	return api.NewFavoriteService(client)
}

// ProvidePasswordResetAPI creates the reset endpoint binding.
func ProvidePasswordResetAPI(client *transport.Client) ports.PasswordResetAPI {
	return api.NewPasswordResetService(client)
}

// ProvideContentCache creates the content cache.
func ProvideContentCache(posts ports.PostAPI, comments ports.CommentAPI, favorites ports.FavoriteAPI, logger *zap.Logger) *content.Cache {
	return content.NewCache(posts, comments, favorites, logger)
}

// ProvideSessionManager creates the session manager wired to reload
// content after every hydration.
func ProvideSessionManager(
	store ports.SessionStorage,
	authAPI ports.AuthAPI,
	users ports.UserAPI,
	client *transport.Client,
	cache *content.Cache,
	logger *zap.Logger,
) *session.Manager {
	manager := session.NewManager(store, authAPI, users, client, logger)
	manager.OnAuthenticated(cache.LoadAll)
	return manager
}

// ProvideResetFlow creates the password-reset flow.
func ProvideResetFlow(resetAPI ports.PasswordResetAPI, logger *zap.Logger) *passwordreset.Flow {
	return passwordreset.NewFlow(resetAPI, logger)
}
