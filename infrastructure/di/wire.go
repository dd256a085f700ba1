//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"blogclient/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideTransport,
	ProvideConfigWatcher,
	ProvideSessionStorage,
	ProvideAuthAPI,
	ProvideUserAPI,
	ProvidePostAPI,
	ProvideCommentAPI,
	ProvideFavoriteAPI,
	ProvidePasswordResetAPI,
	ProvideContentCache,
	ProvideSessionManager,
	ProvideResetFlow,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
