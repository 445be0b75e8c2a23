// Package app wires the shared client services used by both front-ends.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	mavericks "github.com/ElarizT/Mavericks"
	"github.com/ElarizT/Mavericks/internal/config"
	"github.com/ElarizT/Mavericks/internal/credstore"
	"github.com/ElarizT/Mavericks/internal/realtime"
	"github.com/ElarizT/Mavericks/internal/repository"
	"github.com/ElarizT/Mavericks/internal/service"
)

type App struct {
	Cfg    *config.Config
	Creds  *credstore.Credentials
	API    *service.APIClient
	Auth   *service.AuthService
	Models *service.ModelService
	Files  *service.FileService
	Chats  *service.ChatService

	closeStore func()
}

// New opens the credential store and builds the services on top of it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	migrationsFS, err := fs.Sub(mavericks.MigrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}

	store, closeStore, err := repository.OpenCredentialStore(ctx, cfg, migrationsFS)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	creds := credstore.NewCredentials(store)
	api := service.NewAPIClient(cfg.APIBaseURL, cfg.HTTPTimeout, creds)
	modelsCache := service.NewModelsCache(config.ModelCacheDuration)

	api.OnUnauthorized(func() {
		slog.Warn("backend rejected the stored token, credentials cleared")
		modelsCache.Invalidate()
	})

	return &App{
		Cfg:        cfg,
		Creds:      creds,
		API:        api,
		Auth:       service.NewAuthService(api, creds),
		Models:     service.NewModelService(api, modelsCache),
		Files:      service.NewFileService(api),
		Chats:      service.NewChatService(api),
		closeStore: closeStore,
	}, nil
}

// NewSession builds an unstarted session controller with its own channel.
func (a *App) NewSession() *service.SessionController {
	channel := realtime.NewChannel(a.Cfg.WSURL, a.Creds)
	return service.NewSessionController(a.Auth, a.Models, a.Files, channel, service.SessionOptionsFromConfig(a.Cfg))
}

func (a *App) Close() {
	a.closeStore()
}
