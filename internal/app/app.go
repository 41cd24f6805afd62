// Package app assembles the client from configuration.
package app

import (
	"context"

	"github.com/pawsitive-drive/pawsitive/internal/admin"
	"github.com/pawsitive-drive/pawsitive/internal/adoption"
	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/pawsitive-drive/pawsitive/internal/auth"
	"github.com/pawsitive-drive/pawsitive/internal/config"
	"github.com/pawsitive-drive/pawsitive/internal/donation"
	"github.com/pawsitive-drive/pawsitive/internal/logging"
	"github.com/pawsitive-drive/pawsitive/internal/profile"
	"github.com/pawsitive-drive/pawsitive/internal/role"
	"github.com/pawsitive-drive/pawsitive/internal/session"
	"github.com/pawsitive-drive/pawsitive/internal/storage"
	log "github.com/sirupsen/logrus"
)

// App holds every client service, sharing one session store.
type App struct {
	Config    *config.Config
	State     *storage.FileStorage
	Session   *session.Store
	Client    *api.Client
	Roles     *role.Resolver
	Auth      *auth.Gateway
	Donations *donation.Flow
	Total     *donation.Total
	Gate      *admin.Gate
	Admin     *admin.Dashboard
	Adoption  *adoption.Catalog
	Profile   *profile.Service
}

// Load reads the config file at path, configures logging and builds the app.
func Load(path string) (*App, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		return nil, err
	}
	return New(cfg), nil
}

// New builds the app from cfg. The persisted identity is read immediately.
func New(cfg *config.Config) *App {
	state := storage.NewFileStorage(cfg.StateDir)
	store := session.NewStore(state)
	store.Initialize()

	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	client.SetPrincipal(func() int64 {
		if id := store.Get(); id != nil {
			return id.UserID
		}
		return 0
	})

	roles := role.NewResolver(client, cfg.AdminRoleIDs)
	total := donation.NewTotal(state)
	gate := admin.NewGate(store, roles)

	log.WithFields(log.Fields{
		"api":   cfg.APIBaseURL,
		"state": state.Path(),
	}).Debug("client initialized")

	return &App{
		Config:    cfg,
		State:     state,
		Session:   store,
		Client:    client,
		Roles:     roles,
		Auth:      auth.NewGateway(client, roles, store),
		Donations: donation.NewFlow(store, client, total),
		Total:     total,
		Gate:      gate,
		Admin:     admin.NewDashboard(gate, client),
		Adoption:  adoption.NewCatalog(store, client),
		Profile:   profile.NewService(store, client),
	}
}

// Start begins role hydration of the persisted identity. Cancelling ctx
// discards a hydration that has not yet written. The returned function
// waits for it to finish.
func (a *App) Start(ctx context.Context) (wait func()) {
	return a.Roles.HydrateAsync(ctx, a.Session)
}

// Watch reloads the session whenever another process changes the state
// file, and hydrates the reloaded identity. It blocks until ctx is done.
func (a *App) Watch(ctx context.Context) error {
	return a.State.Watch(ctx, func() {
		a.Session.Reload()
		a.Roles.Hydrate(ctx, a.Session)
	})
}
