// Package adoption lists adoptable pets and files adoption applications
// for the signed-in user.
package adoption

import (
	"context"
	"errors"
	"strings"

	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/pawsitive-drive/pawsitive/internal/session"
	log "github.com/sirupsen/logrus"
)

// ErrNotSignedIn is returned by Apply and Mine without an identity.
var ErrNotSignedIn = errors.New("Please log in to adopt a pet.")

// StatusAvailable marks a pet that can be adopted.
const StatusAvailable = "Available"

// IdentitySource supplies the signed-in identity.
type IdentitySource interface {
	Get() *session.Identity
}

// Backend is the subset of the API client the catalog needs.
type Backend interface {
	ListPets(ctx context.Context, status string) ([]api.Pet, error)
	GetPet(ctx context.Context, petID int64) (*api.Pet, error)
	CreateApplication(ctx context.Context, petID, userID int64) (*api.Application, error)
	ListUserApplications(ctx context.Context, userID int64) ([]api.Application, error)
}

// Catalog exposes the adoption workflow.
type Catalog struct {
	identities IdentitySource
	backend    Backend
}

// NewCatalog creates a catalog.
func NewCatalog(identities IdentitySource, backend Backend) *Catalog {
	return &Catalog{identities: identities, backend: backend}
}

// Available lists pets whose status is Available, in any case.
func (c *Catalog) Available(ctx context.Context) ([]api.Pet, error) {
	pets, err := c.backend.ListPets(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]api.Pet, 0, len(pets))
	for _, p := range pets {
		if strings.EqualFold(strings.TrimSpace(p.Status), StatusAvailable) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Pet fetches a single pet.
func (c *Catalog) Pet(ctx context.Context, petID int64) (*api.Pet, error) {
	return c.backend.GetPet(ctx, petID)
}

// Apply files a pending application for petID on behalf of the signed-in user.
func (c *Catalog) Apply(ctx context.Context, petID int64) (*api.Application, error) {
	id := c.identities.Get()
	if id == nil {
		return nil, ErrNotSignedIn
	}
	app, err := c.backend.CreateApplication(ctx, petID, id.UserID)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"component":      "adoption",
		"application_id": app.ApplicationID,
		"pet_id":         petID,
		"user_id":        id.UserID,
	}).Info("adoption application submitted")
	return app, nil
}

// Mine lists the signed-in user's applications.
func (c *Catalog) Mine(ctx context.Context) ([]api.Application, error) {
	id := c.identities.Get()
	if id == nil {
		return nil, ErrNotSignedIn
	}
	return c.backend.ListUserApplications(ctx, id.UserID)
}
