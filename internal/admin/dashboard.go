package admin

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pawsitive-drive/pawsitive/internal/api"
	log "github.com/sirupsen/logrus"
)

// Backend is the subset of the API client the dashboard needs.
type Backend interface {
	ListPets(ctx context.Context, status string) ([]api.Pet, error)
	GetPet(ctx context.Context, petID int64) (*api.Pet, error)
	CreatePet(ctx context.Context, in api.PetInput, addedBy int64) (*api.Pet, error)
	UpdatePet(ctx context.Context, pet api.Pet) (*api.Pet, error)
	DeletePet(ctx context.Context, petID int64) error
	UploadPetImage(ctx context.Context, filename string, r io.Reader) (*api.UploadResult, error)
	ListApplications(ctx context.Context) ([]api.Application, error)
	UpdateApplication(ctx context.Context, appID int64, status string, reviewedBy int64) (*api.Application, error)
	ListDonations(ctx context.Context) ([]api.Donation, error)
}

// Application review outcomes.
const (
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
	StatusPending  = "Pending"
)

// Pet statuses offered by the dashboard.
var PetStatuses = []string{"Available", "Pending", "Adopted"}

// Dashboard runs admin operations after checking the gate.
type Dashboard struct {
	gate    *Gate
	backend Backend
	logger  *log.Entry
}

// NewDashboard creates a dashboard.
func NewDashboard(gate *Gate, backend Backend) *Dashboard {
	return &Dashboard{gate: gate, backend: backend, logger: log.WithField("component", "admin")}
}

// Pets lists the whole catalog.
func (d *Dashboard) Pets(ctx context.Context) ([]api.Pet, error) {
	if _, err := d.gate.Require(ctx); err != nil {
		return nil, err
	}
	return d.backend.ListPets(ctx, "")
}

// AddPet creates a pet recorded as added by the signed-in admin. Status
// defaults to Available.
func (d *Dashboard) AddPet(ctx context.Context, in api.PetInput) (*api.Pet, error) {
	id, err := d.gate.Require(ctx)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("pet name is required")
	}
	if in.Status == "" {
		in.Status = PetStatuses[0]
	}
	pet, err := d.backend.CreatePet(ctx, in, id.UserID)
	if err != nil {
		return nil, err
	}
	d.logger.WithFields(log.Fields{"pet_id": pet.PetID, "admin_id": id.UserID}).Info("pet created")
	return pet, nil
}

// SetPetStatus changes a pet's status, keeping its other fields.
func (d *Dashboard) SetPetStatus(ctx context.Context, petID int64, status string) (*api.Pet, error) {
	if _, err := d.gate.Require(ctx); err != nil {
		return nil, err
	}
	pet, err := d.backend.GetPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	pet.Status = normalizeStatus(status)
	return d.backend.UpdatePet(ctx, *pet)
}

// DeletePet removes a pet.
func (d *Dashboard) DeletePet(ctx context.Context, petID int64) error {
	id, err := d.gate.Require(ctx)
	if err != nil {
		return err
	}
	if err := d.backend.DeletePet(ctx, petID); err != nil {
		return err
	}
	d.logger.WithFields(log.Fields{"pet_id": petID, "admin_id": id.UserID}).Info("pet deleted")
	return nil
}

// UploadPetImage uploads an image and returns its public URL.
func (d *Dashboard) UploadPetImage(ctx context.Context, filename string, r io.Reader) (*api.UploadResult, error) {
	if _, err := d.gate.Require(ctx); err != nil {
		return nil, err
	}
	return d.backend.UploadPetImage(ctx, filename, r)
}

// Applications lists every adoption application.
func (d *Dashboard) Applications(ctx context.Context) ([]api.Application, error) {
	if _, err := d.gate.Require(ctx); err != nil {
		return nil, err
	}
	return d.backend.ListApplications(ctx)
}

// ReviewApplication sets an application's status with the signed-in admin
// as reviewer.
func (d *Dashboard) ReviewApplication(ctx context.Context, appID int64, status string) (*api.Application, error) {
	id, err := d.gate.Require(ctx)
	if err != nil {
		return nil, err
	}
	app, err := d.backend.UpdateApplication(ctx, appID, normalizeStatus(status), id.UserID)
	if err != nil {
		return nil, err
	}
	d.logger.WithFields(log.Fields{"application_id": appID, "status": app.Status, "admin_id": id.UserID}).Info("application reviewed")
	return app, nil
}

// Donations lists every donation.
func (d *Dashboard) Donations(ctx context.Context) ([]api.Donation, error) {
	if _, err := d.gate.Require(ctx); err != nil {
		return nil, err
	}
	return d.backend.ListDonations(ctx)
}

// normalizeStatus title-cases s, so "approved" becomes "Approved".
func normalizeStatus(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
