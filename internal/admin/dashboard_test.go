package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/pawsitive-drive/pawsitive/internal/mockapi"
	"github.com/pawsitive-drive/pawsitive/internal/role"
	"github.com/pawsitive-drive/pawsitive/internal/session"
	"github.com/pawsitive-drive/pawsitive/internal/storage"
)

type fixture struct {
	backend   *mockapi.Server
	client    *api.Client
	store     *session.Store
	dashboard *Dashboard
	gate      *Gate
}

func newFixture(t *testing.T, checker Checker) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	backend := mockapi.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL+"/api", 5*time.Second)
	store := session.NewStore(storage.NewMemoryStorage())
	client.SetPrincipal(func() int64 {
		if id := store.Get(); id != nil {
			return id.UserID
		}
		return 0
	})
	if checker == nil {
		checker = role.NewResolver(client, []int64{mockapi.RoleAdmin})
	}
	gate := NewGate(store, checker)
	return &fixture{
		backend:   backend,
		client:    client,
		store:     store,
		gate:      gate,
		dashboard: NewDashboard(gate, client),
	}
}

func (f *fixture) signIn(t *testing.T, name string, roleID int64) int64 {
	t.Helper()
	userID := f.backend.AddUser(name, strings.ToLower(name)+"@b.com", "x", roleID)
	if err := f.store.Set(&session.Identity{UserID: userID, Name: name, Role: &session.Role{ID: roleID}}); err != nil {
		t.Fatal(err)
	}
	return userID
}

func TestGateDeniesNonAdmin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.dashboard.Pets(ctx); !errors.Is(err, ErrForbidden) {
		t.Fatalf("signed out: expected ErrForbidden, got %v", err)
	}

	f.signIn(t, "Donor", mockapi.RoleDonor)
	if f.gate.Allowed(ctx, f.store.Get()) {
		t.Fatalf("donor allowed")
	}
	if _, err := f.dashboard.AddPet(ctx, api.PetInput{Name: "Rex"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if n := f.backend.Hits(mockapi.Route(http.MethodPost, "/api/pets")); n != 0 {
		t.Fatalf("gated call reached the backend")
	}
}

func TestAdminPetLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.signIn(t, "Admin", mockapi.RoleAdmin)

	pet, err := f.dashboard.AddPet(ctx, api.PetInput{Name: " Rex ", Species: "Dog", Age: 3})
	if err != nil {
		t.Fatalf("add pet: %v", err)
	}
	if pet.Name != "Rex" || pet.Status != "Available" {
		t.Fatalf("unexpected pet %+v", pet)
	}

	updated, err := f.dashboard.SetPetStatus(ctx, pet.PetID, "pending")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != "Pending" || updated.Species != "Dog" || updated.Age != 3 {
		t.Fatalf("unexpected update %+v", updated)
	}

	upload, err := f.dashboard.UploadPetImage(ctx, "rex.PNG", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasSuffix(upload.URL, ".png") {
		t.Fatalf("upload url = %q", upload.URL)
	}

	pets, err := f.dashboard.Pets(ctx)
	if err != nil || len(pets) != 1 {
		t.Fatalf("pets = %v, %v", pets, err)
	}

	if err := f.dashboard.DeletePet(ctx, pet.PetID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := f.backend.Pet(pet.PetID); ok {
		t.Fatalf("pet still present")
	}
}

func TestAddPetRequiresName(t *testing.T) {
	f := newFixture(t, nil)
	f.signIn(t, "Admin", mockapi.RoleAdmin)
	if _, err := f.dashboard.AddPet(context.Background(), api.PetInput{Name: "  "}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestReviewApplicationApprovesAndAdopts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	adopter := f.backend.AddUser("Ben", "ben@b.com", "x", mockapi.RoleAdoptor)
	petID := f.backend.AddPet("Mochi", "Cat", "Available")
	app, err := f.client.CreateApplication(ctx, petID, adopter)
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	adminID := f.signIn(t, "Admin", mockapi.RoleAdmin)

	apps, err := f.dashboard.Applications(ctx)
	if err != nil || len(apps) != 1 {
		t.Fatalf("applications = %v, %v", apps, err)
	}

	reviewed, err := f.dashboard.ReviewApplication(ctx, app.ApplicationID, "approved")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != StatusApproved {
		t.Fatalf("status = %q", reviewed.Status)
	}
	if reviewed.ReviewedBy == nil || reviewed.ReviewedBy.UserID != adminID {
		t.Fatalf("reviewer = %+v", reviewed.ReviewedBy)
	}
	if pet, _ := f.backend.Pet(petID); pet.Status != "Adopted" {
		t.Fatalf("pet status = %q", pet.Status)
	}
}

func TestAdminDonations(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	donor := f.backend.AddUser("Ana", "ana@b.com", "x", mockapi.RoleDonor)
	if _, err := f.client.CreateDonation(ctx, api.DonationRequest{Amount: 10, PaymentMethod: "PayPal", Status: "Completed", UserID: donor}); err != nil {
		t.Fatal(err)
	}
	f.signIn(t, "Admin", mockapi.RoleAdmin)

	donations, err := f.dashboard.Donations(ctx)
	if err != nil || len(donations) != 1 {
		t.Fatalf("donations = %v, %v", donations, err)
	}
}

type allowAll struct{}

func (allowAll) IsAdmin(context.Context, *session.Identity) bool { return true }

func TestBackendEnforcesAdminRegardlessOfGate(t *testing.T) {
	f := newFixture(t, allowAll{})
	f.signIn(t, "Donor", mockapi.RoleDonor)

	_, err := f.dashboard.AddPet(context.Background(), api.PetInput{Name: "Rex"})
	if err == nil {
		t.Fatalf("backend accepted a mutation from a non-admin")
	}
	if api.StatusCode(err) != http.StatusForbidden {
		t.Fatalf("status = %d", api.StatusCode(err))
	}
	if got := api.Message(err, ""); got != "insufficient permissions" {
		t.Fatalf("message = %q", got)
	}
}
