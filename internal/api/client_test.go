package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/pawsitive-drive/pawsitive/internal/mockapi"
	"github.com/tidwall/gjson"
)

func newBackend(t *testing.T) (*mockapi.Server, *api.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	backend := mockapi.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return backend, api.NewClient(srv.URL+"/api", 5*time.Second)
}

func TestLoginReturnsIdentityBody(t *testing.T) {
	backend, client := newBackend(t)
	backend.AddUser("A", "a@b.com", "x", mockapi.RoleAdmin)

	body, err := client.Login(context.Background(), "A@B.com", "x")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := gjson.GetBytes(body, "user_id").Int(); got != 1 {
		t.Fatalf("user_id = %d", got)
	}
	if got := gjson.GetBytes(body, "role.role_name").String(); got != "Admin" {
		t.Fatalf("role name = %q", got)
	}
}

func TestServerErrorCarriesMessage(t *testing.T) {
	_, client := newBackend(t)

	_, err := client.Login(context.Background(), "nobody@b.com", "x")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %T %v", err, err)
	}
	if apiErr.Kind != api.KindServer || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	if got := api.Message(err, "Login failed"); got != "Invalid credentials" {
		t.Fatalf("message = %q", got)
	}
}

func TestMessageFallbackChain(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"messageField", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Email already registered","error":"Conflict"}`))
		}, "Email already registered"},
		{"errorField", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
		}, "Internal Server Error"},
		{"emptyBody", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}, "Registration failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			client := api.NewClient(srv.URL, time.Second)
			_, err := client.Signup(context.Background(), api.SignupRequest{Name: "A", Email: "a@b.com", Password: "x"})
			if got := api.Message(err, "Registration failed"); got != tc.want {
				t.Fatalf("message = %q, want %q", got, tc.want)
			}
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		client := api.NewClient(url, time.Second)
		_, err := client.Login(context.Background(), "a@b.com", "x")
		if got := api.Message(err, "Login failed"); got != api.UnreachableMessage {
			t.Fatalf("message = %q", got)
		}
	})

	t.Run("nonAPIError", func(t *testing.T) {
		if got := api.Message(errors.New("boom"), "Login failed"); got != api.NetworkMessage {
			t.Fatalf("message = %q", got)
		}
	})
}

func TestSignupSendsContactNumber(t *testing.T) {
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"user_id":3}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, time.Second)
	_, err := client.Signup(context.Background(), api.SignupRequest{
		Name: "A", Email: "a@b.com", Password: "x", Role: "Donor", Address: "Cebu", Contact: "0917",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if got := gjson.GetBytes(captured, "contact_number").String(); got != "0917" {
		t.Fatalf("contact_number = %q in %s", got, captured)
	}
	if gjson.GetBytes(captured, "contact").Exists() {
		t.Fatalf("unexpected contact field in %s", captured)
	}
}

func TestDonationLifecycle(t *testing.T) {
	backend, client := newBackend(t)
	userID := backend.AddUser("A", "a@b.com", "x", mockapi.RoleDonor)
	petID := backend.AddPet("Buddy", "Dog", "Available")
	ctx := context.Background()

	donation, err := client.CreateDonation(ctx, api.DonationRequest{
		Amount: 250.5, PaymentMethod: "Credit Card", Status: "Completed", UserID: userID, PetID: petID,
	})
	if err != nil {
		t.Fatalf("create donation: %v", err)
	}
	if donation.Pet == nil || donation.Pet.PetID != petID {
		t.Fatalf("pet reference missing: %+v", donation)
	}

	receipt, err := client.GetReceipt(ctx, donation.DonationID)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if !strings.HasPrefix(receipt.ReceiptNumber, "REC-1-") || receipt.DonorEmail != "a@b.com" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	mine, err := client.ListUserDonations(ctx, userID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("user donations: %v %+v", err, mine)
	}
}

func TestPrincipalHeaderAndAdminEnforcement(t *testing.T) {
	backend, client := newBackend(t)
	donor := backend.AddUser("D", "d@b.com", "x", mockapi.RoleDonor)
	admin := backend.AddUser("Z", "z@b.com", "x", mockapi.RoleAdmin)
	ctx := context.Background()

	_, err := client.CreatePet(ctx, api.PetInput{Name: "Rex", Age: 2, Status: "Available"}, donor)
	if api.StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %v", err)
	}

	client.SetPrincipal(func() int64 { return donor })
	_, err = client.CreatePet(ctx, api.PetInput{Name: "Rex", Age: 2, Status: "Available"}, donor)
	if api.StatusCode(err) != http.StatusForbidden {
		t.Fatalf("expected 403 for donor, got %v", err)
	}

	client.SetPrincipal(func() int64 { return admin })
	pet, err := client.CreatePet(ctx, api.PetInput{Name: "Rex", Age: 2, Status: "Available"}, admin)
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	pet.Status = "Pending"
	updated, err := client.UpdatePet(ctx, *pet)
	if err != nil || updated.Status != "Pending" {
		t.Fatalf("update: %v %+v", err, updated)
	}
	if err := client.DeletePet(ctx, pet.PetID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := client.GetPet(ctx, pet.PetID); api.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %v", err)
	}
}

func TestUploadReturnsURL(t *testing.T) {
	backend, client := newBackend(t)
	userID := backend.AddUser("A", "a@b.com", "x", mockapi.RoleDonor)
	client.SetPrincipal(func() int64 { return userID })

	result, err := client.UploadProfileImage(context.Background(), "me.PNG", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasSuffix(result.URL, ".png") || result.Filename == "" {
		t.Fatalf("unexpected upload result: %+v", result)
	}
}

func TestTimestampDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pet_id":1,"name":"Rex","created_at":[2025,3,4,5,6,7,123]}`))
	}))
	defer srv.Close()
	client := api.NewClient(srv.URL, time.Second)
	pet, err := client.GetPet(context.Background(), 1)
	if err != nil {
		t.Fatalf("get pet: %v", err)
	}
	if pet.CreatedAt != "2025-03-04T05:06:07" {
		t.Fatalf("created_at = %q", pet.CreatedAt)
	}
}
