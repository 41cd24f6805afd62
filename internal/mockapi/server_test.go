package mockapi

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h http.Handler, method, path, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID > 0 {
		req.Header.Set(HeaderUserID, strconv.FormatInt(userID, 10))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLoginShapes(t *testing.T) {
	s := New()
	s.AddUser("A", "a@b.com", "x", RoleAdmin)
	h := s.Handler()
	body := `{"email":"a@b.com","password":"x"}`

	cases := []struct {
		shape LoginShape
		path  string
		want  string
	}{
		{ShapeNested, "role.role_name", "Admin"},
		{ShapeRoleIDOnly, "role_id", "2"},
		{ShapeCamel, "roleName", "Admin"},
	}
	for _, tc := range cases {
		s.SetLoginShape(tc.shape)
		rec := serve(t, h, http.MethodPost, "/api/auth/login", body, 0)
		if rec.Code != http.StatusOK {
			t.Fatalf("shape %d: status %d", tc.shape, rec.Code)
		}
		if got := gjson.Get(rec.Body.String(), tc.path).String(); got != tc.want {
			t.Errorf("shape %d: %s = %q, want %q", tc.shape, tc.path, got, tc.want)
		}
	}
	if s.loginShape != ShapeCamel {
		t.Fatalf("shape not retained")
	}
	s.SetLoginShape(ShapeRoleIDOnly)
	rec := serve(t, h, http.MethodPost, "/api/auth/login", body, 0)
	if gjson.Get(rec.Body.String(), "role").Exists() {
		t.Fatalf("role-id-only shape must not carry a role object")
	}
}

func TestAdminOnlyRoutes(t *testing.T) {
	s := New()
	admin := s.AddUser("Admin", "admin@b.com", "x", RoleAdmin)
	donor := s.AddUser("Donor", "donor@b.com", "x", RoleDonor)
	h := s.Handler()
	pet := `{"name":"Rex","age":2,"addedBy":{"user_id":` + strconv.FormatInt(admin, 10) + `}}`

	if rec := serve(t, h, http.MethodPost, "/api/pets", pet, 0); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status %d", rec.Code)
	}
	rec := serve(t, h, http.MethodPost, "/api/pets", pet, donor)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("donor: status %d", rec.Code)
	}
	if msg := gjson.Get(rec.Body.String(), "message").String(); msg != "insufficient permissions" {
		t.Fatalf("donor: message %q", msg)
	}
	if rec := serve(t, h, http.MethodPost, "/api/pets", pet, admin); rec.Code != http.StatusCreated {
		t.Fatalf("admin: status %d body %s", rec.Code, rec.Body.String())
	}
	if rec := serve(t, h, http.MethodGet, "/api/donations", "", donor); rec.Code != http.StatusForbidden {
		t.Fatalf("donor list donations: status %d", rec.Code)
	}
	if rec := serve(t, h, http.MethodGet, "/api/pets", "", 0); rec.Code != http.StatusOK {
		t.Fatalf("public listing: status %d", rec.Code)
	}
}

func TestCreatePetRequiresExistingAddedBy(t *testing.T) {
	s := New()
	admin := s.AddUser("Admin", "admin@b.com", "x", RoleAdmin)
	h := s.Handler()
	for _, body := range []string{
		`{"name":"Rex","age":1,"addedBy":{"user_id":99}}`,
		`{"name":"Rex","addedBy":{"user_id":1}}`,
	} {
		if rec := serve(t, h, http.MethodPost, "/api/pets", body, admin); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", body, rec.Code)
		}
	}
}

func TestHitsAndFailures(t *testing.T) {
	s := New()
	h := s.Handler()
	route := Route(http.MethodGet, "/api/roles")

	serve(t, h, http.MethodGet, "/api/roles", "", 0)
	s.Fail(route, http.StatusServiceUnavailable, "maintenance")
	rec := serve(t, h, http.MethodGet, "/api/roles", "", 0)
	if rec.Code != http.StatusServiceUnavailable || gjson.Get(rec.Body.String(), "message").String() != "maintenance" {
		t.Fatalf("failure not injected: %d %s", rec.Code, rec.Body.String())
	}
	s.Recover(route)
	rec = serve(t, h, http.MethodGet, "/api/roles", "", 0)
	if rec.Code != http.StatusOK || len(gjson.Parse(rec.Body.String()).Array()) != 3 {
		t.Fatalf("roles after recover: %d %s", rec.Code, rec.Body.String())
	}
	if got := s.Hits(route); got != 3 {
		t.Fatalf("hits = %d", got)
	}
	if got := s.Hits(Route(http.MethodGet, "/api/pets/:id")); got != 0 {
		t.Fatalf("unrelated hits = %d", got)
	}
}

func TestDonationCreatesReceipt(t *testing.T) {
	s := New()
	donor := s.AddUser("Ana", "ana@b.com", "x", RoleDonor)
	pet := s.AddPet("Bruno", "Dog", "Available")
	h := s.Handler()

	body := `{"amount":99.5,"payment_method":"PayPal","status":"Completed","user":{"user_id":` +
		strconv.FormatInt(donor, 10) + `},"pet":{"pet_id":` + strconv.FormatInt(pet, 10) + `}}`
	rec := serve(t, h, http.MethodPost, "/api/donations", body, 0)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	id := gjson.Get(rec.Body.String(), "donation_id").Int()

	rec = serve(t, h, http.MethodGet, "/api/donations/"+strconv.FormatInt(id, 10)+"/receipt", "", 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("receipt: %d", rec.Code)
	}
	receipt := gjson.Parse(rec.Body.String())
	if !regexp.MustCompile(`^REC-1-\d{14}$`).MatchString(receipt.Get("receipt_number").String()) {
		t.Fatalf("receipt number = %q", receipt.Get("receipt_number").String())
	}
	if receipt.Get("donation.pet.name").String() != "Bruno" || receipt.Get("donor_name").String() != "Ana" {
		t.Fatalf("unexpected receipt %s", rec.Body.String())
	}

	if rec := serve(t, h, http.MethodPost, "/api/donations", `{"amount":1}`, 0); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing user: status %d", rec.Code)
	}
	if rec := serve(t, h, http.MethodGet, "/api/donations/42/receipt", "", 0); rec.Code != http.StatusNotFound {
		t.Fatalf("missing receipt: status %d", rec.Code)
	}
}

func TestSeed(t *testing.T) {
	s := New()
	s.Seed()
	h := s.Handler()
	for _, a := range DemoAccounts {
		body := `{"email":"` + a.Email + `","password":"` + a.Password + `"}`
		if rec := serve(t, h, http.MethodPost, "/api/auth/login", body, 0); rec.Code != http.StatusOK {
			t.Errorf("login %s: status %d", a.Email, rec.Code)
		}
	}
	rec := serve(t, h, http.MethodGet, "/api/pets?status=available", "", 0)
	if n := len(gjson.Parse(rec.Body.String()).Array()); n != 2 {
		t.Fatalf("available pets = %d", n)
	}
}
