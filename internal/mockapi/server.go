// Package mockapi is an in-memory reference implementation of the
// Pawsitive Drive REST API. It backs the client tests and
// cmd/pawsitive-mock, and is where administrative mutations are actually
// authorized.
package mockapi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawsitive-drive/pawsitive/internal/api"
)

// Seeded role ids.
const (
	RoleDonor   int64 = 1
	RoleAdmin   int64 = 2
	RoleAdoptor int64 = 3
)

// LoginShape selects how login/signup responses describe the user's role.
type LoginShape int

const (
	// ShapeNested returns role as {"role_id", "role_name"}.
	ShapeNested LoginShape = iota
	// ShapeRoleIDOnly returns only a top-level role_id.
	ShapeRoleIDOnly
	// ShapeCamel returns top-level roleId and roleName.
	ShapeCamel
)

type user struct {
	ID            int64
	Name          string
	Email         string
	Password      string
	RoleID        int64
	Status        string
	ContactNumber string
	Address       string
	CreatedAt     time.Time
}

type failure struct {
	status  int
	message string
}

// Server holds the backend state. All methods are safe for concurrent use.
type Server struct {
	mu           sync.Mutex
	roles        []api.RoleRecord
	users        map[int64]*user
	pets         map[int64]*api.Pet
	applications map[int64]*api.Application
	donations    map[int64]*api.Donation
	receipts     map[int64]*api.Receipt
	profiles     map[int64]*api.Profile
	nextID       map[string]int64
	loginShape   LoginShape
	failures     map[string]failure
	hits         map[string]int
	uploadBase   string
}

// New returns a server seeded with the Donor, Admin and Adoptor roles.
func New() *Server {
	return &Server{
		roles: []api.RoleRecord{
			{RoleID: RoleDonor, RoleName: "Donor"},
			{RoleID: RoleAdmin, RoleName: "Admin"},
			{RoleID: RoleAdoptor, RoleName: "Adoptor"},
		},
		users:        make(map[int64]*user),
		pets:         make(map[int64]*api.Pet),
		applications: make(map[int64]*api.Application),
		donations:    make(map[int64]*api.Donation),
		receipts:     make(map[int64]*api.Receipt),
		profiles:     make(map[int64]*api.Profile),
		nextID:       make(map[string]int64),
		failures:     make(map[string]failure),
		hits:         make(map[string]int),
		uploadBase:   "http://localhost:8080/uploads",
	}
}

// Route formats the key used by Hits and Fail, e.g. Route("POST", "/api/donations").
// Paths use gin's parameter syntax: "/api/donations/:id/receipt".
func Route(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// Hits returns how many requests reached route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// Fail makes every request to route answer with status. An empty message
// produces an empty body.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

// Recover removes a failure installed with Fail.
func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// SetLoginShape changes the login/signup response shape.
func (s *Server) SetLoginShape(shape LoginShape) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginShape = shape
}

// AddUser registers a user directly and returns its id.
func (s *Server) AddUser(name, email, password string, roleID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{
		ID:        s.allocate("user"),
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  password,
		RoleID:    roleID,
		Status:    "active",
		CreatedAt: time.Now(),
	}
	s.users[u.ID] = u
	return u.ID
}

// AddPet inserts a pet directly and returns its id.
func (s *Server) AddPet(name, species, status string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &api.Pet{
		PetID:     s.allocate("pet"),
		Name:      name,
		Species:   species,
		Status:    status,
		CreatedAt: api.Timestamp(time.Now().Format("2006-01-02T15:04:05")),
	}
	s.pets[p.PetID] = p
	return p.PetID
}

// Donations returns a copy of every stored donation.
func (s *Server) Donations() []api.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Donation, 0, len(s.donations))
	for _, d := range s.donations {
		out = append(out, *d)
	}
	return out
}

// Pet returns a copy of a stored pet.
func (s *Server) Pet(id int64) (api.Pet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pets[id]
	if !ok {
		return api.Pet{}, false
	}
	return *p, true
}

// allocate must be called with s.mu held.
func (s *Server) allocate(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

// roleName must be called with s.mu held.
func (s *Server) roleName(id int64) string {
	for _, r := range s.roles {
		if r.RoleID == id {
			return r.RoleName
		}
	}
	return ""
}

// identityBody renders u the way login and signup do.
// Must be called with s.mu held.
func (s *Server) identityBody(u *user) gin.H {
	body := gin.H{
		"user_id":        u.ID,
		"name":           u.Name,
		"email":          u.Email,
		"status":         u.Status,
		"contact_number": u.ContactNumber,
		"address":        u.Address,
		"created_at":     u.CreatedAt.Format("2006-01-02T15:04:05"),
	}
	switch s.loginShape {
	case ShapeRoleIDOnly:
		body["role_id"] = u.RoleID
	case ShapeCamel:
		body["roleId"] = u.RoleID
		body["roleName"] = s.roleName(u.RoleID)
	default:
		body["role"] = gin.H{"role_id": u.RoleID, "role_name": s.roleName(u.RoleID)}
	}
	return body
}

func (u *user) ref() *api.UserRef {
	return &api.UserRef{UserID: u.ID, Name: u.Name, Email: u.Email}
}

func receiptNumber(donationID int64, at time.Time) string {
	return fmt.Sprintf("REC-%d-%s", donationID, at.Format("20060102150405"))
}

// SetUploadBase sets the URL prefix returned for uploaded files.
func (s *Server) SetUploadBase(base string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadBase = strings.TrimRight(base, "/")
}
