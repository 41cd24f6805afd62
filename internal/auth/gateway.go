// Package auth performs login, signup and logout against the backend and
// publishes the resulting identity into the session store.
package auth

import (
	"context"
	"strings"

	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/pawsitive-drive/pawsitive/internal/session"
	log "github.com/sirupsen/logrus"
)

// DefaultSignupRole is used when a signup request names no role.
const DefaultSignupRole = "Donor"

const (
	loginFallback   = "Login failed"
	signupFallback  = "Registration failed"
	invalidResponse = "Invalid response from server"
)

// Backend is the subset of the API client the gateway needs.
type Backend interface {
	Login(ctx context.Context, email, password string) ([]byte, error)
	Signup(ctx context.Context, req api.SignupRequest) ([]byte, error)
}

// Enricher fills in role metadata on a freshly authenticated identity.
type Enricher interface {
	Enrich(ctx context.Context, id *session.Identity) *session.Identity
}

// Error is returned by Login and Signup. Message is safe to show to users.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Gateway holds no state beyond its collaborators.
type Gateway struct {
	backend  Backend
	enricher Enricher
	store    *session.Store

	// OnLogout, when set, runs after the store has been cleared.
	OnLogout func()
}

// NewGateway creates a gateway. enricher may be nil.
func NewGateway(backend Backend, enricher Enricher, store *session.Store) *Gateway {
	return &Gateway{backend: backend, enricher: enricher, store: store}
}

// Login authenticates and stores the resulting identity.
func (g *Gateway) Login(ctx context.Context, email, password string) (*session.Identity, error) {
	email = strings.TrimSpace(email)
	logger := log.WithFields(log.Fields{"component": "auth", "op": "login", "email": email})

	body, err := g.backend.Login(ctx, email, password)
	if err != nil {
		logger.WithError(err).Warn("login rejected")
		return nil, &Error{Op: "login", Message: api.Message(err, loginFallback), Err: err}
	}
	return g.publish(ctx, "login", body, logger)
}

// Signup registers a user and stores the resulting identity. The role
// defaults to DefaultSignupRole.
func (g *Gateway) Signup(ctx context.Context, req api.SignupRequest) (*session.Identity, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if strings.TrimSpace(req.Role) == "" {
		req.Role = DefaultSignupRole
	}
	logger := log.WithFields(log.Fields{"component": "auth", "op": "signup", "email": req.Email, "role": req.Role})

	body, err := g.backend.Signup(ctx, req)
	if err != nil {
		logger.WithError(err).Warn("signup rejected")
		return nil, &Error{Op: "signup", Message: api.Message(err, signupFallback), Err: err}
	}
	return g.publish(ctx, "signup", body, logger)
}

// Logout clears the stored identity and then runs OnLogout.
func (g *Gateway) Logout() {
	g.store.Clear()
	log.WithField("component", "auth").Info("signed out")
	if g.OnLogout != nil {
		g.OnLogout()
	}
}

func (g *Gateway) publish(ctx context.Context, op string, body []byte, logger *log.Entry) (*session.Identity, error) {
	id, err := session.NormalizeIdentity(body)
	if err != nil {
		logger.WithError(err).Warn("unusable identity in response")
		return nil, &Error{Op: op, Message: invalidResponse, Err: err}
	}
	if g.enricher != nil {
		id = g.enricher.Enrich(ctx, id)
	}
	if err := g.store.Set(id); err != nil {
		return nil, &Error{Op: op, Message: invalidResponse, Err: err}
	}
	logger.WithFields(log.Fields{"user_id": id.UserID, "role": id.RoleName()}).Info("signed in")
	return id.Clone(), nil
}
