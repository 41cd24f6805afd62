// Package admin gates administrative operations on the signed-in
// identity's role and exposes the dashboard operations behind that gate.
//
// The gate only decides what the client offers. The backend authorizes
// every mutation independently.
package admin

import (
	"context"
	"errors"

	"github.com/pawsitive-drive/pawsitive/internal/session"
)

// ErrForbidden is returned when the signed-in identity is not an administrator.
var ErrForbidden = errors.New("You must be an Admin to do this. Please log in with an Admin account.")

// IdentitySource supplies the signed-in identity.
type IdentitySource interface {
	Get() *session.Identity
}

// Checker decides whether an identity is an administrator.
type Checker interface {
	IsAdmin(ctx context.Context, id *session.Identity) bool
}

// Gate answers admin checks for the current identity.
type Gate struct {
	identities IdentitySource
	checker    Checker
}

// NewGate creates a gate.
func NewGate(identities IdentitySource, checker Checker) *Gate {
	return &Gate{identities: identities, checker: checker}
}

// Allowed reports whether id may use admin operations.
func (g *Gate) Allowed(ctx context.Context, id *session.Identity) bool {
	if id == nil {
		return false
	}
	return g.checker.IsAdmin(ctx, id)
}

// Require returns the current identity when it is an administrator and
// ErrForbidden otherwise.
func (g *Gate) Require(ctx context.Context) (*session.Identity, error) {
	id := g.identities.Get()
	if !g.Allowed(ctx, id) {
		return nil, ErrForbidden
	}
	return id, nil
}
