// Package role derives role labels for identities and answers whether an
// identity is an administrator.
package role

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/pawsitive-drive/pawsitive/internal/session"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// AdminName is the canonical administrator role name.
const AdminName = "Admin"

// rolesFetchTimeout bounds a shared roles fetch, which is detached from the
// cancellation of the caller that started it.
const rolesFetchTimeout = 30 * time.Second

// RolesSource fetches the full roles collection.
type RolesSource interface {
	ListRoles(ctx context.Context) ([]api.RoleRecord, error)
}

// Resolver resolves role names, caching the roles collection after the
// first successful fetch. Failed fetches are not cached.
type Resolver struct {
	source   RolesSource
	adminIDs map[int64]struct{}

	mu     sync.RWMutex
	cache  map[int64]string
	group  singleflight.Group
	logger *log.Entry
}

// NewResolver creates a resolver using source for id lookups. adminIDs is
// the fixed set of administrative role ids.
func NewResolver(source RolesSource, adminIDs []int64) *Resolver {
	ids := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = struct{}{}
	}
	return &Resolver{
		source:   source,
		adminIDs: ids,
		logger:   log.WithField("component", "role"),
	}
}

// IsAdminID reports whether roleID is in the administrative set.
func (r *Resolver) IsAdminID(roleID int64) bool {
	if r == nil {
		return false
	}
	_, ok := r.adminIDs[roleID]
	return ok
}

// ResolveRoleName returns the identity's role name. An embedded name is
// returned without any network call; otherwise the role id is looked up in
// the roles collection. It reports false when no name can be determined.
func (r *Resolver) ResolveRoleName(ctx context.Context, id *session.Identity) (string, bool) {
	if id == nil {
		return "", false
	}
	if name := strings.TrimSpace(id.RoleName()); name != "" {
		return name, true
	}
	roleID, ok := id.RoleID()
	if !ok || r == nil || r.source == nil {
		return "", false
	}
	roles, err := r.roles(ctx)
	if err != nil {
		r.logger.WithError(err).WithField("role_id", roleID).Warn("role lookup failed")
		return "", false
	}
	name, ok := roles[roleID]
	if !ok {
		return "", false
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}

// IsAdmin reports whether id is an administrator: its role id is in the
// administrative set, or its resolved role name is "admin" in any case.
// A nil identity is never an administrator.
func (r *Resolver) IsAdmin(ctx context.Context, id *session.Identity) bool {
	if id == nil {
		return false
	}
	if roleID, ok := id.RoleID(); ok && r.IsAdminID(roleID) {
		return true
	}
	name, ok := r.ResolveRoleName(ctx, id)
	return ok && strings.EqualFold(name, "admin")
}

// Label returns a display label for id's role, or "" when unknown.
func (r *Resolver) Label(ctx context.Context, id *session.Identity) string {
	if name, ok := r.ResolveRoleName(ctx, id); ok {
		return name
	}
	if roleID, ok := id.RoleID(); ok && r.IsAdminID(roleID) {
		return AdminName
	}
	return ""
}

// Enrich returns a copy of id with its role name filled in when it can be
// resolved from the roles collection. Resolution failures leave the copy
// unchanged; an administrative role id keeps IsAdmin true without a name.
func (r *Resolver) Enrich(ctx context.Context, id *session.Identity) *session.Identity {
	out := id.Clone()
	if out == nil || out.Role == nil {
		return out
	}
	if name, ok := r.ResolveRoleName(ctx, out); ok {
		out.Role.Name = name
	}
	return out
}

// Invalidate drops the cached roles collection.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.cache = nil
	r.mu.Unlock()
}

func (r *Resolver) roles(ctx context.Context) (map[int64]string, error) {
	r.mu.RLock()
	cached := r.cache
	r.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := r.group.DoChan("roles", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rolesFetchTimeout)
		defer cancel()
		records, err := r.source.ListRoles(fetchCtx)
		if err != nil {
			return nil, err
		}
		m := make(map[int64]string, len(records))
		for _, rec := range records {
			m[rec.RoleID] = rec.RoleName
		}
		r.mu.Lock()
		r.cache = m
		r.mu.Unlock()
		return m, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[int64]string), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
