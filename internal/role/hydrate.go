package role

import (
	"context"

	"github.com/pawsitive-drive/pawsitive/internal/session"
)

// Hydrate enriches the stored identity with its role name when it only
// carries a role id. The write is skipped when ctx is done, when enrichment
// changed nothing, or when the store was written in the meantime (for
// example by a logout). It reports whether the store was updated.
func (r *Resolver) Hydrate(ctx context.Context, store *session.Store) bool {
	current, version := store.Snapshot()
	if current == nil || current.RoleName() != "" {
		return false
	}
	if _, ok := current.RoleID(); !ok {
		return false
	}

	enriched := r.Enrich(ctx, current)
	if ctx.Err() != nil {
		return false
	}
	if enriched.Equal(current) {
		return false
	}
	if !store.CompareAndSet(version, enriched) {
		r.logger.Debug("identity changed during hydration, dropping result")
		return false
	}
	r.logger.WithField("role", enriched.RoleName()).Debug("identity hydrated")
	return true
}

// HydrateAsync runs Hydrate in a goroutine. The returned function blocks
// until it finishes.
func (r *Resolver) HydrateAsync(ctx context.Context, store *session.Store) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Hydrate(ctx, store)
	}()
	return func() { <-done }
}
