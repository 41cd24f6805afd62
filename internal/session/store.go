package session

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pawsitive-drive/pawsitive/internal/storage"
	log "github.com/sirupsen/logrus"
)

// IdentityKey is the durable key holding the JSON-encoded identity.
const IdentityKey = "pd_user"

// Store holds the current identity and writes every replacement through to
// durable storage before returning. Storage failures are logged, never
// returned: the store degrades to signed-out instead.
type Store struct {
	mu      sync.RWMutex
	storage storage.Storage
	key     string
	current *Identity
	version uint64
	subMu   sync.Mutex
	subs    map[int]func(*Identity)
	nextSub int
	logger  *log.Entry
}

// NewStore creates a store backed by s. Call Initialize to load the
// persisted identity.
func NewStore(s storage.Storage) *Store {
	return &Store{
		storage: s,
		key:     IdentityKey,
		subs:    make(map[int]func(*Identity)),
		logger:  log.WithField("component", "session"),
	}
}

// Initialize loads the persisted identity. Missing, unreadable or
// malformed content yields a signed-out store.
func (s *Store) Initialize() {
	id := s.read()
	s.mu.Lock()
	s.current = id
	s.version++
	s.mu.Unlock()
}

// Reload re-reads durable storage, e.g. after another process signed in or
// out, and notifies subscribers when the identity changed.
func (s *Store) Reload() {
	id := s.read()
	s.mu.Lock()
	if s.current.Equal(id) {
		s.mu.Unlock()
		return
	}
	s.current = id
	s.version++
	s.mu.Unlock()
	s.notify(id)
}

// Get returns a copy of the current identity, or nil when signed out.
func (s *Store) Get() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Snapshot returns the current identity together with its version. The
// version changes on every write and can be passed to CompareAndSet.
func (s *Store) Snapshot() (*Identity, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone(), s.version
}

// Set replaces the current identity wholesale. Set(nil) signs out.
// Only an identity without a user id is rejected.
func (s *Store) Set(id *Identity) error {
	if id != nil && id.UserID <= 0 {
		return ErrNoIdentity
	}
	next := canonical(id)
	s.mu.Lock()
	s.current = next
	s.version++
	s.persist(next)
	s.mu.Unlock()
	s.notify(next)
	return nil
}

// CompareAndSet replaces the identity only if no write happened since
// version was observed. It reports whether the write took place.
func (s *Store) CompareAndSet(version uint64, id *Identity) bool {
	if id != nil && id.UserID <= 0 {
		return false
	}
	next := canonical(id)
	s.mu.Lock()
	if s.version != version {
		s.mu.Unlock()
		return false
	}
	s.current = next
	s.version++
	s.persist(next)
	s.mu.Unlock()
	s.notify(next)
	return true
}

// Clear signs out and removes the durable copy.
func (s *Store) Clear() {
	_ = s.Set(nil)
}

// Subscribe registers fn to be called with a copy of the identity after
// every change. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(*Identity)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(id *Identity) {
	s.subMu.Lock()
	fns := make([]func(*Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(id.Clone())
	}
}

func (s *Store) read() *Identity {
	raw, ok, err := s.storage.Get(s.key)
	if err != nil {
		s.logger.WithError(err).Warn("failed to read persisted identity")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	id, err := NormalizeIdentity([]byte(raw))
	if err != nil {
		s.logger.WithError(err).Warn("discarding malformed persisted identity")
		return nil
	}
	return id
}

// persist must be called with s.mu held so durable order matches memory order.
func (s *Store) persist(id *Identity) {
	if id == nil {
		if err := s.storage.Delete(s.key); err != nil {
			s.logger.WithError(err).Warn("failed to remove persisted identity")
		}
		return
	}
	data, err := json.Marshal(id)
	if err != nil {
		s.logger.WithError(err).Warn("failed to encode identity")
		return
	}
	if err := s.storage.Set(s.key, string(data)); err != nil {
		s.logger.WithError(err).Warn("failed to persist identity")
	}
}

// canonical returns the form an identity takes after a reload, so the
// in-memory copy never differs from the durable one.
func canonical(id *Identity) *Identity {
	c := id.Clone()
	if c == nil {
		return nil
	}
	for _, f := range []*string{&c.Name, &c.Email, &c.Status, &c.ContactNumber, &c.Address, &c.CreatedAt} {
		*f = strings.TrimSpace(*f)
	}
	if c.Role != nil {
		c.Role.Name = strings.TrimSpace(c.Role.Name)
		if c.Role.ID <= 0 && c.Role.Name == "" {
			c.Role = nil
		}
	}
	return c
}
