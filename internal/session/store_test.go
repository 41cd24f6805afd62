package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/pawsitive-drive/pawsitive/internal/storage"
)

type failingStorage struct{}

func (failingStorage) Get(string) (string, bool, error) { return "", false, errors.New("disk on fire") }
func (failingStorage) Set(string, string) error         { return errors.New("disk on fire") }
func (failingStorage) Delete(string) error              { return errors.New("disk on fire") }

func TestInitializeMalformedContentIsSignedOut(t *testing.T) {
	for _, raw := range []string{"", "{", "null", `"text"`, `{"name":"no id"}`, `[]`} {
		mem := storage.NewMemoryStorage()
		_ = mem.Set(IdentityKey, raw)
		s := NewStore(mem)
		s.Initialize()
		if got := s.Get(); got != nil {
			t.Fatalf("content %q produced identity %+v", raw, got)
		}
	}
}

func TestStorageFailuresDegradeSilently(t *testing.T) {
	s := NewStore(failingStorage{})
	s.Initialize()
	if s.Get() != nil {
		t.Fatal("expected signed-out store")
	}
	if err := s.Set(&Identity{UserID: 7}); err != nil {
		t.Fatalf("storage failure leaked: %v", err)
	}
	if got := s.Get(); got == nil || got.UserID != 7 {
		t.Fatalf("in-memory identity lost: %+v", got)
	}
	s.Clear()
	if s.Get() != nil {
		t.Fatal("clear did not sign out")
	}
}

func TestSetThenReloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := &Identity{
		UserID:        7,
		Name:          "A",
		Email:         "a@b.com",
		Status:        "active",
		ContactNumber: "0917",
		Address:       "Manila",
		CreatedAt:     "2025-01-02T03:04:05",
		Role:          &Role{ID: 2, Name: "Admin"},
	}

	first := NewStore(storage.NewFileStorage(dir))
	first.Initialize()
	if err := first.Set(want); err != nil {
		t.Fatalf("set: %v", err)
	}

	reloaded := NewStore(storage.NewFileStorage(dir))
	reloaded.Initialize()
	if got := reloaded.Get(); !got.Equal(want) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}

	first.Clear()
	again := NewStore(storage.NewFileStorage(dir))
	again.Initialize()
	if again.Get() != nil {
		t.Fatal("cleared identity survived reload")
	}
}

func TestSetStoresReloadableForm(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(storage.NewFileStorage(dir))
	s.Initialize()
	if err := s.Set(&Identity{UserID: 7, Name: " A ", Role: &Role{ID: 2, Name: " Admin "}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := s.Get().RoleName(); got != "Admin" {
		t.Fatalf("role name = %q", got)
	}

	reloaded := NewStore(storage.NewFileStorage(dir))
	reloaded.Initialize()
	if !reloaded.Get().Equal(s.Get()) {
		t.Fatalf("reload differs:\n got  %+v\n want %+v", reloaded.Get(), s.Get())
	}

	_, version := s.Snapshot()
	if !s.CompareAndSet(version, &Identity{UserID: 7, Role: &Role{Name: "  "}}) {
		t.Fatal("compare and set refused")
	}
	if s.Get().Role != nil {
		t.Fatalf("blank role kept: %+v", s.Get().Role)
	}
}

func TestSetRejectsIdentityWithoutID(t *testing.T) {
	s := NewStore(storage.NewMemoryStorage())
	if err := s.Set(&Identity{Name: "ghost"}); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
}

func TestCompareAndSet(t *testing.T) {
	s := NewStore(storage.NewMemoryStorage())
	_ = s.Set(&Identity{UserID: 7, Role: &Role{ID: 2}})

	_, version := s.Snapshot()
	s.Clear()
	if s.CompareAndSet(version, &Identity{UserID: 7, Role: &Role{ID: 2, Name: "Admin"}}) {
		t.Fatal("stale write after logout must be dropped")
	}
	if s.Get() != nil {
		t.Fatal("identity resurrected after logout")
	}

	_ = s.Set(&Identity{UserID: 8})
	_, version = s.Snapshot()
	if !s.CompareAndSet(version, &Identity{UserID: 8, Name: "B"}) {
		t.Fatal("fresh write rejected")
	}
	if got := s.Get(); got.Name != "B" {
		t.Fatalf("write not applied: %+v", got)
	}
}

func TestSubscribe(t *testing.T) {
	s := NewStore(storage.NewMemoryStorage())
	var mu sync.Mutex
	var seen []*Identity
	cancel := s.Subscribe(func(id *Identity) {
		mu.Lock()
		seen = append(seen, id)
		mu.Unlock()
	})

	_ = s.Set(&Identity{UserID: 1})
	s.Clear()
	cancel()
	_ = s.Set(&Identity{UserID: 2})

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if seen[0] == nil || seen[0].UserID != 1 || seen[1] != nil {
		t.Fatalf("unexpected notifications: %+v", seen)
	}
}

func TestReloadPicksUpExternalWrite(t *testing.T) {
	mem := storage.NewMemoryStorage()
	s := NewStore(mem)
	s.Initialize()

	changed := 0
	s.Subscribe(func(*Identity) { changed++ })

	_ = mem.Set(IdentityKey, `{"user_id":3,"name":"Other"}`)
	s.Reload()
	s.Reload()
	if got := s.Get(); got == nil || got.UserID != 3 {
		t.Fatalf("reload missed write: %+v", got)
	}
	if changed != 1 {
		t.Fatalf("expected one notification, got %d", changed)
	}
}
