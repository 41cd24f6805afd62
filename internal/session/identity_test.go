package session

import (
	"errors"
	"testing"
)

func TestNormalizeIdentityShapes(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantID   int64
		wantRole *Role
	}{
		{"nestedSnake", `{"user_id":7,"name":"A","role":{"role_id":2,"role_name":"Admin"}}`, 7, &Role{ID: 2, Name: "Admin"}},
		{"nestedCamel", `{"user_id":7,"role":{"roleId":3,"roleName":" Adoptor "}}`, 7, &Role{ID: 3, Name: "Adoptor"}},
		{"topLevelSnake", `{"user_id":7,"role_name":"Donor","role_id":1}`, 7, &Role{ID: 1, Name: "Donor"}},
		{"topLevelCamel", `{"id":"9","roleName":"admin","roleId":"2"}`, 9, &Role{ID: 2, Name: "admin"}},
		{"idOnly", `{"user_id":7,"name":"A","role_id":2}`, 7, &Role{ID: 2}},
		{"noRole", `{"user_id":7,"email":"a@b.com"}`, 7, nil},
		{"roleAsString", `{"user_id":7,"role":"Admin"}`, 7, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := NormalizeIdentity([]byte(tc.body))
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if id.UserID != tc.wantID {
				t.Fatalf("user id = %d, want %d", id.UserID, tc.wantID)
			}
			switch {
			case tc.wantRole == nil && id.Role != nil:
				t.Fatalf("unexpected role %+v", id.Role)
			case tc.wantRole != nil && (id.Role == nil || *id.Role != *tc.wantRole):
				t.Fatalf("role = %+v, want %+v", id.Role, tc.wantRole)
			}
		})
	}
}

func TestNormalizeIdentityRejects(t *testing.T) {
	for _, body := range []string{``, `null`, `[1,2]`, `{"name":"A"}`, `{"user_id":0}`, `{"user_id":"abc"}`, `{broken`} {
		if _, err := NormalizeIdentity([]byte(body)); err == nil {
			t.Fatalf("expected rejection for %q", body)
		}
	}
	if _, err := NormalizeIdentity([]byte(`{"name":"A"}`)); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
}

func TestIdentityEqualAndClone(t *testing.T) {
	a := &Identity{UserID: 1, Name: "A", Role: &Role{ID: 2, Name: "Admin"}}
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone should be equal")
	}
	b.Role.Name = "Donor"
	if a.Role.Name != "Admin" {
		t.Fatal("clone shares role pointer")
	}
	if a.Equal(b) {
		t.Fatal("different role names compared equal")
	}
	var nilID *Identity
	if !nilID.Equal(nil) || nilID.Equal(a) {
		t.Fatal("nil comparison wrong")
	}
}
