// Package session holds the signed-in identity and keeps it durable across
// runs of the client.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// ErrNoIdentity is returned when a response body carries no usable user id.
var ErrNoIdentity = errors.New("identity has no user id")

// Identity is the client-side view of the signed-in user.
type Identity struct {
	UserID        int64  `json:"user_id"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Status        string `json:"status,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`
	Address       string `json:"address,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	Role          *Role  `json:"role,omitempty"`
}

// Role is the role reference attached to an identity. A zero ID means the
// id is unknown; an empty Name means the name still needs resolving.
type Role struct {
	ID   int64  `json:"role_id,omitempty"`
	Name string `json:"role_name,omitempty"`
}

// Accepted source shapes, in priority order. Backend responses are
// inconsistent about nesting and casing; these lists are exhaustive.
var (
	userIDPaths   = []string{"user_id", "id"}
	roleNamePaths = []string{"role.role_name", "role.roleName", "role_name", "roleName"}
	roleIDPaths   = []string{"role.role_id", "role.roleId", "role_id", "roleId"}
)

var knownKeys = map[string]bool{
	"user_id": true, "id": true, "name": true, "email": true, "status": true,
	"contact_number": true, "address": true, "created_at": true, "role": true,
	"role_name": true, "roleName": true, "role_id": true, "roleId": true,
	"password": true, "profiles": true, "donations": true,
}

// NormalizeIdentity converts any accepted backend user shape into the
// canonical Identity. Bodies without a positive user id are rejected.
func NormalizeIdentity(raw []byte) (*Identity, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("identity: invalid JSON")
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, fmt.Errorf("identity: expected object, got %s", root.Type)
	}

	userID, ok := firstInt(root, userIDPaths)
	if !ok || userID <= 0 {
		return nil, ErrNoIdentity
	}

	id := &Identity{
		UserID:        userID,
		Name:          stringField(root, "name"),
		Email:         stringField(root, "email"),
		Status:        stringField(root, "status"),
		ContactNumber: stringField(root, "contact_number"),
		Address:       stringField(root, "address"),
		CreatedAt:     stringField(root, "created_at"),
	}

	if r := root.Get("role"); r.Exists() && r.Type != gjson.Null && !r.IsObject() {
		log.WithField("role", r.Raw).Debug("identity: ignoring unrecognized role shape")
	}

	roleName := firstString(root, roleNamePaths)
	roleID, _ := firstInt(root, roleIDPaths)
	if roleName != "" || roleID > 0 {
		id.Role = &Role{ID: roleID, Name: roleName}
	}

	root.ForEach(func(key, _ gjson.Result) bool {
		if !knownKeys[key.String()] {
			log.WithField("key", key.String()).Debug("identity: ignoring unrecognized field")
		}
		return true
	})
	return id, nil
}

// Clone returns a deep copy of id. Clone of nil is nil.
func (id *Identity) Clone() *Identity {
	if id == nil {
		return nil
	}
	c := *id
	if id.Role != nil {
		r := *id.Role
		c.Role = &r
	}
	return &c
}

// RoleName returns the embedded role name, or "".
func (id *Identity) RoleName() string {
	if id == nil || id.Role == nil {
		return ""
	}
	return id.Role.Name
}

// RoleID returns the embedded role id and whether one is known.
func (id *Identity) RoleID() (int64, bool) {
	if id == nil || id.Role == nil || id.Role.ID <= 0 {
		return 0, false
	}
	return id.Role.ID, true
}

// Equal reports whether two identities carry the same values.
func (id *Identity) Equal(other *Identity) bool {
	if id == nil || other == nil {
		return id == nil && other == nil
	}
	a, b := *id, *other
	a.Role, b.Role = nil, nil
	if a != b {
		return false
	}
	switch {
	case id.Role == nil && other.Role == nil:
		return true
	case id.Role == nil || other.Role == nil:
		return false
	default:
		return *id.Role == *other.Role
	}
}

func firstInt(root gjson.Result, paths []string) (int64, bool) {
	for _, path := range paths {
		r := root.Get(path)
		switch r.Type {
		case gjson.Number:
			return r.Int(), true
		case gjson.String:
			if n, err := strconv.ParseInt(strings.TrimSpace(r.Str), 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func firstString(root gjson.Result, paths []string) string {
	for _, path := range paths {
		r := root.Get(path)
		if r.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(r.Str); s != "" {
			return s
		}
	}
	return ""
}

func stringField(root gjson.Result, key string) string {
	r := root.Get(key)
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}
