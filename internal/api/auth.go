package api

import (
	"context"
	"net/http"

	"github.com/tidwall/sjson"
)

// SignupRequest carries registration fields.
type SignupRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
	Address  string
	Contact  string
}

// Login posts credentials and returns the raw identity-shaped body.
func (c *Client) Login(ctx context.Context, email, password string) ([]byte, error) {
	payload, err := buildObject(map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: http.MethodPost, Path: "/auth/login", Err: err}
	}
	return c.do(ctx, http.MethodPost, "/auth/login", payload, "application/json")
}

// Signup registers a user and returns the raw identity-shaped body. The
// contact number travels as "contact_number".
func (c *Client) Signup(ctx context.Context, req SignupRequest) ([]byte, error) {
	fields := map[string]any{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
		"role":     req.Role,
	}
	if req.Address != "" {
		fields["address"] = req.Address
	}
	if req.Contact != "" {
		fields["contact_number"] = req.Contact
	}
	payload, err := buildObject(fields)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: http.MethodPost, Path: "/auth/signup", Err: err}
	}
	return c.do(ctx, http.MethodPost, "/auth/signup", payload, "application/json")
}

// buildObject sets each field on an empty JSON object.
func buildObject(fields map[string]any) ([]byte, error) {
	payload := []byte(`{}`)
	var err error
	for path, value := range fields {
		payload, err = sjson.SetBytes(payload, path, value)
		if err != nil {
			return nil, err
		}
	}
	return payload, nil
}
