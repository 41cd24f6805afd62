package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GetProfile fetches a user's profile.
func (c *Client) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	var profile Profile
	if err := c.getJSON(ctx, fmt.Sprintf("/profiles/user/%d", userID), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile writes bio and picture, creating the profile if needed.
func (c *Client) UpdateProfile(ctx context.Context, userID int64, bio, picture string) (*Profile, error) {
	path := fmt.Sprintf("/profiles/user/%d", userID)
	payload, err := buildObject(map[string]any{
		"bio":             bio,
		"profile_picture": picture,
	})
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: http.MethodPut, Path: path, Err: err}
	}
	var profile Profile
	if err := c.sendJSON(ctx, http.MethodPut, path, payload, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UploadProfileImage uploads a profile picture and returns its public URL.
func (c *Client) UploadProfileImage(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	return c.upload(ctx, "/profiles/upload-image", filename, r)
}

func jsonBody(v any) ([]byte, error) {
	return json.Marshal(v)
}
