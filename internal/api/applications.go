package api

import (
	"context"
	"fmt"
	"net/http"
)

// CreateApplication files an adoption application in Pending state.
func (c *Client) CreateApplication(ctx context.Context, petID, userID int64) (*Application, error) {
	payload, err := buildObject(map[string]any{
		"pet.pet_id":   petID,
		"user.user_id": userID,
		"status":       "Pending",
	})
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: http.MethodPost, Path: "/applications", Err: err}
	}
	var app Application
	if err := c.sendJSON(ctx, http.MethodPost, "/applications", payload, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// ListApplications lists every application.
func (c *Client) ListApplications(ctx context.Context) ([]Application, error) {
	var apps []Application
	if err := c.getJSON(ctx, "/applications", &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// ListUserApplications lists one user's applications.
func (c *Client) ListUserApplications(ctx context.Context, userID int64) ([]Application, error) {
	var apps []Application
	if err := c.getJSON(ctx, fmt.Sprintf("/applications/user/%d", userID), &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// UpdateApplication sets an application's status, recording the reviewer
// when reviewedBy is positive.
func (c *Client) UpdateApplication(ctx context.Context, appID int64, status string, reviewedBy int64) (*Application, error) {
	path := fmt.Sprintf("/applications/%d", appID)
	fields := map[string]any{"status": status}
	if reviewedBy > 0 {
		fields["reviewed_by"] = reviewedBy
	}
	payload, err := buildObject(fields)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: http.MethodPut, Path: path, Err: err}
	}
	var app Application
	if err := c.sendJSON(ctx, http.MethodPut, path, payload, &app); err != nil {
		return nil, err
	}
	return &app, nil
}
