package api

import "context"

// ListRoles fetches the full roles collection.
func (c *Client) ListRoles(ctx context.Context) ([]RoleRecord, error) {
	var roles []RoleRecord
	if err := c.getJSON(ctx, "/roles", &roles); err != nil {
		return nil, err
	}
	return roles, nil
}
