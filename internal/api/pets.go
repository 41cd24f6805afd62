package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ListPets lists the catalog, optionally filtered by status.
func (c *Client) ListPets(ctx context.Context, status string) ([]Pet, error) {
	path := "/pets"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var pets []Pet
	if err := c.getJSON(ctx, path, &pets); err != nil {
		return nil, err
	}
	return pets, nil
}

// GetPet fetches a single pet.
func (c *Client) GetPet(ctx context.Context, petID int64) (*Pet, error) {
	var pet Pet
	if err := c.getJSON(ctx, fmt.Sprintf("/pets/%d", petID), &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// CreatePet adds a pet. addedBy is sent as a user object, which every
// backend revision accepts.
func (c *Client) CreatePet(ctx context.Context, in PetInput, addedBy int64) (*Pet, error) {
	payload, err := buildObject(map[string]any{
		"name":            in.Name,
		"species":         in.Species,
		"breed":           in.Breed,
		"age":             in.Age,
		"gender":          in.Gender,
		"status":          in.Status,
		"description":     in.Description,
		"image_url":       in.ImageURL,
		"addedBy.user_id": addedBy,
	})
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: http.MethodPost, Path: "/pets", Err: err}
	}
	var pet Pet
	if err := c.sendJSON(ctx, http.MethodPost, "/pets", payload, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

// UpdatePet replaces a pet's editable fields.
func (c *Client) UpdatePet(ctx context.Context, pet Pet) (*Pet, error) {
	path := fmt.Sprintf("/pets/%d", pet.PetID)
	payload, err := jsonBody(pet)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: http.MethodPut, Path: path, Err: err}
	}
	var updated Pet
	if err := c.sendJSON(ctx, http.MethodPut, path, payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePet removes a pet.
func (c *Client) DeletePet(ctx context.Context, petID int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/pets/%d", petID), nil, "")
	return err
}

// UploadPetImage uploads an image and returns its public URL.
func (c *Client) UploadPetImage(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	return c.upload(ctx, "/pets/upload-image", filename, r)
}
