package api

import (
	"context"
	"fmt"
	"net/http"
)

// CreateDonation records a donation.
func (c *Client) CreateDonation(ctx context.Context, req DonationRequest) (*Donation, error) {
	fields := map[string]any{
		"amount":         req.Amount,
		"payment_method": req.PaymentMethod,
		"status":         req.Status,
		"user.user_id":   req.UserID,
	}
	if req.PetID > 0 {
		fields["pet.pet_id"] = req.PetID
	}
	payload, err := buildObject(fields)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: http.MethodPost, Path: "/donations", Err: err}
	}
	var donation Donation
	if err := c.sendJSON(ctx, http.MethodPost, "/donations", payload, &donation); err != nil {
		return nil, err
	}
	return &donation, nil
}

// ListDonations lists every donation.
func (c *Client) ListDonations(ctx context.Context) ([]Donation, error) {
	var donations []Donation
	if err := c.getJSON(ctx, "/donations", &donations); err != nil {
		return nil, err
	}
	return donations, nil
}

// ListUserDonations lists one user's donations.
func (c *Client) ListUserDonations(ctx context.Context, userID int64) ([]Donation, error) {
	var donations []Donation
	if err := c.getJSON(ctx, fmt.Sprintf("/donations/user/%d", userID), &donations); err != nil {
		return nil, err
	}
	return donations, nil
}

// GetReceipt fetches the receipt for a donation. It is never cached.
func (c *Client) GetReceipt(ctx context.Context, donationID int64) (*Receipt, error) {
	var receipt Receipt
	if err := c.getJSON(ctx, fmt.Sprintf("/donations/%d/receipt", donationID), &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}
