package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Timestamp holds a backend date-time. The backend emits either an ISO
// string or a [year, month, day, hour, minute, second, ...] array; both
// decode to an ISO-like string.
type Timestamp string

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Timestamp(s)
	case data[0] == '[':
		var parts []int
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		for len(parts) < 6 {
			parts = append(parts, 0)
		}
		*t = Timestamp(fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
			parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]))
	default:
		return fmt.Errorf("timestamp: unsupported value %s", data)
	}
	return nil
}

// UserRef is the slice of a user record embedded in other resources.
type UserRef struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// RoleRecord is one entry of the roles collection.
type RoleRecord struct {
	RoleID   int64  `json:"role_id"`
	RoleName string `json:"role_name"`
}

// Pet is a catalog entry.
type Pet struct {
	PetID       int64     `json:"pet_id"`
	Name        string    `json:"name"`
	Species     string    `json:"species,omitempty"`
	Breed       string    `json:"breed,omitempty"`
	Age         int       `json:"age"`
	Gender      string    `json:"gender,omitempty"`
	Status      string    `json:"status,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   Timestamp `json:"created_at,omitempty"`
}

// PetInput is the payload for creating a pet.
type PetInput struct {
	Name        string
	Species     string
	Breed       string
	Age         int
	Gender      string
	Status      string
	Description string
	ImageURL    string
}

// Application is an adoption application.
type Application struct {
	ApplicationID   int64     `json:"application_id"`
	Pet             *Pet      `json:"pet,omitempty"`
	User            *UserRef  `json:"user,omitempty"`
	ReviewedBy      *UserRef  `json:"reviewedBy,omitempty"`
	ApplicationDate Timestamp `json:"application_date,omitempty"`
	Status          string    `json:"status"`
}

// Donation is a persisted donation record.
type Donation struct {
	DonationID    int64     `json:"donation_id"`
	Amount        float64   `json:"amount"`
	DonationDate  Timestamp `json:"donation_date,omitempty"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	User          *UserRef  `json:"user,omitempty"`
	Pet           *Pet      `json:"pet,omitempty"`
}

// DonationRequest is the payload for creating a donation. PetID is
// attached only when positive.
type DonationRequest struct {
	Amount        float64
	PaymentMethod string
	Status        string
	UserID        int64
	PetID         int64
}

// Receipt is the server-generated record for a completed donation.
type Receipt struct {
	ReceiptID     int64     `json:"receipt_id"`
	ReceiptNumber string    `json:"receipt_number"`
	ReceiptDate   Timestamp `json:"receipt_date,omitempty"`
	DonorName     string    `json:"donor_name"`
	DonorEmail    string    `json:"donor_email"`
	DonorAddress  string    `json:"donor_address,omitempty"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Donation      *Donation `json:"donation,omitempty"`
}

// Profile is a user's public profile.
type Profile struct {
	ProfileID      int64    `json:"profile_id"`
	Bio            string   `json:"bio"`
	ProfilePicture string   `json:"profile_picture"`
	User           *UserRef `json:"user,omitempty"`
}

// UploadResult is returned by the image upload endpoints.
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
