// Package profile reads and updates the signed-in user's public profile.
package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/pawsitive-drive/pawsitive/internal/session"
	log "github.com/sirupsen/logrus"
)

// MaxPictureBytes caps uploaded profile pictures.
const MaxPictureBytes = 5 << 20

var (
	// ErrNotSignedIn is returned when no identity is present.
	ErrNotSignedIn = errors.New("Please log in to save your profile.")
	// ErrNotImage is returned for uploads that are not images.
	ErrNotImage = errors.New("Please select an image file.")
	// ErrTooLarge is returned for uploads over MaxPictureBytes.
	ErrTooLarge = errors.New("Image size must be less than 5MB.")
)

// SaveError reports a failed Update. Message is safe to show to users.
type SaveError struct {
	Message string
	Err     error
}

func (e *SaveError) Error() string { return e.Message }

func (e *SaveError) Unwrap() error { return e.Err }

// IdentitySource supplies the signed-in identity.
type IdentitySource interface {
	Get() *session.Identity
}

// Backend is the subset of the API client the service needs.
type Backend interface {
	GetProfile(ctx context.Context, userID int64) (*api.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, bio, picture string) (*api.Profile, error)
	UploadProfileImage(ctx context.Context, filename string, r io.Reader) (*api.UploadResult, error)
}

// Service manages the signed-in user's profile.
type Service struct {
	identities IdentitySource
	backend    Backend
}

// NewService creates a profile service.
func NewService(identities IdentitySource, backend Backend) *Service {
	return &Service{identities: identities, backend: backend}
}

// Get returns the profile, or an empty one when none exists yet.
func (s *Service) Get(ctx context.Context) (*api.Profile, error) {
	id := s.identities.Get()
	if id == nil {
		return nil, ErrNotSignedIn
	}
	p, err := s.backend.GetProfile(ctx, id.UserID)
	if err != nil {
		if api.StatusCode(err) == http.StatusNotFound {
			return &api.Profile{User: &api.UserRef{UserID: id.UserID, Name: id.Name, Email: id.Email}}, nil
		}
		return nil, err
	}
	return p, nil
}

// Update writes bio and picture.
func (s *Service) Update(ctx context.Context, bio, picture string) (*api.Profile, error) {
	id := s.identities.Get()
	if id == nil {
		return nil, ErrNotSignedIn
	}
	p, err := s.backend.UpdateProfile(ctx, id.UserID, strings.TrimSpace(bio), strings.TrimSpace(picture))
	if err != nil {
		return nil, &SaveError{Message: "Failed to save profile: " + api.Message(err, "Please try again."), Err: err}
	}
	log.WithFields(log.Fields{"component": "profile", "user_id": id.UserID}).Info("profile updated")
	return p, nil
}

// UploadPicture uploads an image and returns its public URL. The profile
// itself is not changed; pass the URL to Update.
func (s *Service) UploadPicture(ctx context.Context, filename string, r io.Reader) (string, error) {
	if s.identities.Get() == nil {
		return "", ErrNotSignedIn
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxPictureBytes+1))
	if err != nil {
		return "", fmt.Errorf("read picture: %w", err)
	}
	if len(data) > MaxPictureBytes {
		return "", ErrTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", ErrNotImage
	}
	res, err := s.backend.UploadProfileImage(ctx, filename, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return res.URL, nil
}
