// Package donation implements the two-step donation submission flow, the
// local running total, and on-demand receipt retrieval.
package donation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/pawsitive-drive/pawsitive/internal/session"
)

// Step is the flow state.
type Step int

const (
	StepInput Step = iota
	StepPayment
)

func (s Step) String() string {
	if s == StepPayment {
		return "payment"
	}
	return "input"
}

// TargetKind selects what a donation supports.
type TargetKind int

const (
	TargetGeneral TargetKind = iota
	TargetPet
)

// PaymentMethod is the payment option chosen at the payment step.
type PaymentMethod int

const (
	MethodCard PaymentMethod = iota
	MethodPayPal
)

// Label is the backend label for the method.
func (m PaymentMethod) Label() string {
	if m == MethodPayPal {
		return "PayPal"
	}
	return "Credit Card"
}

// ParsePaymentMethod accepts "card", "paypal" or a backend label.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "", "card", "creditcard":
		return MethodCard, nil
	case "paypal":
		return MethodPayPal, nil
	}
	return MethodCard, fmt.Errorf("unknown payment method %q", s)
}

// StatusCompleted is the status sent with every submitted donation.
const StatusCompleted = "Completed"

const (
	invalidAmountMessage = "Please enter a valid donation amount greater than ₱0.00."
	submitFallback       = "Donation failed. Please try again."
)

var (
	// ErrNotSignedIn is returned by Confirm when no identity is present.
	ErrNotSignedIn = errors.New("Please log in to make a donation.")
	// ErrNotReady is returned by Confirm outside the payment step.
	ErrNotReady = errors.New("donation: confirm is only available at the payment step")
	// ErrInProgress is returned while another Confirm is running.
	ErrInProgress = errors.New("donation: a submission is already in progress")
	// ErrNoReceipt is returned by Receipt before any successful donation.
	ErrNoReceipt = errors.New("donation: no completed donation to show a receipt for")
)

// ValidationError is an input problem caught before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// SubmitError reports a failed submission. The intent is kept so the
// caller can retry Confirm without re-entering data.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }

func (e *SubmitError) Unwrap() error { return e.Err }

// Intent is the in-progress form state.
type Intent struct {
	Amount    string
	Target    TargetKind
	TargetRef string
	Method    PaymentMethod
	Step      Step
}

// Outcome describes a successful submission.
type Outcome struct {
	Donation *api.Donation
	PetID    int64
	Total    float64
	Message  string
}

// IdentitySource supplies the signed-in identity.
type IdentitySource interface {
	Get() *session.Identity
}

// Backend is the subset of the API client the flow needs.
type Backend interface {
	GetPet(ctx context.Context, petID int64) (*api.Pet, error)
	ListPets(ctx context.Context, status string) ([]api.Pet, error)
	CreateDonation(ctx context.Context, req api.DonationRequest) (*api.Donation, error)
	GetReceipt(ctx context.Context, donationID int64) (*api.Receipt, error)
	ListUserDonations(ctx context.Context, userID int64) ([]api.Donation, error)
}

// Flow is the donation state machine. It is safe for concurrent use.
type Flow struct {
	identities IdentitySource
	backend    Backend
	total      *Total
	events     *eventLogger

	mu         sync.Mutex
	intent     Intent
	submitting bool
	lastID     int64
}

// NewFlow creates a flow in the input step.
func NewFlow(identities IdentitySource, backend Backend, total *Total) *Flow {
	return &Flow{
		identities: identities,
		backend:    backend,
		total:      total,
		events:     newEventLogger(),
	}
}

// Intent returns a copy of the current form state.
func (f *Flow) Intent() Intent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.intent
}

// SetAmount records the raw amount text.
func (f *Flow) SetAmount(amount string) {
	f.mu.Lock()
	f.intent.Amount = amount
	f.mu.Unlock()
}

// SetTarget selects the donation target. ref is a pet id or name and is
// ignored for general donations.
func (f *Flow) SetTarget(kind TargetKind, ref string) {
	f.mu.Lock()
	f.intent.Target = kind
	f.intent.TargetRef = strings.TrimSpace(ref)
	f.mu.Unlock()
}

// SetPaymentMethod selects the payment method.
func (f *Flow) SetPaymentMethod(m PaymentMethod) {
	f.mu.Lock()
	f.intent.Method = m
	f.mu.Unlock()
}

// Advance moves from input to payment when the amount is a plain decimal
// number greater than zero. Otherwise it returns a *ValidationError and the step
// is unchanged.
func (f *Flow) Advance() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := parseAmount(f.intent.Amount); err != nil {
		return err
	}
	f.intent.Step = StepPayment
	return nil
}

// Edit returns to the input step keeping every entered field.
func (f *Flow) Edit() {
	f.mu.Lock()
	f.intent.Step = StepInput
	f.mu.Unlock()
}

// Confirm submits the donation. It is only valid at the payment step.
func (f *Flow) Confirm(ctx context.Context) (*Outcome, error) {
	f.mu.Lock()
	if f.intent.Step != StepPayment {
		f.mu.Unlock()
		return nil, ErrNotReady
	}
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrInProgress
	}
	intent := f.intent
	amount, err := parseAmount(intent.Amount)
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.submitting = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	id := f.identities.Get()
	if id == nil {
		return nil, ErrNotSignedIn
	}

	var petID int64
	if intent.Target == TargetPet && intent.TargetRef != "" {
		petID = f.resolvePet(ctx, intent.TargetRef)
	}

	donation, err := f.backend.CreateDonation(ctx, api.DonationRequest{
		Amount:        amount,
		PaymentMethod: intent.Method.Label(),
		Status:        StatusCompleted,
		UserID:        id.UserID,
		PetID:         petID,
	})
	if err != nil {
		f.events.failed(id.UserID, amount, intent.Method, err)
		return nil, &SubmitError{Message: submitMessage(err), Err: err}
	}
	f.events.submitted(id.UserID, amount, intent.Method, petID, donation.DonationID)

	total := f.total.Add(amount)
	msg := "Thank you for your donation of " + FormatPeso(amount)
	if intent.Target == TargetPet && intent.TargetRef != "" {
		msg += " for " + intent.TargetRef
	}
	msg += "!"

	f.mu.Lock()
	f.lastID = donation.DonationID
	f.intent = Intent{}
	f.mu.Unlock()

	return &Outcome{Donation: donation, PetID: petID, Total: total, Message: msg}, nil
}

// LastDonationID returns the id of the most recent successful donation.
func (f *Flow) LastDonationID() (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastID, f.lastID > 0
}

// Receipt fetches the receipt of the most recent successful donation.
// Each call fetches again.
func (f *Flow) Receipt(ctx context.Context) (*api.Receipt, error) {
	id, ok := f.LastDonationID()
	if !ok {
		return nil, ErrNoReceipt
	}
	return f.ReceiptFor(ctx, id)
}

// ReceiptFor fetches the receipt for any donation id.
func (f *Flow) ReceiptFor(ctx context.Context, donationID int64) (*api.Receipt, error) {
	receipt, err := f.backend.GetReceipt(ctx, donationID)
	if err != nil {
		f.events.receiptFailed(donationID, err)
		return nil, err
	}
	return receipt, nil
}

// History lists the signed-in user's donations.
func (f *Flow) History(ctx context.Context) ([]api.Donation, error) {
	id := f.identities.Get()
	if id == nil {
		return nil, ErrNotSignedIn
	}
	return f.backend.ListUserDonations(ctx, id.UserID)
}

// resolvePet maps ref to a pet id, first as a numeric id and then as a
// case-insensitive name substring. Zero means unresolved.
func (f *Flow) resolvePet(ctx context.Context, ref string) int64 {
	if n, err := strconv.ParseInt(ref, 10, 64); err == nil && n > 0 {
		pet, err := f.backend.GetPet(ctx, n)
		if err == nil && pet != nil && pet.PetID > 0 {
			return pet.PetID
		}
		f.events.targetUnresolved(ref, err)
		return 0
	}

	pets, err := f.backend.ListPets(ctx, "")
	if err != nil {
		f.events.targetUnresolved(ref, err)
		return 0
	}
	needle := strings.ToLower(ref)
	for _, pet := range pets {
		if strings.Contains(strings.ToLower(pet.Name), needle) {
			return pet.PetID
		}
	}
	f.events.targetUnresolved(ref, nil)
	return 0
}

// amountPattern accepts plain decimal numbers only.
var amountPattern = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)$`)

func parseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if !amountPattern.MatchString(raw) {
		return 0, &ValidationError{Field: "amount", Message: invalidAmountMessage}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || v <= 0 {
		return 0, &ValidationError{Field: "amount", Message: invalidAmountMessage}
	}
	return v, nil
}

func submitMessage(err error) string {
	if msg, ok := api.ServerMessage(err); ok {
		return msg
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return api.Message(err, submitFallback)
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return submitFallback
}
