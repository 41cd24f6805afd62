package donation

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/pawsitive-drive/pawsitive/internal/logging"
	"github.com/pawsitive-drive/pawsitive/internal/storage"
)

// TotalKey is the durable key holding the running donation total.
const TotalKey = "pawsitiveDriveDonationTotal"

// Total is the locally displayed running sum of successful donations.
// It is best-effort: storage failures are logged and the in-memory value
// stays authoritative for the process.
type Total struct {
	mu      sync.Mutex
	storage storage.Storage
	value   float64
}

// NewTotal loads the running total from s. Missing or invalid values
// start at zero.
func NewTotal(s storage.Storage) *Total {
	t := &Total{storage: s}
	raw, ok, err := s.Get(TotalKey)
	if err != nil {
		logging.Component("donation").WithError(err).Warn("failed to read donation total")
		return t
	}
	if ok {
		t.value = parseTotal(raw)
	}
	return t
}

// Value returns the current total.
func (t *Total) Value() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

// Add adds amount, rounds to cents, persists, and returns the new total.
// Non-finite results leave the total unchanged.
func (t *Total) Add(amount float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := roundCents(t.value + amount)
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return t.value
	}
	t.value = next
	if err := t.storage.Set(TotalKey, strconv.FormatFloat(next, 'f', -1, 64)); err != nil {
		logging.Component("donation").WithError(err).Warn("failed to persist donation total")
	}
	return next
}

func parseTotal(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
