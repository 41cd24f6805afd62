package donation

import (
	"time"

	"github.com/pawsitive-drive/pawsitive/internal/logging"
	log "github.com/sirupsen/logrus"
)

// eventLogger emits structured records for donation lifecycle events.
type eventLogger struct {
	logger *log.Entry
}

func newEventLogger() *eventLogger {
	return &eventLogger{logger: logging.Component("donation")}
}

func (l *eventLogger) submitted(userID int64, amount float64, method PaymentMethod, petID int64, donationID int64) {
	l.logger.WithFields(log.Fields{
		"event":       "donation_success",
		"user_id":     userID,
		"amount":      amount,
		"method":      method.Label(),
		"pet_id":      petID,
		"donation_id": donationID,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}).Info("donation submitted")
}

func (l *eventLogger) failed(userID int64, amount float64, method PaymentMethod, err error) {
	l.logger.WithFields(log.Fields{
		"event":     "donation_failed",
		"user_id":   userID,
		"amount":    amount,
		"method":    method.Label(),
		"error":     logging.Redact(err.Error()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}).Error("donation failed")
}

func (l *eventLogger) targetUnresolved(ref string, err error) {
	entry := l.logger.WithFields(log.Fields{
		"event":  "target_unresolved",
		"target": ref,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("pet target not found, submitting as general donation")
}

func (l *eventLogger) receiptFailed(donationID int64, err error) {
	l.logger.WithFields(log.Fields{
		"event":       "receipt_failed",
		"donation_id": donationID,
	}).WithError(err).Warn("receipt fetch failed")
}
