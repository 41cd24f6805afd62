package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies how a call failed.
type Kind int

const (
	// KindServer means a response arrived with a non-2xx status.
	KindServer Kind = iota
	// KindUnreachable means the request was sent but no response arrived.
	KindUnreachable
	// KindNetwork means the request could not be issued at all.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindUnreachable:
		return "unreachable"
	default:
		return "network"
	}
}

const (
	// UnreachableMessage is shown when the backend never answered.
	UnreachableMessage = "Cannot connect to server. Please make sure the backend is running."
	// NetworkMessage is shown for any other transport failure.
	NetworkMessage = "Network error. Please check your connection."
)

// Error is returned by every Client call that does not succeed.
type Error struct {
	Kind   Kind
	Method string
	Path   string
	// Status is the HTTP status for KindServer, otherwise 0.
	Status int
	// ServerMessage is taken from the response body's "message" field,
	// falling back to its "error" field. Empty when neither is present.
	ServerMessage string
	Body          []byte
	Err           error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindServer:
		if e.ServerMessage != "" {
			return fmt.Sprintf("api: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.ServerMessage)
		}
		return fmt.Sprintf("api: %s %s: status %d", e.Method, e.Path, e.Status)
	default:
		return fmt.Sprintf("api: %s %s: %s: %v", e.Method, e.Path, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// ServerMessage returns the message the backend supplied with err, if any.
func ServerMessage(err error) (string, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.ServerMessage != "" {
		return apiErr.ServerMessage, true
	}
	return "", false
}

// Message derives a user-facing message from err in priority order: the
// server's message, the server's error field, fallback for a response
// without either, a fixed unreachable message when no response arrived,
// and a generic network message otherwise.
func Message(err error, fallback string) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return NetworkMessage
	}
	switch apiErr.Kind {
	case KindServer:
		if apiErr.ServerMessage != "" {
			return apiErr.ServerMessage
		}
		return fallback
	case KindUnreachable:
		return UnreachableMessage
	default:
		return NetworkMessage
	}
}

func extractServerMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, field := range []string{"message", "error"} {
		r := gjson.GetBytes(body, field)
		if r.Type == gjson.String {
			if s := strings.TrimSpace(r.Str); s != "" {
				return s
			}
		}
	}
	return ""
}
