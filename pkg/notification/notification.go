/*
Package notification collects business-rule violations raised during a use case
and renders them as a success/failure outcome with a suggested status code.

Domain and application code never throw business errors past the use-case
boundary; they add notifications to a scoped Handler and return a Result.
Infrastructure failures stay ordinary Go errors.
*/
package notification

import "sync"

// Type classifies the severity of a notification.
type Type int

const (
	TypeInfo Type = iota
	TypeWarning
	TypeError
)

// String returns the lowercase name of the type.
func (t Type) String() string {
	switch t {
	case TypeWarning:
		return "warning"
	case TypeError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a single business message keyed by a machine-readable code.
type Notification struct {
	Key     string `json:"key"`
	Message string `json:"message"`
	Type    Type   `json:"type"`
}

// Handler accumulates notifications for the lifetime of one use-case execution.
// A Handler is created per scope (request, job, test) and is safe for
// concurrent use.
type Handler struct {
	mu            sync.Mutex
	notifications []Notification
}

// NewHandler creates an empty notification handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Add records a notification of the given type.
func (h *Handler) Add(key, message string, t Type) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifications = append(h.notifications, Notification{Key: key, Message: message, Type: t})
}

// AddError records an error-severity notification.
func (h *Handler) AddError(key, message string) {
	h.Add(key, message, TypeError)
}

// AddWarning records a warning-severity notification.
func (h *Handler) AddWarning(key, message string) {
	h.Add(key, message, TypeWarning)
}

// Notifications returns a copy of the collected notifications in order.
func (h *Handler) Notifications() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Notification, len(h.notifications))
	copy(out, h.notifications)
	return out
}

// HasNotifications reports whether anything has been collected.
func (h *Handler) HasNotifications() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.notifications) > 0
}

// HasErrors reports whether any error-severity notification has been collected.
func (h *Handler) HasErrors() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, n := range h.notifications {
		if n.Type == TypeError {
			return true
		}
	}
	return false
}

// Clear drops all collected notifications, returning the handler to its
// initial state. Used when a scoped handler is reused across attempts.
func (h *Handler) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifications = nil
}
