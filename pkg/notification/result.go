package notification

// Result is the outcome of a use-case operation: either a value or a set of
// notifications explaining why the value could not be produced. SuggestedStatus
// is a transport hint (net/http status code) for an outer presentation layer;
// this package never touches HTTP itself.
type Result[T any] struct {
	Value           T
	Notifications   []Notification
	SuggestedStatus int
}

// IsSuccess reports whether the result carries no error-severity notification.
func (r Result[T]) IsSuccess() bool {
	for _, n := range r.Notifications {
		if n.Type == TypeError {
			return false
		}
	}
	return true
}

// Success builds a successful result. Warnings and infos may still accompany
// a success.
func Success[T any](value T, status int, notifications ...Notification) Result[T] {
	return Result[T]{Value: value, Notifications: notifications, SuggestedStatus: status}
}

// Failure builds a failed result from the given notifications. At least one of
// them must be error-severity; a failure without an error would be
// indistinguishable from success, so we add a generic one rather than panic.
func Failure[T any](notifications []Notification, status int) Result[T] {
	hasError := false
	for _, n := range notifications {
		if n.Type == TypeError {
			hasError = true
			break
		}
	}
	if !hasError {
		notifications = append(notifications, Notification{
			Key:     "result.failure",
			Message: "operation failed",
			Type:    TypeError,
		})
	}
	var zero T
	return Result[T]{Value: zero, Notifications: notifications, SuggestedStatus: status}
}

// FailureFrom builds a failed result from everything collected by a handler.
func FailureFrom[T any](h *Handler, status int) Result[T] {
	return Failure[T](h.Notifications(), status)
}
