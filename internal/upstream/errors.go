package upstream

import "fmt"

// ErrorKind classifies how an upstream call failed.
type ErrorKind string

const (
	// KindNetwork is a transport-level failure: no response was received.
	KindNetwork ErrorKind = "network"
	// KindHTTP is a response with a non-2xx status.
	KindHTTP ErrorKind = "http"
	// KindApplication is a 2xx response whose body signals a logical failure
	// (ok:false or success:false).
	KindApplication ErrorKind = "application"
)

// Error is a normalized upstream failure carrying a display-ready message.
// The message comes from the response body's "error" field when present, and
// falls back to "Error <status>" otherwise.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func failureMessage(bodyError string, status int) string {
	if bodyError != "" {
		return bodyError
	}
	return fmt.Sprintf("Error %d", status)
}
