package model

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
)

// ErrorKind classifies an update failure. The set is closed: presentation
// code branches on the kind and never inspects the underlying cause.
type ErrorKind string

const (
	// ErrNetworkUnavailable means the remote host could not be reached
	ErrNetworkUnavailable ErrorKind = "NetworkUnavailable"

	// ErrRequestTimeout means the request exceeded its deadline
	ErrRequestTimeout ErrorKind = "RequestTimeout"

	// ErrServerUnavailable means the server answered with a 5xx status
	ErrServerUnavailable ErrorKind = "ServerUnavailable"

	// ErrRateLimitExceeded means the server throttled the request (429/403)
	ErrRateLimitExceeded ErrorKind = "RateLimitExceeded"

	// ErrResourceNotFound means the requested registry entry or artifact is missing
	ErrResourceNotFound ErrorKind = "ResourceNotFound"

	// ErrInvalidResponse means the payload was malformed or missed a required field
	ErrInvalidResponse ErrorKind = "InvalidResponse"

	// ErrCorrupted means the downloaded artifact failed integrity validation
	ErrCorrupted ErrorKind = "Corrupted"

	// ErrStorage means a local filesystem write or rename failed
	ErrStorage ErrorKind = "StorageError"

	// ErrUnknown covers anything the classifier could not categorize
	ErrUnknown ErrorKind = "Unknown"
)

// User-facing message per kind. Derived from the kind alone so that no status
// code or transport error text ever reaches the presentation layer.
var kindMessages = map[ErrorKind]string{
	ErrNetworkUnavailable: "No internet connection. Check your network and try again.",
	ErrRequestTimeout:     "The request took too long. Try again.",
	ErrServerUnavailable:  "The update service is temporarily unavailable. Try again later.",
	ErrRateLimitExceeded:  "Too many update checks right now. Try again in a few minutes.",
	ErrResourceNotFound:   "The requested model version was not found.",
	ErrInvalidResponse:    "The update service sent an unexpected reply.",
	ErrCorrupted:          "The downloaded model was incomplete or corrupted.",
	ErrStorage:            "The model could not be saved to device storage.",
	ErrUnknown:            "Something went wrong while updating. Try again.",
}

// UpdateError is the one failure shape produced by the version resolver and
// the download pipeline.
type UpdateError struct {
	Kind  ErrorKind
	cause error
}

// NewUpdateError wraps cause with a classified kind
func NewUpdateError(kind ErrorKind, cause error) *UpdateError {
	return &UpdateError{Kind: kind, cause: cause}
}

// Error returns the diagnostic representation, including the cause. Intended
// for logs only, never for display.
func (e *UpdateError) Error() string {
	if e.cause == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.cause)
}

// Unwrap exposes the underlying cause for errors.Is/As chains
func (e *UpdateError) Unwrap() error {
	return e.cause
}

// Message returns the user-facing text for the error kind
func (e *UpdateError) Message() string {
	if msg, ok := kindMessages[e.Kind]; ok {
		return msg
	}
	return kindMessages[ErrUnknown]
}

// MessageFor returns the user-facing text for err. Errors that are not an
// UpdateError degrade to the Unknown message.
func MessageFor(err error) string {
	var ue *UpdateError
	if errors.As(err, &ue) {
		return ue.Message()
	}
	return kindMessages[ErrUnknown]
}

// KindOf returns the classified kind of err, or ErrUnknown
func KindOf(err error) ErrorKind {
	var ue *UpdateError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ErrUnknown
}

// Classify maps a transport or filesystem error to an UpdateError. Rules are
// applied in order: error type first, then best-effort message inspection;
// the first match wins. Status codes are classified separately by
// ClassifyStatus because a non-OK response is not a Go error.
func Classify(err error) *UpdateError {
	if err == nil {
		return nil
	}
	var ue *UpdateError
	if errors.As(err, &ue) {
		return ue
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewUpdateError(ErrRequestTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewUpdateError(ErrRequestTimeout, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NewUpdateError(ErrNetworkUnavailable, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return NewUpdateError(ErrNetworkUnavailable, err)
	}
	if errors.Is(err, os.ErrPermission) {
		return NewUpdateError(ErrStorage, err)
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return NewUpdateError(ErrStorage, err)
	}

	// Residual string inspection for wrapped transports that hide their type
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return NewUpdateError(ErrRequestTimeout, err)
	case strings.Contains(msg, "no such host") || strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "network is unreachable"):
		return NewUpdateError(ErrNetworkUnavailable, err)
	case strings.Contains(msg, "no space left") || strings.Contains(msg, "permission denied"):
		return NewUpdateError(ErrStorage, err)
	}
	return NewUpdateError(ErrUnknown, err)
}

// ClassifyStatus maps a non-OK HTTP status to an UpdateError kind
func ClassifyStatus(statusCode int) *UpdateError {
	err := fmt.Errorf("unexpected status %d", statusCode)
	switch {
	case statusCode == http.StatusNotFound:
		return NewUpdateError(ErrResourceNotFound, err)
	case statusCode == http.StatusTooManyRequests || statusCode == http.StatusForbidden:
		return NewUpdateError(ErrRateLimitExceeded, err)
	case statusCode >= 500:
		return NewUpdateError(ErrServerUnavailable, err)
	default:
		return NewUpdateError(ErrUnknown, err)
	}
}
