package pokemon

import (
	"errors"
	"fmt"
)

// ValidationError reports input that failed a validation rule.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError is returned when PokeAPI has no entity with the given name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Pokemon '%s' not found", e.Name)
}

// UpstreamKind classifies an UpstreamError.
type UpstreamKind string

const (
	KindRateLimited UpstreamKind = "rate_limited"
	KindStatus      UpstreamKind = "status"
	KindNetwork     UpstreamKind = "network"
	KindDecode      UpstreamKind = "decode"
)

// UpstreamError covers every failure talking to PokeAPI other than 404.
type UpstreamError struct {
	Kind    UpstreamKind
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case KindRateLimited:
		return "PokeAPI rate limit exceeded. Please try again later."
	case KindNetwork:
		if e.Err != nil {
			return "Network error: " + e.Err.Error()
		}
		return "Network error: " + e.Message
	default:
		if e.Err != nil {
			return "Failed to fetch Pokemon data: " + e.Message + ": " + e.Err.Error()
		}
		return "Failed to fetch Pokemon data: " + e.Message
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

const unknownMessage = "An unknown error occurred"

// Message collapses any error into the text shown to tool callers.
func Message(err error) string {
	if err == nil {
		return unknownMessage
	}
	msg := err.Error()
	if msg == "" {
		return unknownMessage
	}
	return msg
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsRateLimited reports whether err came from an HTTP 429.
func IsRateLimited(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Kind == KindRateLimited
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Kind == KindNetwork
}
