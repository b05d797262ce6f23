package model

import (
	"errors"
	"fmt"
	"strings"

	formmodel "github.com/wso2/informed-consent-api/internal/consentform/model"
	"github.com/wso2/informed-consent-api/internal/system/constants"
)

// ConsentState is the lifecycle state of a response.
type ConsentState string

const (
	ConsentStateNotGranted ConsentState = "NOT_GRANTED"
	ConsentStateGranted    ConsentState = "GRANTED"
)

var (
	// ErrUnknownConsentState is returned for a state outside the closed set.
	ErrUnknownConsentState = errors.New("unknown consent state")
	// ErrSignatureRequired is returned when granting a SIGNATURE form without a signature.
	ErrSignatureRequired = errors.New("a signature is required to grant consent on this form")
)

// IsValid reports whether s is a known state.
func (s ConsentState) IsValid() bool {
	return s == ConsentStateNotGranted || s == ConsentStateGranted
}

// ParseConsentState parses a state name, case-insensitively.
func ParseConsentState(value string) (ConsentState, error) {
	s := ConsentState(strings.ToUpper(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownConsentState, value)
	}
	return s, nil
}

// ConsentStateFor maps a participant's decision to a state.
func ConsentStateFor(granted bool) ConsentState {
	if granted {
		return ConsentStateGranted
	}
	return ConsentStateNotGranted
}

// Transition checks that a response may move from one state to another.
// Granting a SIGNATURE form needs a non-empty signature, except that a response already
// granted with a stored signature may be re-granted without resending it.
func Transition(from, to ConsentState, method formmodel.SigningMethod, signature []byte, hasStoredSignature bool) error {
	if !from.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownConsentState, from)
	}
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownConsentState, to)
	}
	if to != ConsentStateGranted || !method.RequiresSignature() {
		return nil
	}
	if len(signature) > 0 {
		return nil
	}
	if from == ConsentStateGranted && hasStoredSignature {
		return nil
	}
	return ErrSignatureRequired
}

// BuildRedirectLink substitutes the response ID into the form link template.
// Only the first placeholder is replaced and the ID is not URL-encoded.
func BuildRedirectLink(formLink, responseID string) string {
	return strings.Replace(formLink, constants.ParticipantIDPlaceholder, responseID, 1)
}
