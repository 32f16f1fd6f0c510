package scheduling

import "fmt"

// Error codes surfaced to callers. Handlers map these onto HTTP statuses so a
// client can tell "re-search slots" apart from "retry payment" and "fix a
// field".
const (
	CodeValidation       = "validation"
	CodePolicyDisallowed = "policyDisallowed"
	CodeSlotUnavailable  = "slotUnavailable"
	CodeSessionNotFound  = "sessionNotFound"
	CodeAccessDenied     = "accessDenied"
	CodePaymentProvider  = "paymentProvider"
)

type Error struct {
	Code    string
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(field, msg string) error {
	return &Error{Code: CodeValidation, Field: field, Message: msg}
}

func NewPolicyDisallowed(policyID string) error {
	return &Error{Code: CodePolicyDisallowed, Message: fmt.Sprintf("item policy %q is not bookable", policyID)}
}

func NewSlotUnavailable(slotID string) error {
	return &Error{Code: CodeSlotUnavailable, Message: fmt.Sprintf("slot %s is no longer available", slotID)}
}

func NewSessionNotFound(sessionID string) error {
	return &Error{Code: CodeSessionNotFound, Message: fmt.Sprintf("checkout session %s not found", sessionID)}
}

func NewAccessDenied() error {
	return &Error{Code: CodeAccessDenied, Message: "checkout session belongs to another resident"}
}

func NewPaymentProviderError(err error) error {
	return &Error{Code: CodePaymentProvider, Message: fmt.Sprintf("payment provider error: %v", err)}
}

// CodeOf extracts the error code, or empty for untyped errors.
func CodeOf(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
