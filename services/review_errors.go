package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the review state machine. All of them are
// recoverable by the caller; none is fatal to the process.
const (
	ErrCodeInvalidTransition      = "invalid_transition"
	ErrCodeForbidden              = "forbidden"
	ErrCodePaymentRequired        = "payment_required"
	ErrCodeNoFreeReviewAvailable  = "no_free_review_available"
	ErrCodeNoSubstantiveChange    = "no_substantive_change"
	ErrCodeMissingRejectionNote   = "missing_rejection_note"
	ErrCodeNotFound               = "not_found"
	ErrCodeConcurrentModification = "concurrent_modification"
)

// TransitionError is the structured failure returned by ReviewService. It
// names the offending field and the current/target states for client display.
type TransitionError struct {
	Code          string `json:"code"`
	Field         string `json:"field,omitempty"`
	CurrentStatus string `json:"current_status,omitempty"`
	TargetStatus  string `json:"target_status,omitempty"`
	Message       string `json:"message"`
}

func (e *TransitionError) Error() string {
	if e.CurrentStatus != "" || e.TargetStatus != "" {
		return fmt.Sprintf("%s: %s (%s -> %s)", e.Code, e.Message, e.CurrentStatus, e.TargetStatus)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus maps the error code to the response status used by controllers.
func (e *TransitionError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodePaymentRequired:
		return http.StatusPaymentRequired
	case ErrCodeConcurrentModification:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// AsTransitionError unwraps err into a TransitionError when possible.
func AsTransitionError(err error) (*TransitionError, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

func errInvalidTransition(current, target string) *TransitionError {
	return &TransitionError{
		Code:          ErrCodeInvalidTransition,
		Field:         "status",
		CurrentStatus: current,
		TargetStatus:  target,
		Message:       fmt.Sprintf("cannot transition from %s to %s", current, target),
	}
}

func errForbidden(current, target, message string) *TransitionError {
	return &TransitionError{
		Code:          ErrCodeForbidden,
		CurrentStatus: current,
		TargetStatus:  target,
		Message:       message,
	}
}

func errPaymentRequired(current, target string, amount float64) *TransitionError {
	return &TransitionError{
		Code:          ErrCodePaymentRequired,
		Field:         "status",
		CurrentStatus: current,
		TargetStatus:  target,
		Message:       fmt.Sprintf("a successful unused payment of %.2f is required", amount),
	}
}

func errNoFreeReviewAvailable(current, target string) *TransitionError {
	return &TransitionError{
		Code:          ErrCodeNoFreeReviewAvailable,
		Field:         "is_free_review",
		CurrentStatus: current,
		TargetStatus:  target,
		Message:       "no free reviews available",
	}
}

func errNoSubstantiveChange(current, target string) *TransitionError {
	return &TransitionError{
		Code:          ErrCodeNoSubstantiveChange,
		Field:         "content",
		CurrentStatus: current,
		TargetStatus:  target,
		Message:       "resubmission must change the title, abstract, content or attached files",
	}
}

func errMissingRejectionNote(current string) *TransitionError {
	return &TransitionError{
		Code:          ErrCodeMissingRejectionNote,
		Field:         "rejection_note",
		CurrentStatus: current,
		TargetStatus:  "rejected", // the only action that needs a note
		Message:       "a rejection note is required when rejecting a publication",
	}
}

func errPublicationNotFound(publicationID string) *TransitionError {
	return &TransitionError{
		Code:    ErrCodeNotFound,
		Field:   "publication_id",
		Message: fmt.Sprintf("publication %s not found", publicationID),
	}
}

func errConcurrentModification(current, target string) *TransitionError {
	return &TransitionError{
		Code:          ErrCodeConcurrentModification,
		Field:         "status",
		CurrentStatus: current,
		TargetStatus:  target,
		Message:       "the publication was modified concurrently, please retry",
	}
}
