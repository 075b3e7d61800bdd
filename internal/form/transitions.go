package form

import "github.com/ignite/subscribebox/internal/domain"

// Policy parameterizes the transitions.
type Policy struct {
	Messages                 domain.Messages
	ResetSubmittingOnFailure bool
}

// ChangeEmail records new input text. No validation happens here.
func ChangeEmail(s domain.FormState, text string) domain.FormState {
	s.Email = text
	return s
}

// BeginSubmit marks the start of a submit attempt.
func BeginSubmit(s domain.FormState) domain.FormState {
	s.IsSubmitting = true
	return s
}

// RejectInvalid applies a failed validation. IsSubmitting is left untouched
// unless the policy says otherwise.
func RejectInvalid(s domain.FormState, p Policy) domain.FormState {
	s.Status = domain.StatusError
	s.Message = p.Messages.Invalid
	if p.ResetSubmittingOnFailure {
		s.IsSubmitting = false
	}
	return s
}

// ApplyResponse applies a decoded endpoint answer. Success clears the input;
// a rejection keeps it so the user can correct and resubmit.
func ApplyResponse(s domain.FormState, success bool, p Policy) domain.FormState {
	s.IsSubmitting = false
	if success {
		s.Status = domain.StatusSuccess
		s.Message = p.Messages.Subscribed
		s.Email = ""
		return s
	}
	s.Status = domain.StatusError
	s.Message = p.Messages.Rejected
	return s
}

// ApplyFailure applies a request failure. responseReceived is true when a
// response arrived but could not be read or decoded; the loading flag is
// cleared in that case because the request window is over.
func ApplyFailure(s domain.FormState, responseReceived bool, p Policy) domain.FormState {
	s.Status = domain.StatusError
	s.Message = p.Messages.Failed
	if responseReceived || p.ResetSubmittingOnFailure {
		s.IsSubmitting = false
	}
	return s
}

// ClearFeedback is the delayed reset after a success.
func ClearFeedback(s domain.FormState) domain.FormState {
	s.Status = domain.StatusNone
	s.Message = ""
	return s
}
