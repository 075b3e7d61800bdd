package domain

// Status enumerates the feedback states of the subscription form.
type Status string

const (
	StatusNone    Status = ""
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// String returns a printable name; StatusNone prints as "none".
func (s Status) String() string {
	if s == StatusNone {
		return "none"
	}
	return string(s)
}

// HasFeedback reports whether the status carries a user-facing message.
func (s Status) HasFeedback() bool {
	return s == StatusSuccess || s == StatusError
}

// FormState is the complete observable state of one rendered form instance.
//
// Message is non-empty exactly when Status is success or error.
type FormState struct {
	Email        string `json:"email"`
	Status       Status `json:"status"`
	Message      string `json:"message"`
	IsSubmitting bool   `json:"is_submitting"`
}

// Consistent reports whether the Message/Status invariant holds.
func (s FormState) Consistent() bool {
	return s.Status.HasFeedback() == (s.Message != "")
}
