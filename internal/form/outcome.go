package form

// Outcome is the result branch a submit attempt ended in.
type Outcome int

const (
	OutcomeInvalid Outcome = iota
	OutcomeSubscribed
	OutcomeRejected
	OutcomeFailed
	OutcomeBusy
	OutcomeClosed
)

var outcomeNames = map[Outcome]string{
	OutcomeInvalid:    "invalid",
	OutcomeSubscribed: "subscribed",
	OutcomeRejected:   "rejected",
	OutcomeFailed:     "failed",
	OutcomeBusy:       "busy",
	OutcomeClosed:     "closed",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the outcome by name in JSON payloads.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
