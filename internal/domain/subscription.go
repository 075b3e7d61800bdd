package domain

import (
	"encoding/json"
	"errors"
)

var (
	// ErrNullResponse is returned when the response body is the JSON literal null.
	// Reading a field from it is a parse failure, not an application failure.
	ErrNullResponse = errors.New("response body is null")

	// ErrUnreadableResponse marks failures that happen after a response arrived
	// (body read or decode), as opposed to transport failures.
	ErrUnreadableResponse = errors.New("subscription response unreadable")
)

// SubscriptionRequest is the outbound payload, created fresh per submission.
type SubscriptionRequest struct {
	Email string `json:"email"`
}

// SubscriptionResponse is the decoded answer of the subscription endpoint.
//
// Success follows JavaScript truthiness of the "success" field: a missing
// field, null, false, 0 and "" are false; every other value is true. A body
// that is valid JSON but not an object (a bare string, number or array)
// yields Success == false.
type SubscriptionResponse struct {
	Success bool `json:"success"`
}

// UnmarshalJSON implements json.Unmarshaler with the truthiness rules above.
func (r *SubscriptionResponse) UnmarshalJSON(data []byte) error {
	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	if body == nil {
		return ErrNullResponse
	}

	obj, ok := body.(map[string]any)
	if !ok {
		r.Success = false
		return nil
	}
	r.Success = truthy(obj["success"])
	return nil
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		// objects and arrays are always truthy
		return true
	}
}
