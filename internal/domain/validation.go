package domain

import "regexp"

// gmailPattern restricts accepted addresses to the gmail.com domain.
// Matching is case sensitive: "user@GMAIL.com" is rejected.
var gmailPattern = regexp.MustCompile(`^[\w.-]+@gmail\.com$`)

// IsGmailAddress reports whether email is a non-empty Gmail address.
func IsGmailAddress(email string) bool {
	return email != "" && gmailPattern.MatchString(email)
}
