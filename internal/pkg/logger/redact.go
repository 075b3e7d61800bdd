package logger

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// RedactEmail masks an email address for safe logging, keeping the domain.
// "john.doe@gmail.com" → "jo***@gmail.com", "ab@gmail.com" → "***@gmail.com".
// Empty input stays empty; anything without exactly one "@" becomes "***".
func RedactEmail(email string) string {
	if email == "" {
		return ""
	}
	name, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***"
	}
	if rs := []rune(name); len(rs) > 2 {
		return string(rs[:2]) + "***@" + domain
	}
	return "***@" + domain
}

// redactPIIValue masks email-keyed fields outright and any address embedded
// in other values (error strings carry request bodies).
func redactPIIValue(key, val string) string {
	if strings.Contains(strings.ToLower(key), "email") {
		return RedactEmail(val)
	}
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}
