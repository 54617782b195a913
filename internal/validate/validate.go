package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[A-Za-z0-9 _'&.,\-]{1,80}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reSlug  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// BlockedEmailDomains are personal webmail providers not accepted for quotes.
var BlockedEmailDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "live.com"}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// PersonalEmail reports whether the address belongs to a blocked webmail domain.
func PersonalEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(s[at+1:]))
	for _, d := range BlockedEmailDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 80 {
		s = s[:80]
	}
	return s, reQ.MatchString(s)
}

// Qty parses a form quantity, clamped to 1..10000.
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 10000 {
		return 10000
	}
	return n
}

// ID validates a simple resource identifier (product/supplier/category ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Slug accepts lowercase dash-separated slugs and plain ids.
func Slug(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if reSlug.MatchString(s) {
		return s, true
	}
	return ID(s)
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}
