package usecase

import "strings"

var contactKeywords = []string{
	"contact",
	"email",
	"phone",
	"reach",
	"message",
	"call",
	"connect",
}

// isContactRequest is a plain substring match, so "phone app" also counts.
func isContactRequest(q string) bool {
	q = strings.ToLower(q)
	for _, kw := range contactKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
