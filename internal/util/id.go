// Package util contains small internal helpers shared across packages.
package util

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random UUID string, used for envelope entry ids.
func NewID() string { return uuid.NewString() }

// NewMessageID synthesizes a WhatsApp-style message id (wamid). The HBgM
// prefix matches what the receiving system expects from real webhooks.
func NewMessageID() string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "wamid.HBgM" + hex
}

var phoneSeparators = regexp.MustCompile(`[+\-\s()]`)

// NormalizePhone strips common separators from a phone number and returns
// the digits with a validity flag (all digits, 10-15 chars).
func NormalizePhone(phone string) (string, bool) {
	clean := phoneSeparators.ReplaceAllString(phone, "")
	if len(clean) < 10 || len(clean) > 15 {
		return clean, false
	}
	for _, r := range clean {
		if r < '0' || r > '9' {
			return clean, false
		}
	}
	return clean, true
}
