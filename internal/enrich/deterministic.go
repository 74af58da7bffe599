package enrich

import (
	"net/mail"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeName collapses whitespace and title-cases each token:
// "  jOHN   dOE " becomes "John Doe". Empty input stays empty.
func NormalizeName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	// Casers are stateful; build one per call so records from concurrent
	// jobs never share it.
	return cases.Title(language.Und).String(strings.Join(fields, " "))
}

// ValidEmail reports whether email parses as a bare address under the
// standard address grammar. Display-name forms ("Jane <j@x.com>") are
// rejected: a contact field should hold just the address.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
