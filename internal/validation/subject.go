package validation

import (
	"errors"
	"net/mail"
	"strings"
)

// ValidateSubject checks the identity a credential is issued for. Subjects
// are typically emails but only non-emptiness is mandatory; email-shaped
// subjects additionally get an RFC 5322 format check.
func ValidateSubject(subject string) error {
	if strings.TrimSpace(subject) == "" {
		return errors.New("subject is required")
	}

	if len(subject) > 254 {
		return errors.New("subject is too long (max 254 characters)")
	}

	if strings.Contains(subject, "@") {
		_, err := mail.ParseAddress(subject)
		if err != nil {
			return errors.New("invalid email address format")
		}
	}

	return nil
}
