// Package policy holds the password and email rules applied before any
// account call is made. Everything here is pure.
package policy

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128

	// strongLength is the length from which a password with a letter and a
	// digit is rated strong.
	strongLength = 8
)

// Strength is the label shown next to a password being typed.
type Strength string

const (
	StrengthEmpty  Strength = "empty"
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

var (
	ErrTooShort            = errors.New("password must be at least 6 characters long")
	ErrTooLong             = errors.New("password must be at most 128 characters long")
	ErrNeedsLetterAndDigit = errors.New("password must contain a letter and a number")
	ErrMismatch            = errors.New("passwords do not match")
	ErrInvalidEmail        = errors.New("invalid email address")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Rate returns the strength label of password. Length is counted in
// characters, not bytes.
func Rate(password string) Strength {
	n := utf8.RuneCountInString(password)
	switch {
	case n == 0:
		return StrengthEmpty
	case n < MinPasswordLength:
		return StrengthWeak
	case n < strongLength:
		return StrengthMedium
	case hasLetterAndDigit(password):
		return StrengthStrong
	default:
		return StrengthMedium
	}
}

// Validate returns nil when password is acceptable. A 6 or 7 character
// password with a letter and a digit passes even though Rate calls it medium.
func Validate(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return ErrTooShort
	}
	if n > MaxPasswordLength {
		return ErrTooLong
	}
	if !hasLetterAndDigit(password) {
		return ErrNeedsLetterAndDigit
	}
	return nil
}

// CheckConfirmation reports ErrMismatch when the two entries differ.
func CheckConfirmation(password, confirm string) error {
	if password != confirm {
		return ErrMismatch
	}
	return nil
}

// NormalizeEmail trims and lower-cases an address. Emails are compared in
// this form everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the normalized form of email against a loose
// local@domain.tld shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(NormalizeEmail(email)) {
		return ErrInvalidEmail
	}
	return nil
}

// only ASCII letters and digits count, matching [A-Za-z] and \d
func hasLetterAndDigit(s string) bool {
	var letter, digit bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			letter = true
		case c >= '0' && c <= '9':
			digit = true
		}
		if letter && digit {
			return true
		}
	}
	return false
}
