package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     Strength
	}{
		{"empty", "", StrengthEmpty},
		{"one char", "a", StrengthWeak},
		{"five chars", "abc12", StrengthWeak},
		{"six chars", "abc123", StrengthMedium},
		{"seven chars no digit", "abcdefg", StrengthMedium},
		{"eight letters only", "abcdefgh", StrengthMedium},
		{"eight digits only", "12345678", StrengthMedium},
		{"eight mixed", "abcd1234", StrengthStrong},
		{"long mixed with symbols", "Pa$$w0rd-long", StrengthStrong},
		{"non-ascii letters do not count", "ññññññ12", StrengthMedium},
		{"length counts runes", "ñññ", StrengthWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rate(tt.password))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"empty", "", ErrTooShort},
		{"five chars", "ab1cd", ErrTooShort},
		{"too long", strings.Repeat("a1", 65), ErrTooLong},
		{"exactly max", strings.Repeat("a1", 64), nil},
		{"letters only", "abcdefgh", ErrNeedsLetterAndDigit},
		{"digits only", "12345678", ErrNeedsLetterAndDigit},
		{"medium passes", "abc123", nil},
		{"strong passes", "abcd1234", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.password)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestShortPasswordsAreRejectedAndRatedLow(t *testing.T) {
	for n := 0; n < MinPasswordLength; n++ {
		p := strings.Repeat("a", n)
		require.ErrorIs(t, Validate(p), ErrTooShort, "len %d", n)
		assert.Contains(t, []Strength{StrengthEmpty, StrengthWeak}, Rate(p), "len %d", n)
	}
}

func TestValidPasswordsAreAtLeastMedium(t *testing.T) {
	for _, p := range []string{"abc123", "a1b2c3d", "abcd1234", "ZZZZZZZZZZ9"} {
		require.NoError(t, Validate(p))
		assert.Contains(t, []Strength{StrengthMedium, StrengthStrong}, Rate(p), p)
	}
}

func TestCheckConfirmation(t *testing.T) {
	require.NoError(t, CheckConfirmation("abc123", "abc123"))
	require.ErrorIs(t, CheckConfirmation("abc123", "abc124"), ErrMismatch)
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@x.com", "  User@Example.ORG ", "first.last@sub.domain.io"}
	invalid := []string{"", "plain", "a@b", "a b@x.com", "@x.com", "a@x."}

	for _, e := range valid {
		assert.NoError(t, ValidateEmail(e), e)
	}
	for _, e := range invalid {
		assert.ErrorIs(t, ValidateEmail(e), ErrInvalidEmail, e)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com\n"))
}
