package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Params
	}{
		{
			name: "query string",
			in:   "https://app.test/password-reset?access_token=at&refresh_token=rt&type=recovery",
			want: Params{AccessToken: "at", RefreshToken: "rt", Type: "recovery"},
		},
		{
			name: "double fragment",
			in:   "https://app.test/#/password-reset#access_token=at&expires_in=3600&refresh_token=rt&token_type=bearer&type=recovery",
			want: Params{AccessToken: "at", RefreshToken: "rt", Type: "recovery"},
		},
		{
			name: "single fragment",
			in:   "https://app.test/#access_token=at&refresh_token=rt&type=recovery",
			want: Params{AccessToken: "at", RefreshToken: "rt", Type: "recovery"},
		},
		{
			name: "hash route with query",
			in:   "https://app.test/#/password-reset?access_token=at&refresh_token=rt&type=recovery",
			want: Params{AccessToken: "at", RefreshToken: "rt", Type: "recovery"},
		},
		{
			name: "query fills first, fragment completes",
			in:   "https://app.test/?type=recovery#/password-reset#access_token=at&refresh_token=rt&type=signup",
			want: Params{AccessToken: "at", RefreshToken: "rt", Type: "recovery"},
		},
		{
			name: "escaped values",
			in:   "https://app.test/#/x#access_token=a%2Bb&refresh_token=r%20t&type=recovery",
			want: Params{AccessToken: "a+b", RefreshToken: "r t", Type: "recovery"},
		},
		{
			name: "nothing",
			in:   "https://app.test/#/password-reset",
			want: Params{},
		},
		{
			name: "not a url",
			in:   "  ::nonsense#access_token=at&refresh_token=rt  ",
			want: Params{AccessToken: "at", RefreshToken: "rt"},
		},
		{
			name: "empty",
			in:   "",
			want: Params{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocation(tt.in))
		})
	}
}

func TestParams_HasTokens(t *testing.T) {
	assert.True(t, Params{AccessToken: "a", RefreshToken: "r"}.HasTokens())
	assert.False(t, Params{AccessToken: "a"}.HasTokens())
	assert.False(t, Params{RefreshToken: "r", Type: "recovery"}.HasTokens())
}

func TestRedirectURL(t *testing.T) {
	tests := []struct {
		base, route, want string
	}{
		{"http://localhost:5173/", "password-reset", "http://localhost:5173/#/password-reset"},
		{"https://app.test/portal", "auth/callback", "https://app.test/portal#/auth/callback"},
		{"https://app.test/portal?x=1#/old", "#/password-reset", "https://app.test/portal#/password-reset"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RedirectURL(tt.base, tt.route), tt.base)
	}
}
