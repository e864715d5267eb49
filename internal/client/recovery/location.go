package recovery

import (
	"net/url"
	"strings"
)

// TypeRecovery is the link type the auth service puts on password-reset
// links.
const TypeRecovery = "recovery"

// Params are the recovery values carried by a redirect link.
type Params struct {
	AccessToken  string
	RefreshToken string
	Type         string
}

// HasTokens reports whether both tokens are present.
func (p Params) HasTokens() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

func (p Params) complete() bool {
	return p.HasTokens() && p.Type != ""
}

// fill copies values p is missing from other.
func (p *Params) fill(other Params) {
	if p.AccessToken == "" {
		p.AccessToken = other.AccessToken
	}
	if p.RefreshToken == "" {
		p.RefreshToken = other.RefreshToken
	}
	if p.Type == "" {
		p.Type = other.Type
	}
}

// ParseLocation extracts recovery parameters from a link. The query string
// is read first. If it is incomplete, everything after the last '#' is read
// as a query string too, which covers hash routing where the service
// appends its own fragment after the route ("#/reset#access_token=...").
// A route fragment that carries its own query ("#/reset?type=...") is read
// from its '?' on. Values found in the query win.
func ParseLocation(raw string) Params {
	raw = strings.TrimSpace(raw)

	var p Params
	if u, err := url.Parse(raw); err == nil {
		p = fromValues(u.Query())
	} else if q, ok := queryPart(raw); ok {
		p = fromQuery(q)
	}
	if p.complete() {
		return p
	}

	i := strings.LastIndex(raw, "#")
	if i < 0 {
		return p
	}
	frag := raw[i+1:]
	if j := strings.Index(frag, "?"); j >= 0 {
		frag = frag[j+1:]
	}
	p.fill(fromQuery(frag))
	return p
}

// queryPart returns what lies between the first '?' and the first '#'.
func queryPart(raw string) (string, bool) {
	before, _, _ := strings.Cut(raw, "#")
	_, q, ok := strings.Cut(before, "?")
	return q, ok
}

func fromQuery(q string) Params {
	// ParseQuery keeps the pairs it could decode alongside the error
	v, _ := url.ParseQuery(q)
	return fromValues(v)
}

func fromValues(v url.Values) Params {
	return Params{
		AccessToken:  v.Get("access_token"),
		RefreshToken: v.Get("refresh_token"),
		Type:         v.Get("type"),
	}
}

// RedirectURL builds origin + path + "#/<route>" from base, dropping any
// query or fragment base already had.
func RedirectURL(base, route string) string {
	route = "#/" + strings.TrimLeft(route, "#/")

	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		b, _, _ := strings.Cut(base, "#")
		b, _, _ = strings.Cut(b, "?")
		return b + route
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	return u.String() + route
}
