// Package users manages accounts through a remote user API whose route is
// not known in advance. Every operation walks an ordered list of candidate
// base paths and request shapes and keeps the first one that answers with
// a 2xx status. A local cache of emails backs the remote list.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/accountkeeper/internal/client/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/client/policy"
	"github.com/dmitrijs2005/accountkeeper/internal/client/probe"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/netx"
	"github.com/google/uuid"
)

var (
	ErrCreateFailed = errors.New("could not create the user")
	ErrDeleteFailed = errors.New("could not delete the user on the server")
)

// fallbackPath is probed when no candidate paths are configured.
const fallbackPath = "/api/users"

// Auth is the part of the session the prober relies on: the bearer token
// for remote calls and direct sign-up when the user API refuses to create.
type Auth interface {
	GetSession(ctx context.Context) (*auth.Session, error)
	SetSession(ctx context.Context, accessToken, refreshToken string) (*auth.Session, error)
	SignUp(ctx context.Context, email, password string, opts auth.SignUpOptions) (*auth.User, error)
}

// Cache is the local mirror of managed emails.
type Cache interface {
	Load(ctx context.Context) ([]string, error)
	Add(ctx context.Context, email string) error
	Remove(ctx context.Context, email string) error
}

// Options configures a Prober.
//
//   - BaseURL: origin of the remote user API.
//   - Paths: candidate base paths in probe order.
//   - DeleteFallbackPath: tried with ?email= after every delete shape failed.
//   - SignUpRedirect: confirmation link target for direct sign-ups.
//   - Timeout: per-request timeout; zero keeps the transport default.
type Options struct {
	BaseURL            string
	Paths              []string
	DeleteFallbackPath string
	SignUpRedirect     string
	Timeout            time.Duration
}

type Prober struct {
	opts  Options
	http  *http.Client
	auth  Auth
	cache Cache
	log   logging.Logger
	reqID func() string
}

// NewProber builds a Prober. a may be nil, in which case requests go out
// without a bearer token and create has no sign-up fallback.
func NewProber(opts Options, a Auth, cache Cache, log logging.Logger) *Prober {
	if log == nil {
		log = logging.Nop()
	}
	if len(opts.Paths) == 0 {
		opts.Paths = []string{fallbackPath}
	}
	return &Prober{
		opts:  opts,
		http:  &http.Client{Timeout: opts.Timeout},
		auth:  a,
		cache: cache,
		log:   log.With("component", "users"),
		reqID: uuid.NewString,
	}
}

// List returns the remote users merged with the cached emails. Remote
// entries come first and win on a case-insensitive email collision. An
// unreachable API or an unreadable cache only shrinks the result.
func (p *Prober) List(ctx context.Context) ([]ManagedUser, error) {
	header := p.header(ctx)

	var remote []ManagedUser
	attempts := make([]probe.Attempt, 0, len(p.opts.Paths))
	for _, path := range p.opts.Paths {
		u := netx.JoinURL(p.opts.BaseURL, path)
		attempts = append(attempts, probe.Attempt{
			Name: "GET " + path,
			Do: func(ctx context.Context) error {
				body, err := p.do(ctx, header, netx.Request{Method: http.MethodGet, URL: u})
				if err != nil {
					return err
				}
				list, err := decodeList(body)
				if err != nil {
					return fmt.Errorf("decode user list: %w", err)
				}
				remote = list
				return nil
			},
		})
	}

	name, err := probe.FirstSuccess(ctx, p.log, attempts)
	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		p.log.Warn(ctx, "user API unreachable, showing cached users only", "error", err)
	default:
		p.log.Debug(ctx, "users listed", "via", name, "count", len(remote))
	}

	cached, err := p.cache.Load(ctx)
	if err != nil {
		p.log.Warn(ctx, "user cache unavailable", "error", err)
	}
	local := make([]ManagedUser, 0, len(cached))
	for _, e := range cached {
		local = append(local, ManagedUser{Email: e})
	}

	return probe.Merge(remote, local, ManagedUser.Key), nil
}

// Create registers email with password. The user API is tried first; when
// every candidate refuses, the account is created through auth sign-up and
// the administrator's previous session is put back. On success the email
// is mirrored into the cache.
func (p *Prober) Create(ctx context.Context, email, password string) error {
	email = policy.NormalizeEmail(email)
	if err := policy.ValidateEmail(email); err != nil {
		return err
	}
	if utf8.RuneCountInString(password) < policy.MinPasswordLength {
		return policy.ErrTooShort
	}

	header := p.header(ctx)
	payload := map[string]string{"email": email, "password": password}

	attempts := make([]probe.Attempt, 0, len(p.opts.Paths))
	for _, path := range p.opts.Paths {
		attempts = append(attempts, p.attempt(header, http.MethodPost, path, netx.JoinURL(p.opts.BaseURL, path), payload))
	}

	name, err := probe.FirstSuccess(ctx, p.log, attempts)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.log.Info(ctx, "user API refused create, falling back to sign-up", "email", email)
		if err := p.signUp(ctx, email, password); err != nil {
			return errors.Join(ErrCreateFailed, err)
		}
		name = "auth sign-up"
	}
	p.log.Info(ctx, "user created", "email", email, "via", name)

	if err := p.cache.Add(ctx, email); err != nil {
		p.log.Warn(ctx, "could not mirror user into cache", "email", email, "error", err)
	}
	return nil
}

func (p *Prober) signUp(ctx context.Context, email, password string) error {
	if p.auth == nil {
		return errors.New("no auth service configured")
	}

	admin, err := p.auth.GetSession(ctx)
	if err != nil {
		p.log.Debug(ctx, "no administrator session to restore", "error", err)
		admin = nil
	}

	opts := auth.SignUpOptions{EmailRedirectTo: p.opts.SignUpRedirect}
	if _, err := p.auth.SignUp(ctx, email, password, opts); err != nil {
		return err
	}

	if admin != nil && admin.AccessToken != "" && admin.RefreshToken != "" {
		if _, err := p.auth.SetSession(ctx, admin.AccessToken, admin.RefreshToken); err != nil {
			p.log.Warn(ctx, "could not restore administrator session", "error", err)
		}
	}
	return nil
}

// Delete removes email remotely and then from the cache. Each candidate
// path is tried with four shapes: DELETE ?email=, DELETE /{email}, DELETE
// with a JSON body and POST /delete with a JSON body. The configured
// fallback path comes last. When everything fails the cache is left
// untouched and ErrDeleteFailed is returned.
func (p *Prober) Delete(ctx context.Context, email string) error {
	email = policy.NormalizeEmail(email)
	if email == "" {
		return policy.ErrInvalidEmail
	}

	header := p.header(ctx)
	payload := map[string]string{"email": email}

	attempts := make([]probe.Attempt, 0, 4*len(p.opts.Paths)+1)
	for _, path := range p.opts.Paths {
		base := netx.JoinURL(p.opts.BaseURL, path)
		attempts = append(attempts,
			p.attempt(header, http.MethodDelete, path+"?email", netx.WithQuery(base, "email", email), nil),
			p.attempt(header, http.MethodDelete, path+"/{email}", base+"/"+url.PathEscape(email), nil),
			p.attempt(header, http.MethodDelete, path+" body", base, payload),
			p.attempt(header, http.MethodPost, path+"/delete", base+"/delete", payload),
		)
	}
	if p.opts.DeleteFallbackPath != "" {
		u := netx.WithQuery(netx.JoinURL(p.opts.BaseURL, p.opts.DeleteFallbackPath), "email", email)
		attempts = append(attempts, p.attempt(header, http.MethodDelete, "fallback "+p.opts.DeleteFallbackPath, u, nil))
	}

	name, err := probe.FirstSuccess(ctx, p.log, attempts)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.log.Warn(ctx, "every delete attempt failed", "email", email, "error", err)
		return ErrDeleteFailed
	}
	p.log.Info(ctx, "user deleted", "email", email, "via", name)

	if err := p.cache.Remove(ctx, email); err != nil {
		p.log.Warn(ctx, "could not drop user from cache", "email", email, "error", err)
	}
	return nil
}

func (p *Prober) attempt(header http.Header, method, name, u string, body any) probe.Attempt {
	return probe.Attempt{
		Name: method + " " + name,
		Do: func(ctx context.Context) error {
			_, err := p.do(ctx, header, netx.Request{Method: method, URL: u, Body: body})
			return err
		},
	}
}

func (p *Prober) do(ctx context.Context, header http.Header, r netx.Request) ([]byte, error) {
	r.Header = header.Clone()
	r.Header.Set("X-Request-Id", p.reqID())
	return netx.Do(ctx, p.http, r)
}

// header carries the bearer token of the current session, if any.
func (p *Prober) header(ctx context.Context) http.Header {
	h := http.Header{}
	if p.auth == nil {
		return h
	}
	s, err := p.auth.GetSession(ctx)
	if err != nil {
		p.log.Debug(ctx, "calling user API without a session", "error", err)
		return h
	}
	if s != nil && s.AccessToken != "" {
		h.Set("Authorization", "Bearer "+s.AccessToken)
	}
	return h
}
