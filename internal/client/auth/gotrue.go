package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/netx"
)

// GoTrueClient talks to a GoTrue-compatible auth REST API (the one behind
// Supabase Auth). It holds no session state: every call that acts on behalf
// of a user takes the access token explicitly. See SessionContext for the
// stateful side.
type GoTrueClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewGoTrueClient(baseURL, apiKey string, timeout time.Duration) *GoTrueClient {
	return &GoTrueClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/auth/v1",
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// UserAttributes is the body of an update-user call. Only non-empty fields
// are sent.
type UserAttributes struct {
	Password string         `json:"password,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// SignUpOptions carries optional sign-up parameters.
type SignUpOptions struct {
	EmailRedirectTo string
	Data            map[string]any
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         *User  `json:"user"`
}

func (t *tokenResponse) session() (*Session, error) {
	s, err := sessionFromTokens(t.AccessToken, t.RefreshToken)
	if err != nil {
		return nil, err
	}
	switch {
	case t.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(t.ExpiresAt, 0)
	case t.ExpiresIn > 0 && s.ExpiresAt.IsZero():
		s.ExpiresAt = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	if t.User != nil {
		s.User = *t.User
	}
	return s, nil
}

// SignInWithPassword exchanges email and password for a session.
func (c *GoTrueClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	err := c.call(ctx, http.MethodPost, "/token?grant_type=password", "",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.session()
}

// Refresh exchanges a refresh token for a new session.
func (c *GoTrueClient) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var resp tokenResponse
	err := c.call(ctx, http.MethodPost, "/token?grant_type=refresh_token", "",
		map[string]string{"refresh_token": refreshToken}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.session()
}

// GetUser returns the user the access token belongs to. It doubles as the
// token validity check.
func (c *GoTrueClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var u User
	if err := c.call(ctx, http.MethodGet, "/user", accessToken, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser changes the password and/or metadata of the token's user.
func (c *GoTrueClient) UpdateUser(ctx context.Context, accessToken string, attrs UserAttributes) (*User, error) {
	var u User
	if err := c.call(ctx, http.MethodPut, "/user", accessToken, attrs, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SignUp creates an account. When the service confirms accounts
// automatically the new user's session is returned as well; otherwise the
// session is nil and a confirmation email is sent.
func (c *GoTrueClient) SignUp(ctx context.Context, email, password string, opts SignUpOptions) (*User, *Session, error) {
	path := "/signup"
	if opts.EmailRedirectTo != "" {
		path = netx.WithQuery(path, "redirect_to", opts.EmailRedirectTo)
	}

	body := map[string]any{"email": email, "password": password}
	if len(opts.Data) > 0 {
		body["data"] = opts.Data
	}

	var raw json.RawMessage
	if err := c.call(ctx, http.MethodPost, path, "", body, &raw); err != nil {
		return nil, nil, err
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err == nil && tr.AccessToken != "" {
		s, err := tr.session()
		if err != nil {
			return nil, nil, err
		}
		return &s.User, s, nil
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, nil, &APIError{Status: http.StatusOK, Message: "unexpected sign-up response"}
	}
	return &u, nil, nil
}

// SignOut revokes the session of accessToken.
func (c *GoTrueClient) SignOut(ctx context.Context, accessToken string) error {
	return c.call(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

// Recover sends a password recovery email whose link lands on redirectTo.
func (c *GoTrueClient) Recover(ctx context.Context, email, redirectTo string) error {
	path := "/recover"
	if redirectTo != "" {
		path = netx.WithQuery(path, "redirect_to", redirectTo)
	}
	return c.call(ctx, http.MethodPost, path, "", map[string]string{"email": email}, nil)
}

func (c *GoTrueClient) call(ctx context.Context, method, path, accessToken string, body any, out any) error {
	bearer := accessToken
	if bearer == "" {
		bearer = c.apiKey
	}
	header := http.Header{}
	header.Set("apikey", c.apiKey)
	if bearer != "" {
		header.Set("Authorization", "Bearer "+bearer)
	}

	b, err := netx.Do(ctx, c.http, netx.Request{Method: method, URL: c.baseURL + path, Header: header, Body: body})
	if err != nil {
		return mapError(err, b)
	}

	if out == nil || len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &APIError{Status: http.StatusOK, Message: "malformed response: " + err.Error()}
	}
	return nil
}

// mapError turns transport and status failures into the package's errors.
func mapError(err error, body []byte) error {
	var se *netx.StatusError
	if !errors.As(err, &se) {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return errors.Join(ErrUnavailable, err)
	}

	switch {
	case se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden:
		return errors.Join(ErrUnauthorized, &APIError{Status: se.Status, Message: errorMessage(body)})
	case se.Status >= 500:
		return errors.Join(ErrUnavailable, &APIError{Status: se.Status, Message: errorMessage(body)})
	default:
		return &APIError{Status: se.Status, Message: errorMessage(body)}
	}
}

// errorMessage digs the human-readable message out of an error body. The
// service has used several field names over time.
func errorMessage(body []byte) string {
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return strings.TrimSpace(string(body))
	}
	for _, m := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if m != "" {
			return m
		}
	}
	return ""
}
