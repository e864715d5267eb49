package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
)

// SessionContext is the single holder of the signed-in user's session. It
// is created once at startup and handed to every component that acts on
// behalf of the user.
//
// Lifecycle: a session appears on sign-in (SignIn), on token exchange
// (SetSession, e.g. from a recovery link) or when a sign-up is confirmed
// immediately; it is restored from the TokenStore on first use and
// refreshed when expired; SignOut invalidates it locally even when the
// remote call fails.
type SessionContext struct {
	api   *GoTrueClient
	store TokenStore
	log   logging.Logger
	now   func() time.Time

	mu       sync.Mutex
	cur      *Session
	restored bool
}

func NewSessionContext(api *GoTrueClient, store TokenStore, log logging.Logger) *SessionContext {
	if store == nil {
		store = &MemoryTokenStore{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &SessionContext{api: api, store: store, log: log, now: time.Now}
}

func (c *SessionContext) current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *SessionContext) adopt(ctx context.Context, s *Session) error {
	c.mu.Lock()
	c.cur = s
	c.restored = true
	c.mu.Unlock()

	if s == nil {
		return c.store.Clear(ctx)
	}
	return c.store.Save(ctx, s.AccessToken, s.RefreshToken)
}

// GetSession returns the active session, or nil when nobody is signed in.
// A stored session is restored on first call; an expired one is refreshed.
// If the refresh is rejected the stale tokens are dropped and the error is
// returned alongside a nil session.
func (c *SessionContext) GetSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	s, restored := c.cur, c.restored
	c.mu.Unlock()

	if s == nil && !restored {
		access, refresh, err := c.store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		c.mu.Lock()
		c.restored = true
		c.mu.Unlock()

		if access != "" && refresh != "" {
			restoredSession, err := sessionFromTokens(access, refresh)
			if err != nil {
				c.log.Warn(ctx, "dropping unreadable stored session", "error", err)
				_ = c.store.Clear(ctx)
				return nil, nil
			}
			c.mu.Lock()
			c.cur = restoredSession
			c.mu.Unlock()
			s = restoredSession
		}
	}

	if s == nil {
		return nil, nil
	}

	if !s.Expired(c.now()) {
		return s, nil
	}

	refreshed, err := c.api.Refresh(ctx, s.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		c.log.Info(ctx, "session refresh rejected, signing out locally", "error", err)
		_ = c.adopt(ctx, nil)
		return nil, err
	}
	if err := c.adopt(ctx, refreshed); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return refreshed, nil
}

// SetSession establishes a session from an externally obtained token pair.
// An expired access token is refreshed; a live one is checked against the
// service. Only a pair the service accepts becomes the active session.
func (c *SessionContext) SetSession(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	s, err := sessionFromTokens(accessToken, refreshToken)
	if err != nil {
		return nil, err
	}

	if s.Expired(c.now()) {
		s, err = c.api.Refresh(ctx, refreshToken)
		if err != nil {
			return nil, err
		}
	} else {
		u, err := c.api.GetUser(ctx, accessToken)
		if err != nil {
			return nil, err
		}
		s.User = *u
	}

	if err := c.adopt(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// SignIn authenticates with email and password and makes the result the
// active session.
func (c *SessionContext) SignIn(ctx context.Context, email, password string) (*Session, error) {
	s, err := c.api.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := c.adopt(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// SignUp creates an account. Like the browser SDK, an immediately confirmed
// sign-up replaces the active session with the new user's; callers acting
// as an administrator restore their own session afterwards.
func (c *SessionContext) SignUp(ctx context.Context, email, password string, opts SignUpOptions) (*User, error) {
	u, s, err := c.api.SignUp(ctx, email, password, opts)
	if err != nil {
		return nil, err
	}
	if s != nil {
		if err := c.adopt(ctx, s); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return u, nil
}

// GetUser fetches the signed-in user from the service.
func (c *SessionContext) GetUser(ctx context.Context) (*User, error) {
	s, err := c.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNoSession
	}
	return c.api.GetUser(ctx, s.AccessToken)
}

// UpdateUser changes the signed-in user's password or metadata.
func (c *SessionContext) UpdateUser(ctx context.Context, attrs UserAttributes) (*User, error) {
	s, err := c.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNoSession
	}

	u, err := c.api.UpdateUser(ctx, s.AccessToken, attrs)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.cur == s {
		c.cur.User = *u
	}
	c.mu.Unlock()
	return u, nil
}

// SignOut revokes the session remotely and always forgets it locally. The
// remote error, if any, is returned after the local state is cleared.
func (c *SessionContext) SignOut(ctx context.Context) error {
	s := c.current()

	var remoteErr error
	if s != nil {
		remoteErr = c.api.SignOut(ctx, s.AccessToken)
		if remoteErr != nil {
			c.log.Warn(ctx, "remote sign-out failed", "error", remoteErr)
		}
	}

	if err := c.adopt(ctx, nil); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return remoteErr
}

// ResetPasswordForEmail asks the service to mail a recovery link for email
// that lands on redirectTo.
func (c *SessionContext) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	return c.api.Recover(ctx, email, redirectTo)
}
