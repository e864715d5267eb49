// Package services contains application services for the account client.
// This file defines the account service: sign-in and sign-out, password
// changes (normal and reset flow), profile and preference editing, and the
// administrator check that gates user management.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/client/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/client/policy"
	"github.com/dmitrijs2005/accountkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
)

var (
	ErrCurrentPasswordRequired = errors.New("current password is required")
	ErrWrongCurrentPassword    = errors.New("current password is incorrect")
	ErrPasswordRequired        = errors.New("password is required")
)

// Profile holds the editable user metadata fields.
type Profile struct {
	Email    string
	FullName string
	Company  string
	Role     string
}

// AccountService defines account operations for the CLI.
//
// Contract:
//   - Login / Logout: start and end the session; Logout always forgets the
//     local session, even if the service could not be reached.
//   - ChangePassword: confirmation and policy are checked before any call.
//     Outside the reset flow the current password is verified first.
//   - Profile / UpdateProfile: full_name, company and role user metadata.
//   - SavePreferences / LoadPreferences: stored in user metadata with a
//     local backup; loading prefers the service copy.
//   - IsAdmin: whether the signed-in user may manage other accounts.
type AccountService interface {
	Login(ctx context.Context, email string, password []byte) (*auth.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*auth.User, error)
	ChangePassword(ctx context.Context, current, newPassword, confirm []byte, resetFlow bool) error
	Profile(ctx context.Context) (Profile, error)
	UpdateProfile(ctx context.Context, p Profile) error
	SavePreferences(ctx context.Context, p Preferences) error
	LoadPreferences(ctx context.Context) (Preferences, error)
	IsAdmin(ctx context.Context) (bool, error)
}

// accountService is the concrete AccountService backed by the session
// context and the local metadata store.
type accountService struct {
	auth    auth.Provider
	db      *sql.DB
	isAdmin func(email string) bool
	log     logging.Logger
}

// NewAccountService constructs an AccountService. isAdmin decides which
// emails may manage users; nil allows nobody.
func NewAccountService(a auth.Provider, db *sql.DB, isAdmin func(string) bool, log logging.Logger) AccountService {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	if log == nil {
		log = logging.Nop()
	}
	return &accountService{auth: a, db: db, isAdmin: isAdmin, log: log}
}

func (s *accountService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *accountService) Login(ctx context.Context, email string, password []byte) (*auth.User, error) {
	email = policy.NormalizeEmail(email)
	if err := policy.ValidateEmail(email); err != nil {
		return nil, err
	}
	if len(password) == 0 {
		return nil, ErrPasswordRequired
	}

	sess, err := s.auth.SignIn(ctx, email, string(password))
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "signed in", "email", sess.User.Email)
	return &sess.User, nil
}

func (s *accountService) Logout(ctx context.Context) error {
	return s.auth.SignOut(ctx)
}

// CurrentUser returns the signed-in user as the service sees it, or
// auth.ErrNoSession.
func (s *accountService) CurrentUser(ctx context.Context) (*auth.User, error) {
	return s.auth.GetUser(ctx)
}

func (s *accountService) ChangePassword(ctx context.Context, current, newPassword, confirm []byte, resetFlow bool) error {
	if !resetFlow && len(current) == 0 {
		return ErrCurrentPasswordRequired
	}
	if err := policy.CheckConfirmation(string(newPassword), string(confirm)); err != nil {
		return err
	}
	if err := policy.Validate(string(newPassword)); err != nil {
		return err
	}

	if !resetFlow {
		u, err := s.auth.GetUser(ctx)
		if err != nil {
			return err
		}
		if _, err := s.auth.SignIn(ctx, u.Email, string(current)); err != nil {
			if errors.Is(err, auth.ErrUnauthorized) || isAPIError(err) {
				return ErrWrongCurrentPassword
			}
			return err
		}
	}

	if _, err := s.auth.UpdateUser(ctx, auth.UserAttributes{Password: string(newPassword)}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.log.Info(ctx, "password changed", "reset_flow", resetFlow)
	return nil
}

func isAPIError(err error) bool {
	var apiErr *auth.APIError
	return errors.As(err, &apiErr)
}

func (s *accountService) Profile(ctx context.Context) (Profile, error) {
	u, err := s.auth.GetUser(ctx)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Email:    u.Email,
		FullName: metaString(u.Metadata, "full_name"),
		Company:  metaString(u.Metadata, "company"),
		Role:     metaString(u.Metadata, "role"),
	}, nil
}

func metaString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func (s *accountService) UpdateProfile(ctx context.Context, p Profile) error {
	_, err := s.auth.UpdateUser(ctx, auth.UserAttributes{Data: map[string]any{
		"full_name": p.FullName,
		"company":   p.Company,
		"role":      p.Role,
	}})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// SavePreferences stores p in the user metadata and, once the service has
// accepted it, in the local backup.
func (s *accountService) SavePreferences(ctx context.Context, p Preferences) error {
	data, err := p.asMap()
	if err != nil {
		return err
	}
	if _, err := s.auth.UpdateUser(ctx, auth.UserAttributes{Data: map[string]any{"preferences": data}}); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}

	if err := metadata.SetJSON(ctx, s.getMetadataRepo(), metadata.KeyPreferences, p); err != nil {
		s.log.Warn(ctx, "could not back up preferences locally", "error", err)
	}
	return nil
}

// LoadPreferences returns the defaults overlaid with the first non-empty
// source: the user metadata, then the local backup. An unreachable service
// falls through to the backup.
func (s *accountService) LoadPreferences(ctx context.Context) (Preferences, error) {
	p := DefaultPreferences()

	u, err := s.auth.GetUser(ctx)
	switch {
	case err == nil:
		if raw, ok := u.Metadata["preferences"].(map[string]any); ok && len(raw) > 0 {
			b, err := json.Marshal(raw)
			if err == nil {
				err = json.Unmarshal(b, &p)
			}
			if err == nil {
				return p, nil
			}
			s.log.Warn(ctx, "ignoring malformed stored preferences", "error", err)
			p = DefaultPreferences()
		}
	case errors.Is(err, auth.ErrUnavailable):
		s.log.Warn(ctx, "auth service unreachable, using local preferences", "error", err)
	default:
		return p, err
	}

	var local map[string]any
	found, err := metadata.GetJSON(ctx, s.getMetadataRepo(), metadata.KeyPreferences, &local)
	if err != nil || !found || len(local) == 0 {
		if err != nil {
			s.log.Warn(ctx, "ignoring local preference backup", "error", err)
		}
		return p, nil
	}
	b, _ := json.Marshal(local)
	if err := json.Unmarshal(b, &p); err != nil {
		s.log.Warn(ctx, "ignoring local preference backup", "error", err)
		return DefaultPreferences(), nil
	}
	return p, nil
}

// IsAdmin reports whether the signed-in user is on the allow-list. Nobody
// signed in is not an error.
func (s *accountService) IsAdmin(ctx context.Context) (bool, error) {
	sess, err := s.auth.GetSession(ctx)
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, nil
	}
	return s.isAdmin(sess.User.Email), nil
}
