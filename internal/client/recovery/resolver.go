// Package recovery turns a password-reset link into a signed-in session.
//
// The Resolver reads the tokens out of the link, exchanges them with the
// auth service and reports the outcome as a RecoverySession. It never
// retries; a failed outcome offers to mail a new link instead.
package recovery

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/accountkeeper/internal/client/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/client/policy"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
)

// Route is the entry route recovery links point back to.
const Route = "password-reset"

type Status string

const (
	StatusPending     Status = "pending"
	StatusEstablished Status = "established"
	StatusFailed      Status = "failed"
)

const (
	MsgVerified     = "Recovery link verified. You can set a new password."
	MsgSignedIn     = "You are already signed in. You can set a new password."
	MsgLinkInvalid  = "The recovery link is invalid or has expired. Request a new one."
	MsgNotRecovery  = "This link is not a password recovery link. Request a new one."
	MsgMissingToken = "The link carries no recovery tokens and nobody is signed in. Request a new one."
)

// RecoverySession is the outcome of resolving one link.
type RecoverySession struct {
	Params
	Status    Status
	Message   string
	CanResend bool
}

// Auth is what the resolver needs from the session holder.
type Auth interface {
	GetSession(ctx context.Context) (*auth.Session, error)
	SetSession(ctx context.Context, accessToken, refreshToken string) (*auth.Session, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
}

type Resolver struct {
	auth         Auth
	redirectBase string
	log          logging.Logger
}

func NewResolver(a Auth, redirectBase string, log logging.Logger) *Resolver {
	if log == nil {
		log = logging.Nop()
	}
	return &Resolver{auth: a, redirectBase: redirectBase, log: log.With("component", "recovery")}
}

// Pending is the state shown before a link has been resolved.
func Pending() RecoverySession {
	return RecoverySession{Status: StatusPending}
}

// Resolve reads location and establishes a session from it.
//
//   - type=recovery with both tokens: the pair is exchanged; success is
//     established, any failure is failed with a resend offer.
//   - tokens missing: an existing session counts as established,
//     otherwise failed with a resend offer.
//   - tokens present but another type: failed with a resend offer.
func (r *Resolver) Resolve(ctx context.Context, location string) RecoverySession {
	p := ParseLocation(location)
	rs := RecoverySession{Params: p}

	switch {
	case p.HasTokens() && p.Type == TypeRecovery:
		if _, err := r.auth.SetSession(ctx, p.AccessToken, p.RefreshToken); err != nil {
			r.log.Info(ctx, "recovery tokens rejected", "error", err)
			return rs.fail(MsgLinkInvalid)
		}
		rs.Status = StatusEstablished
		rs.Message = MsgVerified

	case !p.HasTokens():
		s, err := r.auth.GetSession(ctx)
		if err != nil {
			r.log.Debug(ctx, "no usable session", "error", err)
		}
		if err != nil || s == nil {
			return rs.fail(MsgMissingToken)
		}
		rs.Status = StatusEstablished
		rs.Message = MsgSignedIn

	default:
		r.log.Info(ctx, "link is not a recovery link", "type", p.Type)
		return rs.fail(MsgNotRecovery)
	}

	return rs
}

func (rs RecoverySession) fail(msg string) RecoverySession {
	rs.Status = StatusFailed
	rs.Message = msg
	rs.CanResend = true
	return rs
}

// ErrNoEmail is returned by Resend for a blank address.
var ErrNoEmail = errors.New("an email address is required")

// Resend mails a new recovery link to email. The link lands back on Route.
func (r *Resolver) Resend(ctx context.Context, email string) error {
	email = policy.NormalizeEmail(email)
	if email == "" {
		return ErrNoEmail
	}
	if err := policy.ValidateEmail(email); err != nil {
		return err
	}
	return r.auth.ResetPasswordForEmail(ctx, email, RedirectURL(r.redirectBase, Route))
}
