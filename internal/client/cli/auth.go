package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/client/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/client/policy"
	"github.com/dmitrijs2005/accountkeeper/internal/client/recovery"
	"github.com/dmitrijs2005/accountkeeper/internal/shared"
)

// Login prompts for credentials and signs in. The password byte slice is
// wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	u, err := a.account.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.resetFlow = false
	a.setUser(ctx, u)
	fmt.Fprintln(a.out, "Signed in as", u.Email)
	return nil
}

// Logout always forgets the local session. A failed remote sign-out is
// only logged.
func (a *App) Logout(ctx context.Context) error {
	if err := a.account.Logout(ctx); err != nil {
		a.log.Warn(ctx, "remote sign-out failed, session cleared locally", "error", err)
	}
	a.setUser(ctx, nil)
	a.resetFlow = false
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// Forgot mails a recovery link to the address the user types.
func (a *App) Forgot(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter the email of your account", a.out)
	if err != nil {
		return err
	}
	if err := a.recovery.Resend(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "A recovery link has been sent. Check your inbox and spam folder.")
	return nil
}

// Recover resolves a recovery link. On success the user is asked for the
// new password right away; on failure a new link can be requested.
func (a *App) Recover(ctx context.Context, link string) error {
	rs := a.recovery.Resolve(ctx, link)
	fmt.Fprintln(a.out, rs.Message)

	if rs.Status != recovery.StatusEstablished {
		if !rs.CanResend {
			return nil
		}
		email, err := GetSimpleText(a.reader, "Email for a new recovery link (empty to skip)", a.out)
		if err != nil || email == "" {
			return err
		}
		if err := a.recovery.Resend(ctx, email); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "A new recovery link has been sent.")
		return nil
	}

	a.resetFlow = true
	if u, err := a.account.CurrentUser(ctx); err == nil {
		a.setUser(ctx, u)
	} else {
		a.log.Debug(ctx, "could not load recovered user", "error", err)
	}
	return a.setNewPassword(ctx, nil)
}

// Passwd changes the password. Outside the reset flow the current password
// is asked for first.
func (a *App) Passwd(ctx context.Context) error {
	if !a.isLoggedIn() {
		return auth.ErrNoSession
	}

	var current []byte
	if !a.resetFlow {
		var err error
		current, err = GetPassword(a.reader, "Current password", a.out)
		if err != nil {
			return err
		}
		defer shared.WipeByteArray(current)
	}
	return a.setNewPassword(ctx, current)
}

func (a *App) setNewPassword(ctx context.Context, current []byte) error {
	next, err := GetPassword(a.reader, "New password (at least 6 characters, a letter and a number)", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(next)
	fmt.Fprintln(a.out, "Strength:", policy.Rate(string(next)))

	confirm, err := GetPassword(a.reader, "Repeat new password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(confirm)

	if err := a.account.ChangePassword(ctx, current, next, confirm, a.resetFlow); err != nil {
		return err
	}
	a.resetFlow = false
	fmt.Fprintln(a.out, "Password updated.")
	return nil
}

// Strength rates a password without sending it anywhere.
func (a *App) Strength(_ context.Context) error {
	pw, err := GetPassword(a.reader, "Password to rate", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(pw)

	fmt.Fprintln(a.out, "Strength:", policy.Rate(string(pw)))
	if err := policy.Validate(string(pw)); err != nil {
		fmt.Fprintln(a.out, "Not acceptable:", err)
		return nil
	}
	fmt.Fprintln(a.out, "Acceptable.")
	return nil
}
