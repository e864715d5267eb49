package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/accountkeeper/internal/client/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/client/policy"
	"github.com/dmitrijs2005/accountkeeper/internal/shared"
)

var ErrNotAdmin = errors.New("this command is available to administrators only")

func (a *App) requireAdmin() error {
	if !a.isLoggedIn() {
		return auth.ErrNoSession
	}
	if !a.isAdmin() {
		return ErrNotAdmin
	}
	return nil
}

// Users prints the managed users, remote entries first.
func (a *App) Users(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	list, err := a.users.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No managed users.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tJEFE\tID")
	for _, u := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.Email, dash(u.JefeEmail), dash(string(u.ID)))
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// AddUser prompts for an email and a confirmed password and creates the
// account.
func (a *App) AddUser(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	email, err := GetSimpleText(a.reader, "Email of the new user", a.out)
	if err != nil {
		return err
	}
	if err := policy.ValidateEmail(email); err != nil {
		return err
	}

	password, err := GetPassword(a.reader, "Password (at least 6 characters)", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	confirm, err := GetPassword(a.reader, "Repeat password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(confirm)

	if err := policy.CheckConfirmation(string(password), string(confirm)); err != nil {
		return err
	}

	if err := a.users.Create(ctx, email, string(password)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "User created:", policy.NormalizeEmail(email))
	return nil
}

// DelUser deletes email after a confirmation. An empty email is asked for.
func (a *App) DelUser(ctx context.Context, email string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	if email == "" {
		var err error
		email, err = GetSimpleText(a.reader, "Email of the user to delete", a.out)
		if err != nil {
			return err
		}
	}
	email = policy.NormalizeEmail(email)
	if email == "" {
		return policy.ErrInvalidEmail
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %s?", email), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := a.users.Delete(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "User deleted:", email)
	return nil
}
