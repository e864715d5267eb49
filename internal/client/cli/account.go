package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/client/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/client/services"
)

// Profile shows the profile and lets the user edit each field. An empty
// answer keeps the current value.
func (a *App) Profile(ctx context.Context) error {
	if !a.isLoggedIn() {
		return auth.ErrNoSession
	}

	p, err := a.account.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Email:", p.Email)

	updated := p
	for _, f := range []struct {
		label string
		value *string
	}{
		{"Full name", &updated.FullName},
		{"Company", &updated.Company},
		{"Role", &updated.Role},
	} {
		v, err := GetSimpleText(a.reader, fmt.Sprintf("%s [%s]", f.label, *f.value), a.out)
		if err != nil {
			return err
		}
		if v != "" {
			*f.value = v
		}
	}

	if updated == p {
		fmt.Fprintln(a.out, "No changes.")
		return nil
	}
	if err := a.account.UpdateProfile(ctx, updated); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated.")
	return nil
}

// Prefs prints the preferences and applies name=value edits.
func (a *App) Prefs(ctx context.Context) error {
	if !a.isLoggedIn() {
		return auth.ErrNoSession
	}

	p, err := a.account.LoadPreferences(ctx)
	if err != nil {
		return err
	}
	for _, line := range formatPreferences(p) {
		fmt.Fprintln(a.out, " ", line)
	}

	lines, err := GetAssignments(a.reader, "Change preferences", a.out)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "No changes.")
		return nil
	}
	for _, line := range lines {
		if err := applyPreference(&p, line); err != nil {
			return err
		}
	}

	if err := a.account.SavePreferences(ctx, p); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Preferences saved.")
	return nil
}

func formatPreferences(p services.Preferences) []string {
	return []string{
		fmt.Sprintf("notifications=%t", p.Notifications),
		fmt.Sprintf("emailDigest=%t", p.EmailDigest),
		fmt.Sprintf("darkMode=%t", p.DarkMode),
		fmt.Sprintf("language=%s", p.Language),
		fmt.Sprintf("timezone=%s", p.Timezone),
		fmt.Sprintf("autoRefresh=%t", p.AutoRefresh),
		fmt.Sprintf("itemsPerPage=%d", p.ItemsPerPage),
	}
}

// applyPreference sets one field from a "name=value" line. Names are the
// JSON names shown by formatPreferences.
func applyPreference(p *services.Preferences, line string) error {
	name, value, ok := strings.Cut(line, "=")
	if !ok {
		return fmt.Errorf("expected name=value, got %q", line)
	}
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)

	setBool := func(dst *bool) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: expected true or false, got %q", name, value)
		}
		*dst = b
		return nil
	}

	switch name {
	case "notifications":
		return setBool(&p.Notifications)
	case "emailDigest":
		return setBool(&p.EmailDigest)
	case "darkMode":
		return setBool(&p.DarkMode)
	case "autoRefresh":
		return setBool(&p.AutoRefresh)
	case "language":
		p.Language = value
	case "timezone":
		p.Timezone = value
	case "itemsPerPage":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("itemsPerPage: expected a positive number, got %q", value)
		}
		p.ItemsPerPage = n
	default:
		return fmt.Errorf("unknown preference %q", name)
	}
	return nil
}
