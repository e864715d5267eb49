// Package cli provides the interactive account-management command-line client.
//
// It wires configuration, the local SQLite store, the auth session, the
// managed-user prober and the recovery resolver behind a small REPL. A
// session stored by a previous run is restored on start.
//
// Key features:
//   - Login / Logout, forgotten password and recovery links
//   - Password change with strength feedback
//   - Profile and preference editing
//   - Managed user listing, creation and deletion for administrators
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
