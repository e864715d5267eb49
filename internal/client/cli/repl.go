package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Forgot(ctx context.Context) error
	Recover(ctx context.Context, link string) error
	Passwd(ctx context.Context) error
	Profile(ctx context.Context) error
	Prefs(ctx context.Context) error
	Users(ctx context.Context) error
	AddUser(ctx context.Context) error
	DelUser(ctx context.Context, email string) error
	Strength(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the account CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. A command error is printed as a single
// message and the loop carries on. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// Prompt & Commands
//
//	Always:
//	  - help             show available commands
//	  - login            sign in
//	  - forgot           mail a password recovery link
//	  - recover <link>   open a recovery link and set a new password
//	  - strength         rate a password without saving it
//	  - exit | quit      leave the program
//
//	Signed in:
//	  - passwd           change the password
//	  - profile          show and edit name, company and role
//	  - prefs            show and edit preferences
//	  - logout           sign out
//
//	Administrators:
//	  - users            list managed users
//	  - adduser          create a managed user
//	  - deluser [email]  delete a managed user
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ak %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText(a))

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "forgot":
			cmdErr = a.Forgot(ctx)

		case "recover":
			if len(args) == 0 {
				printlnFn("Usage: recover <link from the recovery email>")
				continue
			}
			cmdErr = a.Recover(ctx, args[0])

		case "passwd":
			cmdErr = a.Passwd(ctx)

		case "profile":
			cmdErr = a.Profile(ctx)

		case "prefs":
			cmdErr = a.Prefs(ctx)

		case "users":
			cmdErr = a.Users(ctx)

		case "adduser":
			cmdErr = a.AddUser(ctx)

		case "deluser":
			email := ""
			if len(args) > 0 {
				email = args[0]
			}
			cmdErr = a.DelUser(ctx, email)

		case "strength":
			cmdErr = a.Strength(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", userMessage(cmdErr))
		}
	}
}

func helpText(a execIface) string {
	cmds := []string{"help"}
	if a.isLoggedIn() {
		cmds = append(cmds, "passwd", "profile", "prefs", "logout")
		if a.isAdmin() {
			cmds = append(cmds, "users", "adduser", "deluser")
		}
	} else {
		cmds = append(cmds, "login", "forgot")
	}
	cmds = append(cmds, "recover", "strength", "exit")
	return "Available commands: " + strings.Join(cmds, ", ")
}
