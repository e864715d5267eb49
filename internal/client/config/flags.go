package config

import (
	"flag"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
)

var knownFlags = []string{"-api", "-paths", "-auth", "-key", "-redirect", "-admins", "-data", "-t", "-log"}

// parseFlags populates selected Config fields from command-line flags.
//
// Only the flags listed in knownFlags are looked at (see flagx.FilterArgs),
// so -c/-config and anything else on the command line are ignored here.
// A malformed value panics.
func parseFlags(cfg *Config, args []string) {
	filtered := flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "origin of the remote user API")
	paths := fs.String("paths", strings.Join(cfg.UsersAPIPaths, ","), "comma-separated candidate user API paths")
	fs.StringVar(&cfg.AuthURL, "auth", cfg.AuthURL, "origin of the auth service")
	fs.StringVar(&cfg.AuthAPIKey, "key", cfg.AuthAPIKey, "auth service api key")
	fs.StringVar(&cfg.RedirectBaseURL, "redirect", cfg.RedirectBaseURL, "base URL recovery links point back to")
	admins := fs.String("admins", strings.Join(cfg.AdminEmails, ","), "comma-separated administrator emails")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory of the local database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")

	if err := fs.Parse(filtered); err != nil {
		panic(err)
	}

	// derived values are only copied back when given, so a sub-second
	// timeout from JSON survives a run without -t
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "paths":
			cfg.UsersAPIPaths = flagx.SplitList(*paths)
		case "admins":
			cfg.AdminEmails = flagx.SplitList(*admins)
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
