package config

import (
	"strings"
	"time"
)

// Config holds runtime settings for the account client.
//
// Fields:
//   - APIBaseURL: origin of the remote user API.
//   - UsersAPIPaths: ordered candidate base paths probed for list/create/delete.
//   - DeleteFallbackPath: path tried last (with ?email=) when every delete shape failed.
//   - AuthURL, AuthAPIKey: auth service origin and its public api key.
//   - RedirectBaseURL: origin+path that recovery and confirmation links point back to.
//   - AdminEmails: accounts allowed to manage users.
//   - DataDir, DBFile: location of the local SQLite store.
//   - RequestTimeout: per-request timeout for remote calls; zero keeps the transport default.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL         string        `env:"API_URL"`
	UsersAPIPaths      []string      `env:"USERS_API_PATHS" envSeparator:","`
	DeleteFallbackPath string        `env:"DELETE_FALLBACK_PATH"`
	AuthURL            string        `env:"AUTH_URL"`
	AuthAPIKey         string        `env:"AUTH_API_KEY"`
	RedirectBaseURL    string        `env:"REDIRECT_URL"`
	AdminEmails        []string      `env:"ADMIN_EMAILS" envSeparator:","`
	DataDir            string        `env:"DATA_DIR"`
	DBFile             string        `env:"DB_FILE"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT"`
	LogLevel           string        `env:"LOG_LEVEL"`
}

// DefaultUsersAPIPaths is the probe order used when nothing else is configured.
// The primary route comes first.
var DefaultUsersAPIPaths = []string{
	"/api/usuarios_registrados",
	"/api/usuarios",
	"/api/admin/users",
	"/api/Users",
	"/api/users",
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:3000"
	c.UsersAPIPaths = append([]string(nil), DefaultUsersAPIPaths...)
	c.DeleteFallbackPath = "/api/usuarios_registrados"
	c.AuthURL = "http://localhost:54321"
	c.AuthAPIKey = ""
	c.RedirectBaseURL = "http://localhost:5173/"
	c.AdminEmails = nil
	c.DataDir = "data"
	c.DBFile = "account.db"
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "info"
}

// IsAdmin reports whether email is on the administrator allow-list.
// The comparison ignores case and surrounding blanks.
func (c *Config) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, a := range c.AdminEmails {
		if strings.ToLower(strings.TrimSpace(a)) == email {
			return true
		}
	}
	return false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources take
// precedence over earlier ones. args are the program arguments without the
// program name.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}
