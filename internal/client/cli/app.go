package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/accountkeeper/internal/client/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/client/config"
	"github.com/dmitrijs2005/accountkeeper/internal/client/recovery"
	"github.com/dmitrijs2005/accountkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/accountkeeper/internal/client/services"
	"github.com/dmitrijs2005/accountkeeper/internal/client/storage"
	"github.com/dmitrijs2005/accountkeeper/internal/client/usercache"
	"github.com/dmitrijs2005/accountkeeper/internal/client/users"
	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
)

// callbackRoute is where sign-up confirmation links land.
const callbackRoute = "auth/callback"

type userManager interface {
	List(ctx context.Context) ([]users.ManagedUser, error)
	Create(ctx context.Context, email, password string) error
	Delete(ctx context.Context, email string) error
}

type recoverer interface {
	Resolve(ctx context.Context, link string) recovery.RecoverySession
	Resend(ctx context.Context, email string) error
}

type App struct {
	config   *config.Config
	account  services.AccountService
	users    userManager
	recovery recoverer
	log      logging.Logger
	db       *sql.DB
	reader   *bufio.Reader
	out      io.Writer

	user      *auth.User
	admin     bool
	resetFlow bool
}

// NewApp opens the local store under the configured data directory and
// wires the auth session, the user prober and the account service on top
// of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	dir, err := filex.EnsureSubdDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := storage.InitDatabase(ctx, filepath.Join(dir, c.DBFile))
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	gotrue := auth.NewGoTrueClient(c.AuthURL, c.AuthAPIKey, c.RequestTimeout)
	session := auth.NewSessionContext(gotrue, auth.NewMetadataTokenStore(db), log)

	prober := users.NewProber(users.Options{
		BaseURL:            c.APIBaseURL,
		Paths:              c.UsersAPIPaths,
		DeleteFallbackPath: c.DeleteFallbackPath,
		SignUpRedirect:     recovery.RedirectURL(c.RedirectBaseURL, callbackRoute),
		Timeout:            c.RequestTimeout,
	}, session, usercache.New(metadata.NewSQLiteRepository(db)), log)

	return &App{
		config:   c,
		account:  services.NewAccountService(session, db, c.IsAdmin, log),
		users:    prober,
		recovery: recovery.NewResolver(session, c.RedirectBaseURL, log),
		log:      log,
		db:       db,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run restores a stored session, if any, and blocks in the REPL until the
// user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Root(ctx context.Context) {
	printlnFn("Account CLI (type 'help' for commands)")

	if u, err := a.account.CurrentUser(ctx); err == nil {
		a.setUser(ctx, u)
		printlnFn("Signed in as", u.Email)
	} else {
		a.log.Debug(ctx, "no stored session restored", "error", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) isAdmin() bool {
	return a.user != nil && a.admin
}

func (a *App) setUser(ctx context.Context, u *auth.User) {
	a.user = u
	a.admin = false
	if u == nil {
		return
	}
	admin, err := a.account.IsAdmin(ctx)
	if err != nil {
		a.log.Warn(ctx, "could not determine administrator status", "error", err)
	}
	a.admin = admin
}

func (a *App) getStatus() string {
	if a.user == nil {
		return ""
	}
	s := a.user.Email
	if a.admin {
		s += " admin"
	}
	return fmt.Sprintf("(%s) ", s)
}
