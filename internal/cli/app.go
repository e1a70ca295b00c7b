// Package cli implements the maintenance command-line tool. It connects
// straight to the database through the managed pool and drives account,
// session and entry operations from the terminal.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dmitrijs2005/tenantdb/internal/logging"
	"github.com/dmitrijs2005/tenantdb/internal/server/config"
	"github.com/dmitrijs2005/tenantdb/internal/server/database"
	"github.com/dmitrijs2005/tenantdb/internal/server/models"
	"github.com/dmitrijs2005/tenantdb/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tenantdb/internal/server/services"
)

// accountOps is the slice of the account service the CLI drives.
type accountOps interface {
	CreateUser(ctx context.Context, username string, email string, password string, fullName string) (*models.Account, error)
	Authenticate(ctx context.Context, login string, password string) (*models.Account, error)
	CreateSession(ctx context.Context, accountID int64, ip string, userAgent string) (*models.Session, error)
	AccountBySessionToken(ctx context.Context, token string) (*models.Account, error)
	CleanupExpiredSessions(ctx context.Context) (int64, error)
	UserStats(ctx context.Context, accountID int64) (*models.AccountStats, error)
}

// entryOps is the slice of the entry service the CLI drives.
type entryOps interface {
	Add(ctx context.Context, accountID int64, title string, body string) (*models.Entry, error)
	List(ctx context.Context, accountID int64) ([]*models.Entry, error)
}

// poolReporter supplies the pool stats report for the stats command.
type poolReporter interface {
	Report() database.Report
}

type App struct {
	config   *config.Config
	manager  *database.Manager
	accounts accountOps
	entries  entryOps
	reporter poolReporter
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	// Keep the terminal quiet: only warnings and errors, on stderr.
	slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logger := logging.NewSlogLogger(slogger)

	manager, err := database.NewManager(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	as := services.NewAccountService(manager, rm, c)
	es := services.NewEntryService(manager, rm)

	return &App{
		config:   c,
		manager:  manager,
		accounts: as,
		entries:  es,
		reporter: manager,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

func (a *App) Close(ctx context.Context) error {
	return a.manager.Close(ctx)
}

// commandSet is the command surface the dispatcher needs. The App type
// satisfies it; tests can provide a stub.
type commandSet interface {
	createUser(ctx context.Context) error
	login(ctx context.Context) error
	whoami(ctx context.Context) error
	addEntry(ctx context.Context) error
	listEntries(ctx context.Context) error
	cleanup(ctx context.Context) error
	stats(ctx context.Context) error
}

func dispatch(ctx context.Context, a commandSet, cmd string, out io.Writer) error {
	switch cmd {
	case "createuser":
		return a.createUser(ctx)
	case "login":
		return a.login(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "addentry":
		return a.addEntry(ctx)
	case "entries":
		return a.listEntries(ctx)
	case "cleanup":
		return a.cleanup(ctx)
	case "stats":
		return a.stats(ctx)
	case "help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// Run executes the command named by the first positional argument.
// Config flags are handled separately by config.LoadConfig, so they may
// follow the command on the same invocation.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		printUsage(a.out)
		return fmt.Errorf("no command given")
	}
	return dispatch(ctx, a, args[0], a.out)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tenantdb-cli <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  createuser   create a tenant account")
	fmt.Fprintln(w, "  login        authenticate and issue a session token")
	fmt.Fprintln(w, "  whoami       resolve a session token and show usage stats")
	fmt.Fprintln(w, "  addentry     add an entry for the authenticated tenant")
	fmt.Fprintln(w, "  entries      list the authenticated tenant's entries")
	fmt.Fprintln(w, "  cleanup      delete expired sessions")
	fmt.Fprintln(w, "  stats        print the pool stats report as JSON")
}
