package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dnahub/internal/client/client"
	"github.com/dmitrijs2005/dnahub/internal/client/config"
	"github.com/dmitrijs2005/dnahub/internal/client/models"
	"github.com/dmitrijs2005/dnahub/internal/client/nav"
	"github.com/dmitrijs2005/dnahub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dnahub/internal/client/services"
	"github.com/dmitrijs2005/dnahub/internal/client/ui"
	"github.com/dmitrijs2005/dnahub/internal/logging"
	"github.com/prometheus/client_golang/prometheus"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// sessionService is the part of services.SessionStore the CLI uses.
type sessionService interface {
	ui.Authenticator
	Hydrate(ctx context.Context)
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) services.Result
	RefreshToken(ctx context.Context) services.Result
	Snapshot() services.Session
	Close()
}

// contentService is the part of services.ContentService the CLI uses.
type contentService interface {
	ListEvents(ctx context.Context, f models.EventFilter) ([]models.Event, error)
	ListBlogPosts(ctx context.Context, f models.BlogFilter) ([]models.BlogPost, error)
	ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error)
	Subscribe(ctx context.Context, sub models.NewsletterSubscription) error
	Unsubscribe(ctx context.Context, email string) error
	SendContact(ctx context.Context, msg models.ContactMessage) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config   *config.Config
	session  sessionService
	content  contentService
	modal    *ui.AuthModal
	bus      *ui.Bus
	tracker  *nav.Tracker
	api      pinger
	gatherer prometheus.Gatherer
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	closers  []func() error

	mu   sync.Mutex
	mode Mode
}

// NewApp wires storage, the API client, the session store and the UI
// controllers from c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.SlogLevel())

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	reg := prometheus.NewRegistry()
	api, err := client.NewHTTPClient(c.APIBaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithRateLimit(c.RequestsPerSecond, c.RequestBurst),
		client.WithMetrics(client.NewMetrics(reg)),
		client.WithLogger(logger.With("component", "api")),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(c, db, api, reg, logger, os.Stdin, os.Stdout)
	return a, nil
}

func newApp(c *config.Config, db *sql.DB, api client.Client, g prometheus.Gatherer, logger logging.Logger, in io.Reader, out io.Writer) *App {
	notifier := ui.NewWriterNotifier(out)
	bus := ui.NewBus()

	session := services.NewSessionStore(api, metadata.NewCredentialRepository(db),
		services.WithSessionLogger(logger.With("component", "session")),
		services.WithNotifier(notifier),
		services.WithSessionExpiredHandler(func(ctx context.Context) {
			bus.RequestAuth(ctx, ui.ModeLogin)
		}),
	)

	modal := ui.NewAuthModal(session)
	modal.Attach(bus)

	a := &App{
		config:   c,
		session:  session,
		content:  services.NewContentService(api, notifier, logger.With("component", "content")),
		modal:    modal,
		bus:      bus,
		tracker:  newTracker(c),
		api:      api,
		gatherer: g,
		log:      logger,
		reader:   bufio.NewReader(in),
		out:      out,
		closers:  []func() error{api.Close, db.Close},
	}
	bus.Subscribe(func(context.Context, ui.AuthRequest) {
		a.println("Your session has expired. Type 'login' to sign in again.")
	})
	return a
}

func newTracker(c *config.Config) *nav.Tracker {
	return nav.NewTracker(c.Sections,
		nav.WithHeaderOffset(c.HeaderOffset),
		nav.WithActivationOffset(c.ActivationOffset),
		nav.WithHomeTolerance(c.HomeTolerance),
	)
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", mode)
	}
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Run restores the saved session, starts the connectivity watcher and
// blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.session.Hydrate(ctx)
	a.checkOnline(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.println("Welcome to the DNA community CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close stops the session store and releases the client and database.
func (a *App) Close() {
	a.session.Close()
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn(context.Background(), "close failed", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().IsAuthenticated()
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// StartOnlineStatusWatcher pings the API every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	var parts []string
	if snap := a.session.Snapshot(); snap.IsAuthenticated() {
		parts = append(parts, snap.User.Email)
	}
	if mode := a.getMode(); mode != "" {
		parts = append(parts, string(mode))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

func (a *App) println(args ...any) {
	_, _ = fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
