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

	"github.com/dmitrijs2005/campusshop/internal/client/api"
	"github.com/dmitrijs2005/campusshop/internal/client/cart"
	"github.com/dmitrijs2005/campusshop/internal/client/checkout"
	"github.com/dmitrijs2005/campusshop/internal/client/config"
	"github.com/dmitrijs2005/campusshop/internal/client/credentials"
	"github.com/dmitrijs2005/campusshop/internal/client/orders"
	"github.com/dmitrijs2005/campusshop/internal/client/session"
	"github.com/dmitrijs2005/campusshop/internal/filex"
	"github.com/dmitrijs2005/campusshop/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const (
	healthCheckInterval = 30 * time.Second
	healthCheckTimeout  = 3 * time.Second
)

type App struct {
	config   *config.Config
	log      logging.Logger
	db       *sql.DB
	api      *api.Client
	registry *prometheus.Registry

	session  *session.Store
	cart     *cart.Store
	checkout *checkout.Flow
	orders   *orders.Service

	mu   sync.Mutex
	mode Mode

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local store at c.DatabasePath and builds the client
// stack on top of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}
	db, err := credentials.OpenSQLite(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}

	app, err := newApp(c, credentials.NewSQLiteStore(db), log, os.Stdin, os.Stdout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.db = db
	return app, nil
}

func newApp(c *config.Config, tokens credentials.Store, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	reg := prometheus.NewRegistry()

	client, err := api.New(c.APIBaseURL, tokens,
		api.WithLogger(log),
		api.WithMetrics(api.NewMetrics(reg)),
		api.WithTimeout(c.RequestTimeout),
		api.WithReadRetries(c.ReadRetries, c.RetryBackoff),
	)
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	sess := session.NewStore(client, log)
	cs := cart.NewStore(client, sess, log)

	return &App{
		config:   c,
		log:      log,
		api:      client,
		registry: reg,
		session:  sess,
		cart:     cs,
		checkout: checkout.NewFlow(client, cs, log, c.PaymentRedirectDelay),
		orders:   orders.NewService(client, sess, log),
		reader:   bufio.NewReader(in),
		out:      out,
	}, nil
}

// Run restores the previous session, starts the connectivity watcher and
// blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to Campus Shop (type 'help' for commands)")

	st := a.session.Initialize(ctx)
	if st.Authenticated() {
		printlnFn("Welcome back,", st.User.DisplayName())
	}

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	go a.StartOnlineStatusWatcher(watchCtx, healthCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	a.cart.Close()
	a.session.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "close local store", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.State().Authenticated()
}

func (a *App) isSeller() bool {
	st := a.session.State()
	return st.Authenticated() && st.User.IsSeller
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
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

// Health reports whether the backend answers its health check.
func (a *App) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return a.api.Health(ctx)
}

// checkOnline pings the health endpoint once and records the result.
func (a *App) checkOnline(ctx context.Context) {
	if err := a.Health(ctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// StartOnlineStatusWatcher checks the health endpoint right away and then
// every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

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

// getStatus renders the prompt status, e.g. "(ama@uni.edu, cart 3, online)".
func (a *App) getStatus() string {
	var parts []string
	if st := a.session.State(); st.Authenticated() {
		parts = append(parts, st.User.Email)
		if st.User.IsSeller {
			parts = append(parts, "seller")
		}
		if n := a.cart.State().ItemCount; n > 0 {
			parts = append(parts, fmt.Sprintf("cart %d", n))
		}
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
