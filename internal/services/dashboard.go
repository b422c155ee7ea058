// Package services assembles the dashboard from its parts and runs it.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/worldland/netstats/internal/api"
	"github.com/worldland/netstats/internal/auth"
	"github.com/worldland/netstats/internal/config"
	"github.com/worldland/netstats/internal/localstore"
	"github.com/worldland/netstats/internal/logs"
	"github.com/worldland/netstats/internal/poller"
	"github.com/worldland/netstats/internal/prefs"
	"github.com/worldland/netstats/internal/presets"
	"github.com/worldland/netstats/internal/providers"
	"github.com/worldland/netstats/internal/statsapi"
)

var logger = logs.Logger("services")

const shutdownTimeout = 10 * time.Second

// Dashboard owns the local store, the per-network API clients and the
// polled views built on top of them.
type Dashboard struct {
	cfg   config.Config
	store *localstore.Store

	clients    map[string]*statsapi.Client
	authClient *statsapi.Client

	View     *providers.View
	Prefs    *prefs.Prefs
	Presets  *presets.Manager
	Sessions *auth.Sessions

	providerFeed *poller.ProviderFeed
	historyFeed  *poller.HistoryFeed
	poller       *poller.Poller
}

// NewDashboard opens the store and wires every component from cfg
func NewDashboard(cfg config.Config) (*Dashboard, error) {
	path := cfg.Store.Path
	if cfg.Store.InMemory {
		path = ""
	}
	store, err := localstore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	d := &Dashboard{
		cfg:        cfg,
		store:      store,
		clients:    make(map[string]*statsapi.Client, len(cfg.Networks)),
		authClient: statsapi.NewClient(cfg.Auth.BaseURL, cfg.Poll.Timeout),
		View:       providers.NewView(providers.OnlinePageSize),
		Prefs:      prefs.New(store, cfg.NetworkNames()),
		Presets:    presets.NewManager(store),
		Sessions:   auth.NewSessions(store),
	}

	sources := make(map[string]poller.Source, len(cfg.Networks))
	for _, n := range cfg.Networks {
		c := statsapi.NewClient(n.BaseURL, cfg.Poll.Timeout)
		d.clients[n.Name] = c
		sources[n.Name] = c
	}

	d.providerFeed = poller.NewProviderFeed(d.View, sources, d.Prefs.SelectedNetwork)
	d.historyFeed = poller.NewHistoryFeed(sources, d.Prefs.SelectedNetwork)

	d.poller = poller.New(cfg.Poll.Timeout, cfg.Poll.Interval)
	d.poller.Add(d.providerFeed.Job(cfg.Poll.Interval))
	d.poller.Add(d.historyFeed.Job(cfg.Poll.HistoryInterval))

	return d, nil
}

// Client returns the API client of the selected network
func (d *Dashboard) Client() (*statsapi.Client, string, error) {
	network, err := d.Prefs.SelectedNetwork()
	if err != nil {
		return nil, "", err
	}
	c, ok := d.clients[network]
	if !ok {
		return nil, network, fmt.Errorf("%w: %s", prefs.ErrUnknownNetwork, network)
	}
	return c, network, nil
}

// FetchProviders loads the provider list of the selected network once
func (d *Dashboard) FetchProviders(ctx context.Context) error {
	return d.providerFeed.Fetch(ctx)
}

// FetchHistory loads the network history once
func (d *Dashboard) FetchHistory(ctx context.Context) error {
	return d.historyFeed.Fetch(ctx)
}

// History returns the latest history series
func (d *Dashboard) History() *poller.HistoryFeed {
	return d.historyFeed
}

// Health returns the poll job tracker
func (d *Dashboard) Health() *poller.Health {
	return d.poller.Health()
}

// Handler builds the HTTP API over the dashboard state
func (d *Dashboard) Handler() http.Handler {
	clients := make(map[string]api.StatsAPI, len(d.clients))
	for name, c := range d.clients {
		clients[name] = c
	}
	srv := api.NewServer(api.Deps{
		View:      d.View,
		Providers: d.providerFeed,
		History:   d.historyFeed,
		Clients:   clients,
		Prefs:     d.Prefs,
		Presets:   d.Presets,
		Health:    d.poller.Health(),
	})
	return srv.Router(d.cfg.Server.AllowOrigins)
}

// Login signs in with wallet and stores the session
func (d *Dashboard) Login(ctx context.Context, wallet auth.WalletProvider) (*auth.Session, error) {
	sess, err := auth.NewAuthenticator(d.authClient, wallet).Login(ctx)
	if err != nil {
		return nil, err
	}
	if err := d.Sessions.Save(sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	d.applyToken(sess.Token)
	return sess, nil
}

// Logout drops the stored session and the bearer token
func (d *Dashboard) Logout() error {
	d.applyToken("")
	return d.Sessions.Clear()
}

// RestoreSession reuses the stored session, refreshing it when expired.
// A session that cannot be refreshed is cleared.
func (d *Dashboard) RestoreSession(ctx context.Context) (*auth.Session, error) {
	sess, err := d.Sessions.Load()
	if err != nil || sess == nil {
		return nil, err
	}

	if !sess.Valid(time.Now()) {
		refreshed, err := auth.NewAuthenticator(d.authClient, nil).Refresh(ctx, sess)
		if err != nil {
			var authErr *auth.Error
			if errors.As(err, &authErr) && authErr.Kind == auth.KindBackendRejected {
				logger.Infow("stored session expired", "address", sess.Address)
				return nil, d.Sessions.Clear()
			}
			return nil, err
		}
		if err := d.Sessions.Save(refreshed); err != nil {
			return nil, err
		}
		sess = refreshed
	}

	d.applyToken(sess.Token)
	return sess, nil
}

func (d *Dashboard) applyToken(token string) {
	d.authClient.SetToken(token)
	for _, c := range d.clients {
		c.SetToken(token)
	}
}

// Serve runs the poller and the HTTP API until ctx is done or a signal arrives
func (d *Dashboard) Serve(ctx context.Context) error {
	if _, err := d.RestoreSession(ctx); err != nil {
		logger.Warnw("could not restore session", "error", err)
	}

	stopHTTP, serveErr, err := ServeHTTP(d.Handler(), "netstats-api", d.cfg.Server.Listen)
	if err != nil {
		if cerr := d.store.Close(); cerr != nil {
			logger.Warnw("could not close store", "error", cerr)
		}
		return fmt.Errorf("listen on %s: %w", d.cfg.Server.Listen, err)
	}

	pollCtx, cancelPoll := context.WithCancel(ctx)
	pollStopped := make(chan struct{})
	var pollErr error
	go func() {
		pollErr = d.poller.Run(pollCtx)
		close(pollStopped)
	}()

	trigger := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-serveErr:
		case <-pollStopped:
		}
		close(trigger)
	}()

	finished := MonitorShutdown(trigger, shutdownTimeout,
		ShutdownHandler{Component: "netstats-api", StopFunc: stopHTTP},
		ShutdownHandler{Component: "poller", StopFunc: func(ctx context.Context) error {
			cancelPoll()
			select {
			case <-pollStopped:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}},
		ShutdownHandler{Component: "store", StopFunc: func(context.Context) error {
			return d.store.Close()
		}},
	)
	<-finished

	select {
	case <-pollStopped:
		return pollErr
	default:
		return nil
	}
}

// Close releases the store; use it when Serve was not called
func (d *Dashboard) Close() error {
	return d.store.Close()
}
