// Package cli provides API client helper functions.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/learnhub/learnadmin/internal/api"
	"github.com/learnhub/learnadmin/internal/auth"
	"github.com/learnhub/learnadmin/internal/config"
	"github.com/learnhub/learnadmin/internal/events"
	apihttp "github.com/learnhub/learnadmin/internal/http"
	"github.com/learnhub/learnadmin/internal/logging"
	"github.com/learnhub/learnadmin/internal/notify"
)

// app is what a command needs to talk to the backend: configuration, the
// session, the API client and the notifier, all sharing one event bus.
type app struct {
	cfg       *config.Config
	cfgPath   string
	urlSource string

	bus      *events.EventBus
	session  *auth.Session
	client   *api.Client
	notifier *notify.Notifier
	logger   *logging.Logger

	authDone  chan struct{}
	traceDone chan struct{}
}

// annotationAskProxyPassword marks commands that read a missing proxy
// password from piped input too; others only ask on a terminal.
const annotationAskProxyPassword = "ask-proxy-password"

// loadConfig resolves and loads the configuration file.
func loadConfig() (*config.Config, string, error) {
	path := config.ResolveConfigPath(cfgFile)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// credentialsDir keeps the credential store next to the config file, so
// --config also selects which login is used.
func credentialsDir(cfgPath string) (string, error) {
	if cfgPath == "" {
		return config.CredentialsDirectory()
	}
	expanded, err := config.ExpandPath(cfgPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(expanded), "credentials"), nil
}

// getApp loads configuration and wires the session, API client and
// notifier. This is the standard way to reach the backend in CLI commands.
// Callers must Close the returned app.
func getApp(cmd *cobra.Command) (*app, error) {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	baseURL, source := config.ResolveBaseURL(apiBaseURL, cfg)
	cfg.BaseURL = baseURL
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (%s): %w", cfgPath, err)
	}

	if apihttp.NeedsProxyPassword(cfg) {
		if err := askProxyPassword(cmd, cfg); err != nil {
			return nil, err
		}
	}

	log := GetLogger()
	log.SetColor(cfg.Color)
	bus := events.NewEventBus(64)

	dir, err := credentialsDir(cfgPath)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to locate credential store: %w", err)
	}
	store, err := auth.NewStore(dir)
	if err != nil {
		bus.Close()
		return nil, err
	}
	session := auth.NewSession(store, config.AccessTokenOverride(), bus, log)

	client, err := api.NewClient(cfg,
		api.WithAuth(session.Hooks()),
		api.WithLogger(log),
		api.WithBaseURL(baseURL),
	)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	session.SetRefresher(client)

	notifier := notify.NewNotifier(cmd.ErrOrStderr(), &notify.Config{
		Color:   cfg.Color && !color.NoColor,
		Desktop: cfg.DesktopNotifications,
		Quiet:   quiet,
	}, bus, log)
	notifier.SetMessageFunc(api.UserMessage)

	log.Debug().Str("base_url", baseURL).Str("source", source).Str("config", cfgPath).Msg("Backend resolved")

	a := &app{
		cfg:       cfg,
		cfgPath:   cfgPath,
		urlSource: source,
		bus:       bus,
		session:   session,
		client:    client,
		notifier:  notifier,
		logger:    log,
		authDone:  make(chan struct{}),
		traceDone: make(chan struct{}),
	}
	go a.watchAuth(bus.Subscribe(events.EventAuthStateChanged))
	go a.traceEvents(bus.SubscribeAll())
	return a, nil
}

// askProxyPassword fills in the proxy password for this run only; it is
// never written back to the config file.
func askProxyPassword(cmd *cobra.Command, cfg *config.Config) error {
	in := cmd.InOrStdin()
	if _, ok := cmd.Annotations[annotationAskProxyPassword]; !ok && !isTerminal(in) {
		return nil
	}
	secret, err := newPrompter(in, cmd.ErrOrStderr()).Password(fmt.Sprintf("Proxy password for %s", cfg.ProxyUser))
	if err != nil {
		return err
	}
	cfg.ProxyPassword = secret
	return nil
}

// watchAuth tells the user when the backend ended the session.
func (a *app) watchAuth(ch <-chan events.Event) {
	defer close(a.authDone)
	for ev := range ch {
		changed, ok := ev.(*events.AuthStateChangedEvent)
		if !ok || changed.State != events.AuthLoggedOut {
			continue
		}
		if changed.Reason == auth.ReasonTokenRejected || changed.Reason == reasonUserLogout {
			continue
		}
		a.logger.Debug().Str("reason", changed.Reason).Msg("Session ended")
		a.notifier.Warn("session", "Your session has expired. Run 'learnadmin login' to sign in again.")
	}
}

// traceEvents writes every bus event to the debug log.
func (a *app) traceEvents(ch <-chan events.Event) {
	defer close(a.traceDone)
	for ev := range ch {
		entry := a.logger.Debug().Str("event", string(ev.Type()))
		switch e := ev.(type) {
		case *events.NotificationEvent:
			entry = entry.Str("title", e.Title).Str("message", e.Message)
		case *events.CollectionChangedEvent:
			entry = entry.Str("resource", e.Resource).Int("total", e.Total).Int("filtered", e.Filtered).Int("page", e.Page)
		case *events.CollectionLoadingEvent:
			entry = entry.Str("resource", e.Resource).Bool("loading", e.Loading)
		case *events.AuthStateChangedEvent:
			entry = entry.Str("state", string(e.State)).Str("reason", e.Reason)
		}
		entry.Msg("Event")
	}
}

// Close releases the event bus and waits for pending auth notifications.
func (a *app) Close() {
	a.bus.Close()
	<-a.authDone
	<-a.traceDone
	if n := a.bus.GetDroppedEventCount(); n > 0 {
		a.logger.Debug().Int64("dropped", n).Msg("Events dropped on full subscriber buffers")
	}
}

// requireLogin fails early when no token is available at all.
func (a *app) requireLogin() error {
	if a.session.Token() == "" {
		return fmt.Errorf("not logged in: run 'learnadmin login' or set %s", config.EnvToken)
	}
	return nil
}
