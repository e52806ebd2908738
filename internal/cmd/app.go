package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/issuehub/internal/api"
	"github.com/felixgeelhaar/issuehub/internal/config"
	"github.com/felixgeelhaar/issuehub/internal/contract"
	ierrors "github.com/felixgeelhaar/issuehub/internal/errors"
	"github.com/felixgeelhaar/issuehub/internal/events"
	"github.com/felixgeelhaar/issuehub/internal/log"
	"github.com/felixgeelhaar/issuehub/internal/metrics"
	"github.com/felixgeelhaar/issuehub/internal/session"
	"github.com/felixgeelhaar/issuehub/internal/ux"
	"github.com/felixgeelhaar/issuehub/internal/version"
)

// App wires the session store, the transport and their listeners for one
// command invocation.
type App struct {
	Home      string
	Config    *config.Config
	Logger    *log.Logger
	Bus       *events.Bus
	Tokens    *session.FileTokenStore
	Session   *session.Store
	Client    *api.Client
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Navigator *Navigator

	out           io.Writer
	errOut        io.Writer
	restoreLogger func()
}

// newApp loads configuration (defaults, file, environment, flags) and
// builds the object graph.
func newApp(cmd *cobra.Command) (*App, error) {
	home, cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.LogConfig()
	logCfg.Output = log.NewOutput(cmd.ErrOrStderr())
	logger := log.New(logCfg)
	restoreLogger := log.Install(logger)

	registry, m := metrics.NewRegistry()
	bus := events.NewBus()

	var validator *contract.Validator
	if cfg.API.StrictContract {
		validator, err = contract.Load()
		if err != nil {
			restoreLogger()
			return nil, ierrors.Wrap(ierrors.ErrCodeAPIContract, "failed to load the API contract", err)
		}
	}

	client := api.New(cfg.API.URL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithEventBus(bus),
		api.WithLogger(logger),
		api.WithMetrics(m),
		api.WithValidator(validator),
		api.WithUserAgent(version.GetInfo().UserAgent()),
	)

	tokens := session.NewFileTokenStore(home)
	store := session.NewStore(tokens, client,
		session.WithEventBus(bus),
		session.WithLogger(logger),
		session.WithMetrics(m),
	)
	client.SetCredentials(store)

	nav := NewNavigator(cmd.ErrOrStderr())
	nav.Attach(bus)

	logger.Debug("app ready", "home", home, "api_url", client.BaseURL(), "strict_contract", cfg.API.StrictContract)

	return &App{
		Home:      home,
		Config:    cfg,
		Logger:    logger,
		Bus:       bus,
		Tokens:    tokens,
		Session:   store,
		Client:    client,
		Registry:  registry,
		Metrics:   m,
		Navigator: nav,
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),

		restoreLogger: restoreLogger,
	}, nil
}

// loadConfig resolves the home directory and merges every config source
func loadConfig(cmd *cobra.Command) (string, *config.Config, error) {
	home, err := config.ResolveHome(flags.home)
	if err != nil {
		return "", nil, err
	}
	config.LoadDotEnv(home)

	cfg, err := config.Load(home)
	if err != nil {
		return "", nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	return home, cfg, nil
}

// applyFlags overrides cfg with flags set on the command line
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("api-url") {
		cfg.API.URL = flags.apiURL
	}
	if fs.Changed("format") {
		cfg.Defaults.Format = flags.format
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if fs.Changed("no-color") {
		cfg.Defaults.NoColor = flags.noColor
	}
	if fs.Changed("strict-contract") {
		cfg.API.StrictContract = flags.strictContract
	}
}

// Render writes data in the configured format. text is used for the
// text format and data for json and yaml.
func (a *App) Render(text ux.TextRenderer, data interface{}) error {
	format := a.Config.Defaults.Format
	f, err := ux.NewFormatter(format, &ux.FormatterOptions{
		Writer:  a.out,
		NoColor: a.Config.Defaults.NoColor,
	})
	if err != nil {
		return err
	}
	if format == "text" || format == "" {
		return f.Format(text)
	}
	return f.Format(data)
}

// Printf writes a human-readable line; it is suppressed for json and yaml
func (a *App) Printf(format string, args ...interface{}) {
	if f := a.Config.Defaults.Format; f != "text" && f != "" {
		return
	}
	fmt.Fprintf(a.out, format, args...)
}

// RequireUser returns the restored user or a not-logged-in error
func (a *App) RequireUser() (*api.User, error) {
	return a.Session.RequireUser()
}

// Fail records a failed action and describes it for the user
func (a *App) Fail(err error, action string) error {
	err = ux.FormatError(err, action)
	var coded *ierrors.Error
	if errors.As(err, &coded) {
		a.Metrics.ObserveError(string(coded.Code), "cmd")
	}
	a.Logger.WithError(err).Debug("command failed", "action", action)
	return err
}

// DumpMetrics prints the collected metrics in the Prometheus text format
func (a *App) DumpMetrics() {
	if err := metrics.WriteText(a.errOut, a.Registry); err != nil {
		a.Logger.Warn("failed to write metrics", "error", err)
	}
}

// Close detaches every listener from the bus
func (a *App) Close() {
	a.Navigator.Detach()
	a.Session.Close()
	a.restoreLogger()
}
