// Package cli provides the netsight command-line interface. Commands run
// scans against the scanning service, render the device query engine and
// statistics in the terminal, and start the console server.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/anstrom/netsight/internal/api/handlers"
	"github.com/anstrom/netsight/internal/client"
	"github.com/anstrom/netsight/internal/config"
	"github.com/anstrom/netsight/internal/logging"
	"github.com/anstrom/netsight/internal/metrics"
)

const (
	envPrefix         = "NETSIGHT"
	defaultConfigFile = "netsight.yaml"
)

// Build information, set by ldflags.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// ServiceFactory creates the scanning service client for a configuration.
type ServiceFactory func(cfg *config.Config, logger *logging.Logger, recorder metrics.Recorder) client.Service

// app carries the state shared by all commands of one invocation.
type app struct {
	cfgFile    string
	verbose    bool
	viper      *viper.Viper
	newService ServiceFactory

	cfg    *config.Config
	logger *logging.Logger
}

func defaultServiceFactory(cfg *config.Config, logger *logging.Logger, recorder metrics.Recorder) client.Service {
	return client.New(client.Config{
		BaseURL:        cfg.Service.BaseURL,
		Timeout:        cfg.Service.RequestTimeout,
		UserAgent:      cfg.Service.UserAgent,
		TypedEndpoints: cfg.Service.TypedEndpoints,
	}, client.WithLogger(logger.WithComponent("client")), client.WithMetrics(recorder))
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := NewRootCommand(defaultServiceFactory).Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	handlers.SetBuildInfo(v, c, bt)
}

func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// NewRootCommand builds the command tree. newService is called once the
// configuration is loaded.
func NewRootCommand(newService ServiceFactory) *cobra.Command {
	a := &app{viper: viper.New(), newService: newService}

	rootCmd := &cobra.Command{
		Use:   "netsight",
		Short: "Network discovery console",
		Long: `netsight drives a network scanning service: it starts network and
single-device scans, tracks the scan session, and lets you search, filter
and sort the discovered devices and review derived statistics.

Configuration is read from netsight.yaml (or --config) and may be
overridden with NETSIGHT_* environment variables, e.g.
NETSIGHT_SERVICE_BASE_URL=http://scanner:8080/api/v1.`,
		Version:      getVersion(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./"+defaultConfigFile+")")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	flags.String("service-url", "", "scanning service base URL (overrides config)")
	flags.Bool("typed-endpoints", false, "use the typed /network/scan/{type} endpoints")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	a.bindFlag(flags.Lookup("service-url"), "service.base_url")
	a.bindFlag(flags.Lookup("typed-endpoints"), "service.typed_endpoints")
	a.bindFlag(flags.Lookup("log-level"), "logging.level")

	rootCmd.AddCommand(
		newScanCommand(a),
		newDeviceCommand(a),
		newQuickScanCommand(a),
		newValidateCommand(a),
		newServeCommand(a),
	)

	return rootCmd
}

func (a *app) bindFlag(flag *pflag.Flag, key string) {
	if err := a.viper.BindPFlag(key, flag); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind %s flag: %v\n", flag.Name, err)
	}
}

// initConfig loads the configuration file, applies environment and flag
// overrides through viper, and installs the default logger.
func (a *app) initConfig(cmd *cobra.Command) error {
	a.viper.SetEnvPrefix(envPrefix)
	a.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.viper.AutomaticEnv()

	path := a.cfgFile
	if path == "" {
		path = a.viper.GetString("config")
	}
	if path == "" {
		path = defaultConfigFile
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	applyOverrides(cfg, a.viper)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// One-shot commands keep stderr for progress unless asked for logs.
	if cmd.Name() != "serve" && !a.verbose && !a.viper.IsSet("logging.level") {
		cfg.Logging.Level = string(logging.LevelWarn)
	}
	if a.verbose {
		cfg.Logging.Level = string(logging.LevelDebug)
	}

	logger, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		logger = logging.NewWithWriter(cfg.LoggerConfig(), cmd.ErrOrStderr())
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to initialize logging: %v\n", err)
	}
	logging.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	logger.Debug("Configuration loaded", "path", path, "service", cfg.Service.BaseURL)
	return nil
}

// applyOverrides copies the keys set through NETSIGHT_* variables or bound
// flags onto cfg.
func applyOverrides(cfg *config.Config, v *viper.Viper) {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	integer := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	boolean := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	str("service.base_url", &cfg.Service.BaseURL)
	str("service.user_agent", &cfg.Service.UserAgent)
	boolean("service.typed_endpoints", &cfg.Service.TypedEndpoints)
	if v.IsSet("service.request_timeout") {
		cfg.Service.RequestTimeout = v.GetDuration("service.request_timeout")
	}

	str("scan.network_range", &cfg.Scan.NetworkRange)
	str("scan.communities", &cfg.Scan.Communities)
	integer("scan.timeout", &cfg.Scan.Timeout)
	integer("scan.retries", &cfg.Scan.Retries)
	str("scan.scan_type", &cfg.Scan.ScanType)
	boolean("scan.enable_port_scan", &cfg.Scan.EnablePortScan)

	str("console.host", &cfg.Console.Host)
	integer("console.port", &cfg.Console.Port)
	str("console.schedule", &cfg.Console.Schedule)

	boolean("query.reset_on_new_result", &cfg.Query.ResetOnNewResult)

	str("logging.level", &cfg.Logging.Level)
	str("logging.format", &cfg.Logging.Format)
	str("logging.output", &cfg.Logging.Output)

	boolean("metrics.enabled", &cfg.Metrics.Enabled)
	str("metrics.path", &cfg.Metrics.Path)
}

// service returns the scanning service for the loaded configuration.
func (a *app) service(recorder metrics.Recorder) client.Service {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return a.newService(a.cfg, a.logger, recorder)
}
