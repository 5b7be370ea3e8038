package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anstrom/netsight/internal/api"
	"github.com/anstrom/netsight/internal/metrics"
	"github.com/anstrom/netsight/internal/scheduler"
	"github.com/anstrom/netsight/internal/session"
)

type serveOptions struct {
	host     string
	port     int
	schedule string
}

func newServeCommand(a *app) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the console server",
		Long: `Run the netsight console: a REST API over the scan session, the
device query engine and the statistics aggregator, with a WebSocket
stream of session updates, Prometheus metrics and Swagger docs.

With a schedule (console.schedule or --schedule) the configured scan
defaults are rescanned on that cron schedule whenever no scan is running.`,
		Example: `  netsight serve
  netsight serve --host 0.0.0.0 --port 8090
  netsight serve --schedule "*/30 * * * *"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.host, "host", "", "Listen address (overrides config)")
	flags.IntVar(&opts.port, "port", 0, "Listen port (overrides config)")
	flags.StringVar(&opts.schedule, "schedule", "", "Cron expression for rescans (overrides config)")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg := a.cfg
	if opts.host != "" {
		cfg.Console.Host = opts.host
	}
	if opts.port > 0 {
		cfg.Console.Port = opts.port
	}
	if cmd.Flags().Changed("schedule") {
		cfg.Console.Schedule = opts.schedule
	}
	if cfg.IsScheduleEnabled() {
		if err := scheduler.ValidateExpression(cfg.Console.Schedule); err != nil {
			return err
		}
	}
	logger := a.logger

	pm := metrics.NewPrometheusMetrics()
	service := a.service(pm)
	runner := session.NewRunner(session.NewController(), service,
		session.WithLogger(logger.WithComponent("session")),
		session.WithMetrics(pm),
	)

	server, err := api.New(cfg, runner, service, api.WithLogger(logger), api.WithMetrics(pm))
	if err != nil {
		return fmt.Errorf("failed to create console server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsScheduleEnabled() {
		sched := scheduler.New(runner, scheduler.WithLogger(logger.WithComponent("scheduler")))
		if _, err := sched.AddRescanJob("default", cfg.Console.Schedule, cfg.NetworkForm()); err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	address := server.GetAddress()
	fmt.Fprintf(cmd.OutOrStdout(), "Console listening on http://%s\n", address)
	fmt.Fprintf(cmd.OutOrStdout(), "API documentation: http://%s/swagger/\n", address)
	if cfg.IsScheduleEnabled() {
		fmt.Fprintf(cmd.OutOrStdout(), "Rescanning %s on %q\n", cfg.Scan.NetworkRange, cfg.Console.Schedule)
	}

	err = server.Start(ctx)
	if err != nil && ctx.Err() == nil {
		logger.Error("Console server error", "error", err)
		return err
	}
	logger.Info("Console server stopped")
	return err
}
