package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/anstrom/netsight/internal/api/handlers"
	"github.com/anstrom/netsight/internal/errors"
	"github.com/anstrom/netsight/internal/export"
	"github.com/anstrom/netsight/internal/models"
	"github.com/anstrom/netsight/internal/query"
	"github.com/anstrom/netsight/internal/request"
	"github.com/anstrom/netsight/internal/session"
)

// Output formats of the scan and device commands.
const (
	outputTable = "table"
	outputCard  = "card"
	outputJSON  = "json"
	outputCSV   = "csv"
)

// viewOptions are the device query flags shared by scan and device.
type viewOptions struct {
	search   string
	vendor   string
	method   string
	port     string
	openOnly bool
	sort     string
	dir      string
	expand   []string
	output   string
	stats    bool
	export   string
	quiet    bool
}

func (o *viewOptions) register(flags *pflag.FlagSet, defaultOutput string) {
	flags.StringVar(&o.search, "search", "", "Search IP, hostname and vendor (case-insensitive)")
	flags.StringVar(&o.vendor, "vendor", query.All, "Only devices from this vendor")
	flags.StringVar(&o.method, "method", query.All, "Only devices found by this scan method (SNMP, ARP, COMBINED)")
	flags.StringVar(&o.port, "port", query.All, "Only devices with this open port, e.g. 22/tcp")
	flags.BoolVar(&o.openOnly, "open-only", false, "Only devices with at least one open port")
	flags.StringVar(&o.sort, "sort", "", "Sort by vendor, hostname, response_time or open_ports")
	flags.StringVar(&o.dir, "dir", "", "Sort direction: asc or desc (default depends on the field)")
	flags.StringSliceVar(&o.expand, "expand", nil, "Show every open port of these IPs")
	flags.StringVarP(&o.output, "output", "o", defaultOutput, "Output format: table, card, json, csv")
	flags.BoolVar(&o.stats, "stats", false, "Print derived statistics after the device list")
	flags.StringVar(&o.export, "export", "", "Also write the device view to this file (.csv or .json)")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "Do not draw the progress meter")
}

// state builds the query state described by the flags.
func (o *viewOptions) state() (*query.State, error) {
	s := query.NewState()
	update := handlers.QueryUpdate{
		SearchTerm:        &o.search,
		VendorFilter:      &o.vendor,
		MethodFilter:      &o.method,
		PortFilter:        &o.port,
		ShowOpenPortsOnly: &o.openOnly,
	}
	if o.sort != "" || o.dir != "" {
		update.SortField = &o.sort
		update.SortDirection = &o.dir
	}
	if err := update.Apply(s); err != nil {
		return nil, err
	}
	for _, ip := range o.expand {
		if ip = strings.TrimSpace(ip); ip != "" {
			s.ToggleExpanded(ip)
		}
	}
	return s, nil
}

func (o *viewOptions) validateOutput() error {
	switch o.output {
	case outputTable, outputCard, outputJSON, outputCSV:
		return nil
	}
	return errors.NewValidationError(errors.MsgInvalidValue, "output", o.output)
}

// render writes the result of snap through the query state.
func (o *viewOptions) render(w io.Writer, snap session.Snapshot, state *query.State, now time.Time) error {
	var devices []models.Device
	if snap.Result != nil {
		devices = snap.Result.Topology.Devices
	}
	view := query.Apply(devices, state)

	if o.export != "" {
		if err := exportFile(o.export, view, state, now); err != nil {
			return err
		}
	}

	switch o.output {
	case outputJSON:
		return export.WriteJSON(w, view, state, now)
	case outputCSV:
		return export.WriteCSV(w, view)
	case outputCard:
		renderDeviceCards(w, view, state)
	default:
		renderDeviceTable(w, view, state)
	}
	fmt.Fprintf(w, "%d of %d devices shown\n", len(view), len(devices))

	if o.stats {
		fmt.Fprintln(w)
		renderSummary(w, snap)
	}
	return nil
}

// exportFile writes devices to path in the format named by its extension.
func exportFile(path string, devices []models.Device, state *query.State, now time.Time) error {
	format, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return errors.NewValidationError("export file must end in .csv or .json", "export", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := export.Write(f, format, devices, state, now); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	return f.Close()
}

// runScan drives a one-shot session for req and returns its final snapshot.
// SIGINT cancels the exchange, which fails the session.
func (a *app) runScan(cmd *cobra.Command, req request.Request, quiet bool) (session.Snapshot, error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := session.NewController()
	if !quiet {
		p := &progressPrinter{w: cmd.ErrOrStderr()}
		defer controller.Subscribe(p.observe)()
	}

	runner := session.NewRunner(controller, a.service(nil), session.WithLogger(a.logger.WithComponent("session")))
	snap, err := runner.Run(ctx, req)
	if err != nil {
		if snap.Phase == session.PhaseFailed {
			return snap, fmt.Errorf("scan failed: %s", snap.Error)
		}
		return snap, err
	}
	return snap, nil
}

type scanOptions struct {
	networkRange   string
	communities    string
	timeout        int
	retries        int
	scanType       string
	enablePortScan bool
	view           viewOptions
}

func newScanCommand(a *app) *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan [network-range]",
		Short: "Scan a network and list the discovered devices",
		Long: `Run a network scan through the scanning service and list the discovered
devices. Unset options fall back to the scan section of the configuration.

The device list can be searched, filtered and sorted the same way as in
the console; --stats adds the derived statistics.`,
		Example: `  netsight scan 192.168.1.0/24
  netsight scan --type snmp --communities public,private
  netsight scan 10.0.0.0/24 --vendor Cisco --sort response_time
  netsight scan --open-only --port 22/tcp -o card
  netsight scan --stats --export devices.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScanCommand(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.networkRange, "range", "r", "", "Network range in CIDR notation")
	flags.StringVar(&opts.communities, "communities", "", "Comma-separated SNMP communities")
	flags.IntVar(&opts.timeout, "timeout", 0, "Per-probe timeout in seconds (1-10)")
	flags.IntVar(&opts.retries, "retries", 0, "Retries per probe (0-3)")
	flags.StringVarP(&opts.scanType, "type", "t", "", "Scan type: full, snmp, arp")
	flags.BoolVar(&opts.enablePortScan, "port-scan", false, "Probe open ports")
	opts.view.register(flags, outputTable)

	return cmd
}

// networkForm merges the changed flags over the configured defaults.
func (o *scanOptions) networkForm(cmd *cobra.Command, defaults request.NetworkForm, args []string) request.NetworkForm {
	form := defaults
	flags := cmd.Flags()
	if len(args) > 0 {
		form.NetworkRange = args[0]
	}
	if flags.Changed("range") {
		form.NetworkRange = o.networkRange
	}
	if flags.Changed("communities") {
		form.Communities = o.communities
	}
	if flags.Changed("timeout") {
		form.Timeout = o.timeout
	}
	if flags.Changed("retries") {
		form.Retries = o.retries
	}
	if flags.Changed("type") {
		form.ScanType = o.scanType
	}
	if flags.Changed("port-scan") {
		form.EnablePortScan = o.enablePortScan
	}
	return form
}

func (a *app) runScanCommand(cmd *cobra.Command, args []string, opts *scanOptions) error {
	if err := opts.view.validateOutput(); err != nil {
		return err
	}
	state, err := opts.view.state()
	if err != nil {
		return err
	}

	req, err := request.BuildNetworkScan(opts.networkForm(cmd, a.cfg.NetworkForm(), args))
	if err != nil {
		return err
	}

	snap, err := a.runScan(cmd, req, opts.view.quiet)
	if err != nil {
		return err
	}
	return opts.view.render(cmd.OutOrStdout(), snap, state, time.Now())
}
