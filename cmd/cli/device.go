package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/anstrom/netsight/internal/request"
)

type deviceOptions struct {
	communities    string
	enablePortScan bool
	view           viewOptions
}

func newDeviceCommand(a *app) *cobra.Command {
	opts := &deviceOptions{}

	cmd := &cobra.Command{
		Use:   "device <ip>",
		Short: "Look up a single device",
		Long: `Query one device by IP address. The answer is shown as a one-device
scan result, so --stats and the export flags work as for scan.`,
		Example: `  netsight device 192.168.1.1
  netsight device 10.0.0.5 --communities private --port-scan
  netsight device 10.0.0.5 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDeviceCommand(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.communities, "communities", "", "Comma-separated SNMP communities")
	flags.BoolVar(&opts.enablePortScan, "port-scan", false, "Probe open ports")
	opts.view.register(flags, outputCard)

	return cmd
}

func (a *app) runDeviceCommand(cmd *cobra.Command, ip string, opts *deviceOptions) error {
	if err := opts.view.validateOutput(); err != nil {
		return err
	}
	state, err := opts.view.state()
	if err != nil {
		return err
	}

	form := request.DeviceForm{
		IP:             ip,
		Communities:    a.cfg.Scan.Communities,
		EnablePortScan: a.cfg.Scan.EnablePortScan,
	}
	if cmd.Flags().Changed("communities") {
		form.Communities = opts.communities
	}
	if cmd.Flags().Changed("port-scan") {
		form.EnablePortScan = opts.enablePortScan
	}

	req, err := request.BuildSingleDevice(form)
	if err != nil {
		return err
	}

	snap, err := a.runScan(cmd, req, opts.view.quiet)
	if err != nil {
		return err
	}
	return opts.view.render(cmd.OutOrStdout(), snap, state, time.Now())
}
