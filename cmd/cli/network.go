package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/anstrom/netsight/internal/errors"
	"github.com/anstrom/netsight/internal/request"
)

const defaultCommunity = "public"

func newQuickScanCommand(a *app) *cobra.Command {
	var (
		community string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "quick-scan [network-range]",
		Short: "List reachable IPs without a full scan",
		Long: `Ask the scanning service for a fast reachability sweep of a network.
Only the reachable addresses are returned; the scan session is not used.`,
		Example: `  netsight quick-scan 192.168.1.0/24
  netsight quick-scan 10.0.0.0/24 --community private --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			network := a.cfg.Scan.NetworkRange
			if len(args) > 0 {
				network = args[0]
			}
			if network = strings.TrimSpace(network); network == "" {
				return errors.ErrRequiredField("network_range")
			}
			if !cmd.Flags().Changed("community") {
				community = defaultCommunity
				if configured := request.ParseCommunities(a.cfg.Scan.Communities); len(configured) > 0 {
					community = configured[0]
				}
			}

			resp, err := a.service(nil).QuickScan(cmd.Context(), network, community)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			table := tablewriter.NewWriter(out)
			table.Header("Reachable IP")
			for _, ip := range resp.ReachableIPs {
				_ = table.Append([]string{ip})
			}
			_ = table.Render()
			fmt.Fprintf(out, "%d reachable in %s\n", resp.Count, network)
			return nil
		},
	}

	cmd.Flags().StringVar(&community, "community", "", "SNMP community for the sweep (default: first configured community)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw response as JSON")
	return cmd
}

func newValidateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <network-range>",
		Short: "Check a network range with the scanning service",
		Long: `Ask the scanning service whether a network range is acceptable for
scanning. An invalid range exits with a non-zero status.`,
		Example: `  netsight validate 192.168.1.0/24`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.service(nil).ValidateNetwork(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !resp.Valid {
				reason := resp.Error
				if reason == "" {
					reason = "rejected by the scanning service"
				}
				fmt.Fprintf(out, "%s is not valid: %s\n", args[0], reason)
				return errors.NewValidationError(reason, "network_range", args[0])
			}

			network := resp.Network
			if network == "" {
				network = args[0]
			}
			fmt.Fprintf(out, "%s is valid\n", network)
			return nil
		},
	}
	return cmd
}
