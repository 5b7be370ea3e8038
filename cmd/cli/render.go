package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/anstrom/netsight/internal/models"
	"github.com/anstrom/netsight/internal/query"
	"github.com/anstrom/netsight/internal/session"
	"github.com/anstrom/netsight/internal/stats"
)

// portList renders the visible ports of d and a "+N more" marker.
func portList(d models.Device, state *query.State, layout query.Layout) string {
	visible, hidden := query.VisiblePorts(d, state, layout)
	if len(visible) == 0 {
		return models.EmptyLabel
	}
	keys := make([]string, len(visible))
	for i, p := range visible {
		keys[i] = p.Key()
	}
	out := strings.Join(keys, " ")
	if hidden > 0 {
		out += fmt.Sprintf(" +%d more", hidden)
	}
	return out
}

// renderDeviceTable writes one row per device.
func renderDeviceTable(w io.Writer, devices []models.Device, state *query.State) {
	table := tablewriter.NewWriter(w)
	table.Header("IP", "Hostname", "Vendor", "Status", "MAC", "Response", "Open Ports")

	for _, d := range devices {
		_ = table.Append([]string{
			d.IP,
			query.OrDash(d.Hostname),
			d.VendorOrUnknown(),
			query.StatusBadge(d),
			query.OrDash(d.MACAddress),
			query.FormatResponseTime(d),
			portList(d, state, query.LayoutTable),
		})
	}

	_ = table.Render()
}

// renderDeviceCards writes a field/value card per device.
func renderDeviceCards(w io.Writer, devices []models.Device, state *query.State) {
	for i, d := range devices {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderCard(w, d, state)
	}
}

func renderCard(w io.Writer, d models.Device, state *query.State) {
	table := tablewriter.NewWriter(w)
	table.Header(d.IP, query.StatusBadge(d))

	rows := [][]string{
		{"Hostname", query.OrDash(d.Hostname)},
		{"Vendor", d.VendorOrUnknown()},
		{"MAC", query.OrDash(d.MACAddress)},
		{"Method", d.MethodOrUnknown()},
		{"Response", query.FormatResponseTime(d)},
	}
	if d.Description != "" {
		rows = append(rows, []string{"Description", d.Description})
	}
	if d.Uptime != "" {
		rows = append(rows, []string{"Uptime", d.Uptime})
	}
	rows = append(rows, []string{"Open Ports", portList(d, state, query.LayoutCard)})

	for _, row := range rows {
		_ = table.Append(row)
	}
	_ = table.Render()
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func millis(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "ms"
}

// renderSummary writes the statistics aggregator output for a result.
func renderSummary(w io.Writer, snap session.Snapshot) {
	summary := stats.Derive(snap.Result)

	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	for _, row := range [][]string{
		{"Network", query.OrDash(summary.NetworkRange)},
		{"Scan type", query.OrDash(summary.ScanType)},
		{"Duration", query.FormatDuration(snap.Duration)},
		{"Total devices", strconv.Itoa(summary.TotalDevices)},
		{"Reachable", fmt.Sprintf("%d (%s)", summary.ReachableDevices, percent(summary.ReachabilityPercent))},
		{"Unreachable", strconv.Itoa(summary.UnreachableDevices)},
		{"SNMP", fmt.Sprintf("%d (%s)", summary.SNMPDevices, percent(summary.SNMPPercent))},
		{"ARP only", strconv.Itoa(summary.ARPOnlyDevices)},
		{"With MAC", strconv.Itoa(summary.DevicesWithMAC)},
		{"Avg response", millis(summary.AvgResponseTimeMs)},
		{"Min / max response", millis(summary.MinResponseTimeMs) + " / " + millis(summary.MaxResponseTimeMs)},
	} {
		_ = table.Append(row)
	}
	_ = table.Render()

	renderBreakdown(w, "Vendor", summary.VendorBreakdown)
	renderBreakdown(w, "Method", summary.MethodBreakdown)

	if snap.Result == nil {
		return
	}
	if d := stats.CrossCheck(snap.Result); len(d) > 0 {
		fmt.Fprintln(w, "\nReported statistics disagree with the device list:")
		for _, item := range d {
			fmt.Fprintf(w, "  %s\n", item)
		}
	}
}

func renderBreakdown(w io.Writer, name string, shares []stats.Share) {
	if len(shares) == 0 {
		return
	}
	fmt.Fprintln(w)
	table := tablewriter.NewWriter(w)
	table.Header(name, "Devices", "Share")
	for _, s := range shares {
		_ = table.Append([]string{s.Name, strconv.Itoa(s.Count), percent(s.Percent)})
	}
	_ = table.Render()
}

// progressPrinter is a session.Listener drawing a one-line progress meter.
type progressPrinter struct {
	w     io.Writer
	drawn bool
}

func (p *progressPrinter) observe(s session.Snapshot) {
	switch s.Phase {
	case session.PhaseScanning:
		fmt.Fprintf(p.w, "\rScanning %s  %3d%%  %s", s.Target, s.Progress, query.FormatDuration(s.Duration))
		p.drawn = true
	case session.PhaseComplete, session.PhaseFailed:
		if p.drawn {
			fmt.Fprintf(p.w, "\rScanning %s  %3d%%  %s\n", s.Target, s.Progress, query.FormatDuration(s.Duration))
			p.drawn = false
		}
	}
}
