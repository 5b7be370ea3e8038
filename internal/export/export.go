// Package export writes a device view to CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/anstrom/netsight/internal/errors"
	"github.com/anstrom/netsight/internal/models"
	"github.com/anstrom/netsight/internal/query"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", errors.NewValidationError(errors.MsgInvalidValue, "format", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// Filename returns a download name for an export taken at ts.
func (f Format) Filename(ts time.Time) string {
	return fmt.Sprintf("netsight-devices-%s.%s", ts.UTC().Format("20060102-150405"), f)
}

// Header is the CSV column order.
var Header = []string{
	"ip", "hostname", "vendor", "mac_address", "status", "scan_method",
	"response_time_ms", "open_ports", "description", "uptime",
}

// Document is the JSON export envelope.
type Document struct {
	ExportedAt time.Time       `json:"exported_at"`
	Count      int             `json:"count"`
	Query      *query.State    `json:"query,omitempty"`
	Devices    []models.Device `json:"devices"`
}

// Write exports devices in format f.
func Write(w io.Writer, f Format, devices []models.Device, state *query.State, now time.Time) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, devices)
	case FormatJSON:
		return WriteJSON(w, devices, state, now)
	}
	return errors.NewValidationError(errors.MsgInvalidValue, "format", string(f))
}

// WriteCSV writes one row per device. Open ports are joined with ";".
func WriteCSV(w io.Writer, devices []models.Device) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range devices {
		if err := cw.Write(Row(devices[i])); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row renders a device as CSV fields in Header order.
func Row(d models.Device) []string {
	portKeys := make([]string, len(d.OpenPorts))
	for i, p := range d.OpenPorts {
		portKeys[i] = p.Key()
	}

	responseTime := ""
	if d.ResponseTimeMs != nil {
		responseTime = strconv.FormatFloat(*d.ResponseTimeMs, 'f', -1, 64)
	}

	return []string{
		d.IP,
		d.Hostname,
		d.VendorOrUnknown(),
		d.MACAddress,
		query.StatusBadge(d),
		d.ScanMethod,
		responseTime,
		strings.Join(portKeys, ";"),
		d.Description,
		d.Uptime,
	}
}

// WriteJSON writes an indented Document.
func WriteJSON(w io.Writer, devices []models.Device, state *query.State, now time.Time) error {
	if devices == nil {
		devices = []models.Device{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{
		ExportedAt: now.UTC(),
		Count:      len(devices),
		Query:      state,
		Devices:    devices,
	}); err != nil {
		return fmt.Errorf("failed to encode json export: %w", err)
	}
	return nil
}
