package query

import (
	"fmt"
	"strconv"

	"github.com/anstrom/netsight/internal/models"
)

// Status badge labels.
const (
	BadgeUnreachable = "Unreachable"
	BadgeSNMP        = "SNMP"
	BadgeARPOnly     = "ARP Only"
	BadgeCombined    = "Combined"
)

// StatusBadge classifies a device for display. Unknown methods are shown
// verbatim.
func StatusBadge(d models.Device) string {
	if !d.IsReachable {
		return BadgeUnreachable
	}
	switch d.ScanMethod {
	case models.MethodSNMP:
		return BadgeSNMP
	case models.MethodARP:
		return BadgeARPOnly
	case models.MethodCombined:
		return BadgeCombined
	case "":
		return models.UnknownLabel
	}
	return d.ScanMethod
}

// FormatDuration renders elapsed seconds as m:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatResponseTime renders a response time in ms, "-" when absent.
func FormatResponseTime(d models.Device) string {
	if d.ResponseTimeMs == nil {
		return models.EmptyLabel
	}
	return strconv.FormatFloat(*d.ResponseTimeMs, 'f', -1, 64) + "ms"
}

// OrDash returns v or "-" when empty.
func OrDash(v string) string {
	if v == "" {
		return models.EmptyLabel
	}
	return v
}
