package query

import (
	"cmp"
	"net/netip"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/anstrom/netsight/internal/models"
)

// Layout selects how many port badges a row shows before truncation.
type Layout int

const (
	LayoutTable Layout = iota
	LayoutCard
)

// PortLimit returns the number of ports shown for a collapsed row.
func (l Layout) PortLimit() int {
	if l == LayoutCard {
		return 6
	}
	return 3
}

// Apply filters and sorts devices according to s. The input slice is not
// modified; the returned slice is always non-nil.
func Apply(devices []models.Device, s *State) []models.Device {
	if s == nil {
		s = NewState()
	}

	out := make([]models.Device, 0, len(devices))
	search := strings.ToLower(s.SearchTerm)
	for _, d := range devices {
		if matches(d, s, search) {
			out = append(out, d)
		}
	}

	if s.SortField != SortNone {
		sortDevices(out, s.SortField, s.SortDirection)
	}
	return out
}

func matches(d models.Device, s *State, search string) bool {
	if search != "" &&
		!strings.Contains(strings.ToLower(d.IP), search) &&
		!strings.Contains(strings.ToLower(d.Hostname), search) &&
		!strings.Contains(strings.ToLower(d.Vendor), search) {
		return false
	}
	if active(s.VendorFilter) && d.Vendor != s.VendorFilter {
		return false
	}
	if active(s.MethodFilter) && d.ScanMethod != s.MethodFilter {
		return false
	}
	if active(s.PortFilter) && !hasPort(d, s.PortFilter) {
		return false
	}
	if s.ShowOpenPortsOnly && !d.HasOpenPorts() {
		return false
	}
	return true
}

func active(filter string) bool {
	return filter != "" && filter != All
}

func hasPort(d models.Device, key string) bool {
	for _, p := range d.OpenPorts {
		if p.Key() == key {
			return true
		}
	}
	return false
}

// sortDevices sorts in place. Equal keys fall back to numeric IP order so
// the output does not depend on the input order.
func sortDevices(devices []models.Device, field SortField, direction SortDirection) {
	if direction == "" {
		direction = field.DefaultDirection()
	}
	sign := 1
	if direction == Descending {
		sign = -1
	}

	// Collators keep internal buffers and are not safe for concurrent use.
	collator := collate.New(language.Und)

	var byField func(a, b models.Device) int
	switch field {
	case SortVendor:
		byField = func(a, b models.Device) int {
			return collator.CompareString(a.VendorOrUnknown(), b.VendorOrUnknown())
		}
	case SortHostname:
		byField = func(a, b models.Device) int {
			return collator.CompareString(a.Hostname, b.Hostname)
		}
	case SortResponseTime:
		byField = func(a, b models.Device) int {
			return cmp.Compare(a.ResponseTime(), b.ResponseTime())
		}
	case SortOpenPorts:
		byField = func(a, b models.Device) int {
			return cmp.Compare(len(a.OpenPorts), len(b.OpenPorts))
		}
	default:
		return
	}

	slices.SortStableFunc(devices, func(a, b models.Device) int {
		if c := byField(a, b); c != 0 {
			return sign * c
		}
		return compareIP(a.IP, b.IP)
	})
}

// compareIP orders addresses numerically; unparseable values sort after
// valid ones, lexically among themselves.
func compareIP(a, b string) int {
	ipA, errA := netip.ParseAddr(a)
	ipB, errB := netip.ParseAddr(b)
	switch {
	case errA == nil && errB == nil:
		return ipA.Compare(ipB)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// VisiblePorts returns the open ports shown for d and how many are hidden.
// Expanded rows show every port.
func VisiblePorts(d models.Device, s *State, layout Layout) ([]models.OpenPort, int) {
	if s != nil && s.IsExpanded(d.IP) {
		return d.OpenPorts, 0
	}
	limit := layout.PortLimit()
	if len(d.OpenPorts) <= limit {
		return d.OpenPorts, 0
	}
	return d.OpenPorts[:limit], len(d.OpenPorts) - limit
}

// UniqueVendors returns the distinct non-empty vendors in first-seen order.
func UniqueVendors(devices []models.Device) []string {
	return unique(devices, func(d models.Device) string { return d.Vendor })
}

// UniqueMethods returns the distinct non-empty scan methods in first-seen
// order.
func UniqueMethods(devices []models.Device) []string {
	return unique(devices, func(d models.Device) string { return d.ScanMethod })
}

func unique(devices []models.Device, key func(models.Device) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, d := range devices {
		v := key(d)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// UniquePorts returns the distinct "{port}/{protocol}" keys across all
// devices, ascending by numeric port and then protocol.
func UniquePorts(devices []models.Device) []string {
	seen := make(map[string]models.OpenPort)
	for _, d := range devices {
		for _, p := range d.OpenPorts {
			seen[p.Key()] = p
		}
	}

	ports := make([]models.OpenPort, 0, len(seen))
	for _, p := range seen {
		ports = append(ports, p)
	}
	slices.SortFunc(ports, func(a, b models.OpenPort) int {
		if c := cmp.Compare(a.Port, b.Port); c != 0 {
			return c
		}
		return strings.Compare(a.Protocol, b.Protocol)
	})

	out := make([]string, len(ports))
	for i, p := range ports {
		out[i] = p.Key()
	}
	return out
}

// ParsePortKey splits a "{port}/{protocol}" key.
func ParsePortKey(key string) (int, string, bool) {
	port, proto, ok := strings.Cut(key, "/")
	if !ok {
		return 0, "", false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return 0, "", false
	}
	return n, proto, true
}
