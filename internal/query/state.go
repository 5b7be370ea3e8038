// Package query filters, sorts and truncates the device collection of a
// scan result for table and card views. Apply is a pure function of the
// devices and a State; State changes only through its named operations.
package query

import (
	"maps"
	"strings"
)

// All is the categorical filter value matching every device.
const All = "all"

// SortField names a sortable device attribute.
type SortField string

const (
	SortNone         SortField = ""
	SortVendor       SortField = "vendor"
	SortHostname     SortField = "hostname"
	SortResponseTime SortField = "response_time"
	SortOpenPorts    SortField = "open_ports"
)

// SortFields lists the selectable sort fields.
var SortFields = []SortField{SortVendor, SortHostname, SortResponseTime, SortOpenPorts}

// Valid reports whether f is a known sort field or SortNone.
func (f SortField) Valid() bool {
	switch f {
	case SortNone, SortVendor, SortHostname, SortResponseTime, SortOpenPorts:
		return true
	}
	return false
}

// DefaultDirection is the direction used when f is first selected. Open
// ports sort most-open-first; everything else ascends.
func (f SortField) DefaultDirection() SortDirection {
	if f == SortOpenPorts {
		return Descending
	}
	return Ascending
}

// SortDirection orders a sort.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Toggle returns the opposite direction.
func (d SortDirection) Toggle() SortDirection {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// State is the view-local query configuration.
type State struct {
	SearchTerm        string        `json:"search_term"`
	VendorFilter      string        `json:"vendor_filter"`
	MethodFilter      string        `json:"method_filter"`
	PortFilter        string        `json:"port_filter"`
	ShowOpenPortsOnly bool          `json:"show_open_ports_only"`
	SortField         SortField     `json:"sort_field,omitempty"`
	SortDirection     SortDirection `json:"sort_direction,omitempty"`

	expanded map[string]struct{}
}

// NewState returns a state that matches every device and does not sort.
func NewState() *State {
	return &State{
		VendorFilter: All,
		MethodFilter: All,
		PortFilter:   All,
		expanded:     make(map[string]struct{}),
	}
}

// Clone returns an independent copy of s.
func (s *State) Clone() *State {
	c := *s
	c.expanded = maps.Clone(s.expanded)
	if c.expanded == nil {
		c.expanded = make(map[string]struct{})
	}
	return &c
}

// SetSearch sets the free-text search term.
func (s *State) SetSearch(term string) {
	s.SearchTerm = term
}

// SetVendorFilter restricts results to one vendor; "" or All clears it.
func (s *State) SetVendorFilter(vendor string) {
	s.VendorFilter = categorical(vendor)
}

// SetMethodFilter restricts results to one scan method; "" or All clears it.
func (s *State) SetMethodFilter(method string) {
	s.MethodFilter = categorical(method)
}

// SetPortFilter restricts results to devices with the "{port}/{protocol}"
// open port; "" or All clears it.
func (s *State) SetPortFilter(port string) {
	s.PortFilter = categorical(port)
}

// SetShowOpenPortsOnly hides devices without open ports.
func (s *State) SetShowOpenPortsOnly(only bool) {
	s.ShowOpenPortsOnly = only
}

// SelectSort selects field. Selecting the active field toggles the
// direction; selecting a new field uses its default direction.
func (s *State) SelectSort(field SortField) {
	if field == SortNone {
		s.ClearSort()
		return
	}
	if s.SortField == field {
		s.SortDirection = s.SortDirection.Toggle()
		return
	}
	s.SortField = field
	s.SortDirection = field.DefaultDirection()
}

// SetSort selects field with an explicit direction.
func (s *State) SetSort(field SortField, direction SortDirection) {
	if field == SortNone {
		s.ClearSort()
		return
	}
	if direction != Ascending && direction != Descending {
		direction = field.DefaultDirection()
	}
	s.SortField = field
	s.SortDirection = direction
}

// ClearSort restores the service order.
func (s *State) ClearSort() {
	s.SortField = SortNone
	s.SortDirection = ""
}

// ResetFilters clears search, filters and sort. Row expansion is kept.
func (s *State) ResetFilters() {
	s.SearchTerm = ""
	s.VendorFilter = All
	s.MethodFilter = All
	s.PortFilter = All
	s.ShowOpenPortsOnly = false
	s.ClearSort()
}

// ToggleExpanded flips whether the full port list of ip is shown.
func (s *State) ToggleExpanded(ip string) {
	if s.expanded == nil {
		s.expanded = make(map[string]struct{})
	}
	if _, ok := s.expanded[ip]; ok {
		delete(s.expanded, ip)
		return
	}
	s.expanded[ip] = struct{}{}
}

// IsExpanded reports whether the full port list of ip is shown.
func (s *State) IsExpanded(ip string) bool {
	_, ok := s.expanded[ip]
	return ok
}

// Expanded returns the expanded ips in no particular order.
func (s *State) Expanded() []string {
	ips := make([]string, 0, len(s.expanded))
	for ip := range s.expanded {
		ips = append(ips, ip)
	}
	return ips
}

// OnNewResult is called when a new scan result replaces the device
// collection. Row expansion is always discarded; search, filters and sort
// persist unless resetFilters is set.
func (s *State) OnNewResult(resetFilters bool) {
	s.expanded = make(map[string]struct{})
	if resetFilters {
		s.ResetFilters()
	}
}

func categorical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return All
	}
	return v
}
