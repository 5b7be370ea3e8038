// Package stats derives dashboard figures from a scan result and recomputes
// statistics from the raw device collection for cross-checking against what
// the scanning service reported.
package stats

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/anstrom/netsight/internal/models"
)

// Share is one category of a proportional breakdown.
type Share struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Summary holds the derived dashboard figures of a scan result.
type Summary struct {
	TotalDevices        int     `json:"total_devices"`
	ReachableDevices    int     `json:"reachable_devices"`
	UnreachableDevices  int     `json:"unreachable_devices"`
	SNMPDevices         int     `json:"snmp_devices"`
	ARPOnlyDevices      int     `json:"arp_only_devices"`
	DevicesWithMAC      int     `json:"devices_with_mac"`
	ReachabilityPercent float64 `json:"reachability_percent"`
	SNMPPercent         float64 `json:"snmp_percent"`
	AvgResponseTimeMs   float64 `json:"avg_response_time_ms"`
	MinResponseTimeMs   float64 `json:"min_response_time_ms"`
	MaxResponseTimeMs   float64 `json:"max_response_time_ms"`
	VendorBreakdown     []Share `json:"vendor_breakdown"`
	MethodBreakdown     []Share `json:"method_breakdown"`
	ScanType            string  `json:"scan_type"`
	NetworkRange        string  `json:"network_range"`
	ScanDurationMs      int64   `json:"scan_duration_ms"`
}

// Percent returns part/total*100, or 0 when total is not positive.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Derive computes the dashboard summary of result from its reported
// statistics. A nil result yields a zero summary.
func Derive(result *models.ScanResult) Summary {
	if result == nil {
		return Summary{VendorBreakdown: []Share{}, MethodBreakdown: []Share{}}
	}
	s := result.Statistics

	minRT, maxRT := responseTimeRange(result.Topology.Devices)
	return Summary{
		TotalDevices:        s.TotalDevices,
		ReachableDevices:    s.ReachableDevices,
		UnreachableDevices:  max(s.TotalDevices-s.ReachableDevices, 0),
		SNMPDevices:         s.SNMPDevices,
		ARPOnlyDevices:      s.ARPOnlyDevices,
		DevicesWithMAC:      s.DevicesWithMAC,
		ReachabilityPercent: Percent(s.ReachableDevices, s.TotalDevices),
		SNMPPercent:         Percent(s.SNMPDevices, s.TotalDevices),
		AvgResponseTimeMs:   s.AvgResponseTimeMs,
		MinResponseTimeMs:   minRT,
		MaxResponseTimeMs:   maxRT,
		VendorBreakdown:     Breakdown(s.VendorDistribution),
		MethodBreakdown:     Breakdown(s.ScanMethodDistribution),
		ScanType:            result.ScanInfo.ScanType,
		NetworkRange:        result.ScanInfo.NetworkRange,
		ScanDurationMs:      result.Topology.ScanDurationMs,
	}
}

// Breakdown turns a distribution into shares of its total, largest first.
// Every key is kept.
func Breakdown(dist map[string]int) []Share {
	total := 0
	for _, n := range dist {
		total += n
	}

	shares := make([]Share, 0, len(dist))
	for name, n := range dist {
		shares = append(shares, Share{Name: name, Count: n, Percent: Percent(n, total)})
	}
	slices.SortFunc(shares, func(a, b Share) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return shares
}

// responseTimeRange returns the min and max response time over reachable
// devices reporting one.
func responseTimeRange(devices []models.Device) (float64, float64) {
	minRT, maxRT := math.Inf(1), math.Inf(-1)
	for _, d := range devices {
		if !d.IsReachable || d.ResponseTimeMs == nil {
			continue
		}
		minRT = min(minRT, *d.ResponseTimeMs)
		maxRT = max(maxRT, *d.ResponseTimeMs)
	}
	if math.IsInf(minRT, 1) {
		return 0, 0
	}
	return minRT, maxRT
}

// FromDevices recomputes statistics from a device collection. SNMP counts
// include COMBINED devices. Distributions and the average response time
// cover reachable devices only; a missing vendor counts as "Unknown".
func FromDevices(devices []models.Device) models.Statistics {
	s := models.Statistics{
		TotalDevices:           len(devices),
		VendorDistribution:     make(map[string]int),
		ScanMethodDistribution: make(map[string]int),
	}

	var totalRT float64
	for _, d := range devices {
		if d.IsSNMP() || d.ScanMethod == models.MethodCombined {
			s.SNMPDevices++
		}
		if d.ScanMethod == models.MethodARP {
			s.ARPOnlyDevices++
		}
		if !d.IsReachable {
			continue
		}
		s.ReachableDevices++
		s.VendorDistribution[d.VendorOrUnknown()]++
		s.ScanMethodDistribution[d.ScanMethod]++
		if d.MACAddress != "" {
			s.DevicesWithMAC++
		}
		totalRT += d.ResponseTime()
	}

	if s.ReachableDevices > 0 {
		s.AvgResponseTimeMs = totalRT / float64(s.ReachableDevices)
	}
	return s
}

// Discrepancy is one field where reported and recomputed statistics differ.
type Discrepancy struct {
	Field    string  `json:"field"`
	Reported float64 `json:"reported"`
	Computed float64 `json:"computed"`
}

// String implements fmt.Stringer.
func (d Discrepancy) String() string {
	return fmt.Sprintf("%s: reported %g, computed %g", d.Field, d.Reported, d.Computed)
}

// avgTolerance absorbs rounding of averages done by the service.
const avgTolerance = 0.5

// CrossCheck compares the statistics reported in result with those
// recomputed from its devices. Discrepancies are ordered by field name.
func CrossCheck(result *models.ScanResult) []Discrepancy {
	if result == nil {
		return nil
	}
	reported := result.Statistics
	computed := FromDevices(result.Topology.Devices)

	var out []Discrepancy
	addInt := func(field string, r, c int) {
		if r != c {
			out = append(out, Discrepancy{Field: field, Reported: float64(r), Computed: float64(c)})
		}
	}

	addInt("arp_only_devices", reported.ARPOnlyDevices, computed.ARPOnlyDevices)
	if math.Abs(reported.AvgResponseTimeMs-computed.AvgResponseTimeMs) > avgTolerance {
		out = append(out, Discrepancy{
			Field:    "avg_response_time_ms",
			Reported: reported.AvgResponseTimeMs,
			Computed: computed.AvgResponseTimeMs,
		})
	}
	addInt("devices_with_mac", reported.DevicesWithMAC, computed.DevicesWithMAC)
	addInt("reachable_devices", reported.ReachableDevices, computed.ReachableDevices)
	addInt("snmp_devices", reported.SNMPDevices, computed.SNMPDevices)
	addInt("total_devices", reported.TotalDevices, computed.TotalDevices)

	for _, key := range unionKeys(reported.ScanMethodDistribution, computed.ScanMethodDistribution) {
		addInt("scan_method_distribution["+key+"]",
			reported.ScanMethodDistribution[key], computed.ScanMethodDistribution[key])
	}
	for _, key := range unionKeys(reported.VendorDistribution, computed.VendorDistribution) {
		addInt("vendor_distribution["+key+"]",
			reported.VendorDistribution[key], computed.VendorDistribution[key])
	}

	slices.SortStableFunc(out, func(a, b Discrepancy) int {
		return cmp.Compare(a.Field, b.Field)
	})
	return out
}

func unionKeys(a, b map[string]int) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for _, m := range []map[string]int{a, b} {
		for k := range m {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)
	return keys
}
