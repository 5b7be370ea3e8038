// Package models defines the wire and in-memory shapes shared by the
// netsight client: devices reported by the scanning service and the
// canonical scan result every view consumes.
package models

import (
	"strconv"
	"strings"
)

// Scan method tags reported per device.
const (
	MethodSNMP     = "SNMP"
	MethodARP      = "ARP"
	MethodCombined = "COMBINED"
	// MethodSingleDevice is synthesized by the client for single-device
	// lookups and never sent by the service.
	MethodSingleDevice = "SINGLE_DEVICE"
)

// Display defaults for absent fields.
const (
	UnknownLabel = "Unknown"
	EmptyLabel   = "-"
)

// OpenPort is one open port reported for a device.
type OpenPort struct {
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
	Service  string `json:"service"`
	State    string `json:"state"`
}

// Key returns the "{port}/{protocol}" form used for filtering.
func (p OpenPort) Key() string {
	return strconv.Itoa(p.Port) + "/" + p.Protocol
}

// Device is one discovered network endpoint. Devices are value records and
// are never mutated once decoded.
type Device struct {
	IP             string     `json:"ip"`
	MACAddress     string     `json:"mac_address,omitempty"`
	Hostname       string     `json:"hostname,omitempty"`
	Vendor         string     `json:"vendor,omitempty"`
	Description    string     `json:"description,omitempty"`
	Uptime         string     `json:"uptime,omitempty"`
	IsReachable    bool       `json:"is_reachable"`
	ResponseTimeMs *float64   `json:"response_time_ms,omitempty"`
	ScanMethod     string     `json:"scan_method"`
	OpenPorts      []OpenPort `json:"open_ports,omitempty"`
}

// ResponseTime returns the response time in milliseconds, 0 when absent.
func (d Device) ResponseTime() float64 {
	if d.ResponseTimeMs == nil {
		return 0
	}
	return *d.ResponseTimeMs
}

// VendorOrUnknown returns the vendor or "Unknown" when absent.
func (d Device) VendorOrUnknown() string {
	if d.Vendor == "" {
		return UnknownLabel
	}
	return d.Vendor
}

// MethodOrUnknown returns the scan method or "Unknown" when absent.
func (d Device) MethodOrUnknown() string {
	if d.ScanMethod == "" {
		return UnknownLabel
	}
	return d.ScanMethod
}

// HasOpenPorts reports whether the device has at least one open port.
func (d Device) HasOpenPorts() bool {
	return len(d.OpenPorts) > 0
}

// IsSNMP reports whether the scan method mentions SNMP.
func (d Device) IsSNMP() bool {
	return strings.Contains(d.ScanMethod, MethodSNMP)
}

// IsARP reports whether the scan method mentions ARP.
func (d Device) IsARP() bool {
	return strings.Contains(d.ScanMethod, MethodARP)
}

// Topology is the device collection plus service-side counters.
type Topology struct {
	Devices        []Device `json:"devices"`
	TotalCount     int      `json:"total_count"`
	ReachableCount int      `json:"reachable_count"`
	SNMPCount      int      `json:"snmp_count"`
	ARPCount       int      `json:"arp_count"`
	ScanDurationMs int64    `json:"scan_duration_ms"`
	ScanMethod     string   `json:"scan_method"`
}

// Statistics are the aggregate counters of a scan.
type Statistics struct {
	TotalDevices           int            `json:"total_devices"`
	ReachableDevices       int            `json:"reachable_devices"`
	SNMPDevices            int            `json:"snmp_devices"`
	ARPOnlyDevices         int            `json:"arp_only_devices"`
	DevicesWithMAC         int            `json:"devices_with_mac"`
	VendorDistribution     map[string]int `json:"vendor_distribution"`
	ScanMethodDistribution map[string]int `json:"scan_method_distribution"`
	AvgResponseTimeMs      float64        `json:"avg_response_time_ms"`
}

// ScanInfo echoes the parameters a scan ran with.
type ScanInfo struct {
	ScanType        string   `json:"scan_type"`
	NetworkRange    string   `json:"network_range"`
	SNMPCommunities []string `json:"snmp_communities"`
	Timeout         int      `json:"timeout"`
	Retries         int      `json:"retries"`
	WorkerCount     int      `json:"worker_count"`
}

// ScanResult is the canonical outcome of one scan session.
type ScanResult struct {
	Topology   Topology   `json:"topology"`
	Statistics Statistics `json:"statistics"`
	ScanInfo   ScanInfo   `json:"scan_info"`
}

// DeviceResponse is the body of a single-device lookup.
type DeviceResponse struct {
	Device *Device `json:"device"`
}

// QuickScanResponse is the body of a quick reachability sweep.
type QuickScanResponse struct {
	ReachableIPs []string `json:"reachable_ips"`
	Count        int      `json:"count"`
}

// ValidateResponse is the body of a network range validation call.
type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Network string `json:"network,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorBody is the scanning service error convention.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}
