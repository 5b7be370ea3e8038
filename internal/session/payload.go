package session

import (
	"fmt"
	"time"

	"github.com/anstrom/netsight/internal/errors"
	"github.com/anstrom/netsight/internal/models"
	"github.com/anstrom/netsight/internal/request"
)

// ScanTypeSingleDevice is the scan_info.scan_type of a single-device lookup.
const ScanTypeSingleDevice = "single_device"

type payloadKind int

const (
	payloadNetwork payloadKind = iota + 1
	payloadDevice
)

// Payload is a raw scanning service response: either a full network scan
// result or a single device. Normalize resolves it into a ScanResult.
type Payload struct {
	kind    payloadKind
	network *models.ScanResult
	device  *models.Device
	query   request.SingleDeviceRequest
	elapsed time.Duration
}

// NetworkPayload wraps a network scan response.
func NetworkPayload(result *models.ScanResult) Payload {
	return Payload{kind: payloadNetwork, network: result}
}

// DevicePayload wraps a single-device response together with the request
// that produced it and the observed round trip time.
func DevicePayload(device *models.Device, req request.SingleDeviceRequest, elapsed time.Duration) Payload {
	return Payload{kind: payloadDevice, device: device, query: req, elapsed: elapsed}
}

// Normalize returns the canonical result for the payload.
func (p Payload) Normalize() (*models.ScanResult, error) {
	switch p.kind {
	case payloadNetwork:
		if p.network == nil {
			return nil, errors.WrapDecodeError("", fmt.Errorf("empty scan result"))
		}
		return normalizeNetwork(*p.network), nil
	case payloadDevice:
		if p.device == nil {
			return nil, errors.WrapDecodeError("", fmt.Errorf("response has no device"))
		}
		return normalizeDevice(*p.device, p.query, p.elapsed), nil
	default:
		return nil, errors.WrapDecodeError("", fmt.Errorf("unknown payload"))
	}
}

// normalizeNetwork copies a network result, repairing counts so that
// total_count matches the device list and replacing nil collections.
func normalizeNetwork(in models.ScanResult) *models.ScanResult {
	out := in

	out.Topology.Devices = append([]models.Device{}, in.Topology.Devices...)
	out.Topology.TotalCount = len(out.Topology.Devices)
	out.Statistics.TotalDevices = out.Topology.TotalCount

	out.Statistics.VendorDistribution = copyCounts(in.Statistics.VendorDistribution)
	out.Statistics.ScanMethodDistribution = copyCounts(in.Statistics.ScanMethodDistribution)

	out.ScanInfo.SNMPCommunities = append([]string{}, in.ScanInfo.SNMPCommunities...)
	return &out
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// normalizeDevice synthesizes all three result blocks from one device.
func normalizeDevice(device models.Device, req request.SingleDeviceRequest, elapsed time.Duration) *models.ScanResult {
	target := req.IP
	if target == "" {
		target = device.IP
	}
	reachable := boolCount(device.IsReachable)
	snmp := boolCount(device.IsSNMP())
	arp := boolCount(device.IsARP())

	return &models.ScanResult{
		Topology: models.Topology{
			Devices:        []models.Device{device},
			TotalCount:     1,
			ReachableCount: reachable,
			SNMPCount:      snmp,
			ARPCount:       arp,
			ScanDurationMs: elapsed.Milliseconds(),
			ScanMethod:     models.MethodSingleDevice,
		},
		Statistics: models.Statistics{
			TotalDevices:           1,
			ReachableDevices:       reachable,
			SNMPDevices:            snmp,
			ARPOnlyDevices:         boolCount(device.IsARP() && !device.IsSNMP()),
			DevicesWithMAC:         boolCount(device.MACAddress != ""),
			VendorDistribution:     map[string]int{device.VendorOrUnknown(): 1},
			ScanMethodDistribution: map[string]int{device.MethodOrUnknown(): 1},
			AvgResponseTimeMs:      device.ResponseTime(),
		},
		ScanInfo: models.ScanInfo{
			ScanType:        ScanTypeSingleDevice,
			NetworkRange:    target,
			SNMPCommunities: append([]string{}, req.Communities...),
			WorkerCount:     1,
		},
	}
}

func boolCount(b bool) int {
	if b {
		return 1
	}
	return 0
}
