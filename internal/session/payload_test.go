package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsight/internal/errors"
	"github.com/anstrom/netsight/internal/models"
	"github.com/anstrom/netsight/internal/request"
)

func ptr(f float64) *float64 { return &f }

func TestNormalizeSingleDevice(t *testing.T) {
	device := &models.Device{
		IP:             "10.0.0.5",
		IsReachable:    true,
		ScanMethod:     "SNMP",
		ResponseTimeMs: ptr(12),
		Vendor:         "Acme",
	}
	req := request.SingleDeviceRequest{IP: "10.0.0.5", Communities: []string{"public"}}

	result, err := DevicePayload(device, req, 40*time.Millisecond).Normalize()
	require.NoError(t, err)

	assert.Equal(t, []models.Device{*device}, result.Topology.Devices)
	assert.Equal(t, 1, result.Topology.TotalCount)
	assert.Equal(t, 1, result.Topology.ReachableCount)
	assert.Equal(t, 1, result.Topology.SNMPCount)
	assert.Equal(t, 0, result.Topology.ARPCount)
	assert.Equal(t, int64(40), result.Topology.ScanDurationMs)
	assert.Equal(t, models.MethodSingleDevice, result.Topology.ScanMethod)
	assert.Equal(t, "SNMP", result.Topology.Devices[0].ScanMethod, "device tag is preserved")

	assert.Equal(t, 1, result.Statistics.TotalDevices)
	assert.Equal(t, 1, result.Statistics.SNMPDevices)
	assert.Equal(t, map[string]int{"Acme": 1}, result.Statistics.VendorDistribution)
	assert.Equal(t, map[string]int{"SNMP": 1}, result.Statistics.ScanMethodDistribution)
	assert.Equal(t, 12.0, result.Statistics.AvgResponseTimeMs)

	assert.Equal(t, "single_device", result.ScanInfo.ScanType)
	assert.Equal(t, "10.0.0.5", result.ScanInfo.NetworkRange)
	assert.Equal(t, []string{"public"}, result.ScanInfo.SNMPCommunities)
}

func TestNormalizeSingleDeviceDefaults(t *testing.T) {
	device := &models.Device{IP: "10.0.0.9", ScanMethod: "COMBINED_ARP"}

	result, err := DevicePayload(device, request.SingleDeviceRequest{IP: "10.0.0.9"}, 0).Normalize()
	require.NoError(t, err)

	assert.Equal(t, 0, result.Topology.ReachableCount)
	assert.Equal(t, 1, result.Topology.ARPCount)
	assert.Equal(t, 1, result.Statistics.ARPOnlyDevices)
	assert.Equal(t, 0, result.Statistics.DevicesWithMAC)
	assert.Equal(t, map[string]int{"Unknown": 1}, result.Statistics.VendorDistribution)
	assert.Equal(t, 0.0, result.Statistics.AvgResponseTimeMs)
	assert.NotNil(t, result.ScanInfo.SNMPCommunities)

	noMethod, err := DevicePayload(&models.Device{IP: "10.0.0.9"}, request.SingleDeviceRequest{}, 0).Normalize()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Unknown": 1}, noMethod.Statistics.ScanMethodDistribution)
	assert.Equal(t, "10.0.0.9", noMethod.ScanInfo.NetworkRange)
}

func TestNormalizeNetworkRepairsCounts(t *testing.T) {
	in := &models.ScanResult{
		Topology: models.Topology{
			Devices:    []models.Device{{IP: "10.0.0.1"}, {IP: "10.0.0.2"}},
			TotalCount: 5,
			ScanMethod: "full",
		},
		Statistics: models.Statistics{TotalDevices: 7, ReachableDevices: 2},
	}

	out, err := NetworkPayload(in).Normalize()
	require.NoError(t, err)

	assert.Equal(t, 2, out.Topology.TotalCount)
	assert.Equal(t, 2, out.Statistics.TotalDevices)
	assert.Equal(t, 2, out.Statistics.ReachableDevices)
	assert.NotNil(t, out.Statistics.VendorDistribution)
	assert.NotNil(t, out.Statistics.ScanMethodDistribution)
	assert.NotNil(t, out.ScanInfo.SNMPCommunities)
	assert.Equal(t, 5, in.Topology.TotalCount, "input is not mutated")
}

func TestNormalizeEmptyNetwork(t *testing.T) {
	out, err := NetworkPayload(&models.ScanResult{}).Normalize()
	require.NoError(t, err)
	assert.NotNil(t, out.Topology.Devices)
	assert.Empty(t, out.Topology.Devices)
	assert.Zero(t, out.Statistics.TotalDevices)
}

func TestNormalizeMissingPayload(t *testing.T) {
	_, err := NetworkPayload(nil).Normalize()
	assert.True(t, errors.IsCode(err, errors.CodeDecode))

	_, err = DevicePayload(nil, request.SingleDeviceRequest{}, 0).Normalize()
	assert.True(t, errors.IsCode(err, errors.CodeDecode))

	_, err = Payload{}.Normalize()
	assert.True(t, errors.IsCode(err, errors.CodeDecode))
}
