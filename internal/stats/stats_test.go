package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsight/internal/models"
)

func rt(v float64) *float64 { return &v }

func sampleDevices() []models.Device {
	return []models.Device{
		{IP: "10.0.0.1", IsReachable: true, ScanMethod: "SNMP", Vendor: "Cisco", MACAddress: "00:11:22:33:44:55", ResponseTimeMs: rt(4)},
		{IP: "10.0.0.2", IsReachable: true, ScanMethod: "COMBINED", Vendor: "Cisco", ResponseTimeMs: rt(10)},
		{IP: "10.0.0.3", IsReachable: true, ScanMethod: "ARP", MACAddress: "aa:bb:cc:dd:ee:ff", ResponseTimeMs: rt(1)},
		{IP: "10.0.0.4", IsReachable: false, ScanMethod: "ARP", Vendor: "HP"},
	}
}

func TestPercentGuardsDivisionByZero(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.Equal(t, 50.0, Percent(1, 2))

	summary := Derive(&models.ScanResult{})
	assert.Equal(t, 0.0, summary.ReachabilityPercent)
	assert.Equal(t, 0.0, summary.SNMPPercent)
	assert.False(t, math.IsNaN(summary.ReachabilityPercent))
	assert.False(t, math.IsNaN(summary.SNMPPercent))
}

func TestDerive(t *testing.T) {
	devices := sampleDevices()
	result := &models.ScanResult{
		Topology:   models.Topology{Devices: devices, TotalCount: 4, ScanDurationMs: 2500},
		Statistics: FromDevices(devices),
		ScanInfo:   models.ScanInfo{ScanType: "full", NetworkRange: "10.0.0.0/24"},
	}

	s := Derive(result)
	assert.Equal(t, 4, s.TotalDevices)
	assert.Equal(t, 3, s.ReachableDevices)
	assert.Equal(t, 1, s.UnreachableDevices)
	assert.Equal(t, 75.0, s.ReachabilityPercent)
	assert.Equal(t, 50.0, s.SNMPPercent)
	assert.Equal(t, 1.0, s.MinResponseTimeMs)
	assert.Equal(t, 10.0, s.MaxResponseTimeMs)
	assert.Equal(t, "full", s.ScanType)
	assert.Equal(t, int64(2500), s.ScanDurationMs)

	require.Len(t, s.VendorBreakdown, 2)
	assert.Equal(t, "Cisco", s.VendorBreakdown[0].Name)
	assert.Equal(t, 2, s.VendorBreakdown[0].Count)
	assert.InDelta(t, 66.667, s.VendorBreakdown[0].Percent, 0.001)
	assert.Equal(t, "Unknown", s.VendorBreakdown[1].Name)
	assert.InDelta(t, 33.333, s.VendorBreakdown[1].Percent, 0.001)
	assert.Len(t, s.MethodBreakdown, 3)
}

func TestDeriveNil(t *testing.T) {
	s := Derive(nil)
	assert.Zero(t, s.TotalDevices)
	assert.NotNil(t, s.VendorBreakdown)
	assert.NotNil(t, s.MethodBreakdown)
}

func TestBreakdownKeepsEveryKey(t *testing.T) {
	dist := map[string]int{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		dist[name] = 1
	}
	dist["z"] = 5

	shares := Breakdown(dist)
	require.Len(t, shares, 13)
	assert.Equal(t, "z", shares[0].Name)
	assert.Equal(t, "a", shares[1].Name, "ties order by name")

	total := 0.0
	for _, s := range shares {
		total += s.Percent
	}
	assert.InDelta(t, 100.0, total, 1e-9)

	assert.Empty(t, Breakdown(nil))
}

func TestFromDevices(t *testing.T) {
	s := FromDevices(sampleDevices())

	assert.Equal(t, 4, s.TotalDevices)
	assert.Equal(t, 3, s.ReachableDevices)
	assert.Equal(t, 2, s.SNMPDevices, "SNMP and COMBINED both count")
	assert.Equal(t, 2, s.ARPOnlyDevices)
	assert.Equal(t, 2, s.DevicesWithMAC)
	assert.Equal(t, map[string]int{"Cisco": 2, "Unknown": 1}, s.VendorDistribution, "unreachable devices are not distributed")
	assert.Equal(t, map[string]int{"SNMP": 1, "COMBINED": 1, "ARP": 1}, s.ScanMethodDistribution)
	assert.Equal(t, 5.0, s.AvgResponseTimeMs)
}

func TestFromDevicesEmpty(t *testing.T) {
	s := FromDevices(nil)
	assert.Zero(t, s.TotalDevices)
	assert.Zero(t, s.AvgResponseTimeMs)
	assert.NotNil(t, s.VendorDistribution)
}

func TestCrossCheck(t *testing.T) {
	devices := sampleDevices()

	t.Run("consistent", func(t *testing.T) {
		result := &models.ScanResult{
			Topology:   models.Topology{Devices: devices},
			Statistics: FromDevices(devices),
		}
		assert.Empty(t, CrossCheck(result))
	})

	t.Run("mismatches", func(t *testing.T) {
		reported := FromDevices(devices)
		reported.ReachableDevices = 4
		reported.AvgResponseTimeMs = 5.3
		reported.VendorDistribution = map[string]int{"Cisco": 2, "HP": 1}

		got := CrossCheck(&models.ScanResult{
			Topology:   models.Topology{Devices: devices},
			Statistics: reported,
		})

		assert.Equal(t, []Discrepancy{
			{Field: "reachable_devices", Reported: 4, Computed: 3},
			{Field: "vendor_distribution[HP]", Reported: 1, Computed: 0},
			{Field: "vendor_distribution[Unknown]", Reported: 0, Computed: 1},
		}, got)
		assert.Equal(t, "reachable_devices: reported 4, computed 3", got[0].String())
	})

	assert.Nil(t, CrossCheck(nil))
}
