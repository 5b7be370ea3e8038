package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anstrom/netsight/internal/models"
)

func TestStatusBadge(t *testing.T) {
	tests := []struct {
		name   string
		device models.Device
		want   string
	}{
		{"unreachable wins", models.Device{IsReachable: false, ScanMethod: "SNMP"}, "Unreachable"},
		{"snmp", models.Device{IsReachable: true, ScanMethod: "SNMP"}, "SNMP"},
		{"arp", models.Device{IsReachable: true, ScanMethod: "ARP"}, "ARP Only"},
		{"combined", models.Device{IsReachable: true, ScanMethod: "COMBINED"}, "Combined"},
		{"server defined", models.Device{IsReachable: true, ScanMethod: "LLDP"}, "LLDP"},
		{"missing", models.Device{IsReachable: true}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusBadge(tt.device))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "0:09", FormatDuration(9))
	assert.Equal(t, "1:00", FormatDuration(60))
	assert.Equal(t, "12:05", FormatDuration(725))
	assert.Equal(t, "0:00", FormatDuration(-3))
}

func TestFormatHelpers(t *testing.T) {
	v := 12.5
	assert.Equal(t, "12.5ms", FormatResponseTime(models.Device{ResponseTimeMs: &v}))
	assert.Equal(t, "-", FormatResponseTime(models.Device{}))
	assert.Equal(t, "-", OrDash(""))
	assert.Equal(t, "core", OrDash("core"))
}
