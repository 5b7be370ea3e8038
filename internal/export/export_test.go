package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsight/internal/errors"
	"github.com/anstrom/netsight/internal/models"
	"github.com/anstrom/netsight/internal/query"
)

func devices() []models.Device {
	rt := 3.5
	return []models.Device{
		{
			IP: "10.0.0.1", Hostname: "core, sw", Vendor: "Cisco", MACAddress: "00:11:22:33:44:55",
			IsReachable: true, ScanMethod: "SNMP", ResponseTimeMs: &rt,
			OpenPorts: []models.OpenPort{{Port: 22, Protocol: "tcp"}, {Port: 161, Protocol: "udp"}},
		},
		{IP: "10.0.0.2", ScanMethod: "ARP"},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, "text/csv", f.ContentType())

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", f.ContentType())

	_, err = ParseFormat("xml")
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestFilename(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "netsight-devices-20260304-050607.csv", FormatCSV.Filename(ts))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, devices(), nil, time.Now()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{
		"10.0.0.1", "core, sw", "Cisco", "00:11:22:33:44:55", "SNMP", "SNMP",
		"3.5", "22/tcp;161/udp", "", "",
	}, records[1])
	assert.Equal(t, []string{
		"10.0.0.2", "", "Unknown", "", "Unreachable", "ARP", "", "", "", "",
	}, records[2])
}

func TestWriteJSON(t *testing.T) {
	state := query.NewState()
	state.SetSearch("10.0")
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, devices(), state, now))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, now, doc.ExportedAt)
	assert.Equal(t, 2, doc.Count)
	assert.Equal(t, devices(), doc.Devices)
	require.NotNil(t, doc.Query)
	assert.Equal(t, "10.0", doc.Query.SearchTerm)
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil, nil, time.Now()))
	assert.Contains(t, buf.String(), `"devices": []`)
	assert.NotContains(t, buf.String(), `"query"`)
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("xml"), nil, nil, time.Now())
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}
