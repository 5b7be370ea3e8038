package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsight/internal/errors"
)

func validForm() NetworkForm {
	return NetworkForm{
		NetworkRange:   " 192.168.1.0/24 ",
		Communities:    "public, private",
		Timeout:        2,
		Retries:        1,
		ScanType:       "full",
		EnablePortScan: true,
	}
}

func TestParseCommunities(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"simple", "public,private", []string{"public", "private"}},
		{"trims tokens", "  public ,  private  ", []string{"public", "private"}},
		{"drops empties", "public,,private,", []string{"public", "private"}},
		{"all empty", " , ,", []string{}},
		{"blank", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCommunities(tt.raw)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildNetworkScan(t *testing.T) {
	t.Run("valid form", func(t *testing.T) {
		req, err := BuildNetworkScan(validForm())
		require.NoError(t, err)
		assert.Equal(t, "192.168.1.0/24", req.NetworkRange)
		assert.Equal(t, []string{"public", "private"}, req.Communities)
		assert.Equal(t, ScanTypeFull, req.ScanType)
		assert.True(t, req.EnablePortScan)
		assert.Equal(t, "network", req.Kind())
		assert.Equal(t, "192.168.1.0/24", req.Target())
	})

	t.Run("blank range is rejected", func(t *testing.T) {
		form := validForm()
		form.NetworkRange = "   "
		_, err := BuildNetworkScan(form)
		require.Error(t, err)

		var ve *errors.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, errors.MsgRequiredFieldMissing, ve.Message)
		assert.Equal(t, "network_range", ve.Field)
	})

	t.Run("empty communities are not an error", func(t *testing.T) {
		form := validForm()
		form.Communities = " , "
		req, err := BuildNetworkScan(form)
		require.NoError(t, err)
		assert.Empty(t, req.Communities)

		body, err := json.Marshal(req)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"communities":[]`)
	})

	t.Run("scan type is case insensitive", func(t *testing.T) {
		form := validForm()
		form.ScanType = " ARP "
		req, err := BuildNetworkScan(form)
		require.NoError(t, err)
		assert.Equal(t, ScanTypeARP, req.ScanType)
	})

	bounds := []struct {
		name  string
		apply func(*NetworkForm)
		field string
	}{
		{"timeout too low", func(f *NetworkForm) { f.Timeout = 0 }, "timeout"},
		{"timeout too high", func(f *NetworkForm) { f.Timeout = 11 }, "timeout"},
		{"negative retries", func(f *NetworkForm) { f.Retries = -1 }, "retries"},
		{"too many retries", func(f *NetworkForm) { f.Retries = 4 }, "retries"},
		{"unknown scan type", func(f *NetworkForm) { f.ScanType = "ping" }, "scan_type"},
	}
	for _, tt := range bounds {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.apply(&form)
			_, err := BuildNetworkScan(form)

			var ve *errors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, errors.MsgInvalidValue, ve.Message)
		})
	}

	t.Run("bounds are inclusive", func(t *testing.T) {
		form := validForm()
		form.Timeout, form.Retries = MaxTimeout, MinRetries
		_, err := BuildNetworkScan(form)
		assert.NoError(t, err)

		form.Timeout, form.Retries = MinTimeout, MaxRetries
		_, err = BuildNetworkScan(form)
		assert.NoError(t, err)
	})
}

func TestBuildSingleDevice(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req, err := BuildSingleDevice(DeviceForm{IP: " 10.0.0.5 ", Communities: "public", EnablePortScan: true})
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.5", req.IP)
		assert.Equal(t, []string{"public"}, req.Communities)
		assert.Equal(t, "single_device", req.Kind())
	})

	t.Run("missing ip", func(t *testing.T) {
		_, err := BuildSingleDevice(DeviceForm{IP: "  "})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeValidation))

		var ve *errors.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "ip", ve.Field)
		assert.Equal(t, errors.MsgRequiredFieldMissing, ve.Message)
	})
}
