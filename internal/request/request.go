// Package request turns raw scan form input into the payloads sent to the
// scanning service. Validation happens here so that malformed input never
// reaches the network.
package request

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/anstrom/netsight/internal/errors"
)

// ScanType selects the probing strategy of a network scan.
type ScanType string

const (
	ScanTypeFull ScanType = "full"
	ScanTypeSNMP ScanType = "snmp"
	ScanTypeARP  ScanType = "arp"
)

// ScanTypes lists the accepted scan types in display order.
var ScanTypes = []ScanType{ScanTypeFull, ScanTypeSNMP, ScanTypeARP}

// Parameter bounds for network scans.
const (
	MinTimeout = 1
	MaxTimeout = 10
	MinRetries = 0
	MaxRetries = 3
)

// Request is either a NetworkScanRequest or a SingleDeviceRequest.
type Request interface {
	// Target returns the network range or device IP being scanned.
	Target() string
	// Kind names the request shape for logs and metrics.
	Kind() string
}

// NetworkScanRequest is the body of a bulk network scan.
type NetworkScanRequest struct {
	NetworkRange   string   `json:"network_range" validate:"required"`
	Communities    []string `json:"communities"`
	Timeout        int      `json:"timeout" validate:"min=1,max=10"`
	Retries        int      `json:"retries" validate:"min=0,max=3"`
	ScanType       ScanType `json:"scan_type" validate:"oneof=full snmp arp"`
	EnablePortScan bool     `json:"enable_port_scan"`
}

// Target implements Request.
func (r NetworkScanRequest) Target() string { return r.NetworkRange }

// Kind implements Request.
func (r NetworkScanRequest) Kind() string { return "network" }

// SingleDeviceRequest is a lookup of one device by IP.
type SingleDeviceRequest struct {
	IP             string   `json:"ip" validate:"required"`
	Communities    []string `json:"communities"`
	EnablePortScan bool     `json:"enable_port_scan"`
}

// Target implements Request.
func (r SingleDeviceRequest) Target() string { return r.IP }

// Kind implements Request.
func (r SingleDeviceRequest) Kind() string { return "single_device" }

// NetworkForm holds raw user input for a network scan.
type NetworkForm struct {
	NetworkRange   string
	Communities    string
	Timeout        int
	Retries        int
	ScanType       string
	EnablePortScan bool
}

// DeviceForm holds raw user input for a single-device lookup.
type DeviceForm struct {
	IP             string
	Communities    string
	EnablePortScan bool
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ParseCommunities splits a comma-separated community list, trimming each
// token and dropping empty ones. The result is never nil.
func ParseCommunities(raw string) []string {
	communities := []string{}
	for _, token := range strings.Split(raw, ",") {
		if token = strings.TrimSpace(token); token != "" {
			communities = append(communities, token)
		}
	}
	return communities
}

// BuildNetworkScan validates form input and shapes a NetworkScanRequest.
func BuildNetworkScan(form NetworkForm) (NetworkScanRequest, error) {
	req := NetworkScanRequest{
		NetworkRange:   strings.TrimSpace(form.NetworkRange),
		Communities:    ParseCommunities(form.Communities),
		Timeout:        form.Timeout,
		Retries:        form.Retries,
		ScanType:       ScanType(strings.ToLower(strings.TrimSpace(form.ScanType))),
		EnablePortScan: form.EnablePortScan,
	}
	if err := Validate(req); err != nil {
		return NetworkScanRequest{}, err
	}
	return req, nil
}

// BuildSingleDevice validates form input and shapes a SingleDeviceRequest.
func BuildSingleDevice(form DeviceForm) (SingleDeviceRequest, error) {
	req := SingleDeviceRequest{
		IP:             strings.TrimSpace(form.IP),
		Communities:    ParseCommunities(form.Communities),
		EnablePortScan: form.EnablePortScan,
	}
	if err := Validate(req); err != nil {
		return SingleDeviceRequest{}, err
	}
	return req, nil
}

// Validate checks an already shaped request. Failures are returned as
// *errors.ValidationError naming the first offending field.
func Validate(req Request) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.NewValidationError(errors.MsgInvalidValue, "", nil)
	}

	fe := fieldErrs[0]
	if fe.Tag() == "required" {
		return errors.ErrRequiredField(fe.Field())
	}
	return errors.NewValidationError(errors.MsgInvalidValue, fe.Field(), fe.Value())
}
