// Package client talks to the scanning service over HTTP. It submits network
// and single-device scans, runs the auxiliary quick-scan and validate calls,
// and maps every failure onto the typed errors in internal/errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anstrom/netsight/internal/errors"
	"github.com/anstrom/netsight/internal/logging"
	"github.com/anstrom/netsight/internal/metrics"
	"github.com/anstrom/netsight/internal/models"
	"github.com/anstrom/netsight/internal/request"
)

// Endpoint labels used in logs and metrics. Path parameters stay templated.
const (
	EndpointFullScan  = "/network/full-scan"
	EndpointTypedScan = "/network/scan/{type}"
	EndpointDevice    = "/device/{ip}"
	EndpointQuickScan = "/network/quick-scan"
	EndpointValidate  = "/network/validate"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Service is the scanning service as seen by a scan session.
//
//go:generate mockgen -destination=mocks/mock_service.go -package=mocks github.com/anstrom/netsight/internal/client Service
type Service interface {
	ScanNetwork(ctx context.Context, req request.NetworkScanRequest) (*models.ScanResult, error)
	ScanDevice(ctx context.Context, req request.SingleDeviceRequest) (*models.Device, error)
	QuickScan(ctx context.Context, network, community string) (*models.QuickScanResponse, error)
	ValidateNetwork(ctx context.Context, network string) (*models.ValidateResponse, error)
}

// Config holds the connection settings of a Client.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	UserAgent      string
	TypedEndpoints bool
}

// Client is the HTTP implementation of Service.
type Client struct {
	baseURL        string
	typedEndpoints bool
	userAgent      string
	httpClient     *http.Client
	logger         *logging.Logger
	metrics        metrics.Recorder
}

var _ Service = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(c *Client) { c.metrics = recorder }
}

// New creates a scanning service client.
func New(cfg Config, opts ...Option) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "netsight"
	}

	c := &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		typedEndpoints: cfg.TypedEndpoints,
		userAgent:      userAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		logger:  logging.Default().WithComponent("client"),
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// arpScanBody is the typed arp scan payload, which carries no communities.
type arpScanBody struct {
	NetworkRange   string `json:"network_range"`
	Timeout        int    `json:"timeout"`
	Retries        int    `json:"retries"`
	ScanType       string `json:"scan_type"`
	EnablePortScan bool   `json:"enable_port_scan"`
}

// ScanNetwork submits a bulk network scan.
func (c *Client) ScanNetwork(ctx context.Context, req request.NetworkScanRequest) (*models.ScanResult, error) {
	if err := request.Validate(req); err != nil {
		return nil, err
	}

	path, label := "/network/full-scan", EndpointFullScan
	var payload interface{} = req
	if c.typedEndpoints {
		path, label = "/network/scan/"+url.PathEscape(string(req.ScanType)), EndpointTypedScan
		if req.ScanType == request.ScanTypeARP {
			payload = arpScanBody{
				NetworkRange:   req.NetworkRange,
				Timeout:        req.Timeout,
				Retries:        req.Retries,
				ScanType:       string(req.ScanType),
				EnablePortScan: req.EnablePortScan,
			}
		}
	}

	var result models.ScanResult
	if err := c.do(ctx, http.MethodPost, path, label, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ScanDevice looks up a single device. Communities are sent as repeated
// "community" query parameters.
func (c *Client) ScanDevice(ctx context.Context, req request.SingleDeviceRequest) (*models.Device, error) {
	if err := request.Validate(req); err != nil {
		return nil, err
	}

	query := url.Values{}
	for _, community := range req.Communities {
		query.Add("community", community)
	}
	query.Set("enable_port_scan", strconv.FormatBool(req.EnablePortScan))
	path := "/device/" + url.PathEscape(req.IP) + "?" + query.Encode()

	var resp models.DeviceResponse
	if err := c.do(ctx, http.MethodGet, path, EndpointDevice, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Device == nil {
		return nil, errors.WrapDecodeError(EndpointDevice, fmt.Errorf("response has no device"))
	}
	return resp.Device, nil
}

// QuickScan runs a reachability sweep of a network range.
func (c *Client) QuickScan(ctx context.Context, network, community string) (*models.QuickScanResponse, error) {
	network = strings.TrimSpace(network)
	if network == "" {
		return nil, errors.ErrRequiredField("network")
	}

	query := url.Values{}
	query.Set("network", network)
	if community = strings.TrimSpace(community); community != "" {
		query.Set("community", community)
	}

	var resp models.QuickScanResponse
	if err := c.do(ctx, http.MethodGet, "/network/quick-scan?"+query.Encode(), EndpointQuickScan, nil, &resp); err != nil {
		return nil, err
	}
	if resp.ReachableIPs == nil {
		resp.ReachableIPs = []string{}
	}
	return &resp, nil
}

// ValidateNetwork asks the service whether a range is well formed. An invalid
// range is reported in the response, not as an error.
func (c *Client) ValidateNetwork(ctx context.Context, network string) (*models.ValidateResponse, error) {
	network = strings.TrimSpace(network)
	if network == "" {
		return nil, errors.ErrRequiredField("network")
	}

	path := "/network/validate?" + url.Values{"network": {network}}.Encode()

	var resp models.ValidateResponse
	err := c.do(ctx, http.MethodGet, path, EndpointValidate, nil, &resp)
	if err == nil {
		return &resp, nil
	}

	var te *errors.TransportError
	if errors.As(err, &te) && te.StatusCode == http.StatusBadRequest {
		return &models.ValidateResponse{Valid: false, Error: te.Message}, nil
	}
	return nil, err
}

// do performs one exchange and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path, label string, payload, out interface{}) error {
	start := time.Now()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.WrapTransportError("failed to marshal request payload", label, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.WrapTransportError("failed to create HTTP request", label, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(label, "error", start)
		if ctxErr := ctx.Err(); ctxErr != nil {
			te := errors.WrapTransportError("request canceled", label, ctxErr)
			te.Code = errors.CodeCanceled
			return te
		}
		c.logger.ErrorService("Scanning service unreachable", label, err)
		return errors.WrapTransportError("HTTP request failed", label, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.observe(label, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := errors.NewStatusError(resp.StatusCode, errorMessage(raw), label)
		c.logger.ErrorService("Scanning service returned an error", label, statusErr,
			"status", resp.StatusCode)
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WrapDecodeError(label, err)
	}

	c.logger.InfoService("Scanning service request completed", label,
		"method", method, "status", resp.StatusCode, "duration", time.Since(start))
	return nil
}

func (c *Client) observe(label, status string, start time.Time) {
	c.metrics.IncrementServiceRequests(label, status)
	c.metrics.RecordServiceDuration(label, time.Since(start))
}

// errorMessage extracts the text to surface from an error body: details
// first, then error. Anything unparseable yields "" so the caller falls back
// to the status line.
func errorMessage(raw []byte) string {
	var body models.ErrorBody
	if len(bytes.TrimSpace(raw)) == 0 || json.Unmarshal(raw, &body) != nil {
		return ""
	}
	if body.Details != "" {
		return body.Details
	}
	return body.Error
}
