package handlers

import (
	"context"
	"net/http"

	"github.com/anstrom/netsight/internal/client"
	"github.com/anstrom/netsight/internal/errors"
	"github.com/anstrom/netsight/internal/logging"
	"github.com/anstrom/netsight/internal/request"
	"github.com/anstrom/netsight/internal/session"
)

// NetworkScanBody is the console request for a network scan. Absent fields
// fall back to the configured scan defaults.
type NetworkScanBody struct {
	NetworkRange   *string `json:"network_range"`
	Communities    *string `json:"communities"`
	Timeout        *int    `json:"timeout"`
	Retries        *int    `json:"retries"`
	ScanType       *string `json:"scan_type"`
	EnablePortScan *bool   `json:"enable_port_scan"`
}

// DeviceScanBody is the console request for a single-device lookup.
type DeviceScanBody struct {
	IP             string  `json:"ip"`
	Communities    *string `json:"communities"`
	EnablePortScan *bool   `json:"enable_port_scan"`
}

// ScanStartedResponse acknowledges a scan accepted for execution.
type ScanStartedResponse struct {
	ID      string           `json:"id"`
	Session session.Snapshot `json:"session"`
}

// SessionHandler exposes the scan session over HTTP. Scans run on the
// handler's base context so they outlive the request that started them.
type SessionHandler struct {
	runner   *session.Runner
	service  client.Service
	defaults request.NetworkForm
	baseCtx  context.Context
	logger   *logging.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(
	baseCtx context.Context,
	runner *session.Runner,
	service client.Service,
	defaults request.NetworkForm,
	logger *logging.Logger,
) *SessionHandler {
	return &SessionHandler{
		runner:   runner,
		service:  service,
		defaults: defaults,
		baseCtx:  baseCtx,
		logger:   logger.WithComponent("session-handler"),
	}
}

// GetSession godoc
// @Summary Current scan session
// @Tags Session
// @Produce json
// @Success 200 {object} session.Snapshot
// @Router /session [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.runner.Controller().Snapshot())
}

// ResetSession godoc
// @Summary Return the session to idle
// @Tags Session
// @Produce json
// @Success 200 {object} session.Snapshot
// @Failure 409 {object} ErrorResponse
// @Router /session [delete]
func (h *SessionHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.Controller().Reset(); err != nil {
		writeErrorFrom(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.runner.Controller().Snapshot())
}

// StartNetworkScan godoc
// @Summary Start a network scan
// @Tags Session
// @Accept json
// @Produce json
// @Param scan body NetworkScanBody true "Scan parameters"
// @Success 202 {object} ScanStartedResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /scans/network [post]
func (h *SessionHandler) StartNetworkScan(w http.ResponseWriter, r *http.Request) {
	var body NetworkScanBody
	if err := parseJSON(r, &body); err != nil {
		writeErrorFrom(w, r, err)
		return
	}

	req, err := request.BuildNetworkScan(h.networkForm(body))
	if err != nil {
		writeErrorFrom(w, r, err)
		return
	}
	h.start(w, r, req)
}

// StartDeviceScan godoc
// @Summary Look up a single device
// @Tags Session
// @Accept json
// @Produce json
// @Param scan body DeviceScanBody true "Device lookup parameters"
// @Success 202 {object} ScanStartedResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /scans/device [post]
func (h *SessionHandler) StartDeviceScan(w http.ResponseWriter, r *http.Request) {
	var body DeviceScanBody
	if err := parseJSON(r, &body); err != nil {
		writeErrorFrom(w, r, err)
		return
	}

	form := request.DeviceForm{
		IP:             body.IP,
		Communities:    h.defaults.Communities,
		EnablePortScan: h.defaults.EnablePortScan,
	}
	if body.Communities != nil {
		form.Communities = *body.Communities
	}
	if body.EnablePortScan != nil {
		form.EnablePortScan = *body.EnablePortScan
	}

	req, err := request.BuildSingleDevice(form)
	if err != nil {
		writeErrorFrom(w, r, err)
		return
	}
	h.start(w, r, req)
}

func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request, req request.Request) {
	id, _, err := h.runner.Start(h.baseCtx, req)
	if err != nil {
		if errors.Is(err, session.ErrScanInProgress) {
			h.logger.Warn("Scan rejected while another is running", "target", req.Target())
		}
		writeErrorFrom(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, ScanStartedResponse{
		ID:      id,
		Session: h.runner.Controller().Snapshot(),
	})
}

func (h *SessionHandler) networkForm(body NetworkScanBody) request.NetworkForm {
	form := h.defaults
	if body.NetworkRange != nil {
		form.NetworkRange = *body.NetworkRange
	}
	if body.Communities != nil {
		form.Communities = *body.Communities
	}
	if body.Timeout != nil {
		form.Timeout = *body.Timeout
	}
	if body.Retries != nil {
		form.Retries = *body.Retries
	}
	if body.ScanType != nil {
		form.ScanType = *body.ScanType
	}
	if body.EnablePortScan != nil {
		form.EnablePortScan = *body.EnablePortScan
	}
	return form
}

// QuickScan godoc
// @Summary Quick reachability sweep
// @Description Proxies the scanning service quick scan. Does not touch the session.
// @Tags Network
// @Produce json
// @Param network query string true "Network range"
// @Param community query string false "SNMP community"
// @Success 200 {object} models.QuickScanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /network/quick-scan [get]
func (h *SessionHandler) QuickScan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.service.QuickScan(r.Context(), q.Get("network"), q.Get("community"))
	if err != nil {
		writeErrorFrom(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// ValidateNetwork godoc
// @Summary Validate a network range
// @Tags Network
// @Produce json
// @Param network query string true "Network range"
// @Success 200 {object} models.ValidateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /network/validate [get]
func (h *SessionHandler) ValidateNetwork(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ValidateNetwork(r.Context(), r.URL.Query().Get("network"))
	if err != nil {
		writeErrorFrom(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}
