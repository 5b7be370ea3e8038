package handlers

import (
	"net/http"
	"time"

	"github.com/anstrom/netsight/internal/export"
	"github.com/anstrom/netsight/internal/query"
	"github.com/anstrom/netsight/internal/session"
	"github.com/anstrom/netsight/internal/stats"
)

// StatisticsResponse is the dashboard view of the current result.
type StatisticsResponse struct {
	Phase         session.Phase       `json:"phase"`
	Summary       stats.Summary       `json:"summary"`
	Discrepancies []stats.Discrepancy `json:"discrepancies"`
	Duration      string              `json:"duration"`
}

// StatisticsHandler serves the statistics aggregator and exports.
type StatisticsHandler struct {
	controller *session.Controller
	view       *ViewState
	now        func() time.Time
}

// NewStatisticsHandler creates a statistics handler.
func NewStatisticsHandler(controller *session.Controller, view *ViewState) *StatisticsHandler {
	return &StatisticsHandler{controller: controller, view: view, now: time.Now}
}

// GetStatistics godoc
// @Summary Derived statistics of the current result
// @Description Summary figures plus any disagreement between reported and recomputed statistics.
// @Tags Statistics
// @Produce json
// @Success 200 {object} StatisticsResponse
// @Router /statistics [get]
func (h *StatisticsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	snap := h.controller.Snapshot()

	resp := StatisticsResponse{
		Phase:         snap.Phase,
		Summary:       stats.Derive(nil),
		Discrepancies: []stats.Discrepancy{},
		Duration:      query.FormatDuration(snap.Duration),
	}
	if snap.Phase == session.PhaseComplete && snap.Result != nil {
		resp.Summary = stats.Derive(snap.Result)
		if d := stats.CrossCheck(snap.Result); len(d) > 0 {
			resp.Discrepancies = d
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// Export godoc
// @Summary Export the current device view
// @Description Writes the devices matching the shared query state as CSV or JSON.
// @Tags Statistics
// @Produce text/csv
// @Produce json
// @Param format query string false "Export format" Enums(csv, json)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /export [get]
func (h *StatisticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(export.FormatCSV)
	}
	format, err := export.ParseFormat(raw)
	if err != nil {
		writeErrorFrom(w, r, err)
		return
	}

	_, devices := currentDevices(h.controller, h.view)
	state := h.view.Current()
	now := h.now()

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename(now)+`"`)
	w.WriteHeader(http.StatusOK)
	if err := export.Write(w, format, query.Apply(devices, state), state, now); err != nil {
		// Headers are already sent; the truncated body is all we can give.
		writeFailed(r, err)
	}
}
