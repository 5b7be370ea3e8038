package handlers

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/anstrom/netsight/internal/session"
)

// Status constants.
const (
	StatusHealthy       = "healthy"
	StatusDegraded      = "degraded"
	StatusNotConfigured = "not configured"
)

// Resource limits above which the console reports itself degraded.
const (
	maxMemory     = 1 << 30
	maxGoroutines = 1000
)

// HealthHandler handles health check and status endpoints.
type HealthHandler struct {
	controller     *session.Controller
	hub            *SessionHub
	metricsEnabled bool
	startTime      time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(controller *session.Controller, hub *SessionHub, metricsEnabled bool) *HealthHandler {
	return &HealthHandler{
		controller:     controller,
		hub:            hub,
		metricsEnabled: metricsEnabled,
		startTime:      time.Now(),
	}
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status           string            `json:"status"`
	Timestamp        time.Time         `json:"timestamp"`
	Uptime           string            `json:"uptime"`
	SessionPhase     session.Phase     `json:"session_phase"`
	WebSocketClients int               `json:"websocket_clients"`
	Checks           map[string]string `json:"checks,omitempty"`
}

// StatusResponse represents a detailed status response.
type StatusResponse struct {
	Service   ServiceInfo    `json:"service"`
	System    SystemInfo     `json:"system"`
	Session   SessionInfo    `json:"session"`
	Health    HealthResponse `json:"health"`
	Timestamp time.Time      `json:"timestamp"`
}

// ServiceInfo contains service-related information.
type ServiceInfo struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	StartTime time.Time `json:"start_time"`
	Uptime    string    `json:"uptime"`
	PID       int       `json:"pid"`
}

// SystemInfo contains system-related information.
type SystemInfo struct {
	OS           string     `json:"os"`
	Architecture string     `json:"architecture"`
	CPUs         int        `json:"cpus"`
	GoVersion    string     `json:"go_version"`
	Memory       MemoryInfo `json:"memory"`
	Goroutines   int        `json:"goroutines"`
}

// MemoryInfo contains memory usage information.
type MemoryInfo struct {
	Allocated   uint64 `json:"allocated_bytes"`
	System      uint64 `json:"system_bytes"`
	GCCycles    uint32 `json:"gc_cycles"`
	HeapObjects uint64 `json:"heap_objects"`
}

// SessionInfo summarizes the scan session without its result.
type SessionInfo struct {
	ID        string        `json:"id,omitempty"`
	Phase     session.Phase `json:"phase"`
	Kind      string        `json:"kind,omitempty"`
	Target    string        `json:"target,omitempty"`
	Progress  int           `json:"progress"`
	Devices   int           `json:"devices"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at,omitempty"`
}

// VersionResponse represents version information.
type VersionResponse struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit"`
	BuildTime string    `json:"build_time"`
	GoVersion string    `json:"go_version"`
	Timestamp time.Time `json:"timestamp"`
}

// Liveness godoc
// @Summary Liveness check
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:           "alive",
		Timestamp:        time.Now().UTC(),
		Uptime:           h.uptime(),
		SessionPhase:     h.controller.Snapshot().Phase,
		WebSocketClients: h.hub.ClientCount(),
	})
}

// Status godoc
// @Summary Detailed console status
// @Tags System
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /status [get]
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	snap := h.controller.Snapshot()
	info := SessionInfo{
		ID:        snap.ID,
		Phase:     snap.Phase,
		Kind:      snap.Kind,
		Target:    snap.Target,
		Progress:  snap.Progress,
		Error:     snap.Error,
		StartedAt: snap.StartedAt,
	}
	if snap.Result != nil {
		info.Devices = snap.Result.Topology.TotalCount
	}

	writeJSON(w, r, http.StatusOK, StatusResponse{
		Service: ServiceInfo{
			Name:      "netsight",
			Version:   version,
			StartTime: h.startTime,
			Uptime:    h.uptime(),
			PID:       os.Getpid(),
		},
		System:    systemInfo(),
		Session:   info,
		Health:    h.check(snap),
		Timestamp: time.Now().UTC(),
	})
}

// Version godoc
// @Summary Build information
// @Tags System
// @Produce json
// @Success 200 {object} VersionResponse
// @Router /version [get]
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, VersionResponse{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
		Timestamp: time.Now().UTC(),
	})
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.startTime).Round(time.Second).String()
}

// check evaluates resource usage. A failed scan is a result, not a fault.
func (h *HealthHandler) check(snap session.Snapshot) HealthResponse {
	resp := HealthResponse{
		Status:           StatusHealthy,
		Timestamp:        time.Now().UTC(),
		Uptime:           h.uptime(),
		SessionPhase:     snap.Phase,
		WebSocketClients: h.hub.ClientCount(),
		Checks:           map[string]string{"session": string(snap.Phase)},
	}

	if h.metricsEnabled {
		resp.Checks["metrics"] = "ok"
	} else {
		resp.Checks["metrics"] = StatusNotConfigured
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	if mem.Alloc > maxMemory {
		resp.Status = StatusDegraded
		resp.Checks["memory"] = "high usage"
	} else {
		resp.Checks["memory"] = "ok"
	}

	if runtime.NumGoroutine() > maxGoroutines {
		resp.Status = StatusDegraded
		resp.Checks["goroutines"] = "high count"
	} else {
		resp.Checks["goroutines"] = "ok"
	}
	return resp
}

func systemInfo() SystemInfo {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return SystemInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		CPUs:         runtime.NumCPU(),
		GoVersion:    runtime.Version(),
		Memory: MemoryInfo{
			Allocated:   mem.Alloc,
			System:      mem.Sys,
			GCCycles:    mem.NumGC,
			HeapObjects: mem.HeapObjects,
		},
		Goroutines: runtime.NumGoroutine(),
	}
}

// Build information reported by Version.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// SetBuildInfo sets build information (called by the CLI).
func SetBuildInfo(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
}
