package api_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/suite"

	"github.com/anstrom/netsight/internal/api"
	apihandlers "github.com/anstrom/netsight/internal/api/handlers"
	"github.com/anstrom/netsight/internal/client"
	"github.com/anstrom/netsight/internal/config"
	"github.com/anstrom/netsight/internal/export"
	"github.com/anstrom/netsight/internal/logging"
	"github.com/anstrom/netsight/internal/metrics"
	"github.com/anstrom/netsight/internal/scheduler"
	"github.com/anstrom/netsight/internal/session"
)

const networkReply = `{
  "topology": {
    "devices": [
      {"ip": "10.0.0.1", "hostname": "core", "vendor": "Cisco", "is_reachable": true, "scan_method": "SNMP",
       "response_time_ms": 2, "open_ports": [{"port": 22, "protocol": "tcp", "service": "ssh", "state": "open"}]},
      {"ip": "10.0.0.2", "vendor": "HP", "is_reachable": true, "scan_method": "ARP", "response_time_ms": 8},
      {"ip": "10.0.0.3", "is_reachable": false, "scan_method": "ARP"}
    ],
    "total_count": 7, "reachable_count": 2, "snmp_count": 1, "arp_count": 2,
    "scan_duration_ms": 1200, "scan_method": "full"
  },
  "statistics": {"total_devices": 7, "reachable_devices": 2, "snmp_devices": 1, "arp_only_devices": 2,
    "vendor_distribution": {"Cisco": 1, "HP": 1}, "scan_method_distribution": {"SNMP": 1, "ARP": 2}},
  "scan_info": {"scan_type": "full", "network_range": "10.0.0.0/24"}
}`

// scanningService stands in for the external scanning API.
type scanningService struct {
	mu       sync.Mutex
	requests map[string]int
	server   *httptest.Server
}

func newScanningService() *scanningService {
	s := &scanningService{requests: make(map[string]int)}
	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/network/full-scan", s.reply(http.StatusOK, networkReply)).Methods(http.MethodPost)
	v1.HandleFunc("/device/{ip}", s.reply(http.StatusNotFound,
		`{"error":"not found","details":"device did not answer"}`)).Methods(http.MethodGet)
	s.server = httptest.NewServer(router)
	return s
}

func (s *scanningService) reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.URL.Path]++
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (s *scanningService) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

func (s *scanningService) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.requests {
		n += c
	}
	return n
}

// WorkflowSuite drives the console against a fake scanning service through
// the real HTTP client.
type WorkflowSuite struct {
	suite.Suite

	cfg     *config.Config
	service *scanningService
	runner  *session.Runner
	server  *api.Server
	console *httptest.Server
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) SetupTest() {
	s.service = newScanningService()

	cfg := config.Default()
	s.cfg = cfg
	cfg.Service.BaseURL = s.service.server.URL + "/api/v1"
	cfg.Service.RequestTimeout = 5 * time.Second
	cfg.Scan.NetworkRange = "10.0.0.0/24"

	pm := metrics.NewPrometheusMetrics()
	svc := client.New(client.Config{
		BaseURL: cfg.Service.BaseURL,
		Timeout: cfg.Service.RequestTimeout,
	}, client.WithLogger(logging.Discard()), client.WithMetrics(pm))

	s.runner = session.NewRunner(session.NewController(), svc,
		session.WithLogger(logging.Discard()),
		session.WithMetrics(pm),
	)

	var err error
	s.server, err = api.New(cfg, s.runner, svc, api.WithLogger(logging.Discard()), api.WithMetrics(pm))
	s.Require().NoError(err)
	s.console = httptest.NewServer(s.server.Handler())
}

func (s *WorkflowSuite) TearDownTest() {
	s.console.Close()
	s.Require().NoError(s.server.Stop())
	s.service.server.Close()
}

func (s *WorkflowSuite) do(method, path string, body any) (*http.Response, []byte) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.console.URL+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, data
}

func (s *WorkflowSuite) waitFinished() session.Snapshot {
	var snap session.Snapshot
	s.Require().Eventually(func() bool {
		snap = s.runner.Controller().Snapshot()
		return snap.Phase == session.PhaseComplete || snap.Phase == session.PhaseFailed
	}, 5*time.Second, 10*time.Millisecond)
	return snap
}

func (s *WorkflowSuite) TestNetworkScanToExport() {
	resp, _ := s.do(http.MethodPost, "/api/v1/scans/network", map[string]any{})
	s.Require().Equal(http.StatusAccepted, resp.StatusCode)

	snap := s.waitFinished()
	s.Require().Equal(session.PhaseComplete, snap.Phase)
	s.Equal(session.ProgressDone, snap.Progress)
	s.Equal(3, snap.Result.Topology.TotalCount, "counts are repaired from the device list")
	s.Equal(3, snap.Result.Statistics.TotalDevices)

	resp, body := s.do(http.MethodPatch, "/api/v1/query", map[string]any{"sort_field": "response_time"})
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))

	resp, body = s.do(http.MethodGet, "/api/v1/devices", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var list apihandlers.DeviceListResponse
	s.Require().NoError(json.Unmarshal(body, &list))
	s.Require().Len(list.Devices, 3)
	s.Equal([]string{"10.0.0.3", "10.0.0.1", "10.0.0.2"},
		[]string{list.Devices[0].IP, list.Devices[1].IP, list.Devices[2].IP},
		"missing response time sorts as zero")

	resp, body = s.do(http.MethodGet, "/api/v1/statistics", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var stats apihandlers.StatisticsResponse
	s.Require().NoError(json.Unmarshal(body, &stats))
	s.Equal(3, stats.Summary.TotalDevices)
	s.Equal(2, stats.Summary.ReachableDevices)
	s.InDelta(66.67, stats.Summary.ReachabilityPercent, 0.01)

	s.do(http.MethodPatch, "/api/v1/query", map[string]any{"vendor_filter": "Cisco"})
	resp, body = s.do(http.MethodGet, "/api/v1/export?format=csv", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(export.Header, records[0])
	s.Equal("10.0.0.1", records[1][0])

	s.Equal(1, s.service.count("/api/v1/network/full-scan"))
}

func (s *WorkflowSuite) TestDeviceLookupFailure() {
	resp, _ := s.do(http.MethodPost, "/api/v1/scans/device", map[string]any{"ip": "10.0.0.9"})
	s.Require().Equal(http.StatusAccepted, resp.StatusCode)

	snap := s.waitFinished()
	s.Equal(session.PhaseFailed, snap.Phase)
	s.Equal("device did not answer", snap.Error)
	s.Nil(snap.Result)
	s.Zero(snap.Progress)

	resp, body := s.do(http.MethodGet, "/api/v1/devices", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var list apihandlers.DeviceListResponse
	s.Require().NoError(json.Unmarshal(body, &list))
	s.Empty(list.Devices, "a failed session exposes no result")
	s.Equal(session.PhaseFailed, list.Phase)
}

func (s *WorkflowSuite) TestValidationNeverReachesService() {
	resp, body := s.do(http.MethodPost, "/api/v1/scans/device", map[string]any{"ip": "   "})
	s.Equal(http.StatusBadRequest, resp.StatusCode, string(body))
	s.Equal(session.PhaseIdle, s.runner.Controller().Snapshot().Phase)
	s.Zero(s.service.total())
}

func (s *WorkflowSuite) TestScheduledRescanFeedsConsole() {
	sched := scheduler.New(s.runner, scheduler.WithLogger(logging.Discard()))
	_, err := sched.AddRescanJob("default", "@every 1s", s.cfg.NetworkForm())
	s.Require().NoError(err)
	ctx, cancel := context.WithCancel(context.Background())
	s.T().Cleanup(cancel)
	s.Require().NoError(sched.Start(ctx))
	defer sched.Stop()

	s.Require().Eventually(func() bool {
		_, body := s.do(http.MethodGet, "/api/v1/devices", nil)
		var list apihandlers.DeviceListResponse
		return json.Unmarshal(body, &list) == nil && list.Total == 3
	}, 5*time.Second, 50*time.Millisecond)

	jobs := sched.GetJobs()
	s.Require().Len(jobs, 1)
	s.Positive(jobs[0].Runs, "job %s has run", jobs[0].Name)
}
