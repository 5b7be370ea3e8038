package handlers

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/anstrom/netsight/internal/errors"
	"github.com/anstrom/netsight/internal/models"
	"github.com/anstrom/netsight/internal/query"
	"github.com/anstrom/netsight/internal/session"
)

// ViewState is the console's shared query state. It follows the session:
// each new result clears row expansion and, when configured, filters.
type ViewState struct {
	mu               sync.Mutex
	state            *query.State
	resetOnNewResult bool
	resultID         string
}

// NewViewState returns a view state matching every device.
func NewViewState(resetOnNewResult bool) *ViewState {
	return &ViewState{state: query.NewState(), resetOnNewResult: resetOnNewResult}
}

// Observe is a session.Listener applying the new-result policy once per
// completed session.
func (v *ViewState) Observe(s session.Snapshot) {
	if s.Phase != session.PhaseComplete {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if s.ID == v.resultID {
		return
	}
	v.resultID = s.ID
	v.state.OnNewResult(v.resetOnNewResult)
}

// Current returns a copy of the state.
func (v *ViewState) Current() *query.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Clone()
}

// Update applies fn to the state and returns a copy of the result. The
// state is left unchanged when fn fails.
func (v *ViewState) Update(fn func(*query.State) error) (*query.State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := v.state.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	v.state = next
	return next.Clone(), nil
}

// QueryUpdate changes the named query fields; absent fields are kept.
type QueryUpdate struct {
	SearchTerm        *string `json:"search_term"`
	VendorFilter      *string `json:"vendor_filter"`
	MethodFilter      *string `json:"method_filter"`
	PortFilter        *string `json:"port_filter"`
	ShowOpenPortsOnly *bool   `json:"show_open_ports_only"`
	SortField         *string `json:"sort_field"`
	SortDirection     *string `json:"sort_direction"`
}

// Apply validates u and applies it to s.
func (u QueryUpdate) Apply(s *query.State) error {
	if u.SearchTerm != nil {
		s.SetSearch(*u.SearchTerm)
	}
	if u.VendorFilter != nil {
		s.SetVendorFilter(*u.VendorFilter)
	}
	if u.MethodFilter != nil {
		s.SetMethodFilter(*u.MethodFilter)
	}
	if u.PortFilter != nil {
		if err := validatePortFilter(*u.PortFilter); err != nil {
			return err
		}
		s.SetPortFilter(*u.PortFilter)
	}
	if u.ShowOpenPortsOnly != nil {
		s.SetShowOpenPortsOnly(*u.ShowOpenPortsOnly)
	}
	if u.SortField != nil || u.SortDirection != nil {
		field, direction := s.SortField, s.SortDirection
		if u.SortField != nil {
			field = query.SortField(strings.ToLower(strings.TrimSpace(*u.SortField)))
			direction = ""
		}
		if u.SortDirection != nil {
			direction = query.SortDirection(strings.ToLower(strings.TrimSpace(*u.SortDirection)))
			if direction != "" && direction != query.Ascending && direction != query.Descending {
				return errors.NewValidationError(errors.MsgInvalidValue, "sort_direction", *u.SortDirection)
			}
		}
		if !field.Valid() {
			return errors.NewValidationError(errors.MsgInvalidValue, "sort_field", string(field))
		}
		s.SetSort(field, direction)
	}
	return nil
}

func validatePortFilter(port string) error {
	port = strings.TrimSpace(port)
	if port == "" || port == query.All {
		return nil
	}
	if _, _, ok := query.ParsePortKey(port); !ok {
		return errors.NewValidationError(errors.MsgInvalidValue, "port_filter", port)
	}
	return nil
}

// DeviceView is a device row as rendered by the console.
type DeviceView struct {
	models.Device
	Badge        string            `json:"badge"`
	VisiblePorts []models.OpenPort `json:"visible_ports"`
	HiddenPorts  int               `json:"hidden_ports"`
	Expanded     bool              `json:"expanded"`
}

// DeviceListResponse is the filtered and sorted device view.
type DeviceListResponse struct {
	Devices []DeviceView  `json:"devices"`
	Matched int           `json:"matched"`
	Total   int           `json:"total"`
	Phase   session.Phase `json:"phase"`
	Query   *query.State  `json:"query"`
}

// FacetsResponse lists the values available to the categorical filters.
type FacetsResponse struct {
	Vendors []string `json:"vendors"`
	Methods []string `json:"methods"`
	Ports   []string `json:"ports"`
}

// DeviceHandler serves the device query engine over the current result.
type DeviceHandler struct {
	controller *session.Controller
	view       *ViewState
}

// NewDeviceHandler creates a device handler.
func NewDeviceHandler(controller *session.Controller, view *ViewState) *DeviceHandler {
	return &DeviceHandler{controller: controller, view: view}
}

// currentDevices returns the devices of the completed result, or none. The
// snapshot is folded into view first so a read never races the listener.
func currentDevices(controller *session.Controller, view *ViewState) (session.Snapshot, []models.Device) {
	snap := controller.Snapshot()
	view.Observe(snap)
	if snap.Phase != session.PhaseComplete || snap.Result == nil {
		return snap, []models.Device{}
	}
	return snap, snap.Result.Topology.Devices
}

// ListDevices godoc
// @Summary Filtered and sorted devices
// @Description Applies the shared query state. Query parameters override it for this request only.
// @Tags Devices
// @Produce json
// @Param search query string false "Search term over IP, hostname and vendor"
// @Param vendor query string false "Vendor filter"
// @Param method query string false "Scan method filter"
// @Param port query string false "Open port filter, e.g. 22/tcp"
// @Param open_only query bool false "Only devices with open ports"
// @Param sort query string false "Sort field" Enums(vendor, hostname, response_time, open_ports)
// @Param dir query string false "Sort direction" Enums(asc, desc)
// @Param layout query string false "Port truncation layout" Enums(table, card)
// @Success 200 {object} DeviceListResponse
// @Failure 400 {object} ErrorResponse
// @Router /devices [get]
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	snap, devices := currentDevices(h.controller, h.view)
	state := h.view.Current()
	update, err := queryUpdateFromParams(r)
	if err != nil {
		writeErrorFrom(w, r, err)
		return
	}
	if err := update.Apply(state); err != nil {
		writeErrorFrom(w, r, err)
		return
	}

	layout := query.LayoutTable
	switch strings.ToLower(r.URL.Query().Get("layout")) {
	case "", "table":
	case "card":
		layout = query.LayoutCard
	default:
		writeErrorFrom(w, r, errors.NewValidationError(errors.MsgInvalidValue, "layout", r.URL.Query().Get("layout")))
		return
	}

	matched := query.Apply(devices, state)
	views := make([]DeviceView, len(matched))
	for i, d := range matched {
		visible, hidden := query.VisiblePorts(d, state, layout)
		if visible == nil {
			visible = []models.OpenPort{}
		}
		views[i] = DeviceView{
			Device:       d,
			Badge:        query.StatusBadge(d),
			VisiblePorts: visible,
			HiddenPorts:  hidden,
			Expanded:     state.IsExpanded(d.IP),
		}
	}

	writeJSON(w, r, http.StatusOK, DeviceListResponse{
		Devices: views,
		Matched: len(matched),
		Total:   len(devices),
		Phase:   snap.Phase,
		Query:   state,
	})
}

func queryUpdateFromParams(r *http.Request) (QueryUpdate, error) {
	q := r.URL.Query()
	var u QueryUpdate
	optional := func(key string) *string {
		if !q.Has(key) {
			return nil
		}
		v := q.Get(key)
		return &v
	}
	u.SearchTerm = optional("search")
	u.VendorFilter = optional("vendor")
	u.MethodFilter = optional("method")
	u.PortFilter = optional("port")
	u.SortField = optional("sort")
	u.SortDirection = optional("dir")

	openOnly, present, err := queryBool(r, "open_only")
	if err != nil {
		return QueryUpdate{}, err
	}
	if present {
		u.ShowOpenPortsOnly = &openOnly
	}
	return u, nil
}

// Facets godoc
// @Summary Filter values present in the current result
// @Tags Devices
// @Produce json
// @Success 200 {object} FacetsResponse
// @Router /devices/facets [get]
func (h *DeviceHandler) Facets(w http.ResponseWriter, r *http.Request) {
	_, devices := currentDevices(h.controller, h.view)
	writeJSON(w, r, http.StatusOK, FacetsResponse{
		Vendors: query.UniqueVendors(devices),
		Methods: query.UniqueMethods(devices),
		Ports:   query.UniquePorts(devices),
	})
}

// ToggleExpanded godoc
// @Summary Expand or collapse the port list of a device
// @Tags Devices
// @Produce json
// @Param ip path string true "Device IP"
// @Success 200 {object} query.State
// @Router /devices/{ip}/expand [post]
func (h *DeviceHandler) ToggleExpanded(w http.ResponseWriter, r *http.Request) {
	ip := mux.Vars(r)["ip"]
	h.view.Observe(h.controller.Snapshot())
	state, _ := h.view.Update(func(s *query.State) error {
		s.ToggleExpanded(ip)
		return nil
	})
	writeJSON(w, r, http.StatusOK, state)
}

// GetQuery godoc
// @Summary Shared query state
// @Tags Query
// @Produce json
// @Success 200 {object} query.State
// @Router /query [get]
func (h *DeviceHandler) GetQuery(w http.ResponseWriter, r *http.Request) {
	h.view.Observe(h.controller.Snapshot())
	writeJSON(w, r, http.StatusOK, h.view.Current())
}

// UpdateQuery godoc
// @Summary Change the shared query state
// @Tags Query
// @Accept json
// @Produce json
// @Param query body QueryUpdate true "Fields to change"
// @Success 200 {object} query.State
// @Failure 400 {object} ErrorResponse
// @Router /query [patch]
func (h *DeviceHandler) UpdateQuery(w http.ResponseWriter, r *http.Request) {
	var update QueryUpdate
	if err := parseJSON(r, &update); err != nil {
		writeErrorFrom(w, r, err)
		return
	}
	h.view.Observe(h.controller.Snapshot())
	state, err := h.view.Update(update.Apply)
	if err != nil {
		writeErrorFrom(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, state)
}

// SelectSort godoc
// @Summary Select a sort column
// @Description Selecting the active column toggles its direction.
// @Tags Query
// @Produce json
// @Param field path string true "Sort field" Enums(vendor, hostname, response_time, open_ports)
// @Success 200 {object} query.State
// @Failure 400 {object} ErrorResponse
// @Router /query/sort/{field} [post]
func (h *DeviceHandler) SelectSort(w http.ResponseWriter, r *http.Request) {
	field := query.SortField(mux.Vars(r)["field"])
	h.view.Observe(h.controller.Snapshot())
	state, err := h.view.Update(func(s *query.State) error {
		if field == query.SortNone || !field.Valid() {
			return errors.NewValidationError(errors.MsgInvalidValue, "sort_field", string(field))
		}
		s.SelectSort(field)
		return nil
	})
	if err != nil {
		writeErrorFrom(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, state)
}

// ResetQuery godoc
// @Summary Clear search, filters and sort
// @Tags Query
// @Produce json
// @Success 200 {object} query.State
// @Router /query [delete]
func (h *DeviceHandler) ResetQuery(w http.ResponseWriter, r *http.Request) {
	h.view.Observe(h.controller.Snapshot())
	state, _ := h.view.Update(func(s *query.State) error {
		s.ResetFilters()
		return nil
	})
	writeJSON(w, r, http.StatusOK, state)
}
