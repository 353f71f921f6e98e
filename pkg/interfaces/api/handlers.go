package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vsinha/sop/pkg/application/dto"
	"github.com/vsinha/sop/pkg/application/services"
	"github.com/vsinha/sop/pkg/domain/entities"
)

type errorResponse struct {
	Error string `json:"error"`
}

type productLineResponse struct {
	Label     string `json:"label"`
	ShortName string `json:"shortName"`
}

type contextRequest struct {
	ProductLine   string `json:"productLine"`
	PlanningMonth string `json:"planningMonth"`
}

type viewModeRequest struct {
	ViewMode string `json:"viewMode"`
}

type monthRequest struct {
	Month string `json:"month"`
}

// fieldEdit accepts the value as a JSON string or number; it is parsed
// like keyboard input either way
type fieldEdit struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

func (e fieldEdit) raw() string {
	var s string
	if err := json.Unmarshal(e.Value, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(e.Value))
}

type demandEditResponse struct {
	Applied bool                 `json:"applied"`
	Editor  dto.DemandEditorView `json:"editor"`
}

// requestError marks malformed client input
type requestError struct {
	err error
}

func (e requestError) Error() string { return e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return requestError{err: err}
}

func statusFor(err error) int {
	var reqErr requestError
	switch {
	case errors.As(err, &reqErr),
		errors.Is(err, services.ErrUnknownField),
		errors.Is(err, entities.ErrInvalidPlanningMonth),
		errors.Is(err, entities.ErrUnknownProductLine):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnknownMonth),
		errors.Is(err, services.ErrUnknownDevice):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAnalysisInProgress),
		errors.Is(err, services.ErrEditorClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest(fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) listProductLines(w http.ResponseWriter, _ *http.Request) {
	lines := entities.ProductLines()
	resp := make([]productLineResponse, 0, len(lines))
	for _, line := range lines {
		profile := line.Profile()
		resp = append(resp, productLineResponse{Label: profile.Label, ShortName: profile.ShortName})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listScenarios(w http.ResponseWriter, _ *http.Request) {
	saved, err := s.session.SavedScenarios()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// queryInt reads a non-negative integer query parameter, def when absent
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, badRequest(fmt.Errorf("invalid %s: %q", name, raw))
	}
	return v, nil
}

func (s *Server) getSessionEvents(w http.ResponseWriter, r *http.Request) {
	from, err := queryInt(r, "from", 1)
	if err != nil {
		s.writeError(w, err)
		return
	}
	history, err := s.session.History(from)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) getEventLog(w http.ResponseWriter, r *http.Request) {
	from, err := queryInt(r, "from", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	log, err := s.session.EventLog(from)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (s *Server) getSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) putContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	current := s.session.Snapshot()
	line, month := current.ProductLine, current.PlanningMonth
	if req.ProductLine != "" {
		parsed, err := entities.ParseProductLine(req.ProductLine)
		if err != nil {
			s.writeError(w, err)
			return
		}
		line = parsed
	}
	if req.PlanningMonth != "" {
		parsed, err := entities.ParsePlanningMonth(req.PlanningMonth)
		if err != nil {
			s.writeError(w, err)
			return
		}
		month = parsed
	}

	if err := s.session.SelectContext(line, month); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) putViewMode(w http.ResponseWriter, r *http.Request) {
	var req viewModeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	mode, err := entities.ParseViewMode(req.ViewMode)
	if err != nil {
		s.writeError(w, badRequest(err))
		return
	}
	s.session.SetViewMode(mode)
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) getPlan(w http.ResponseWriter, _ *http.Request) {
	plan, err := s.session.Plan()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) putSimulationMonth(w http.ResponseWriter, r *http.Request) {
	var req monthRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.session.SelectSimulationMonth(req.Month); err != nil {
		s.writeError(w, err)
		return
	}
	s.getSimulationDevices(w, r)
}

func (s *Server) getSimulationDevices(w http.ResponseWriter, _ *http.Request) {
	devices, err := s.session.SimulationDevices()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) patchDevice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, badRequest(fmt.Errorf("invalid device id: %w", err)))
		return
	}

	var req fieldEdit
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	field, err := services.ParseDeviceField(req.Field)
	if err != nil {
		s.writeError(w, err)
		return
	}

	devices, err := s.session.UpdateDevice(id, field, req.raw())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) saveSimulation(w http.ResponseWriter, _ *http.Request) {
	if err := s.session.SaveSimulation(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) getDemandEditor(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.OpenDemandEditor().View())
}

func (s *Server) patchDemandRow(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		s.writeError(w, badRequest(fmt.Errorf("invalid row index: %w", err)))
		return
	}

	var req fieldEdit
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	field, err := services.ParseForecastField(req.Field)
	if err != nil {
		s.writeError(w, err)
		return
	}

	editor, ok := s.session.DemandEditor()
	if !ok {
		s.writeError(w, services.ErrEditorClosed)
		return
	}
	applied := editor.ApplyEdit(index, field, req.raw())
	writeJSON(w, http.StatusOK, demandEditResponse{Applied: applied, Editor: editor.View()})
}

func (s *Server) resetDemandEditor(w http.ResponseWriter, _ *http.Request) {
	editor, ok := s.session.DemandEditor()
	if !ok {
		s.writeError(w, services.ErrEditorClosed)
		return
	}
	editor.Reset()
	writeJSON(w, http.StatusOK, editor.View())
}

func (s *Server) saveDemandEditor(w http.ResponseWriter, _ *http.Request) {
	if err := s.session.SaveDemandEdits(); err != nil {
		s.writeError(w, err)
		return
	}
	editor, ok := s.session.DemandEditor()
	if !ok {
		writeJSON(w, http.StatusOK, s.session.Snapshot())
		return
	}
	writeJSON(w, http.StatusOK, editor.View())
}

func (s *Server) closeDemandEditor(w http.ResponseWriter, _ *http.Request) {
	s.session.CloseDemandEditor()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := s.session.Analyze(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
