package api

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/vsinha/sop/pkg/application/services"
	"github.com/vsinha/sop/pkg/infrastructure/metrics"
)

// Server exposes one planner session over HTTP
type Server struct {
	session *services.PlannerSession
	metrics *metrics.Metrics
	logger  zerolog.Logger
	router  *mux.Router
}

// NewServer builds the router for session. metrics may be nil.
func NewServer(session *services.PlannerSession, m *metrics.Metrics, logger zerolog.Logger) *Server {
	s := &Server{
		session: session,
		metrics: m,
		logger:  logger.With().Str("component", "http").Logger(),
	}
	s.router = s.newRouter()
	return s
}

func (s *Server) newRouter() *mux.Router {
	r := mux.NewRouter()
	if s.metrics != nil {
		r.Use(s.metrics.Instrument)
		r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	r.HandleFunc("/health", healthHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/product-lines", s.listProductLines).Methods("GET")

	api.HandleFunc("/scenarios", s.listScenarios).Methods("GET")
	api.HandleFunc("/events", s.getEventLog).Methods("GET")

	api.HandleFunc("/session", s.getSession).Methods("GET")
	api.HandleFunc("/session/events", s.getSessionEvents).Methods("GET")
	api.HandleFunc("/session/context", s.putContext).Methods("PUT")
	api.HandleFunc("/session/view-mode", s.putViewMode).Methods("PUT")

	api.HandleFunc("/plan", s.getPlan).Methods("GET")

	api.HandleFunc("/simulation/month", s.putSimulationMonth).Methods("PUT")
	api.HandleFunc("/simulation/devices", s.getSimulationDevices).Methods("GET")
	api.HandleFunc("/simulation/devices/{id:[0-9]+}", s.patchDevice).Methods("PATCH")
	api.HandleFunc("/simulation/save", s.saveSimulation).Methods("POST")

	api.HandleFunc("/demand/editor", s.getDemandEditor).Methods("GET")
	api.HandleFunc("/demand/editor", s.closeDemandEditor).Methods("DELETE")
	api.HandleFunc("/demand/editor/reset", s.resetDemandEditor).Methods("POST")
	api.HandleFunc("/demand/editor/save", s.saveDemandEditor).Methods("POST")
	api.HandleFunc("/demand/editor/{index:[0-9]+}", s.patchDemandRow).Methods("PATCH")

	api.HandleFunc("/analysis", s.postAnalysis).Methods("POST")

	return r
}

// Handler returns the router wrapped with recovery, CORS and access logging
func (s *Server) Handler() http.Handler {
	var accessLog io.Writer = s.logger
	h := handlers.CombinedLoggingHandler(accessLog, s.router)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "PUT", "PATCH", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
}

type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Interface("panic", v).Msg("recovered from handler panic")
}
