package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"supermetrics-cloud/internal/audit"
	"supermetrics-cloud/internal/auth"
	"supermetrics-cloud/internal/simulator/application"
)

// Handler switches the simulator on and off.
type Handler struct {
	runner      *application.Runner
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewHandler constructs a Handler.
func NewHandler(runner *application.Runner, auditLogger audit.Logger, logger *log.Logger) (*Handler, error) {
	if runner == nil {
		return nil, errors.New("simulator handler: nil runner")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{runner: runner, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP routes simulator requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/simulator/on":
		if err := h.runner.Start(r.Context()); err != nil {
			h.logger.Printf("simulator start: %v", err)
			http.Error(w, "simulator start failed", http.StatusInternalServerError)
			return
		}
		h.logAudit(r, "simulator.on")
	case "/api/v1/simulator/off":
		h.runner.Stop()
		h.logAudit(r, "simulator.off")
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"running": h.runner.Running()})
}

func (h *Handler) logAudit(r *http.Request, action string) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "simulator",
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
