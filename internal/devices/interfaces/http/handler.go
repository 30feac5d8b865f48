package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"supermetrics-cloud/internal/audit"
	"supermetrics-cloud/internal/auth"
	"supermetrics-cloud/internal/devices/application"
	devices "supermetrics-cloud/internal/devices/domain"
)

// Handler serves the device directory endpoints.
type Handler struct {
	service     *application.Service
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service *application.Service, logger *log.Logger, opts ...HandlerOption) (*Handler, error) {
	if service == nil {
		return nil, errors.New("device handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	handler := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(handler)
	}
	return handler, nil
}

// HandlerOption configures the handler.
type HandlerOption func(*Handler)

// WithAuditLogger records device mutations in the audit log.
func WithAuditLogger(auditLogger audit.Logger) HandlerOption {
	return func(h *Handler) {
		h.auditLogger = auditLogger
	}
}

// ServeHTTP routes device requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/devices" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/api/v1/devices/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/devices/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, id)
	case http.MethodPut:
		h.handleUpdate(w, r, id)
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		list []devices.Device
		err  error
	)
	if r.URL.Query().Get("active") == "true" {
		list, err = h.service.FindAllActive(r.Context())
	} else {
		list, err = h.service.FindAll(r.Context())
	}
	if err != nil {
		h.logger.Printf("devices list: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []devices.Device{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var device devices.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	created, err := h.service.Save(r.Context(), &device)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
	h.logAudit(r, "device.create", created.ID, map[string]any{"name": created.Name, "type": created.Type})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	device, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.logger.Printf("devices get: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if device == nil {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(device)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var device devices.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	device.ID = id
	updated, err := h.service.Update(r.Context(), &device)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(updated)
	h.logAudit(r, "device.update", updated.ID, map[string]any{"name": updated.Name, "active": updated.Active})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Printf("devices delete: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, "device.delete", id, nil)
}

func (h *Handler) logAudit(r *http.Request, action, resourceID string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	var payload []byte
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "device",
		ResourceID:   resourceID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, devices.ErrDeviceNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, devices.ErrNilDevice),
		errors.Is(err, devices.ErrEmptyName),
		errors.Is(err, devices.ErrInvalidDeviceType):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Printf("devices: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Message: message})
}
