package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	devices "supermetrics-cloud/internal/devices/domain"
	"supermetrics-cloud/internal/observability/metrics"
	"supermetrics-cloud/internal/readings/application"
	readings "supermetrics-cloud/internal/readings/domain"
)

const timeLayout = time.RFC3339

// ReadingService is the application surface this handler drives.
type ReadingService interface {
	SubmitReading(ctx context.Context, raw []byte) error
	Aggregate(ctx context.Context, query application.AggregationQuery) ([]readings.AggregationResult, error)
}

// Handler serves reading ingestion and aggregation endpoints.
type Handler struct {
	service ReadingService
	logger  *log.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service ReadingService, logger *log.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("reading handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, logger: logger}, nil
}

// ServeHTTP routes reading requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/readings" && r.Method == http.MethodPost:
		h.handleIngest(w, r)
	case r.URL.Path == "/api/v1/readings/aggregation" && r.Method == http.MethodGet:
		h.handleAggregation(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Printf("readings ingest: read body error: %v", err)
		metrics.IncIngestError("read_body")
		writeError(w, http.StatusBadRequest, "read body error")
		return
	}
	defer r.Body.Close()

	if err := h.service.SubmitReading(r.Context(), body); err != nil {
		status, reason := ingestStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Printf("readings ingest: %v", err)
		}
		metrics.IncIngestError(reason)
		metrics.ObserveIngest(metrics.ResultError, time.Since(start))
		writeError(w, status, publicMessage(err, status))
		return
	}

	metrics.ObserveIngest(metrics.ResultSuccess, time.Since(start))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAggregation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	query, err := ParseAggregationQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.service.Aggregate(r.Context(), query)
	if err != nil {
		status := aggregationStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Printf("readings aggregation: %v", err)
		}
		metrics.ObserveAggregation(metrics.ResultError, time.Since(start))
		writeError(w, status, publicMessage(err, status))
		return
	}

	metrics.ObserveAggregation(metrics.ResultSuccess, time.Since(start))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(results)
}

// ParseAggregationQuery extracts aggregation filters from query parameters.
// from and to are required RFC3339 instants; the window is inclusive, so
// equal bounds are valid.
func ParseAggregationQuery(r *http.Request) (application.AggregationQuery, error) {
	values := r.URL.Query()

	var query application.AggregationQuery
	if category := values.Get("category"); category != "" {
		normalized, ok := devices.NormalizeCategory(category)
		if !ok {
			return query, fmt.Errorf("unknown category %q", category)
		}
		query.Category = normalized
	}
	query.DeviceIDs = values["device_id"]
	query.Zone = values.Get("zone")

	from, err := parseTimeQuery(r, "from")
	if err != nil {
		return query, err
	}
	to, err := parseTimeQuery(r, "to")
	if err != nil {
		return query, err
	}
	if to.Before(from) {
		return query, errors.New("to must not be before from")
	}
	query.Start = from
	query.End = to
	return query, nil
}

func parseTimeQuery(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC3339", key)
	}
	return parsed, nil
}

func ingestStatus(err error) (int, string) {
	switch {
	case errors.Is(err, readings.ErrUnknownDevice):
		return http.StatusBadRequest, "unknown_device"
	case errors.Is(err, readings.ErrMalformedPayload):
		return http.StatusBadRequest, "malformed_payload"
	case errors.Is(err, readings.ErrDeviceNotRegistered):
		return http.StatusNotFound, "device_not_registered"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func aggregationStatus(err error) int {
	switch {
	case errors.Is(err, devices.ErrInvalidCategory):
		return http.StatusBadRequest
	case errors.Is(err, readings.ErrNoDevicesFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage keeps internal failures opaque to callers.
func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Message: message})
}
