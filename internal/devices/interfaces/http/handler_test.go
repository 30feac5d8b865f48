package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"supermetrics-cloud/internal/devices/application"
	devices "supermetrics-cloud/internal/devices/domain"
)

type memoryRepo struct {
	byID map[string]devices.Device
	next int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: map[string]devices.Device{}}
}

func (r *memoryRepo) Get(_ context.Context, id string) (*devices.Device, error) {
	device, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &device, nil
}

func (r *memoryRepo) FindActiveByFilter(_ context.Context, filter devices.DeviceFilter) ([]devices.Device, error) {
	var out []devices.Device
	for _, device := range r.byID {
		if device.Active {
			out = append(out, device)
		}
	}
	return out, nil
}

func (r *memoryRepo) List(_ context.Context) ([]devices.Device, error) {
	var out []devices.Device
	for _, device := range r.byID {
		out = append(out, device)
	}
	return out, nil
}

func (r *memoryRepo) ListActive(_ context.Context) ([]devices.Device, error) {
	return r.FindActiveByFilter(context.Background(), devices.DeviceFilter{})
}

func (r *memoryRepo) Save(_ context.Context, device *devices.Device) error {
	if device.ID == "" {
		r.next++
		device.ID = "gen-" + string(rune('0'+r.next))
	}
	r.byID[device.ID] = *device
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	service, err := application.NewService(repo, log.New(testWriter{t}, "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	handler, err := NewHandler(service, log.New(testWriter{t}, "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return handler, repo
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func TestCreateDevice(t *testing.T) {
	handler, repo := newTestHandler(t)

	body := `{"name":"Watch","brand":"Apple","serialNumber":"SN-1","type":"heart-rate-monitor","zone":"rome","active":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/devices", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created devices.Device
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if _, ok := repo.byID[created.ID]; !ok {
		t.Fatalf("expected device persisted")
	}
}

func TestCreateDeviceValidation(t *testing.T) {
	handler, _ := newTestHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"empty name", `{"name":"","type":"heart-rate-monitor"}`},
		{"bad type", `{"name":"Watch","type":"barometer"}`},
		{"not json", `nope`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/devices", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestGetDevice(t *testing.T) {
	handler, repo := newTestHandler(t)
	repo.byID["d-1"] = devices.Device{ID: "d-1", Name: "Watch", Type: devices.TypeHeartRateMonitor, Active: true}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/d-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/devices/missing", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateDevice(t *testing.T) {
	handler, repo := newTestHandler(t)
	repo.byID["d-1"] = devices.Device{ID: "d-1", Name: "Watch", Type: devices.TypeHeartRateMonitor, Active: true}

	body := `{"name":"Watch v2","type":"heart-rate-monitor","active":true}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/devices/d-1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.byID["d-1"].Name != "Watch v2" {
		t.Fatalf("expected name updated, got %q", repo.byID["d-1"].Name)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/devices/missing", strings.NewReader(body))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteDeviceSoft(t *testing.T) {
	handler, repo := newTestHandler(t)
	repo.byID["d-1"] = devices.Device{ID: "d-1", Name: "Watch", Type: devices.TypeHeartRateMonitor, Active: true}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/devices/d-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if repo.byID["d-1"].Active {
		t.Fatalf("expected device marked inactive")
	}

	// unknown id is still a no-op success
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/devices/missing", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestListDevices(t *testing.T) {
	handler, repo := newTestHandler(t)
	repo.byID["d-1"] = devices.Device{ID: "d-1", Name: "Watch", Type: devices.TypeHeartRateMonitor, Active: true}
	repo.byID["d-2"] = devices.Device{ID: "d-2", Name: "Old", Type: devices.TypeTemperatureSensor, Active: false}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	var all []devices.Device
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(all))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/devices?active=true", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	var active []devices.Device
	if err := json.Unmarshal(rec.Body.Bytes(), &active); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(active) != 1 || active[0].ID != "d-1" {
		t.Fatalf("unexpected active list: %+v", active)
	}
}
