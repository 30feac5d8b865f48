package application

import (
	"context"
	"log"
	"strings"
	"sync"
	"testing"

	devices "supermetrics-cloud/internal/devices/domain"
)

type stubIngestor struct {
	mu        sync.Mutex
	submitted [][]byte
}

func (s *stubIngestor) SubmitReading(_ context.Context, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, raw)
	return nil
}

type stubRegistry struct {
	mu    sync.Mutex
	byID  map[string]*devices.Device
	saved []string
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{byID: map[string]*devices.Device{}}
}

func (s *stubRegistry) FindByID(_ context.Context, id string) (*devices.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[id], nil
}

func (s *stubRegistry) Save(_ context.Context, device *devices.Device) (*devices.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[device.ID] = device
	s.saved = append(s.saved, device.ID)
	return device, nil
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func newTestRunner(t *testing.T, registry *stubRegistry, ingestor *stubIngestor) *Runner {
	t.Helper()
	cfg := Config{IntervalSeconds: 1, Fleet: DefaultFleet()}
	runner, err := NewRunner(cfg, NewGenerator(1), ingestor, registry, log.New(testWriter{t}, "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return runner
}

func TestRunnerSeedsFleetOnStart(t *testing.T) {
	registry := newStubRegistry()
	registry.byID["sim-apple-1"] = &devices.Device{ID: "sim-apple-1", Name: "Existing", Active: true}

	runner := newTestRunner(t, registry, &stubIngestor{})
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer runner.Stop()

	if !runner.Running() {
		t.Fatal("expected runner running")
	}
	// existing fleet device is left alone, the rest get registered
	if len(registry.saved) != len(DefaultFleet())-1 {
		t.Fatalf("expected %d registrations, got %d", len(DefaultFleet())-1, len(registry.saved))
	}
	for _, id := range registry.saved {
		if id == "sim-apple-1" {
			t.Fatal("expected existing device not re-saved")
		}
	}
	if !registry.byID["sim-bmw-1"].Active {
		t.Fatal("expected seeded device active")
	}
}

func TestRunnerStartStopIdempotent(t *testing.T) {
	registry := newStubRegistry()
	runner := newTestRunner(t, registry, &stubIngestor{})

	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	seeded := len(registry.saved)
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if len(registry.saved) != seeded {
		t.Fatal("expected second start not to reseed")
	}

	runner.Stop()
	if runner.Running() {
		t.Fatal("expected runner stopped")
	}
	runner.Stop()
}
