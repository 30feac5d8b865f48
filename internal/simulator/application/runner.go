package application

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	devices "supermetrics-cloud/internal/devices/domain"
	"supermetrics-cloud/internal/observability/metrics"
)

// ReadingIngestor accepts raw device payloads.
type ReadingIngestor interface {
	SubmitReading(ctx context.Context, raw []byte) error
}

// DeviceRegistry is the device directory surface the runner needs to seed
// its fleet.
type DeviceRegistry interface {
	FindByID(ctx context.Context, id string) (*devices.Device, error)
	Save(ctx context.Context, device *devices.Device) (*devices.Device, error)
}

// Runner emits simulated readings on a fixed interval while switched on.
type Runner struct {
	config    Config
	generator *Generator
	ingestor  ReadingIngestor
	registry  DeviceRegistry
	logger    *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner constructs a Runner.
func NewRunner(config Config, generator *Generator, ingestor ReadingIngestor, registry DeviceRegistry, logger *log.Logger) (*Runner, error) {
	if generator == nil {
		return nil, errors.New("simulator: nil generator")
	}
	if ingestor == nil {
		return nil, errors.New("simulator: nil ingestor")
	}
	if registry == nil {
		return nil, errors.New("simulator: nil registry")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{config: config, generator: generator, ingestor: ingestor, registry: registry, logger: logger}, nil
}

// Running reports whether the emission loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Start registers the fleet and begins emitting. Starting a running
// simulator is a no-op.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return nil
	}

	if err := r.seedFleet(ctx); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(loopCtx, r.done)
	r.logger.Printf("simulator: started, interval=%s fleet=%d", r.config.Interval(), len(r.config.Fleet))
	return nil
}

// Stop halts emission and waits for the loop to exit. Stopping a stopped
// simulator is a no-op.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	r.logger.Printf("simulator: stopped")
}

// seedFleet registers fleet devices that are not in the directory yet.
func (r *Runner) seedFleet(ctx context.Context) error {
	for _, fleetDevice := range r.config.Fleet {
		existing, err := r.registry.FindByID(ctx, fleetDevice.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		device := &devices.Device{
			ID:           fleetDevice.ID,
			Name:         fleetDevice.Name,
			Brand:        fleetDevice.Brand,
			SerialNumber: fleetDevice.SerialNumber,
			Type:         fleetDevice.Type,
			Zone:         fleetDevice.Zone,
			Active:       true,
		}
		if _, err := r.registry.Save(ctx, device); err != nil {
			return err
		}
		r.logger.Printf("simulator: registered fleet device id=%s brand=%s", device.ID, device.Brand)
	}
	return nil
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.config.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.emit(ctx, now)
		}
	}
}

func (r *Runner) emit(ctx context.Context, now time.Time) {
	metrics.IncSimulatorTick()
	for _, device := range r.config.Fleet {
		payload, err := r.generator.Generate(device, now)
		if err != nil {
			metrics.IncSimulatorError()
			r.logger.Printf("simulator: generate id=%s: %v", device.ID, err)
			continue
		}
		if err := r.ingestor.SubmitReading(ctx, payload); err != nil {
			metrics.IncSimulatorError()
			r.logger.Printf("simulator: submit id=%s: %v", device.ID, err)
		}
	}
}
