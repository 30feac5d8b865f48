package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	devices "supermetrics-cloud/internal/devices/domain"
	readings "supermetrics-cloud/internal/readings/domain"
	"supermetrics-cloud/internal/readings/normalize"
)

// DeviceDirectory is the slice of the device context the reading pipeline
// depends on.
type DeviceDirectory interface {
	FindByID(ctx context.Context, id string) (*devices.Device, error)
	FindActiveByFilter(ctx context.Context, filter devices.DeviceFilter) ([]devices.Device, error)
}

// AggregationQuery restricts an aggregation. Category, DeviceIDs and Zone are
// optional; Start and End bound the reading timestamps inclusively.
type AggregationQuery struct {
	Category  devices.Category
	DeviceIDs []string
	Zone      string
	Start     time.Time
	End       time.Time
}

// Service implements reading ingestion and aggregation.
type Service struct {
	normalizer *normalize.Normalizer
	repo       readings.ReadingRepository
	directory  DeviceDirectory
	logger     *log.Logger
}

// NewService constructs a reading Service.
func NewService(normalizer *normalize.Normalizer, repo readings.ReadingRepository, directory DeviceDirectory, logger *log.Logger) (*Service, error) {
	if normalizer == nil {
		return nil, errors.New("reading service: nil normalizer")
	}
	if repo == nil {
		return nil, errors.New("reading service: nil repository")
	}
	if directory == nil {
		return nil, errors.New("reading service: nil device directory")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{normalizer: normalizer, repo: repo, directory: directory, logger: logger}, nil
}

// SubmitReading normalizes one raw payload and persists the canonical
// reading. Persistence happens only after normalization and the device
// existence check both succeed; a failure never leaves a partial reading.
func (s *Service) SubmitReading(ctx context.Context, raw []byte) error {
	reading, err := s.normalizer.Normalize(raw)
	if err != nil {
		return err
	}

	device, err := s.directory.FindByID(ctx, reading.DeviceID)
	if err != nil {
		return fmt.Errorf("reading service: device lookup: %w", err)
	}
	if device == nil {
		return fmt.Errorf("%w: %s", readings.ErrDeviceNotRegistered, reading.DeviceID)
	}

	if err := s.repo.Save(ctx, reading); err != nil {
		return fmt.Errorf("reading service: save: %w", err)
	}
	s.logger.Printf("readings: stored reading device=%s value=%.2f unit=%s", reading.DeviceID, reading.Value, reading.Unit)
	return nil
}

// Aggregate resolves the query's device set through the directory, asks the
// store for grouped statistics over that set and the inclusive time window,
// and returns rows enriched with device names, sorted by name ascending with
// ties broken by device id. The ordering is part of the external contract.
func (s *Service) Aggregate(ctx context.Context, query AggregationQuery) ([]readings.AggregationResult, error) {
	var types []devices.DeviceType
	if query.Category != "" {
		category, ok := devices.NormalizeCategory(string(query.Category))
		if !ok {
			return nil, devices.ErrInvalidCategory
		}
		types = devices.TypesByCategory(category)
	}

	matched, err := s.directory.FindActiveByFilter(ctx, devices.DeviceFilter{
		Types: types,
		IDs:   query.DeviceIDs,
		Zone:  query.Zone,
	})
	if err != nil {
		return nil, fmt.Errorf("reading service: device query: %w", err)
	}
	if len(matched) == 0 {
		return nil, readings.ErrNoDevicesFound
	}

	deviceByID := make(map[string]devices.Device, len(matched))
	deviceIDs := make([]string, 0, len(matched))
	for _, device := range matched {
		deviceByID[device.ID] = device
		deviceIDs = append(deviceIDs, device.ID)
	}

	stats, err := s.repo.AggregateByDevice(ctx, deviceIDs, query.Start, query.End)
	if err != nil {
		return nil, fmt.Errorf("reading service: aggregate: %w", err)
	}

	results := make([]readings.AggregationResult, 0, len(stats))
	for _, stat := range stats {
		result := readings.AggregationResult{
			DeviceID: stat.DeviceID,
			AvgValue: stat.AvgValue,
			MaxValue: stat.MaxValue,
			MinValue: stat.MinValue,
			Count:    stat.Count,
		}
		if device, ok := deviceByID[stat.DeviceID]; ok {
			result.DeviceName = device.Name
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DeviceName != results[j].DeviceName {
			return results[i].DeviceName < results[j].DeviceName
		}
		return results[i].DeviceID < results[j].DeviceID
	})
	return results, nil
}
