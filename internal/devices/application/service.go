package application

import (
	"context"
	"errors"
	"log"

	devices "supermetrics-cloud/internal/devices/domain"
)

// Service exposes the device directory operations.
type Service struct {
	repo   devices.DeviceRepository
	logger *log.Logger
}

// NewService constructs a device Service.
func NewService(repo devices.DeviceRepository, logger *log.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("device service: nil repository")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{repo: repo, logger: logger}, nil
}

// Save registers a new device. A missing id is assigned by the repository.
func (s *Service) Save(ctx context.Context, device *devices.Device) (*devices.Device, error) {
	if err := device.Validate(); err != nil {
		return nil, err
	}
	s.logger.Printf("devices: saving device name=%q type=%s", device.Name, device.Type)
	if err := s.repo.Save(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

// Update replaces an existing device. The id must already exist.
func (s *Service) Update(ctx context.Context, device *devices.Device) (*devices.Device, error) {
	if err := device.Validate(); err != nil {
		return nil, err
	}
	if device.ID == "" {
		return nil, devices.ErrDeviceNotFound
	}
	existing, err := s.repo.Get(ctx, device.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, devices.ErrDeviceNotFound
	}
	s.logger.Printf("devices: updating device id=%s", device.ID)
	if err := s.repo.Save(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

// Delete marks a device inactive. Readings stay attributable to it, so the
// record is never removed. Deleting an unknown id is a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	device, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if device == nil {
		return nil
	}
	device.Active = false
	if err := s.repo.Save(ctx, device); err != nil {
		return err
	}
	s.logger.Printf("devices: device id=%s marked inactive", id)
	return nil
}

// FindByID loads a device by id; nil when absent.
func (s *Service) FindByID(ctx context.Context, id string) (*devices.Device, error) {
	return s.repo.Get(ctx, id)
}

// FindActiveByFilter returns active devices matching all provided filters.
func (s *Service) FindActiveByFilter(ctx context.Context, filter devices.DeviceFilter) ([]devices.Device, error) {
	return s.repo.FindActiveByFilter(ctx, filter)
}

// FindAll returns every device, active or not.
func (s *Service) FindAll(ctx context.Context) ([]devices.Device, error) {
	return s.repo.List(ctx)
}

// FindAllActive returns every active device.
func (s *Service) FindAllActive(ctx context.Context) ([]devices.Device, error) {
	return s.repo.ListActive(ctx)
}
