package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	devices "supermetrics-cloud/internal/devices/domain"
)

const defaultDevicesTable = "devices"

// DBTX abstracts *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DeviceRepository is a Postgres implementation of the device directory.
type DeviceRepository struct {
	db    DBTX
	table string
}

// NewDeviceRepository constructs a repository.
func NewDeviceRepository(db DBTX, opts ...DeviceOption) *DeviceRepository {
	repo := &DeviceRepository{db: db, table: defaultDevicesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// DeviceOption configures the repository.
type DeviceOption func(*DeviceRepository)

// WithDeviceTable overrides the default table name.
func WithDeviceTable(table string) DeviceOption {
	return func(repo *DeviceRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const deviceColumns = "id, name, brand, serial_number, device_type, zone, active"

// Get loads a device by id; returns nil when absent.
func (r *DeviceRepository) Get(ctx context.Context, id string) (*devices.Device, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("device repo: nil db")
	}
	if id == "" {
		return nil, errors.New("device repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE id = $1
LIMIT 1`, deviceColumns, r.table)

	var device devices.Device
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&device.ID,
		&device.Name,
		&device.Brand,
		&device.SerialNumber,
		&device.Type,
		&device.Zone,
		&device.Active,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

// FindActiveByFilter loads active devices matching every provided filter
// (types, ids, zone), OR-within each filter. Empty filters do not restrict.
func (r *DeviceRepository) FindActiveByFilter(ctx context.Context, filter devices.DeviceFilter) ([]devices.Device, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("device repo: nil db")
	}

	conditions := []string{"active = TRUE"}
	var args []any

	if len(filter.Types) > 0 {
		placeholders := make([]string, 0, len(filter.Types))
		for _, deviceType := range filter.Types {
			args = append(args, string(deviceType))
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		conditions = append(conditions, fmt.Sprintf("device_type IN (%s)", strings.Join(placeholders, ", ")))
	}
	if len(filter.IDs) > 0 {
		placeholders := make([]string, 0, len(filter.IDs))
		for _, id := range filter.IDs {
			args = append(args, id)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		conditions = append(conditions, fmt.Sprintf("id IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.Zone != "" {
		args = append(args, filter.Zone)
		conditions = append(conditions, fmt.Sprintf("zone = $%d", len(args)))
	}

	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE %s
ORDER BY id ASC`, deviceColumns, r.table, strings.Join(conditions, " AND "))

	return r.queryDevices(ctx, query, args...)
}

// List loads all devices.
func (r *DeviceRepository) List(ctx context.Context) ([]devices.Device, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("device repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
ORDER BY id ASC`, deviceColumns, r.table)
	return r.queryDevices(ctx, query)
}

// ListActive loads all active devices.
func (r *DeviceRepository) ListActive(ctx context.Context) ([]devices.Device, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("device repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE active = TRUE
ORDER BY id ASC`, deviceColumns, r.table)
	return r.queryDevices(ctx, query)
}

// Save upserts a device, assigning an id when missing.
func (r *DeviceRepository) Save(ctx context.Context, device *devices.Device) error {
	if r == nil || r.db == nil {
		return errors.New("device repo: nil db")
	}
	if device == nil {
		return devices.ErrNilDevice
	}
	if err := device.Validate(); err != nil {
		return err
	}
	if device.ID == "" {
		device.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	name,
	brand,
	serial_number,
	device_type,
	zone,
	active
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
)
ON CONFLICT (id)
DO UPDATE SET
	name = EXCLUDED.name,
	brand = EXCLUDED.brand,
	serial_number = EXCLUDED.serial_number,
	device_type = EXCLUDED.device_type,
	zone = EXCLUDED.zone,
	active = EXCLUDED.active,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		device.ID,
		device.Name,
		device.Brand,
		device.SerialNumber,
		string(device.Type),
		device.Zone,
		device.Active,
	)
	return err
}

func (r *DeviceRepository) queryDevices(ctx context.Context, query string, args ...any) ([]devices.Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []devices.Device
	for rows.Next() {
		var device devices.Device
		if err := rows.Scan(
			&device.ID,
			&device.Name,
			&device.Brand,
			&device.SerialNumber,
			&device.Type,
			&device.Zone,
			&device.Active,
		); err != nil {
			return nil, err
		}
		result = append(result, device)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
