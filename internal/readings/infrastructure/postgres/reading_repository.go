package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	readings "supermetrics-cloud/internal/readings/domain"
)

const defaultReadingsTable = "readings"

// DBTX abstracts *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ReadingRepository is a Postgres implementation of the canonical reading
// store.
type ReadingRepository struct {
	db    DBTX
	table string
}

// NewReadingRepository constructs a repository.
func NewReadingRepository(db DBTX, opts ...ReadingOption) *ReadingRepository {
	repo := &ReadingRepository{db: db, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ReadingOption configures the repository.
type ReadingOption func(*ReadingRepository)

// WithReadingTable overrides the default table name.
func WithReadingTable(table string) ReadingOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Save inserts one canonical reading, assigning its id. Readings are
// append-only; there is no update path and no dedup.
func (r *ReadingRepository) Save(ctx context.Context, reading *readings.Reading) error {
	if r == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}
	if reading == nil {
		return readings.ErrNilReading
	}
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}

	var deviceReading []byte
	if reading.DeviceReading != nil {
		encoded, err := json.Marshal(reading.DeviceReading)
		if err != nil {
			return fmt.Errorf("reading repo: encode device reading: %w", err)
		}
		deviceReading = encoded
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	device_id,
	ts,
	value,
	unit,
	device_reading
) VALUES (
	$1, $2, $3, $4, $5, $6
)`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		reading.ID,
		reading.DeviceID,
		reading.Timestamp,
		reading.Value,
		reading.Unit,
		deviceReading,
	)
	return err
}

// AggregateByDevice computes avg/max/min/count of value grouped by device id,
// restricted to the given ids and to timestamps within [start, end].
func (r *ReadingRepository) AggregateByDevice(ctx context.Context, deviceIDs []string, start, end time.Time) ([]readings.DeviceStats, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	if len(deviceIDs) == 0 {
		return nil, errors.New("reading repo: empty device id set")
	}

	var args []any
	placeholders := make([]string, 0, len(deviceIDs))
	for _, id := range deviceIDs {
		args = append(args, id)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}
	args = append(args, start, end)

	query := fmt.Sprintf(`
SELECT device_id, AVG(value), MAX(value), MIN(value), COUNT(*)
FROM %s
WHERE device_id IN (%s) AND ts >= $%d AND ts <= $%d
GROUP BY device_id`, r.table, strings.Join(placeholders, ", "), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []readings.DeviceStats
	for rows.Next() {
		var stats readings.DeviceStats
		if err := rows.Scan(
			&stats.DeviceID,
			&stats.AvgValue,
			&stats.MaxValue,
			&stats.MinValue,
			&stats.Count,
		); err != nil {
			return nil, err
		}
		result = append(result, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
