package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lactacare/internal/domain"
	"lactacare/internal/repository"
)

var _ repository.ReadingRepository = (*ReadingStore)(nil)

// ReadingStore is an append-only log of temperature readings
type ReadingStore struct {
	db *DB
}

func NewReadingStore(db *DB) *ReadingStore {
	return &ReadingStore{db: db}
}

func (s *ReadingStore) Append(ctx context.Context, r *domain.TemperatureReading) error {
	query := `
		INSERT INTO temperature_readings (unit_id, temperature_c, humidity_pct, observed_at, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	err := s.db.queryRow(ctx, query,
		r.UnitID, r.TemperatureC, r.HumidityPct, formatTime(r.ObservedAt), formatTime(r.RecordedAt),
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("failed to append reading: %w", err)
	}
	return nil
}

// Latest orders by observation time, then by arrival id
func (s *ReadingStore) Latest(ctx context.Context, unitID string) (*domain.TemperatureReading, error) {
	query := `
		SELECT id, unit_id, temperature_c, humidity_pct, observed_at, recorded_at
		FROM temperature_readings
		WHERE unit_id = ?
		ORDER BY observed_at DESC, id DESC
		LIMIT 1
	`
	r, err := scanReading(s.db.queryRow(ctx, query, unitID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest reading: %w", err)
	}
	return r, nil
}

func (s *ReadingStore) History(ctx context.Context, unitID string, limit int) ([]domain.TemperatureReading, error) {
	query := `
		SELECT id, unit_id, temperature_c, humidity_pct, observed_at, recorded_at
		FROM temperature_readings
		WHERE unit_id = ?
		ORDER BY observed_at DESC, id DESC
	`
	args := []interface{}{unitID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get reading history: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TemperatureReading, 0)
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *ReadingStore) Units(ctx context.Context) ([]string, error) {
	rows, err := s.db.query(ctx, `SELECT DISTINCT unit_id FROM temperature_readings ORDER BY unit_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	units := make([]string, 0)
	for rows.Next() {
		var unit string
		if err := rows.Scan(&unit); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func scanReading(row rowScanner) (*domain.TemperatureReading, error) {
	var (
		r                  domain.TemperatureReading
		observed, recorded string
	)
	if err := row.Scan(&r.ID, &r.UnitID, &r.TemperatureC, &r.HumidityPct, &observed, &recorded); err != nil {
		return nil, err
	}
	var err error
	if r.ObservedAt, err = parseTime(observed); err != nil {
		return nil, fmt.Errorf("reading %d: observed_at: %w", r.ID, err)
	}
	r.RecordedAt, _ = parseTime(recorded)
	return &r, nil
}
