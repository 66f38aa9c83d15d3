package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lactacare/internal/domain"
	"lactacare/internal/repository"
)

var _ repository.ReservationRepository = (*ReservationStore)(nil)

// ReservationStore persists reservations with optimistic locking on version
type ReservationStore struct {
	db *DB
}

func NewReservationStore(db *DB) *ReservationStore {
	return &ReservationStore{db: db}
}

const reservationColumns = `id, patient_id, room_id, date, start_minute, end_minute, state, version, created_at, updated_at`

func (s *ReservationStore) Create(ctx context.Context, r *domain.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.exec(ctx, query,
		r.ID, r.PatientID, r.RoomID, r.Date.Format(domain.DateLayout),
		int(r.StartTime), int(r.EndTime), string(r.State), r.Version,
		formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

// Update writes the state if the stored version still equals r.Version
func (s *ReservationStore) Update(ctx context.Context, r *domain.Reservation) error {
	query := `
		UPDATE reservations
		SET state = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	res, err := s.db.exec(ctx, query, string(r.State), formatTime(r.UpdatedAt), r.ID, r.Version)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if err := s.db.versionedUpdate(ctx, "reservations", r.ID, res, domain.ErrReservationNotFound); err != nil {
		return err
	}
	r.Version++
	return nil
}

func (s *ReservationStore) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	row := s.db.queryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	r, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

func (s *ReservationStore) ListByRoomAndDate(ctx context.Context, roomID string, date time.Time) ([]*domain.Reservation, error) {
	day := domain.DateOf(date)
	return s.List(ctx, repository.ReservationFilter{RoomID: roomID, Date: &day})
}

func (s *ReservationStore) List(ctx context.Context, filter repository.ReservationFilter) ([]*domain.Reservation, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.PatientID != "" {
		conds = append(conds, "patient_id = ?")
		args = append(args, filter.PatientID)
	}
	if filter.RoomID != "" {
		conds = append(conds, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.Date != nil {
		conds = append(conds, "date = ?")
		args = append(args, domain.DateOf(*filter.Date).Format(domain.DateLayout))
	}
	if filter.State != "" {
		conds = append(conds, "state = ?")
		args = append(args, string(filter.State))
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY date, start_minute, id`

	rows, err := s.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		r                domain.Reservation
		date, state      string
		start, end       int
		created, updated string
	)
	err := row.Scan(&r.ID, &r.PatientID, &r.RoomID, &date, &start, &end, &state, &r.Version, &created, &updated)
	if err != nil {
		return nil, err
	}
	if r.Date, err = domain.ParseDate(date); err != nil {
		return nil, fmt.Errorf("reservation %s: %w", r.ID, err)
	}
	r.StartTime = domain.ClockTime(start)
	r.EndTime = domain.ClockTime(end)
	r.State = domain.ReservationState(state)
	r.CreatedAt, _ = parseTime(created)
	r.UpdatedAt, _ = parseTime(updated)
	return &r, nil
}
