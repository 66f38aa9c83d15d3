package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lactacare/internal/domain"
	"lactacare/internal/repository"
)

var _ repository.AlertStore = (*AlertStore)(nil)

// AlertStore persists dispatcher records so ids and read flags survive restarts
type AlertStore struct {
	db *DB
}

func NewAlertStore(db *DB) *AlertStore {
	return &AlertStore{db: db}
}

func (s *AlertStore) Save(ctx context.Context, a domain.AlertRecord) error {
	query := `
		INSERT INTO alerts (id, kind, subject_id, message, created_at, is_read, read_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET is_read = excluded.is_read, read_at = excluded.read_at
	`
	read := 0
	if a.Read {
		read = 1
	}
	_, err := s.db.exec(ctx, query,
		a.ID, string(a.Kind), a.SubjectID, a.Message, formatTime(a.CreatedAt), read, formatTimePtr(a.ReadAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// MarkRead flags the given alerts read in one transaction; already read ones keep their read_at
func (s *AlertStore) MarkRead(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := s.db.rebind(`UPDATE alerts SET is_read = 1, read_at = ? WHERE id = ? AND is_read = 0`)
	readAt := formatTime(at)

	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare mark read: %w", err)
		}
		defer stmt.Close()

		for _, id := range ids {
			if _, err := stmt.ExecContext(ctx, readAt, id); err != nil {
				return fmt.Errorf("failed to mark alert %d read: %w", id, err)
			}
		}
		return nil
	})
}

func (s *AlertStore) LoadAll(ctx context.Context) ([]domain.AlertRecord, error) {
	rows, err := s.db.query(ctx, `
		SELECT id, kind, subject_id, message, created_at, is_read, read_at
		FROM alerts
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.AlertRecord, 0)
	for rows.Next() {
		var (
			a       domain.AlertRecord
			kind    string
			created string
			read    int
			readAt  sql.NullString
		)
		if err := rows.Scan(&a.ID, &kind, &a.SubjectID, &a.Message, &created, &read, &readAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Kind = domain.AlertKind(kind)
		a.Read = read == 1
		a.CreatedAt, _ = parseTime(created)
		a.ReadAt, _ = parseTimePtr(readAt)
		out = append(out, a)
	}
	return out, rows.Err()
}
