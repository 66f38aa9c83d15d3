package database

import (
	"context"
	"fmt"
	"time"
)

// CustodyRecord is one custody event as projected by the listener
type CustodyRecord struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	Topic        string    `json:"topic"`
	PartitionKey string    `json:"partition_key"`
	Payload      string    `json:"payload"`
	OccurredAt   time.Time `json:"occurred_at"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// CustodyLog is the append-only audit trail of custody events
type CustodyLog struct {
	db *DB
}

func NewCustodyLog(db *DB) *CustodyLog {
	return &CustodyLog{db: db}
}

// Append stores the record once per event id. Redelivered events report inserted=false.
func (l *CustodyLog) Append(ctx context.Context, rec CustodyRecord) (bool, error) {
	query := `
		INSERT INTO custody_events (event_id, event_type, topic, partition_key, payload, occurred_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id) DO NOTHING
	`
	res, err := l.db.exec(ctx, query,
		rec.EventID, rec.EventType, rec.Topic, rec.PartitionKey, rec.Payload,
		formatTime(rec.OccurredAt), formatTime(rec.RecordedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to append custody event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// History returns the events of one aggregate (container, room or unit) in occurrence order
func (l *CustodyLog) History(ctx context.Context, partitionKey string, limit int) ([]CustodyRecord, error) {
	query := `
		SELECT event_id, event_type, topic, partition_key, payload, occurred_at, recorded_at
		FROM custody_events
		WHERE partition_key = ?
		ORDER BY occurred_at, recorded_at, event_id
	`
	args := []interface{}{partitionKey}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get custody history: %w", err)
	}
	defer rows.Close()

	out := make([]CustodyRecord, 0)
	for rows.Next() {
		var (
			rec                CustodyRecord
			occurred, recorded string
		)
		if err := rows.Scan(&rec.EventID, &rec.EventType, &rec.Topic, &rec.PartitionKey, &rec.Payload, &occurred, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan custody event: %w", err)
		}
		rec.OccurredAt, _ = parseTime(occurred)
		rec.RecordedAt, _ = parseTime(recorded)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of stored events
func (l *CustodyLog) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.queryRow(ctx, `SELECT COUNT(*) FROM custody_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count custody events: %w", err)
	}
	return n, nil
}
