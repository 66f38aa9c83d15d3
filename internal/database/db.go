package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"lactacare/internal/config"
	"lactacare/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// timeLayout is fixed-width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DB implements the Single Writer Principle: reads go straight to the pool,
// writes are serialized behind mu. With SQLite the pool holds one connection.
type DB struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
	mu     sync.Mutex
}

// FromConfig opens the store selected by STORE_DRIVER
func FromConfig(cfg *config.Config, logger *zap.Logger) (*DB, error) {
	switch cfg.StoreDriver {
	case DriverSQLite:
		return Open(DriverSQLite, cfg.SQLitePath, logger)
	case DriverPostgres:
		return Open(DriverPostgres, cfg.PostgresDSN, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

// Open connects to SQLite (dsn is a file path) or PostgreSQL (dsn is a
// connection string) and creates the schema.
func Open(driver, dsn string, logger *zap.Logger) (*DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_foreign_keys=1&_busy_timeout=5000")
		if err == nil {
			db.SetMaxOpenConns(1) // Single writer
			db.SetMaxIdleConns(1)
		}
	case DriverPostgres:
		db, err = sql.Open("pgx", dsn)
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(5)
		}
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetConnMaxLifetime(time.Hour)

	store := &DB{db: db, driver: driver, logger: logger}
	if err := store.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("🗄️ Database ready", zap.String("driver", driver))
	return store, nil
}

func (d *DB) initSchema(ctx context.Context) error {
	types := strings.NewReplacer("{{float}}", "REAL", "{{serial}}", "INTEGER PRIMARY KEY AUTOINCREMENT")
	if d.driver == DriverPostgres {
		types = strings.NewReplacer("{{float}}", "DOUBLE PRECISION", "{{serial}}", "BIGSERIAL PRIMARY KEY")
	}

	for _, stmt := range schema {
		if _, err := d.db.ExecContext(ctx, types.Replace(stmt)); err != nil {
			return err
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS containers (
		id TEXT PRIMARY KEY,
		volume_ml {{float}} NOT NULL,
		extracted_at TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		storage_mode TEXT NOT NULL,
		state TEXT NOT NULL,
		flagged_at TEXT,
		owner_patient_id TEXT NOT NULL,
		withdrawn_at TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK(volume_ml > 0),
		CHECK(storage_mode IN ('refrigerated', 'frozen'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_containers_state ON containers(state)`,
	`CREATE INDEX IF NOT EXISTS idx_containers_owner ON containers(owner_patient_id)`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL,
		room_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_minute INTEGER NOT NULL,
		end_minute INTEGER NOT NULL,
		state TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK(start_minute < end_minute)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_room_date ON reservations(room_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_patient ON reservations(patient_id)`,

	`CREATE TABLE IF NOT EXISTS temperature_readings (
		id {{serial}},
		unit_id TEXT NOT NULL,
		temperature_c {{float}} NOT NULL,
		humidity_pct {{float}} NOT NULL,
		observed_at TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_readings_unit_observed ON temperature_readings(unit_id, observed_at)`,

	`CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY,
		kind TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TEXT NOT NULL,
		is_read INTEGER NOT NULL DEFAULT 0,
		read_at TEXT,
		CHECK(is_read IN (0, 1))
	)`,

	// custody_events is the listener's audit projection, one row per event id
	`CREATE TABLE IF NOT EXISTS custody_events (
		event_id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		topic TEXT NOT NULL,
		partition_key TEXT NOT NULL,
		payload TEXT NOT NULL,
		occurred_at TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_custody_events_key ON custody_events(partition_key, occurred_at)`,
}

// Driver returns the SQL dialect in use
func (d *DB) Driver() string {
	return d.driver
}

// Ping checks the database connection
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// rebind rewrites ? placeholders to $n for PostgreSQL
func (d *DB) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// exec runs a write statement under the writer lock
func (d *DB) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db.ExecContext(ctx, d.rebind(query), args...)
}

func (d *DB) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return d.db.QueryRowContext(ctx, d.rebind(query), args...)
}

func (d *DB) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, d.rebind(query), args...)
}

// withTx runs fn in a transaction under the writer lock
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// versionedUpdate turns an UPDATE ... WHERE id = ? AND version = ? result into
// the repository contract: NotFound if the row is gone, VersionConflict otherwise.
func (d *DB) versionedUpdate(ctx context.Context, table, id string, res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists int
	err = d.queryRow(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("failed to check %s row: %w", table, err)
	}
	return domain.ErrVersionConflict
}
