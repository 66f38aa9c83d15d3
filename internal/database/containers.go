package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"lactacare/internal/domain"
	"lactacare/internal/repository"
)

var _ repository.ContainerRepository = (*ContainerStore)(nil)

// ContainerStore persists containers with optimistic locking on version
type ContainerStore struct {
	db *DB
}

func NewContainerStore(db *DB) *ContainerStore {
	return &ContainerStore{db: db}
}

const containerColumns = `id, volume_ml, extracted_at, expires_at, storage_mode, state, flagged_at,
	owner_patient_id, withdrawn_at, version, created_at, updated_at`

func (s *ContainerStore) Create(ctx context.Context, c *domain.Container) error {
	query := `
		INSERT INTO containers (` + containerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.exec(ctx, query,
		c.ID, c.VolumeMl, formatTime(c.ExtractedAt), formatTime(c.ExpiresAt),
		string(c.StorageMode), string(c.State), formatTimePtr(c.FlaggedAt),
		c.OwnerPatientID, formatTimePtr(c.WithdrawnAt), c.Version,
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	return nil
}

// Update writes the mutable columns if the stored version still equals c.Version
func (s *ContainerStore) Update(ctx context.Context, c *domain.Container) error {
	query := `
		UPDATE containers
		SET state = ?, flagged_at = ?, withdrawn_at = ?, expires_at = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	res, err := s.db.exec(ctx, query,
		string(c.State), formatTimePtr(c.FlaggedAt), formatTimePtr(c.WithdrawnAt),
		formatTime(c.ExpiresAt), formatTime(c.UpdatedAt),
		c.ID, c.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update container: %w", err)
	}
	if err := s.db.versionedUpdate(ctx, "containers", c.ID, res, domain.ErrContainerNotFound); err != nil {
		return err
	}
	c.Version++
	return nil
}

func (s *ContainerStore) FindByID(ctx context.Context, id string) (*domain.Container, error) {
	row := s.db.queryRow(ctx, `SELECT `+containerColumns+` FROM containers WHERE id = ?`, id)
	c, err := scanContainer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrContainerNotFound
		}
		return nil, fmt.Errorf("failed to get container: %w", err)
	}
	return c, nil
}

func (s *ContainerStore) ActiveIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.query(ctx,
		`SELECT id FROM containers WHERE state IN (?, ?) ORDER BY created_at, id`,
		string(domain.ContainerStored), string(domain.ContainerFlaggedForPickup))
	if err != nil {
		return nil, fmt.Errorf("failed to list active containers: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan container id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *ContainerStore) List(ctx context.Context, filter repository.ContainerFilter) ([]*domain.Container, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.OwnerPatientID != "" {
		conds = append(conds, "owner_patient_id = ?")
		args = append(args, filter.OwnerPatientID)
	}
	if filter.State != "" {
		conds = append(conds, "state = ?")
		args = append(args, string(filter.State))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	return s.list(ctx, where, args...)
}

func (s *ContainerStore) list(ctx context.Context, where string, args ...interface{}) ([]*domain.Container, error) {
	query := `SELECT ` + containerColumns + ` FROM containers ` + where + ` ORDER BY created_at, id`
	rows, err := s.db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Container, 0)
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan container: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *ContainerStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.exec(ctx, `DELETE FROM containers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete container: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrContainerNotFound
	}
	return nil
}

func scanContainer(row rowScanner) (*domain.Container, error) {
	var (
		c                                        domain.Container
		mode, state                              string
		extractedAt, expiresAt, created, updated string
		flaggedAt, withdrawnAt                   sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.VolumeMl, &extractedAt, &expiresAt, &mode, &state, &flaggedAt,
		&c.OwnerPatientID, &withdrawnAt, &c.Version, &created, &updated,
	)
	if err != nil {
		return nil, err
	}
	c.StorageMode = domain.StorageMode(mode)
	c.State = domain.ContainerState(state)

	// callers get the container id with the failing column
	if c.ExtractedAt, err = parseTime(extractedAt); err != nil {
		return nil, fmt.Errorf("container %s: extracted_at: %w", c.ID, err)
	}
	if c.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("container %s: expires_at: %w", c.ID, err)
	}
	if c.FlaggedAt, err = parseTimePtr(flaggedAt); err != nil {
		return nil, fmt.Errorf("container %s: flagged_at: %w", c.ID, err)
	}
	if c.WithdrawnAt, err = parseTimePtr(withdrawnAt); err != nil {
		return nil, fmt.Errorf("container %s: withdrawn_at: %w", c.ID, err)
	}
	c.CreatedAt, _ = parseTime(created)
	c.UpdatedAt, _ = parseTime(updated)
	return &c, nil
}
