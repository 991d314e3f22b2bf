package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/workspace-booking/internal/persistence"
)

// AreaRepository implements persistence.AreaRepository using SQLite.
type AreaRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
}

// NewAreaRepository creates a new SQLite area repository.
func NewAreaRepository(pool *ConnectionPool) *AreaRepository {
	return &AreaRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
	}
}

// CreateArea inserts a new area into the database.
func (r *AreaRepository) CreateArea(ctx context.Context, area persistence.Area) error {
	if area.ID == "" || area.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO areas (id, name, location, category, capacity, is_full_day, min_minutes, max_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		area.ID,
		area.Name,
		area.Location,
		area.Category,
		area.Capacity,
		boolToInt(area.FullDay),
		area.MinMinutes,
		area.MaxMinutes,
		area.CreatedAt.UTC().Format(time.RFC3339),
		area.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}

	return nil
}

// UpdateArea updates an existing area in the database.
func (r *AreaRepository) UpdateArea(ctx context.Context, area persistence.Area) error {
	if area.ID == "" || area.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE areas
		SET name = ?, location = ?, category = ?, capacity = ?, is_full_day = ?, min_minutes = ?, max_minutes = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		area.Name,
		area.Location,
		area.Category,
		area.Capacity,
		boolToInt(area.FullDay),
		area.MinMinutes,
		area.MaxMinutes,
		area.UpdatedAt.UTC().Format(time.RFC3339),
		area.ID,
	)
	if err != nil {
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetArea retrieves an area by ID.
func (r *AreaRepository) GetArea(ctx context.Context, id string) (persistence.Area, error) {
	if id == "" {
		return persistence.Area{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, name, location, category, capacity, is_full_day, min_minutes, max_minutes, created_at, updated_at
		FROM areas
		WHERE id = ?
	`

	area, err := scanArea(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		return persistence.Area{}, err
	}
	return area, nil
}

// ListAreas returns all areas ordered by name then ID.
func (r *AreaRepository) ListAreas(ctx context.Context) ([]persistence.Area, error) {
	query := `
		SELECT id, name, location, category, capacity, is_full_day, min_minutes, max_minutes, created_at, updated_at
		FROM areas
		ORDER BY name ASC, id ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var areas []persistence.Area
	for rows.Next() {
		area, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, area)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return areas, nil
}

// DeleteArea removes an area by ID. The reservations foreign key blocks
// deletion while any reservation still references the area.
func (r *AreaRepository) DeleteArea(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	// The reservation check and the delete must observe the same state;
	// a reservation created between two separate statements would orphan.
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var count int
		if err := r.helper.QueryRowTx(tx, "SELECT COUNT(*) FROM reservations WHERE area_id = ?", id).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return persistence.ErrForeignKeyViolation
		}

		result, err := r.helper.ExecTx(tx, "DELETE FROM areas WHERE id = ?", id)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, persistence.ErrForeignKeyViolation) || errors.Is(err, persistence.ErrNotFound) {
			return err
		}
		return mapError(err)
	}
	return nil
}

// AreaHasReservations reports whether any reservation references the area.
func (r *AreaRepository) AreaHasReservations(ctx context.Context, areaID string) (bool, error) {
	var count int
	err := r.helper.QueryRow(ctx, "SELECT COUNT(*) FROM reservations WHERE area_id = ?", areaID).Scan(&count)
	if err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArea(row rowScanner) (persistence.Area, error) {
	var area persistence.Area
	var location sql.NullString
	var isFullDay int
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&area.ID,
		&area.Name,
		&location,
		&area.Category,
		&area.Capacity,
		&isFullDay,
		&area.MinMinutes,
		&area.MaxMinutes,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Area{}, persistence.ErrNotFound
		}
		return persistence.Area{}, mapError(err)
	}

	area.FullDay = isFullDay != 0
	if location.Valid {
		area.Location = location.String
	}
	if area.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Area{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if area.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Area{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return area, nil
}
