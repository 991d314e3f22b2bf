package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/workspace-booking/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository
// using SQLite.
type ReservationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
	}
}

const reservationColumns = `id, area_id, creator_id, collaborators, date, start_time, end_time, seats, status, notes, created_at, updated_at`

// CreateReservation inserts a new reservation. The live-slot unique
// index rejects a second non-cancelled reservation for the same area,
// date, window, and creator.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" || reservation.Seats <= 0 {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		reservation.ID,
		reservation.AreaID,
		reservation.CreatorID,
		strings.Join(reservation.Collaborators, ","),
		reservation.Date,
		nullableString(reservation.StartTime),
		nullableString(reservation.EndTime),
		reservation.Seats,
		reservation.Status,
		nullableString(reservation.Notes),
		reservation.CreatedAt.UTC().Format(time.RFC3339),
		reservation.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}

	return nil
}

// GetReservation retrieves a reservation by ID.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return scanReservation(r.helper.QueryRow(ctx, query, id))
}

// ListReservations returns reservations matching the filter ordered by
// created_at then ID.
func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	var conditions []string
	var args []any

	if filter.AreaID != "" {
		conditions = append(conditions, "area_id = ?")
		args = append(args, filter.AreaID)
	}
	if filter.CreatorID != "" {
		conditions = append(conditions, "creator_id = ?")
		args = append(args, filter.CreatorID)
	}
	if filter.Date != "" {
		conditions = append(conditions, "date = ?")
		args = append(args, filter.Date)
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.Repeat("?, ", len(filter.Statuses))
		conditions = append(conditions, "status IN ("+placeholders[:len(placeholders)-2]+")")
		for _, status := range filter.Statuses {
			args = append(args, status)
		}
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return reservations, nil
}

// UpdateReservationStatus sets the status of an existing reservation.
func (r *ReservationRepository) UpdateReservationStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx,
		"UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?",
		status,
		updatedAt.UTC().Format(time.RFC3339),
		id,
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

// DeleteReservation removes a reservation by ID.
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM reservations WHERE id = ?", id)
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

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var reservation persistence.Reservation
	var startTime, endTime, notes sql.NullString
	var collaborators string
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&reservation.ID,
		&reservation.AreaID,
		&reservation.CreatorID,
		&collaborators,
		&reservation.Date,
		&startTime,
		&endTime,
		&reservation.Seats,
		&reservation.Status,
		&notes,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Reservation{}, persistence.ErrNotFound
		}
		return persistence.Reservation{}, mapError(err)
	}

	reservation.StartTime = stringPtr(startTime)
	reservation.EndTime = stringPtr(endTime)
	reservation.Notes = stringPtr(notes)
	if collaborators != "" {
		reservation.Collaborators = strings.Split(collaborators, ",")
	}

	if reservation.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if reservation.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return reservation, nil
}

func nullableString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}
