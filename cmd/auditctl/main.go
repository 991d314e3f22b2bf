// Command auditctl runs one conflict audit pass against the booking
// database and prints the resulting report as JSON. It is meant for
// operators and cron jobs; the API server runs the same audit on a
// timer when BOOKING_AUDIT_INTERVAL is set.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/persistence/sqlite"
)

func main() {
	dsn := flag.String("dsn", defaultDSN(), "SQLite DSN of the booking database")
	quiet := flag.Bool("quiet", false, "suppress progress logging, print only the report")
	flag.Parse()

	level := slog.LevelInfo
	if *quiet {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(context.Background(), *dsn, logger); err != nil {
		logger.Error("conflict audit failed", "error", err)
		os.Exit(1)
	}
}

func defaultDSN() string {
	if dsn := os.Getenv("BOOKING_SQLITE_DSN"); dsn != "" {
		return dsn
	}
	return "file:booking.db?_foreign_keys=on"
}

func run(ctx context.Context, dsn string, logger *slog.Logger) error {
	pool, err := sqlite.NewConnectionPool(dsn)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = pool.Close() }()

	if err := pool.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap storage: %w", err)
	}

	auditor := application.NewAuditServiceWithLogger(
		&auditStore{repo: sqlite.NewReservationRepository(pool)},
		&areaCatalog{repo: sqlite.NewAreaRepository(pool)},
		nil,
		time.Now,
		logger,
	)

	report, err := auditor.RunConflictAudit(ctx)
	if err != nil {
		return err
	}
	return printReport(os.Stdout, report)
}

type reportPayload struct {
	StartedAt          time.Time       `json:"started_at"`
	FinishedAt         time.Time       `json:"finished_at"`
	Examined           int             `json:"examined"`
	DuplicatesResolved int             `json:"duplicates_resolved"`
	OverlapsResolved   int             `json:"overlaps_resolved"`
	Removed            []removedRecord `json:"removed"`
	Failures           []auditFailure  `json:"failures"`
	Clean              bool            `json:"clean"`
}

type removedRecord struct {
	ID         string `json:"id"`
	RetainedID string `json:"retained_id"`
	AreaID     string `json:"area_id"`
	Date       string `json:"date"`
	Reason     string `json:"reason"`
}

type auditFailure struct {
	ReservationID string `json:"reservation_id"`
	Detail        string `json:"detail"`
}

func printReport(out io.Writer, report application.AuditReport) error {
	payload := reportPayload{
		StartedAt:          report.StartedAt,
		FinishedAt:         report.FinishedAt,
		Examined:           report.Examined,
		DuplicatesResolved: report.DuplicatesResolved,
		OverlapsResolved:   report.OverlapsResolved,
		Removed:            make([]removedRecord, 0, len(report.Removed)),
		Failures:           make([]auditFailure, 0, len(report.Failures)),
		Clean:              report.Clean,
	}
	for _, removed := range report.Removed {
		payload.Removed = append(payload.Removed, removedRecord{
			ID:         removed.ID,
			RetainedID: removed.RetainedID,
			AreaID:     removed.AreaID,
			Date:       removed.Date,
			Reason:     removed.Reason,
		})
	}
	for _, failure := range report.Failures {
		payload.Failures = append(payload.Failures, auditFailure{
			ReservationID: failure.ReservationID,
			Detail:        failure.Detail,
		})
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

// auditStore exposes stored reservations to the auditor.
type auditStore struct {
	repo persistence.ReservationRepository
}

func (s *auditStore) ListReservations(ctx context.Context, query application.ReservationQuery) ([]application.Reservation, error) {
	filter := persistence.ReservationFilter{
		AreaID: query.AreaID,
		Date:   query.Date,
	}
	for _, status := range query.Statuses {
		filter.Statuses = append(filter.Statuses, string(status))
	}
	stored, err := s.repo.ListReservations(ctx, filter)
	if err != nil {
		return nil, err
	}
	reservations := make([]application.Reservation, 0, len(stored))
	for _, reservation := range stored {
		reservations = append(reservations, application.Reservation{
			ID:              reservation.ID,
			AreaID:          reservation.AreaID,
			CreatorID:       reservation.CreatorID,
			CollaboratorIDs: reservation.Collaborators,
			Date:            reservation.Date,
			StartTime:       reservation.StartTime,
			EndTime:         reservation.EndTime,
			Seats:           reservation.Seats,
			Status:          application.ReservationStatus(reservation.Status),
			Notes:           reservation.Notes,
			CreatedAt:       reservation.CreatedAt,
			UpdatedAt:       reservation.UpdatedAt,
		})
	}
	return reservations, nil
}

func (s *auditStore) DeleteReservation(ctx context.Context, id string) error {
	return s.repo.DeleteReservation(ctx, id)
}

// areaCatalog exposes the area table to the auditor.
type areaCatalog struct {
	repo persistence.AreaRepository
}

func (c *areaCatalog) ListAreas(ctx context.Context) ([]application.Area, error) {
	stored, err := c.repo.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	areas := make([]application.Area, 0, len(stored))
	for _, area := range stored {
		areas = append(areas, application.Area{
			ID:         area.ID,
			Name:       area.Name,
			Location:   area.Location,
			Category:   booking.Category(area.Category),
			Capacity:   area.Capacity,
			FullDay:    area.FullDay,
			MinMinutes: area.MinMinutes,
			MaxMinutes: area.MaxMinutes,
			CreatedAt:  area.CreatedAt,
			UpdatedAt:  area.UpdatedAt,
		})
	}
	return areas, nil
}
