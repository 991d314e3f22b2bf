package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

// AuditRepository captures the persistence operations the auditor needs.
type AuditRepository interface {
	ListReservations(ctx context.Context, query ReservationQuery) ([]Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

// AuditAreaSource exposes the area catalog to the auditor.
type AuditAreaSource interface {
	ListAreas(ctx context.Context) ([]Area, error)
}

// auditedStatuses are the statuses the auditor reconciles. Pending
// reservations await approval and cancelled ones hold no capacity.
var auditedStatuses = []ReservationStatus{StatusConfirmed, StatusActive, StatusCompleted}

// AuditService is the conflict auditor: a reconciliation pass over
// persisted reservations that removes duplicates and overlaps the
// race-tolerant checker let through. Runs are idempotent and safe to
// race against concurrent cancellations.
type AuditService struct {
	reservations AuditRepository
	areas        AuditAreaSource
	events       EventPublisher
	now          func() time.Time
	logger       *slog.Logger
}

// NewAuditService constructs an audit service with the provided dependencies.
func NewAuditService(reservations AuditRepository, areas AuditAreaSource, now func() time.Time) *AuditService {
	return NewAuditServiceWithLogger(reservations, areas, nil, now, nil)
}

// NewAuditServiceWithLogger constructs an audit service with an event
// publisher and logger.
func NewAuditServiceWithLogger(reservations AuditRepository, areas AuditAreaSource, events EventPublisher, now func() time.Time, logger *slog.Logger) *AuditService {
	if now == nil {
		now = time.Now
	}
	return &AuditService{
		reservations: reservations,
		areas:        areas,
		events:       events,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// RunConflictAudit loads every capacity-holding reservation, plans the
// deterministic oldest-wins resolution, applies it, and re-scans as a
// postcondition. Individual removal failures are collected in the
// report; they never abort the pass.
func (s *AuditService) RunConflictAudit(ctx context.Context) (report AuditReport, err error) {
	if s == nil {
		err = fmt.Errorf("AuditService is nil")
		return
	}
	if s.reservations == nil || s.areas == nil {
		err = fmt.Errorf("audit service not fully configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "AuditService", "RunConflictAudit")
	report.StartedAt = s.now()
	defer func() {
		report.FinishedAt = s.now()
		if err != nil {
			logger.ErrorContext(ctx, "conflict audit failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"examined", report.Examined,
			"duplicates_resolved", report.DuplicatesResolved,
			"overlaps_resolved", report.OverlapsResolved,
			"failures", len(report.Failures),
			"clean", report.Clean,
		).InfoContext(ctx, "conflict audit finished")
	}()

	areas, aErr := s.areas.ListAreas(ctx)
	if aErr != nil {
		err = mapAreaRepoError(aErr)
		return
	}
	areaByID := make(map[string]Area, len(areas))
	for _, area := range areas {
		areaByID[area.ID] = area
	}

	reservations, lErr := s.reservations.ListReservations(ctx, ReservationQuery{Statuses: auditedStatuses})
	if lErr != nil {
		err = mapReservationRepoError(lErr, Area{})
		return
	}
	report.Examined = len(reservations)

	entries := make([]booking.Entry, 0, len(reservations))
	for _, r := range reservations {
		area, ok := areaByID[r.AreaID]
		if !ok {
			report.Failures = append(report.Failures, AuditFailure{
				ReservationID: r.ID,
				Detail:        "reservation references an unknown area",
			})
			continue
		}
		entry := booking.Entry{
			ID:        r.ID,
			AreaID:    r.AreaID,
			Category:  area.Category,
			Date:      r.Date,
			Window:    reservationWindow(r),
			FullDay:   area.FullDay || r.StartTime == nil,
			CreatorID: r.CreatorID,
			CreatedAt: r.CreatedAt,
		}
		if entry.FullDay {
			entry.Window = booking.FullDay
		}
		entries = append(entries, entry)
	}

	removals := booking.PlanResolutions(entries)
	removed := make(map[string]bool, len(removals))
	for _, removal := range removals {
		if dErr := s.reservations.DeleteReservation(ctx, removal.ID); dErr != nil {
			// A record cancelled or deleted mid-run is already resolved.
			if !errors.Is(dErr, ErrNotFound) && !errors.Is(dErr, persistence.ErrNotFound) {
				report.Failures = append(report.Failures, AuditFailure{
					ReservationID: removal.ID,
					Detail:        dErr.Error(),
				})
				continue
			}
		}

		removed[removal.ID] = true
		record := RemovedRecord{
			ID:         removal.ID,
			RetainedID: removal.RetainedID,
			Reason:     string(removal.Kind),
		}
		for _, entry := range entries {
			if entry.ID == removal.ID {
				record.AreaID = entry.AreaID
				record.Date = entry.Date
				break
			}
		}
		report.Removed = append(report.Removed, record)
		if removal.Kind == booking.ConflictDuplicate {
			report.DuplicatesResolved++
		} else {
			report.OverlapsResolved++
		}

		logger.InfoContext(ctx, "conflicting reservation removed",
			"removed_id", removal.ID,
			"retained_id", removal.RetainedID,
			"reason", string(removal.Kind),
		)

		if s.events != nil {
			event := ReservationEvent{
				Kind:          EventAuditRemoved,
				ReservationID: removal.ID,
				AreaID:        record.AreaID,
				Date:          record.Date,
				OccurredAt:    s.now(),
			}
			if pErr := s.events.PublishReservationEvent(ctx, event); pErr != nil {
				logger.WarnContext(ctx, "event publish failed", "event_kind", event.Kind, "error", pErr)
			}
		}
	}

	survivors := entries[:0:0]
	for _, entry := range entries {
		if !removed[entry.ID] {
			survivors = append(survivors, entry)
		}
	}
	remaining := booking.RemainingConflicts(survivors)
	report.Clean = len(remaining) == 0

	if !report.Clean && len(report.Failures) == 0 {
		err = fmt.Errorf("audit postcondition failed: %d conflicting pairs remain", len(remaining))
	}
	return
}
