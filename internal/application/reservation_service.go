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

// ReservationQuery narrows reservation listings.
type ReservationQuery struct {
	AreaID   string
	Date     string
	Statuses []ReservationStatus
}

// ReservationRepository captures the persistence operations needed by
// the service.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservations(ctx context.Context, query ReservationQuery) ([]Reservation, error)
	UpdateReservationStatus(ctx context.Context, id string, status ReservationStatus, updatedAt time.Time) error
}

// AreaReader exposes the area lookups the checker needs.
type AreaReader interface {
	GetArea(ctx context.Context, id string) (Area, error)
}

// PolicyProvider serves the office policy snapshot for one evaluation.
type PolicyProvider interface {
	Current(ctx context.Context) (Policy, error)
}

// liveStatuses are the statuses that occupy capacity.
var liveStatuses = []ReservationStatus{StatusPending, StatusConfirmed, StatusActive, StatusCompleted}

// ReservationService is the availability checker: it turns a raw
// reservation request into an accept or reject decision and owns the
// reservation lifecycle afterwards.
type ReservationService struct {
	reservations ReservationRepository
	areas        AreaReader
	policies     PolicyProvider
	events       EventPublisher
	calendar     *booking.Calendar
	randomSuffix func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewReservationService constructs a reservation service with the
// provided dependencies.
func NewReservationService(
	reservations ReservationRepository,
	areas AreaReader,
	policies PolicyProvider,
	calendar *booking.Calendar,
	randomSuffix func() string,
	now func() time.Time,
) *ReservationService {
	return NewReservationServiceWithLogger(reservations, areas, policies, nil, calendar, randomSuffix, now, nil)
}

// NewReservationServiceWithLogger constructs a reservation service with
// an event publisher and logger.
func NewReservationServiceWithLogger(
	reservations ReservationRepository,
	areas AreaReader,
	policies PolicyProvider,
	events EventPublisher,
	calendar *booking.Calendar,
	randomSuffix func() string,
	now func() time.Time,
	logger *slog.Logger,
) *ReservationService {
	if calendar == nil {
		calendar = booking.NewCalendar(nil)
	}
	if randomSuffix == nil {
		randomSuffix = func() string { return "0000" }
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		reservations: reservations,
		areas:        areas,
		policies:     policies,
		events:       events,
		calendar:     calendar,
		randomSuffix: randomSuffix,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// CreateReservation evaluates a candidate reservation against the
// calendar, the office policy, and the existing occupancy for its area
// and date. The checks short-circuit in a fixed order so each one can
// assume the invariants of those before it. On acceptance the
// reservation is persisted and an event is published best-effort.
func (s *ReservationService) CreateReservation(ctx context.Context, params CreateReservationParams) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil || s.areas == nil || s.policies == nil {
		err = fmt.Errorf("reservation service not fully configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateReservation",
		"principal_id", params.Principal.UserID,
		"area_id", params.Input.AreaID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "reservation not created", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"reservation_id", reservation.ID,
			"status", string(reservation.Status),
		).InfoContext(ctx, "reservation created")
	}()

	input := params.Input

	// 1. Format validation.
	date, nErr := booking.NormalizeDate(input.Date)
	if nErr != nil {
		err = reject(booking.ReasonInvalidFormat, "malformed date")
		return
	}

	var area Area
	area, err = s.areas.GetArea(ctx, input.AreaID)
	if err != nil {
		err = mapReservationRepoError(err, area)
		return
	}

	window := booking.FullDay
	clock := ""
	if !area.FullDay {
		if input.StartTime == "" {
			err = reject(booking.ReasonInvalidFormat, "start time is required")
			return
		}
		startMin, pErr := booking.ParseClock(input.StartTime)
		if pErr != nil {
			err = reject(booking.ReasonInvalidFormat, "malformed start time")
			return
		}
		if input.DurationMinutes <= 0 {
			err = reject(booking.ReasonInvalidFormat, "duration must be positive")
			return
		}
		endMin := startMin + input.DurationMinutes
		if endMin > booking.MinutesPerDay {
			err = reject(booking.ReasonInvalidFormat, "reservation cannot cross midnight")
			return
		}
		window = booking.Interval{StartMin: startMin, EndMin: endMin}
		clock = input.StartTime
	}

	seats := area.Capacity
	if area.Category == booking.CategoryHotDesk {
		if input.Seats < 1 {
			err = reject(booking.ReasonInvalidFormat, "seat count must be a positive integer")
			return
		}
		seats = input.Seats
	}

	var policy Policy
	policy, err = s.policies.Current(ctx)
	if err != nil {
		return
	}

	now := s.now()

	// 2. Not in the past.
	past, pastErr := s.calendar.IsInPast(now, date, clock)
	if pastErr != nil {
		err = reject(booking.ReasonInvalidFormat, "malformed date")
		return
	}
	if past {
		err = reject(booking.ReasonInPast, "")
		return
	}

	// 3. Within the reservation window.
	daysAhead, daysErr := s.calendar.DaysUntil(now, date)
	if daysErr != nil {
		err = reject(booking.ReasonInvalidFormat, "malformed date")
		return
	}
	if !policy.ReservationWindowValid(daysAhead) {
		err = reject(booking.ReasonWindowExceeded, "")
		return
	}

	// 4. On an office day.
	weekday, wdErr := s.calendar.DayOfWeek(date)
	if wdErr != nil {
		err = reject(booking.ReasonInvalidFormat, "malformed date")
		return
	}
	if !policy.IsOfficeDay(weekday) {
		err = reject(booking.ReasonNotOfficeDay, "")
		return
	}

	if !area.FullDay {
		// 5. Within business hours.
		if !policy.IsWithinBusinessHours(window.StartMin, window.Minutes()) {
			err = reject(booking.ReasonOutsideBusinessHours, "")
			return
		}

		// 6. Duration bounds.
		duration := window.Minutes()
		if duration < area.MinMinutes || (area.MaxMinutes > 0 && duration > area.MaxMinutes) {
			err = reject(booking.ReasonDurationOutOfBounds, "")
			return
		}
	}

	// 7. Capacity against the current occupancy.
	var existing []Reservation
	existing, err = s.reservations.ListReservations(ctx, ReservationQuery{
		AreaID:   area.ID,
		Date:     date,
		Statuses: liveStatuses,
	})
	if err != nil {
		err = mapReservationRepoError(err, area)
		return
	}

	occupancy := make([]booking.Occupancy, 0, len(existing))
	for _, r := range existing {
		occupancy = append(occupancy, booking.Occupancy{
			Window: reservationWindow(r),
			Seats:  r.Seats,
		})
	}

	if reason, ok := booking.CheckCapacity(area.Category, window, seats, area.Capacity, occupancy); !ok {
		err = reject(reason, "")
		return
	}

	// 8. Synthesize and persist.
	status := StatusConfirmed
	if policy.RequireApproval {
		status = StatusPending
	}

	reservation = Reservation{
		ID:              s.reservationID(now),
		AreaID:          area.ID,
		CreatorID:       params.Principal.UserID,
		CollaboratorIDs: append([]string(nil), input.CollaboratorIDs...),
		Date:            date,
		Seats:           seats,
		Status:          status,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if !area.FullDay {
		start := booking.FormatClock(window.StartMin)
		end := booking.FormatClock(window.EndMin)
		reservation.StartTime = &start
		reservation.EndTime = &end
	}

	var persisted Reservation
	persisted, err = s.reservations.CreateReservation(ctx, reservation)
	if err != nil {
		err = mapReservationRepoError(err, area)
		reservation = Reservation{}
		return
	}
	reservation = persisted

	s.publish(ctx, logger, ReservationEvent{
		Kind:          EventReservationAccepted,
		ReservationID: reservation.ID,
		AreaID:        reservation.AreaID,
		Date:          reservation.Date,
		CreatorID:     reservation.CreatorID,
		Seats:         reservation.Seats,
		OccurredAt:    now,
	})
	return
}

// CancelReservation moves a reservation to its terminal cancelled
// state. Creators may cancel their own reservations; administrators may
// cancel any. Cancelling an already-cancelled reservation is a no-op.
func (s *ReservationService) CancelReservation(ctx context.Context, principal Principal, reservationID string) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CancelReservation",
		"principal_id", principal.UserID,
		"reservation_id", reservationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "reservation not cancelled", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation cancelled")
	}()

	reservation, err = s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		err = mapReservationRepoError(err, Area{})
		return
	}

	if reservation.CreatorID != principal.UserID && !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if reservation.Status == StatusCancelled {
		return
	}
	if !CanTransition(reservation.Status, StatusCancelled) {
		vErr := &ValidationError{}
		vErr.add("status", "reservation can no longer be cancelled")
		err = vErr
		return
	}

	now := s.now()
	if err = s.reservations.UpdateReservationStatus(ctx, reservation.ID, StatusCancelled, now); err != nil {
		err = mapReservationRepoError(err, Area{})
		return
	}
	reservation.Status = StatusCancelled
	reservation.UpdatedAt = now

	s.publish(ctx, logger, ReservationEvent{
		Kind:          EventReservationCancelled,
		ReservationID: reservation.ID,
		AreaID:        reservation.AreaID,
		Date:          reservation.Date,
		CreatorID:     reservation.CreatorID,
		Seats:         reservation.Seats,
		OccurredAt:    now,
	})
	return
}

// ConfirmReservation approves a pending reservation. Administrators only.
func (s *ReservationService) ConfirmReservation(ctx context.Context, principal Principal, reservationID string) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ConfirmReservation",
		"principal_id", principal.UserID,
		"reservation_id", reservationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "reservation not confirmed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation confirmed")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	reservation, err = s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		err = mapReservationRepoError(err, Area{})
		return
	}

	if !CanTransition(reservation.Status, StatusConfirmed) {
		vErr := &ValidationError{}
		vErr.add("status", "only pending reservations can be confirmed")
		err = vErr
		return
	}

	now := s.now()
	if err = s.reservations.UpdateReservationStatus(ctx, reservation.ID, StatusConfirmed, now); err != nil {
		err = mapReservationRepoError(err, Area{})
		return
	}
	reservation.Status = StatusConfirmed
	reservation.UpdatedAt = now
	return
}

// ListReservations returns reservations filtered by area and date for
// any authenticated user.
func (s *ReservationService) ListReservations(ctx context.Context, params ListReservationsParams) (reservations []Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListReservations",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(reservations)).InfoContext(ctx, "reservations listed")
	}()

	query := ReservationQuery{AreaID: params.AreaID}
	if params.Date != "" {
		query.Date, err = booking.NormalizeDate(params.Date)
		if err != nil {
			err = reject(booking.ReasonInvalidFormat, "malformed date")
			return
		}
	}

	reservations, err = s.reservations.ListReservations(ctx, query)
	if err != nil {
		err = mapReservationRepoError(err, Area{})
		return
	}
	return
}

// reservationID synthesizes the externally visible reservation id from
// the local time of creation plus a random component.
func (s *ReservationService) reservationID(now time.Time) string {
	local := now.In(s.calendar.Location())
	return fmt.Sprintf("RES-%s-%s-%s", local.Format("20060102"), local.Format("150405"), s.randomSuffix())
}

func (s *ReservationService) publish(ctx context.Context, logger *slog.Logger, event ReservationEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishReservationEvent(ctx, event); err != nil {
		logger.WarnContext(ctx, "event publish failed", "event_kind", event.Kind, "error", err)
	}
}

// reservationWindow maps a stored reservation onto its occupancy
// interval. Rows with unparsable times degrade to full-day occupancy
// rather than silently dropping out of the capacity check.
func reservationWindow(r Reservation) booking.Interval {
	if r.StartTime == nil || r.EndTime == nil {
		return booking.FullDay
	}
	start, err := booking.ParseClock(*r.StartTime)
	if err != nil {
		return booking.FullDay
	}
	end, err := booking.ParseClock(*r.EndTime)
	if err != nil {
		return booking.FullDay
	}
	return booking.Interval{StartMin: start, EndMin: end}
}

// mapReservationRepoError bridges persistence sentinels into the
// service's error taxonomy. A duplicate-key insert means another writer
// holds the slot, so it is re-derived as the category's rejection
// instead of surfacing as a storage error.
func mapReservationRepoError(err error, area Area) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) || errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		if area.Category == booking.CategoryHotDesk {
			return reject(booking.ReasonCapacityExceeded, "slot already taken")
		}
		return reject(booking.ReasonTimeConflict, "slot already taken")
	}
	if errors.Is(err, persistence.ErrUnavailable) {
		return ErrStorageUnavailable
	}
	return err
}
