package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

// AreaRepository captures the persistence operations needed by the service.
type AreaRepository interface {
	CreateArea(ctx context.Context, area Area) (Area, error)
	GetArea(ctx context.Context, id string) (Area, error)
	UpdateArea(ctx context.Context, area Area) (Area, error)
	DeleteArea(ctx context.Context, id string) error
	ListAreas(ctx context.Context) ([]Area, error)
	AreaHasReservations(ctx context.Context, id string) (bool, error)
}

// AreaService orchestrates validation, authorization, and persistence
// for bookable areas.
type AreaService struct {
	areas       AreaRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAreaService constructs an area service with the provided dependencies.
func NewAreaService(areas AreaRepository, idGenerator func() string, now func() time.Time) *AreaService {
	return NewAreaServiceWithLogger(areas, idGenerator, now, nil)
}

// NewAreaServiceWithLogger constructs an area service with a specified logger.
func NewAreaServiceWithLogger(areas AreaRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AreaService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AreaService{areas: areas, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *AreaService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AreaService", operation, attrs...)
}

// CreateArea validates input and persists a new area for administrators.
func (s *AreaService) CreateArea(ctx context.Context, params CreateAreaParams) (area Area, err error) {
	if s == nil {
		err = fmt.Errorf("AreaService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateArea",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create area", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("area_id", area.ID).InfoContext(ctx, "area created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateAreaInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	area = Area{
		ID:         s.idGenerator(),
		Name:       strings.TrimSpace(params.Input.Name),
		Location:   strings.TrimSpace(params.Input.Location),
		Category:   booking.Category(params.Input.Category),
		Capacity:   params.Input.Capacity,
		FullDay:    params.Input.FullDay,
		MinMinutes: params.Input.MinMinutes,
		MaxMinutes: params.Input.MaxMinutes,
		CreatedAt:  s.now(),
	}
	area.UpdatedAt = area.CreatedAt

	if s.areas == nil {
		return
	}

	var persisted Area
	persisted, err = s.areas.CreateArea(ctx, area)
	if err != nil {
		err = mapAreaRepoError(err)
		return
	}

	area = persisted
	return
}

// UpdateArea validates input and updates an existing area for
// administrators. The category is immutable once any reservation
// references the area.
func (s *AreaService) UpdateArea(ctx context.Context, params UpdateAreaParams) (area Area, err error) {
	if s == nil {
		err = fmt.Errorf("AreaService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.areas == nil {
		err = fmt.Errorf("area repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateArea",
		"principal_id", params.Principal.UserID,
		"area_id", params.AreaID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update area", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("area_id", area.ID).InfoContext(ctx, "area updated")
	}()

	var existing Area
	existing, err = s.areas.GetArea(ctx, params.AreaID)
	if err != nil {
		err = mapAreaRepoError(err)
		return
	}

	vErr := validateAreaInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if booking.Category(params.Input.Category) != existing.Category {
		var booked bool
		booked, err = s.areas.AreaHasReservations(ctx, existing.ID)
		if err != nil {
			err = mapAreaRepoError(err)
			return
		}
		if booked {
			vErr := &ValidationError{}
			vErr.add("category", "category cannot change while reservations exist")
			err = vErr
			return
		}
	}

	updated := existing
	updated.Name = strings.TrimSpace(params.Input.Name)
	updated.Location = strings.TrimSpace(params.Input.Location)
	updated.Category = booking.Category(params.Input.Category)
	updated.Capacity = params.Input.Capacity
	updated.FullDay = params.Input.FullDay
	updated.MinMinutes = params.Input.MinMinutes
	updated.MaxMinutes = params.Input.MaxMinutes
	updated.UpdatedAt = s.now()

	area, err = s.areas.UpdateArea(ctx, updated)
	if err != nil {
		err = mapAreaRepoError(err)
		return
	}

	return
}

// DeleteArea removes an existing area when requested by an administrator.
func (s *AreaService) DeleteArea(ctx context.Context, principal Principal, areaID string) error {
	if s == nil {
		return fmt.Errorf("AreaService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.areas == nil {
		return fmt.Errorf("area repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteArea",
		"principal_id", principal.UserID,
		"area_id", areaID,
	)

	if err := s.areas.DeleteArea(ctx, areaID); err != nil {
		err = mapAreaRepoError(err)
		logger.ErrorContext(ctx, "failed to delete area", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "area deleted")
	return nil
}

// ListAreas returns the catalog of areas for any authenticated user.
func (s *AreaService) ListAreas(ctx context.Context, principal Principal) (areas []Area, err error) {
	if s == nil {
		err = fmt.Errorf("AreaService is nil")
		return
	}
	if s.areas == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListAreas",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list areas", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(areas)).InfoContext(ctx, "areas listed")
	}()

	var raw []Area
	raw, err = s.areas.ListAreas(ctx)
	if err != nil {
		err = mapAreaRepoError(err)
		return
	}

	areas = make([]Area, len(raw))
	copy(areas, raw)

	sort.Slice(areas, func(i, j int) bool {
		if strings.EqualFold(areas[i].Name, areas[j].Name) {
			return areas[i].ID < areas[j].ID
		}
		return strings.ToLower(areas[i].Name) < strings.ToLower(areas[j].Name)
	})

	return
}

// GetArea returns a single area for any authenticated user.
func (s *AreaService) GetArea(ctx context.Context, principal Principal, areaID string) (Area, error) {
	if s == nil {
		return Area{}, fmt.Errorf("AreaService is nil")
	}
	if s.areas == nil {
		return Area{}, ErrNotFound
	}

	area, err := s.areas.GetArea(ctx, areaID)
	if err != nil {
		return Area{}, mapAreaRepoError(err)
	}
	return area, nil
}

func validateAreaInput(input AreaInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if !booking.Category(input.Category).Valid() {
		vErr.add("category", "category must be MEETING_ROOM or HOT_DESK")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if !input.FullDay {
		if input.MinMinutes <= 0 {
			vErr.add("minMinutes", "minimum duration must be positive")
		}
		if input.MaxMinutes < input.MinMinutes {
			vErr.add("maxMinutes", "maximum duration must be at least the minimum")
		}
	}

	return vErr
}

func mapAreaRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("area", "area still has reservations")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("capacity", "capacity must be positive")
		return vErr
	}
	if errors.Is(err, persistence.ErrUnavailable) {
		return ErrStorageUnavailable
	}
	return err
}
