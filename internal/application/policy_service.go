package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

// PolicyRepository captures the persistence operations needed by the service.
type PolicyRepository interface {
	GetPolicy(ctx context.Context) (Policy, error)
	ReplacePolicy(ctx context.Context, policy Policy) error
}

// PolicyService serves office policy snapshots and handles administrator
// updates. Reads are served from an in-memory snapshot so every
// evaluation sees one consistent policy; the snapshot is refreshed on
// replace (last writer wins).
type PolicyService struct {
	policies PolicyRepository
	now      func() time.Time
	logger   *slog.Logger

	mu       sync.RWMutex
	snapshot *Policy
}

// NewPolicyService constructs a policy service with the provided dependencies.
func NewPolicyService(policies PolicyRepository, now func() time.Time) *PolicyService {
	return NewPolicyServiceWithLogger(policies, now, nil)
}

// NewPolicyServiceWithLogger constructs a policy service with a specified logger.
func NewPolicyServiceWithLogger(policies PolicyRepository, now func() time.Time, logger *slog.Logger) *PolicyService {
	if now == nil {
		now = time.Now
	}
	return &PolicyService{policies: policies, now: now, logger: defaultLogger(logger)}
}

func (s *PolicyService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PolicyService", operation, attrs...)
}

// Current returns the active policy snapshot. Before any administrator
// has stored a policy the default takes effect.
func (s *PolicyService) Current(ctx context.Context) (Policy, error) {
	if s == nil {
		return Policy{}, fmt.Errorf("PolicyService is nil")
	}

	s.mu.RLock()
	cached := s.snapshot
	s.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	if s.policies == nil {
		return Policy{Policy: booking.DefaultPolicy()}, nil
	}

	stored, err := s.policies.GetPolicy(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			fallback := Policy{Policy: booking.DefaultPolicy()}
			s.storeSnapshot(fallback)
			return fallback, nil
		}
		if errors.Is(err, persistence.ErrUnavailable) {
			return Policy{}, ErrStorageUnavailable
		}
		return Policy{}, err
	}

	s.storeSnapshot(stored)
	return stored, nil
}

// Replace validates and stores a new policy for administrators.
func (s *PolicyService) Replace(ctx context.Context, params ReplacePolicyParams) (policy Policy, err error) {
	if s == nil {
		err = fmt.Errorf("PolicyService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Replace",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to replace policy", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "policy replaced")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validatePolicyInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	policy = Policy{
		Policy: booking.Policy{
			OfficeDays:               params.Input.OfficeDays,
			OfficeHours:              params.Input.OfficeHours,
			BusinessHours:            params.Input.BusinessHours,
			MaxReservationDaysAhead:  params.Input.MaxReservationDaysAhead,
			AllowSameDayReservations: params.Input.AllowSameDayReservations,
			RequireApproval:          params.Input.RequireApproval,
		},
		UpdatedAt: s.now(),
	}

	if s.policies != nil {
		if err = s.policies.ReplacePolicy(ctx, policy); err != nil {
			if errors.Is(err, persistence.ErrUnavailable) {
				err = ErrStorageUnavailable
			}
			return
		}
	}

	s.storeSnapshot(policy)
	return
}

func (s *PolicyService) storeSnapshot(policy Policy) {
	s.mu.Lock()
	s.snapshot = &policy
	s.mu.Unlock()
}

func validatePolicyInput(input PolicyInput) *ValidationError {
	vErr := &ValidationError{}

	if !input.OfficeHours.Valid() {
		vErr.add("officeHours", "office hours must be a valid range within one day")
	}
	if !input.BusinessHours.Valid() {
		vErr.add("businessHours", "business hours must be a valid range within one day")
	}
	if input.OfficeHours.Valid() && input.BusinessHours.Valid() {
		if input.BusinessHours.Start < input.OfficeHours.Start || input.BusinessHours.End > input.OfficeHours.End {
			vErr.add("businessHours", "business hours must fall within office hours")
		}
	}
	if input.MaxReservationDaysAhead < 0 {
		vErr.add("maxReservationDaysAhead", "reservation window cannot be negative")
	}

	open := false
	for _, day := range input.OfficeDays {
		if day {
			open = true
			break
		}
	}
	if !open {
		vErr.add("officeDays", "at least one office day is required")
	}

	return vErr
}
