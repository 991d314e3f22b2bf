package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/workspace-booking/internal/persistence"
)

// PolicyRepository implements persistence.PolicyRepository using SQLite.
// The policy table holds at most one row.
type PolicyRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
}

// NewPolicyRepository creates a new SQLite policy repository.
func NewPolicyRepository(pool *ConnectionPool) *PolicyRepository {
	return &PolicyRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
	}
}

// GetPolicy returns the stored policy, or ErrNotFound before the first
// ReplacePolicy call.
func (r *PolicyRepository) GetPolicy(ctx context.Context) (persistence.Policy, error) {
	query := `
		SELECT office_days, office_hours_start, office_hours_end,
		       business_hours_start, business_hours_end,
		       max_days_ahead, allow_same_day, require_approval, updated_at
		FROM policy
		WHERE id = 1
	`

	var policy persistence.Policy
	var days, updatedAtStr string
	var allowSameDay, requireApproval int

	err := r.helper.QueryRow(ctx, query).Scan(
		&days,
		&policy.OfficeHoursStart,
		&policy.OfficeHoursEnd,
		&policy.BusinessHoursStart,
		&policy.BusinessHoursEnd,
		&policy.MaxDaysAhead,
		&allowSameDay,
		&requireApproval,
		&updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Policy{}, persistence.ErrNotFound
		}
		return persistence.Policy{}, mapError(err)
	}

	policy.OfficeDays, err = decodeOfficeDays(days)
	if err != nil {
		return persistence.Policy{}, err
	}
	policy.AllowSameDay = allowSameDay != 0
	policy.RequireApproval = requireApproval != 0
	if policy.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Policy{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return policy, nil
}

// ReplacePolicy swaps the stored policy for the given one.
func (r *PolicyRepository) ReplacePolicy(ctx context.Context, policy persistence.Policy) error {
	query := `
		INSERT INTO policy (id, office_days, office_hours_start, office_hours_end,
			business_hours_start, business_hours_end,
			max_days_ahead, allow_same_day, require_approval, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			office_days = excluded.office_days,
			office_hours_start = excluded.office_hours_start,
			office_hours_end = excluded.office_hours_end,
			business_hours_start = excluded.business_hours_start,
			business_hours_end = excluded.business_hours_end,
			max_days_ahead = excluded.max_days_ahead,
			allow_same_day = excluded.allow_same_day,
			require_approval = excluded.require_approval,
			updated_at = excluded.updated_at
	`

	_, err := r.helper.Exec(ctx, query,
		encodeOfficeDays(policy.OfficeDays),
		policy.OfficeHoursStart,
		policy.OfficeHoursEnd,
		policy.BusinessHoursStart,
		policy.BusinessHoursEnd,
		policy.MaxDaysAhead,
		boolToInt(policy.AllowSameDay),
		boolToInt(policy.RequireApproval),
		policy.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}

	return nil
}

// encodeOfficeDays packs the weekday flags into a 7-character string of
// zeros and ones starting at Sunday.
func encodeOfficeDays(days [7]bool) string {
	encoded := make([]byte, 7)
	for i, open := range days {
		if open {
			encoded[i] = '1'
		} else {
			encoded[i] = '0'
		}
	}
	return string(encoded)
}

func decodeOfficeDays(encoded string) ([7]bool, error) {
	var days [7]bool
	if len(encoded) != 7 {
		return days, fmt.Errorf("%w: malformed office_days %q", persistence.ErrConstraintViolation, encoded)
	}
	for i := range days {
		days[i] = encoded[i] == '1'
	}
	return days, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
