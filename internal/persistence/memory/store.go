// Package memory provides an in-memory persistence layer used by tests
// and by deployments that do not need durable storage.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/workspace-booking/internal/persistence"
)

// Store keeps all records in process memory guarded by a single lock.
type Store struct {
	mu           sync.RWMutex
	users        map[string]persistence.User
	areas        map[string]persistence.Area
	reservations map[string]persistence.Reservation
	sessions     map[string]persistence.Session
	policy       *persistence.Policy
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:        make(map[string]persistence.User),
		areas:        make(map[string]persistence.Area),
		reservations: make(map[string]persistence.Reservation),
		sessions:     make(map[string]persistence.Session),
	}
}

// Close releases resources held by the store. No-op for the in-memory
// implementation.
func (s *Store) Close() error {
	return nil
}

// --- UserRepository implementation ---

// CreateUser stores a new user. Emails are unique case-insensitively.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}

	lower := strings.ToLower(user.Email)
	for _, existing := range s.users {
		if strings.ToLower(existing.Email) == lower {
			return persistence.ErrDuplicate
		}
	}

	s.users[user.ID] = user
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(email)
	for _, user := range s.users {
		if strings.ToLower(user.Email) == lower {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsers returns all users ordered by CreatedAt then ID.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// --- AreaRepository implementation ---

// CreateArea stores a new area. Names are unique case-insensitively.
func (s *Store) CreateArea(ctx context.Context, area persistence.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.areas[area.ID]; ok {
		return persistence.ErrDuplicate
	}
	if err := s.ensureUniqueAreaNameLocked(area.ID, area.Name); err != nil {
		return err
	}

	s.areas[area.ID] = area
	return nil
}

// UpdateArea replaces an existing area record.
func (s *Store) UpdateArea(ctx context.Context, area persistence.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.areas[area.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueAreaNameLocked(area.ID, area.Name); err != nil {
		return err
	}

	s.areas[area.ID] = area
	return nil
}

// GetArea retrieves an area by ID.
func (s *Store) GetArea(ctx context.Context, id string) (persistence.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	area, ok := s.areas[id]
	if !ok {
		return persistence.Area{}, persistence.ErrNotFound
	}
	return area, nil
}

// ListAreas returns all areas ordered by name then ID.
func (s *Store) ListAreas(ctx context.Context) ([]persistence.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	areas := make([]persistence.Area, 0, len(s.areas))
	for _, area := range s.areas {
		areas = append(areas, area)
	}
	sort.Slice(areas, func(i, j int) bool {
		if areas[i].Name == areas[j].Name {
			return areas[i].ID < areas[j].ID
		}
		return areas[i].Name < areas[j].Name
	})
	return areas, nil
}

// DeleteArea removes an area. Areas referenced by any reservation
// cannot be deleted.
func (s *Store) DeleteArea(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.areas[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, reservation := range s.reservations {
		if reservation.AreaID == id {
			return persistence.ErrForeignKeyViolation
		}
	}

	delete(s.areas, id)
	return nil
}

// AreaHasReservations reports whether any reservation references the area.
func (s *Store) AreaHasReservations(ctx context.Context, areaID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, reservation := range s.reservations {
		if reservation.AreaID == areaID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ensureUniqueAreaNameLocked(id, name string) error {
	lower := strings.ToLower(name)
	for _, existing := range s.areas {
		if existing.ID != id && strings.ToLower(existing.Name) == lower {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

// --- ReservationRepository implementation ---

// CreateReservation stores a new reservation. Two live reservations by
// the same creator for the same area, date, and window collide.
func (s *Store) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[reservation.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.areas[reservation.AreaID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.users[reservation.CreatorID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	key := slotKey(reservation)
	for _, existing := range s.reservations {
		if existing.Status != "cancelled" && slotKey(existing) == key {
			return persistence.ErrDuplicate
		}
	}

	s.reservations[reservation.ID] = reservation
	return nil
}

// GetReservation retrieves a reservation by ID.
func (s *Store) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	return reservation, nil
}

// ListReservations returns reservations matching the filter ordered by
// CreatedAt then ID.
func (s *Store) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []persistence.Reservation
	for _, reservation := range s.reservations {
		if matchesFilter(reservation, filter) {
			result = append(result, reservation)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateReservationStatus sets the status of an existing reservation.
func (s *Store) UpdateReservationStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return persistence.ErrNotFound
	}
	reservation.Status = status
	reservation.UpdatedAt = updatedAt
	s.reservations[id] = reservation
	return nil
}

// DeleteReservation removes a reservation by ID.
func (s *Store) DeleteReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

func slotKey(r persistence.Reservation) string {
	start, end := "", ""
	if r.StartTime != nil {
		start = *r.StartTime
	}
	if r.EndTime != nil {
		end = *r.EndTime
	}
	return r.AreaID + "|" + r.Date + "|" + start + "|" + end + "|" + r.CreatorID
}

func matchesFilter(r persistence.Reservation, filter persistence.ReservationFilter) bool {
	if filter.AreaID != "" && r.AreaID != filter.AreaID {
		return false
	}
	if filter.CreatorID != "" && r.CreatorID != filter.CreatorID {
		return false
	}
	if filter.Date != "" && r.Date != filter.Date {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if r.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// --- PolicyRepository implementation ---

// GetPolicy returns the stored policy, or ErrNotFound before the first
// ReplacePolicy call.
func (s *Store) GetPolicy(ctx context.Context) (persistence.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.policy == nil {
		return persistence.Policy{}, persistence.ErrNotFound
	}
	return *s.policy, nil
}

// ReplacePolicy swaps the stored policy for the given one.
func (s *Store) ReplacePolicy(ctx context.Context, policy persistence.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.policy = &policy
	return nil
}

// --- SessionRepository implementation ---

// CreateSession stores a new session. Tokens are unique.
func (s *Store) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.Token]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	if _, ok := s.users[session.UserID]; !ok {
		return persistence.Session{}, persistence.ErrForeignKeyViolation
	}

	s.sessions[session.Token] = session
	return session, nil
}

// GetSession retrieves a session by token.
func (s *Store) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

// RevokeSession marks a session as revoked.
func (s *Store) RevokeSession(ctx context.Context, token string, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.ErrNotFound
	}
	stamp := revokedAt.UTC()
	session.RevokedAt = &stamp
	s.sessions[token] = session
	return nil
}

// DeleteExpiredSessions removes sessions expired at or before reference.
func (s *Store) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}
