package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/config"
	httptransport "github.com/example/workspace-booking/internal/http"
	"github.com/example/workspace-booking/internal/mq"
	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/persistence/memory"
	"github.com/example/workspace-booking/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	repos, err := openStorage(context.Background(), cfg.SQLiteDSN, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := repos.close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	idGenerator := uuid.NewString
	tokenGenerator := uuid.NewString
	now := time.Now
	calendar := booking.NewCalendar(cfg.Timezone)

	areas := newAreaRepositoryAdapter(repos.areas)
	reservations := newReservationRepositoryAdapter(repos.reservations)
	policies := newPolicyRepositoryAdapter(repos.policies)
	sessions := newSessionRepositoryAdapter(repos.sessions, cfg.SessionSecret)
	credentials := newCredentialStoreAdapter(repos.users)

	var events application.EventPublisher
	if cfg.AMQPURL != "" {
		publisher, perr := mq.Connect(cfg.AMQPURL, logger)
		if perr != nil {
			// Events are best-effort; the API still serves without a broker.
			logger.Error("failed to connect to message broker", "error", perr)
		} else {
			defer func() { _ = publisher.Close() }()
			events = publisher
		}
	}

	areaService := application.NewAreaServiceWithLogger(areas, idGenerator, now, logger)
	policyService := application.NewPolicyServiceWithLogger(policies, now, logger)
	reservationService := application.NewReservationServiceWithLogger(reservations, areas, policyService, events, calendar, randomSuffix, now, logger)
	authService := application.NewAuthServiceWithLogger(credentials, sessions, nil, tokenGenerator, now, cfg.SessionTTL, logger)
	auditService := application.NewAuditServiceWithLogger(reservations, areas, events, now, logger)

	if cfg.AdminEmail != "" {
		if err := seedAdmin(context.Background(), repos.users, cfg.AdminEmail, cfg.AdminPassword, idGenerator, now); err != nil {
			logger.Error("failed to seed administrator account", "error", err)
			os.Exit(1)
		}
	}

	if cfg.AuditInterval > 0 {
		go runAuditTicker(ctx, auditService, cfg.AuditInterval, logger)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Areas:        httptransport.NewAreaHandler(areaService, logger),
		Policy:       httptransport.NewPolicyHandler(policyService, logger),
		Reservations: httptransport.NewReservationHandler(reservationService, logger),
		Audit:        httptransport.NewAuditHandler(auditService, logger),
		Session:      httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr, "timezone", cfg.Timezone.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// repositories bundles the storage backends handed to the services.
type repositories struct {
	users        persistence.UserRepository
	areas        persistence.AreaRepository
	reservations persistence.ReservationRepository
	policies     persistence.PolicyRepository
	sessions     persistence.SessionRepository
	close        func() error
}

// openStorage opens the configured storage backend. The DSN value
// "memory" selects the volatile in-memory store; anything else is
// treated as a SQLite DSN and the schema is bootstrapped in place.
func openStorage(ctx context.Context, dsn string, logger *slog.Logger) (repositories, error) {
	if dsn == "memory" {
		logger.Warn("using in-memory storage, data is lost on shutdown")
		store := memory.NewStore()
		return repositories{
			users:        store,
			areas:        store,
			reservations: store,
			policies:     store,
			sessions:     store,
			close:        store.Close,
		}, nil
	}

	pool, err := sqlite.NewConnectionPool(dsn)
	if err != nil {
		return repositories{}, err
	}
	if err := pool.Ping(ctx); err != nil {
		_ = pool.Close()
		return repositories{}, err
	}
	if err := pool.Bootstrap(ctx); err != nil {
		_ = pool.Close()
		return repositories{}, err
	}
	return repositories{
		users:        sqlite.NewUserRepository(pool),
		areas:        sqlite.NewAreaRepository(pool),
		reservations: sqlite.NewReservationRepository(pool),
		policies:     sqlite.NewPolicyRepository(pool),
		sessions:     sqlite.NewSessionRepository(pool),
		close:        pool.Close,
	}, nil
}

// randomSuffix yields the four-character tail of reservation IDs.
func randomSuffix() string {
	id := uuid.NewString()
	return strings.ReplaceAll(id, "-", "")[:4]
}

func seedAdmin(ctx context.Context, users persistence.UserRepository, email, password string, idGenerator func() string, now func() time.Time) error {
	_, err := users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return err
	}

	hash, err := application.HashPassword(password)
	if err != nil {
		return err
	}

	stamp := now().UTC()
	return users.CreateUser(ctx, persistence.User{
		ID:           idGenerator(),
		Email:        email,
		DisplayName:  "Administrador",
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    stamp,
		UpdatedAt:    stamp,
	})
}

func runAuditTicker(ctx context.Context, audits *application.AuditService, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := audits.RunConflictAudit(ctx)
			if err != nil {
				logger.Error("scheduled conflict audit failed", "error", err)
				continue
			}
			logger.Info("scheduled conflict audit finished",
				"examined", report.Examined,
				"duplicates_resolved", report.DuplicatesResolved,
				"overlaps_resolved", report.OverlapsResolved,
				"clean", report.Clean,
			)
		}
	}
}

// The adapters below bridge the application service interfaces to the
// persistence repositories. Services translate persistence errors
// themselves, so the adapters only convert models.

type areaRepositoryAdapter struct {
	repo persistence.AreaRepository
}

func newAreaRepositoryAdapter(repo persistence.AreaRepository) *areaRepositoryAdapter {
	return &areaRepositoryAdapter{repo: repo}
}

func (a *areaRepositoryAdapter) CreateArea(ctx context.Context, area application.Area) (application.Area, error) {
	if err := a.repo.CreateArea(ctx, toPersistenceArea(area)); err != nil {
		return application.Area{}, err
	}
	return area, nil
}

func (a *areaRepositoryAdapter) GetArea(ctx context.Context, id string) (application.Area, error) {
	stored, err := a.repo.GetArea(ctx, id)
	if err != nil {
		return application.Area{}, err
	}
	return toApplicationArea(stored), nil
}

func (a *areaRepositoryAdapter) UpdateArea(ctx context.Context, area application.Area) (application.Area, error) {
	if err := a.repo.UpdateArea(ctx, toPersistenceArea(area)); err != nil {
		return application.Area{}, err
	}
	return area, nil
}

func (a *areaRepositoryAdapter) DeleteArea(ctx context.Context, id string) error {
	return a.repo.DeleteArea(ctx, id)
}

func (a *areaRepositoryAdapter) ListAreas(ctx context.Context) ([]application.Area, error) {
	stored, err := a.repo.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	areas := make([]application.Area, 0, len(stored))
	for _, area := range stored {
		areas = append(areas, toApplicationArea(area))
	}
	return areas, nil
}

func (a *areaRepositoryAdapter) AreaHasReservations(ctx context.Context, id string) (bool, error) {
	return a.repo.AreaHasReservations(ctx, id)
}

type reservationRepositoryAdapter struct {
	repo persistence.ReservationRepository
}

func newReservationRepositoryAdapter(repo persistence.ReservationRepository) *reservationRepositoryAdapter {
	return &reservationRepositoryAdapter{repo: repo}
}

func (a *reservationRepositoryAdapter) CreateReservation(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	if err := a.repo.CreateReservation(ctx, toPersistenceReservation(reservation)); err != nil {
		return application.Reservation{}, err
	}
	return reservation, nil
}

func (a *reservationRepositoryAdapter) GetReservation(ctx context.Context, id string) (application.Reservation, error) {
	stored, err := a.repo.GetReservation(ctx, id)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationRepositoryAdapter) ListReservations(ctx context.Context, query application.ReservationQuery) ([]application.Reservation, error) {
	filter := persistence.ReservationFilter{
		AreaID: query.AreaID,
		Date:   query.Date,
	}
	for _, status := range query.Statuses {
		filter.Statuses = append(filter.Statuses, string(status))
	}
	stored, err := a.repo.ListReservations(ctx, filter)
	if err != nil {
		return nil, err
	}
	reservations := make([]application.Reservation, 0, len(stored))
	for _, reservation := range stored {
		reservations = append(reservations, toApplicationReservation(reservation))
	}
	return reservations, nil
}

func (a *reservationRepositoryAdapter) UpdateReservationStatus(ctx context.Context, id string, status application.ReservationStatus, updatedAt time.Time) error {
	return a.repo.UpdateReservationStatus(ctx, id, string(status), updatedAt)
}

func (a *reservationRepositoryAdapter) DeleteReservation(ctx context.Context, id string) error {
	return a.repo.DeleteReservation(ctx, id)
}

type policyRepositoryAdapter struct {
	repo persistence.PolicyRepository
}

func newPolicyRepositoryAdapter(repo persistence.PolicyRepository) *policyRepositoryAdapter {
	return &policyRepositoryAdapter{repo: repo}
}

func (a *policyRepositoryAdapter) GetPolicy(ctx context.Context) (application.Policy, error) {
	stored, err := a.repo.GetPolicy(ctx)
	if err != nil {
		return application.Policy{}, err
	}
	return toApplicationPolicy(stored), nil
}

func (a *policyRepositoryAdapter) ReplacePolicy(ctx context.Context, policy application.Policy) error {
	return a.repo.ReplacePolicy(ctx, toPersistencePolicy(policy))
}

// sessionRepositoryAdapter stores only an HMAC digest of each session
// token, keyed by the configured session secret, so a copy of the
// database does not yield usable bearer tokens. Callers keep working
// with the raw token; digesting is confined to this adapter.
type sessionRepositoryAdapter struct {
	repo   persistence.SessionRepository
	secret []byte
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository, secret string) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo, secret: []byte(secret)}
}

func (a *sessionRepositoryAdapter) digest(token string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	persisted := toPersistenceSession(session)
	persisted.Token = a.digest(session.Token)
	stored, err := a.repo.CreateSession(ctx, persisted)
	if err != nil {
		return application.Session{}, translateAuthStorageError(err)
	}
	restored := toApplicationSession(stored)
	restored.Token = session.Token
	return restored, nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, a.digest(token))
	if err != nil {
		return application.Session{}, translateAuthStorageError(err)
	}
	restored := toApplicationSession(stored)
	restored.Token = token
	return restored, nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) error {
	if err := a.repo.RevokeSession(ctx, a.digest(token), revokedAt); err != nil {
		return translateAuthStorageError(err)
	}
	return nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	if err := a.repo.DeleteExpiredSessions(ctx, reference); err != nil {
		return translateAuthStorageError(err)
	}
	return nil
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, translateAuthStorageError(err)
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, translateAuthStorageError(err)
	}
	return toApplicationUser(stored), nil
}

// translateAuthStorageError maps persistence sentinels to the
// application sentinels the auth service branches on.
func translateAuthStorageError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return fmt.Errorf("%w: %w", application.ErrNotFound, err)
	case errors.Is(err, persistence.ErrDuplicate):
		return fmt.Errorf("%w: %w", application.ErrAlreadyExists, err)
	case errors.Is(err, persistence.ErrUnavailable):
		return fmt.Errorf("%w: %w", application.ErrStorageUnavailable, err)
	default:
		return err
	}
}

func toApplicationArea(area persistence.Area) application.Area {
	return application.Area{
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
	}
}

func toPersistenceArea(area application.Area) persistence.Area {
	return persistence.Area{
		ID:         area.ID,
		Name:       area.Name,
		Location:   area.Location,
		Category:   string(area.Category),
		Capacity:   area.Capacity,
		FullDay:    area.FullDay,
		MinMinutes: area.MinMinutes,
		MaxMinutes: area.MaxMinutes,
		CreatedAt:  area.CreatedAt,
		UpdatedAt:  area.UpdatedAt,
	}
}

func toApplicationReservation(reservation persistence.Reservation) application.Reservation {
	return application.Reservation{
		ID:              reservation.ID,
		AreaID:          reservation.AreaID,
		CreatorID:       reservation.CreatorID,
		CollaboratorIDs: cloneStrings(reservation.Collaborators),
		Date:            reservation.Date,
		StartTime:       cloneString(reservation.StartTime),
		EndTime:         cloneString(reservation.EndTime),
		Seats:           reservation.Seats,
		Status:          application.ReservationStatus(reservation.Status),
		Notes:           cloneString(reservation.Notes),
		CreatedAt:       reservation.CreatedAt,
		UpdatedAt:       reservation.UpdatedAt,
	}
}

func toPersistenceReservation(reservation application.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:            reservation.ID,
		AreaID:        reservation.AreaID,
		CreatorID:     reservation.CreatorID,
		Collaborators: cloneStrings(reservation.CollaboratorIDs),
		Date:          reservation.Date,
		StartTime:     cloneString(reservation.StartTime),
		EndTime:       cloneString(reservation.EndTime),
		Seats:         reservation.Seats,
		Status:        string(reservation.Status),
		Notes:         cloneString(reservation.Notes),
		CreatedAt:     reservation.CreatedAt,
		UpdatedAt:     reservation.UpdatedAt,
	}
}

func toApplicationPolicy(policy persistence.Policy) application.Policy {
	return application.Policy{
		Policy: booking.Policy{
			OfficeDays:               policy.OfficeDays,
			OfficeHours:              booking.HourRange{Start: policy.OfficeHoursStart, End: policy.OfficeHoursEnd},
			BusinessHours:            booking.HourRange{Start: policy.BusinessHoursStart, End: policy.BusinessHoursEnd},
			MaxReservationDaysAhead:  policy.MaxDaysAhead,
			AllowSameDayReservations: policy.AllowSameDay,
			RequireApproval:          policy.RequireApproval,
		},
		UpdatedAt: policy.UpdatedAt,
	}
}

func toPersistencePolicy(policy application.Policy) persistence.Policy {
	return persistence.Policy{
		OfficeDays:         policy.OfficeDays,
		OfficeHoursStart:   policy.OfficeHours.Start,
		OfficeHoursEnd:     policy.OfficeHours.End,
		BusinessHoursStart: policy.BusinessHours.Start,
		BusinessHoursEnd:   policy.BusinessHours.End,
		MaxDaysAhead:       policy.MaxReservationDaysAhead,
		AllowSameDay:       policy.AllowSameDayReservations,
		RequireApproval:    policy.RequireApproval,
		UpdatedAt:          policy.UpdatedAt,
	}
}

func toApplicationSession(session persistence.Session) application.Session {
	return application.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func toApplicationUser(user persistence.User) application.User {
	return application.User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	cloned := make([]string, len(values))
	copy(cloned, values)
	return cloned
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
