package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
)

// ServiceFactory assists tests with constructing application services
// using deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// AreaServiceDeps captures dependencies for constructing an area service.
type AreaServiceDeps struct {
	Areas       application.AreaRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewAreaService builds an area service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewAreaService(deps AreaServiceDeps) *application.AreaService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAreaServiceWithLogger(
		deps.Areas,
		idGen,
		now,
		deps.Logger,
	)
}

// PolicyServiceDeps captures dependencies for constructing a policy service.
type PolicyServiceDeps struct {
	Policies application.PolicyRepository
	Now      func() time.Time
	Logger   *slog.Logger
}

// NewPolicyService builds a policy service using the supplied dependencies.
func (f *ServiceFactory) NewPolicyService(deps PolicyServiceDeps) *application.PolicyService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewPolicyServiceWithLogger(
		deps.Policies,
		now,
		deps.Logger,
	)
}

// ReservationServiceDeps captures dependencies for constructing a
// reservation service.
type ReservationServiceDeps struct {
	Reservations application.ReservationRepository
	Areas        application.AreaReader
	Policies     application.PolicyProvider
	Events       application.EventPublisher
	Calendar     *booking.Calendar
	RandomSuffix func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewReservationService builds a reservation service using the supplied
// dependencies.
func (f *ServiceFactory) NewReservationService(deps ReservationServiceDeps) *application.ReservationService {
	suffix := deps.RandomSuffix
	if suffix == nil {
		suffix = FixedSuffix("0000")
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewReservationServiceWithLogger(
		deps.Reservations,
		deps.Areas,
		deps.Policies,
		deps.Events,
		deps.Calendar,
		suffix,
		now,
		deps.Logger,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	Sessions       application.SessionRepository
	PasswordVerify application.PasswordVerifier
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	ttl := deps.SessionTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		deps.PasswordVerify,
		token,
		now,
		ttl,
		deps.Logger,
	)
}

// AuditServiceDeps captures dependencies for constructing an audit service.
type AuditServiceDeps struct {
	Reservations application.AuditRepository
	Areas        application.AuditAreaSource
	Events       application.EventPublisher
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewAuditService builds an audit service using the supplied dependencies.
func (f *ServiceFactory) NewAuditService(deps AuditServiceDeps) *application.AuditService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAuditServiceWithLogger(
		deps.Reservations,
		deps.Areas,
		deps.Events,
		now,
		deps.Logger,
	)
}
