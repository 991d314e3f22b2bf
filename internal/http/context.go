package http

import (
	"context"

	"github.com/example/workspace-booking/internal/application"
)

type contextKey string

const (
	principalContextKey     contextKey = "principal"
	areaIDContextKey        contextKey = "area_id"
	reservationIDContextKey contextKey = "reservation_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithAreaID injects the area identifier resolved from the request path.
func ContextWithAreaID(ctx context.Context, areaID string) context.Context {
	return context.WithValue(ctx, areaIDContextKey, areaID)
}

// AreaIDFromContext extracts an area identifier previously associated with the context.
func AreaIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(areaIDContextKey).(string)
	return id, ok
}

// ContextWithReservationID injects the reservation identifier resolved from the request path.
func ContextWithReservationID(ctx context.Context, reservationID string) context.Context {
	return context.WithValue(ctx, reservationIDContextKey, reservationID)
}

// ReservationIDFromContext extracts a reservation identifier previously associated with the context.
func ReservationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(reservationIDContextKey).(string)
	return id, ok
}
