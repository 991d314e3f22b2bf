// Package http provides HTTP handlers and middleware for the workspace booking API.
//
// The router exposes the following endpoints:
//   - POST /login: issues a session token. Body: {"email","password"}. Response:
//     {"token","expires_at","principal":{"user_id","is_admin"}} with the token also
//     surfaced via the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted from the
//     Authorization header or session cookie. Returns 204 No Content and clears
//     the cookie.
//   - GET /areas, POST /areas, GET /areas/{id}, PUT /areas/{id}, DELETE /areas/{id}:
//     bookable area catalog endpoints exchanging the `areaDTO` payload defined in
//     area_handler.go. Listing and reading are available to any authenticated
//     principal while mutations require admin privileges.
//   - GET /policy, PUT /policy: office policy endpoints exchanging the `policyDTO`
//     payload defined in policy_handler.go. Replacement requires admin privileges.
//   - GET /reservations, POST /reservations, POST /reservations/{id}/confirm,
//     DELETE /reservations/{id}: reservation endpoints exchanging the
//     `reservationDTO` payload defined in reservation_handler.go. Rejected
//     requests carry a machine-readable `reason` code alongside the localized
//     message.
//   - POST /audit: runs the conflict audit and returns the resulting report.
//     Admin only.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
