// Package api is the REST command client for the external CRUD/auth service
// behind the dashboard.
//
// All requests share a fixed 10-second deadline and attach the session token
// as "Authorization: Token <value>" when one is present. Failures resolve to
// a normalized *Error (network, API, or validation) and are never surfaced as
// panics; 401/403 responses are distinguishable via IsUnauthorized so callers
// can redirect to the login boundary instead of showing an inline error.
package api
