// Package common contains shared constants and small helpers used across
// dnahub components.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the access token in the Authorization header.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName carries a per-request correlation id.
	RequestIDHeaderName = "X-Request-ID"
)

// Metadata keys used for the persisted session.
const (
	AccessTokenKey = "access_token"
	UserKey        = "user"
)
