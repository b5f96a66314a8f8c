// Package common contains shared constants and sentinel errors used across
// the incident-reporting server and its admin client.
package common

const (
	// AuthorizationHeader carries the bearer token on protected requests.
	AuthorizationHeader = "Authorization"
	// BearerScheme is the token type announced to clients and expected in
	// the Authorization header.
	BearerScheme = "Bearer"
	// RequestIDHeader echoes the per-request identifier back to the caller.
	RequestIDHeader = "X-Request-ID"
	// IfMatchHeader carries the version a client expects to overwrite.
	IfMatchHeader = "If-Match"
)
