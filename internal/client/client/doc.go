// Package client contains the transport layer of dnahub.
//
// # Overview
//
// The package provides:
//  1. API contracts split by concern: AuthAPI (register, login, refresh,
//     current user, profile update) and ContentAPI (events, blog, projects,
//     newsletter, contact). Client combines both with Ping and Close.
//  2. HTTPClient, the REST/JSON implementation. It attaches the bearer token
//     and an X-Request-ID to every call, rate-limits outgoing requests,
//     records Prometheus metrics, and runs the OnUnauthorized hooks after
//     any 401 response regardless of endpoint.
//  3. Local database bootstrap (InitDatabase, RunMigrations) backed by
//     SQLite and embedded goose migrations.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx responses are *APIError;
// errors.Is(err, ErrUnauthorized) matches a 401 and errors.Is(err,
// ErrUnavailable) matches 502/503/504. Detail extracts the server message
// for display.
//
// Every call is a single attempt. There is no retry.
package client
