// Package common defines shared constants and sentinel errors used across
// dnahub layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Session errors.
	ErrorNotAuthenticated = errors.New("not authenticated")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	// Client-side validation.
	ErrorValidation = errors.New("validation error")
)
