// Package metadata persists small key/value records in the local client
// database. The session credentials (access token and cached profile) live
// here.
package metadata

import (
	"context"
)

// Repository is a plain key/value store. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CredentialStore keeps the access token and the serialized user profile.
// The two values are always written and cleared together.
type CredentialStore interface {
	Load(ctx context.Context) (token string, user []byte, err error)
	Save(ctx context.Context, token string, user []byte) error
	Clear(ctx context.Context) error
}
