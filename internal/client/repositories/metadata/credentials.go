package metadata

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/dnahub/internal/common"
	"github.com/dmitrijs2005/dnahub/internal/dbx"
)

// CredentialRepository stores the session pair under common.AccessTokenKey
// and common.UserKey of a key/value Repository, using one transaction per
// write. Other keys are left alone.
type CredentialRepository struct {
	db   *sql.DB
	repo func(dbx.DBTX) Repository
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{
		db:   db,
		repo: func(tx dbx.DBTX) Repository { return NewSQLiteRepository(tx) },
	}
}

// Load returns the stored token and raw user record. Missing keys come back
// as "" and nil respectively.
func (r *CredentialRepository) Load(ctx context.Context) (string, []byte, error) {
	repo := r.repo(r.db)

	token, err := repo.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return "", nil, err
	}
	user, err := repo.Get(ctx, common.UserKey)
	if err != nil {
		return "", nil, err
	}
	return string(token), user, nil
}

func (r *CredentialRepository) Save(ctx context.Context, token string, user []byte) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := r.repo(tx)
		if err := repo.Set(ctx, common.AccessTokenKey, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, common.UserKey, user)
	})
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (r *CredentialRepository) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := r.repo(tx)
		if err := repo.Delete(ctx, common.AccessTokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.UserKey)
	})
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
