package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialRepository_LoadEmpty(t *testing.T) {
	r := NewCredentialRepository(setupDB(t))

	token, user, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestCredentialRepository_SaveThenLoad(t *testing.T) {
	r := NewCredentialRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, "tok-1", []byte(`{"id":"u1"}`)))

	token, user, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.JSONEq(t, `{"id":"u1"}`, string(user))

	require.NoError(t, r.Save(ctx, "tok-2", []byte(`{"id":"u2"}`)))
	token, user, err = r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
	assert.JSONEq(t, `{"id":"u2"}`, string(user))
}

func TestCredentialRepository_ClearRemovesOnlySessionKeys(t *testing.T) {
	db := setupDB(t)
	r := NewCredentialRepository(db)
	kv := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "theme", []byte("dark")))
	require.NoError(t, r.Save(ctx, "tok", []byte(`{}`)))
	require.NoError(t, r.Clear(ctx))

	token, user, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)

	v, err := kv.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, []byte("dark"), v)

	// clearing twice is fine
	require.NoError(t, r.Clear(ctx))
}

func TestCredentialRepository_SaveRollsBackOnPartialFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO metadata").
		WithArgs("access_token", []byte("tok")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO metadata").
		WithArgs("user", []byte(`{}`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = NewCredentialRepository(db).Save(context.Background(), "tok", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save credentials")
	assert.Contains(t, err.Error(), "failed to set metadata[user]")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_ClearBeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin().WillReturnError(errors.New("locked"))

	err = NewCredentialRepository(db).Clear(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear credentials")
	require.NoError(t, mock.ExpectationsWereMet())
}
