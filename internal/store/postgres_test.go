package store_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoreapi/internal/store"
	"scoreapi/pkg/platform/sentinel"
)

func newPostgresKV(t *testing.T) (*store.PostgresKV, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	kv, err := store.NewPostgresKV(db)
	require.NoError(t, err)
	return kv, mock
}

func TestPostgresKVGet(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta(`SELECT value FROM kv_store WHERE key = $1`)

	t.Run("returns value", func(t *testing.T) {
		kv, mock := newPostgresKV(t)
		mock.ExpectQuery(query).WithArgs("i:1").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`["books"]`))

		v, err := kv.Get(ctx, "i:1")
		require.NoError(t, err)
		assert.Equal(t, `["books"]`, v)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows is not found", func(t *testing.T) {
		kv, mock := newPostgresKV(t)
		mock.ExpectQuery(query).WithArgs("i:2").
			WillReturnRows(sqlmock.NewRows([]string{"value"}))

		_, err := kv.Get(ctx, "i:2")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		kv, mock := newPostgresKV(t)
		mock.ExpectQuery(query).WithArgs("i:3").WillReturnError(errors.New("conn refused"))

		_, err := kv.Get(ctx, "i:3")
		assert.ErrorContains(t, err, "select kv")
		assert.NotErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestPostgresKVSet(t *testing.T) {
	kv, mock := newPostgresKV(t)
	mock.ExpectExec(`INSERT INTO kv_store`).
		WithArgs("i:1", `["cars"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, kv.Set(context.Background(), "i:1", `["cars"]`))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKVEnsureSchema(t *testing.T) {
	kv, mock := newPostgresKV(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS kv_store`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, kv.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresKVRequiresDB(t *testing.T) {
	_, err := store.NewPostgresKV(nil)
	assert.Error(t, err)
}
