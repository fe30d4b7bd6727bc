package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tomeriko7/finalProject-sub000/pkg/errors"
)

func newFavoriteTestFixture(t *testing.T) (*FavoriteRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewFavoriteRepository(mock)
	return repo, mock
}

func TestFavoriteRepository_Add_Success(t *testing.T) {
	repo, mock := newFavoriteTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO favorites").
		WithArgs("user-1", "prod-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Add(context.Background(), "user-1", "prod-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Add_AlreadyFavorited(t *testing.T) {
	repo, mock := newFavoriteTestFixture(t)
	defer mock.Close()

	// ON CONFLICT DO NOTHING reports zero affected rows for duplicates.
	mock.ExpectExec("INSERT INTO favorites").
		WithArgs("user-1", "prod-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := repo.Add(context.Background(), "user-1", "prod-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists), "expected ErrAlreadyExists, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Add_ExecError(t *testing.T) {
	repo, mock := newFavoriteTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO favorites").
		WithArgs("user-1", "prod-1").
		WillReturnError(errors.New("connection refused"))

	err := repo.Add(context.Background(), "user-1", "prod-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add favorite")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Remove_Success(t *testing.T) {
	repo, mock := newFavoriteTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM favorites WHERE user_id =").
		WithArgs("user-1", "prod-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Remove(context.Background(), "user-1", "prod-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Remove_NotFavorited(t *testing.T) {
	repo, mock := newFavoriteTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM favorites WHERE user_id =").
		WithArgs("user-1", "prod-missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Remove(context.Background(), "user-1", "prod-missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_List_Success(t *testing.T) {
	repo, mock := newFavoriteTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)

	countRows := pgxmock.NewRows([]string{"count"}).AddRow(2)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM favorites WHERE user_id =").
		WithArgs("user-1").
		WillReturnRows(countRows)

	selectRows := pgxmock.NewRows([]string{"user_id", "product_id", "added_at"}).
		AddRow("user-1", "prod-1", now).
		AddRow("user-1", "prod-2", now.Add(-time.Hour))
	mock.ExpectQuery("SELECT user_id, product_id, added_at").
		WithArgs("user-1", 20, 0).
		WillReturnRows(selectRows)

	entries, total, err := repo.List(context.Background(), "user-1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, entries, 2)
	assert.Equal(t, "prod-1", entries[0].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_List_Empty(t *testing.T) {
	repo, mock := newFavoriteTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM favorites WHERE user_id =").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT user_id, product_id, added_at").
		WithArgs("user-1", 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "product_id", "added_at"}))

	entries, total, err := repo.List(context.Background(), "user-1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Exists(t *testing.T) {
	repo, mock := newFavoriteTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("user-1", "prod-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), "user-1", "prod-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Clear(t *testing.T) {
	repo, mock := newFavoriteTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM favorites WHERE user_id =").
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	err := repo.Clear(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
