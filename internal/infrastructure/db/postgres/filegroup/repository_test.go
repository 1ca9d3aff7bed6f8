package filegroup

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "filesharing-api/internal/domain/filegroup"
)

var fgColumns = []string{"id", "original_names", "storage_paths", "expires_at", "created_at"}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, domain.Repository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, NewRepository(mock)
}

func TestCreateFileGroup(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	names := []string{"a.txt", "b.txt"}
	paths := []string{"groups/p1", "groups/p2"}
	expiresAt := time.Now().Add(time.Hour).UTC()
	createdAt := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO file_groups`).
		WithArgs(names, paths, expiresAt).
		WillReturnRows(pgxmock.NewRows(fgColumns).AddRow(id, names, paths, expiresAt, createdAt))

	out, err := repo.CreateFileGroup(context.Background(), &domain.FileGroup{
		OriginalNames: names,
		StoragePaths:  paths,
		ExpiresAt:     expiresAt,
	})
	require.NoError(t, err)
	assert.Equal(t, id, out.ID)
	assert.Equal(t, names, out.OriginalNames)
	assert.Equal(t, paths, out.StoragePaths)
	assert.Equal(t, expiresAt, out.ExpiresAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchFileGroup(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	expiresAt := time.Now().Add(time.Hour).UTC()

	mock.ExpectQuery(`SELECT id, original_names, storage_paths, expires_at, created_at`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(fgColumns).
			AddRow(id, []string{"a.txt"}, []string{"groups/p1"}, expiresAt, time.Now().UTC()))

	out, err := repo.FetchFileGroup(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, out.ID)
	assert.Equal(t, []string{"a.txt"}, out.OriginalNames)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchFileGroup_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	mock.ExpectQuery(`SELECT id, original_names`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FetchFileGroup(context.Background(), id)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteFileGroup_Idempotent(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	// first delete removes the row, second hits nothing; neither is an error
	mock.ExpectExec(`DELETE FROM file_groups`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM file_groups`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.DeleteFileGroup(context.Background(), id))
	require.NoError(t, repo.DeleteFileGroup(context.Background(), id))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchExpiredBefore(t *testing.T) {
	mock, repo := newMockRepo(t)

	now := time.Now().UTC()
	idA, idB := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT id, original_names, storage_paths, expires_at, created_at`).
		WithArgs(now).
		WillReturnRows(pgxmock.NewRows(fgColumns).
			AddRow(idA, []string{"a.txt"}, []string{"pa"}, now.Add(-time.Minute), now.Add(-time.Hour)).
			AddRow(idB, []string{"b.txt"}, []string{"pb"}, now.Add(-time.Second), now.Add(-time.Hour)))

	out, err := repo.FetchExpiredBefore(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, idA, out[0].ID)
	assert.Equal(t, idB, out[1].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}
