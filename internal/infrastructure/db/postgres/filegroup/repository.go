package filegroup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domain "filesharing-api/internal/domain/filegroup"
)

// DB is the slice of pgxpool.Pool the repository needs; pgxmock satisfies it
// too, which is how the repository is tested without a live database.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	db DB
}

func NewRepository(db DB) domain.Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateFileGroup(ctx context.Context, req *domain.FileGroup) (*domain.FileGroup, error) {
	fg := new(FileGroup)

	err := r.db.QueryRow(
		ctx,
		InsertFileGroup,
		req.OriginalNames, req.StoragePaths, req.ExpiresAt,
	).Scan(
		&fg.ID,

		&fg.OriginalNames,
		&fg.StoragePaths,

		&fg.ExpiresAt,
		&fg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert file group: %w", err)
	}

	return fromDBModel(fg), nil
}

func (r *Repository) FetchFileGroup(ctx context.Context, id uuid.UUID) (*domain.FileGroup, error) {
	fg := new(FileGroup)

	err := r.db.QueryRow(ctx, SelectFileGroup, id).Scan(
		&fg.ID,

		&fg.OriginalNames,
		&fg.StoragePaths,

		&fg.ExpiresAt,
		&fg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return fromDBModel(fg), nil
}

func (r *Repository) DeleteFileGroup(ctx context.Context, id uuid.UUID) error {
	// no row affected means already reaped, which is fine
	_, err := r.db.Exec(ctx, DeleteFileGroupByID, id)
	return err
}

func (r *Repository) FetchExpiredBefore(ctx context.Context, ts time.Time) (domain.FileGroups, error) {
	rows, err := r.db.Query(ctx, SelectExpiredFileGroups, ts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fgs FileGroups
	for rows.Next() {
		fg := new(FileGroup)

		if err = rows.Scan(
			&fg.ID,

			&fg.OriginalNames,
			&fg.StoragePaths,

			&fg.ExpiresAt,
			&fg.CreatedAt,
		); err != nil {
			return nil, err
		}

		fgs = append(fgs, fg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&fgs), nil
}
