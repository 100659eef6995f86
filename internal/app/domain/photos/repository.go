package photos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/khldd/eternal-hope/internal/app/models"
)

const fkViolationCode = "23503"

type PgxIface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Create(ctx context.Context, placeID uuid.UUID, storagePath string, caption *string, uploadedBy models.Author) (*models.Photo, error)
}

type RepositoryImpl struct {
	db     PgxIface
	logger *zap.Logger
}

var _ Repository = (*RepositoryImpl)(nil)

func NewRepository(db PgxIface, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{db: db, logger: logger}
}

func (r *RepositoryImpl) Create(ctx context.Context, placeID uuid.UUID, storagePath string, caption *string, uploadedBy models.Author) (*models.Photo, error) {
	query := `
		INSERT INTO photos (place_id, storage_path, caption, uploaded_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, place_id, storage_path, caption, uploaded_by`

	var photo models.Photo
	err := r.db.QueryRow(ctx, query, placeID, storagePath, caption, uploadedBy).Scan(
		&photo.ID, &photo.CreatedAt, &photo.PlaceID, &photo.StoragePath, &photo.Caption, &photo.UploadedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolationCode {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}
	return &photo, nil
}
