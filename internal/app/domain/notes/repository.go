package notes

import (
	"context"
	"errors"
	"fmt"

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
	Create(ctx context.Context, req models.CreateNoteRequest) (*models.Note, error)
}

type RepositoryImpl struct {
	db     PgxIface
	logger *zap.Logger
}

var _ Repository = (*RepositoryImpl)(nil)

func NewRepository(db PgxIface, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{db: db, logger: logger}
}

// Create inserts a note for a place. A foreign key violation means the
// place does not exist and maps to models.ErrNotFound.
func (r *RepositoryImpl) Create(ctx context.Context, req models.CreateNoteRequest) (*models.Note, error) {
	query := `
		INSERT INTO notes (place_id, author, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at, place_id, author, content`

	var note models.Note
	err := r.db.QueryRow(ctx, query, req.PlaceID, req.Author, req.Content).Scan(
		&note.ID, &note.CreatedAt, &note.UpdatedAt, &note.PlaceID, &note.Author, &note.Content,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolationCode {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return &note, nil
}
