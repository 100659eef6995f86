package places

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/khldd/eternal-hope/internal/app/models"
	"github.com/khldd/eternal-hope/internal/observability/metrics"
)

func observeQuery(ctx context.Context, query string, start time.Time) {
	m := metrics.Get()
	if m == nil {
		return
	}
	m.DBQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("query", query)))
}

// PgxIface is the slice of pgxpool.Pool the repository uses; pgxmock
// satisfies it in tests.
type PgxIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	Create(ctx context.Context, req models.CreatePlaceRequest) (*models.Place, error)
	List(ctx context.Context) ([]models.Place, error)
	Update(ctx context.Context, id uuid.UUID, upd models.PlaceUpdate) (*models.Place, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PhotoPaths(ctx context.Context, placeID uuid.UUID) ([]string, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	db     PgxIface
}

func NewRepository(db PgxIface, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

const placeColumns = `id, created_at, updated_at, google_place_id, google_maps_url, name, address,
	latitude, longitude, status, rating, price_level, types, phone, website,
	opening_hours, raw_reviews, ai_summary, ai_couple_insights, ai_vibe_tags,
	ai_poetic_description, ai_general_description, ai_processed_at, photo_urls, added_by`

func scanPlace(row pgx.Row) (*models.Place, error) {
	var p models.Place
	err := row.Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.GooglePlaceID, &p.GoogleMapsURL, &p.Name, &p.Address,
		&p.Latitude, &p.Longitude, &p.Status, &p.Rating, &p.PriceLevel, &p.Types, &p.Phone, &p.Website,
		&p.OpeningHours, &p.RawReviews, &p.AISummary, &p.AICoupleInsights, &p.AIVibeTags,
		&p.AIPoeticDescription, &p.AIGeneralDescription, &p.AIProcessedAt, &p.PhotoURLs, &p.AddedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, req models.CreatePlaceRequest) (*models.Place, error) {
	query := fmt.Sprintf(`
        INSERT INTO places (
            google_place_id, google_maps_url, name, address, latitude, longitude, status,
            rating, price_level, types, phone, website, opening_hours, raw_reviews,
            ai_summary, ai_couple_insights, ai_vibe_tags, ai_poetic_description,
            ai_general_description, ai_processed_at, photo_urls, added_by
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
            $15, $16, $17, $18, $19, $20, $21, $22
        ) RETURNING %s`, placeColumns)

	defer observeQuery(ctx, "place_insert", time.Now())
	place, err := scanPlace(r.db.QueryRow(ctx, query,
		req.GooglePlaceID, req.GoogleMapsURL, req.Name, req.Address, req.Latitude, req.Longitude, req.Status,
		req.Rating, req.PriceLevel, req.Types, req.Phone, req.Website, req.OpeningHours, req.RawReviews,
		req.AISummary, req.AICoupleInsights, req.AIVibeTags, req.AIPoeticDescription,
		req.AIGeneralDescription, req.AIProcessedAt, req.PhotoURLs, req.AddedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert place: %w", err)
	}

	r.logger.Info("Place saved successfully",
		zap.String("name", place.Name),
		zap.String("id", place.ID.String()))
	return place, nil
}

// List returns all places ordered by creation time descending, with nested
// notes and tags.
func (r *RepositoryImpl) List(ctx context.Context) ([]models.Place, error) {
	query := fmt.Sprintf(`SELECT %s FROM places ORDER BY created_at DESC`, placeColumns)
	defer observeQuery(ctx, "place_list", time.Now())
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	places := make([]models.Place, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place row: %w", err)
		}
		place.Notes = []models.Note{}
		place.Tags = []models.Tag{}
		index[place.ID] = len(places)
		places = append(places, *place)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating place rows: %w", err)
	}

	if len(places) == 0 {
		return places, nil
	}

	ids := make([]uuid.UUID, 0, len(places))
	for _, p := range places {
		ids = append(ids, p.ID)
	}

	if err := r.attachNotes(ctx, ids, places, index); err != nil {
		return nil, err
	}
	if err := r.attachTags(ctx, ids, places, index); err != nil {
		return nil, err
	}

	return places, nil
}

func (r *RepositoryImpl) attachNotes(ctx context.Context, ids []uuid.UUID, places []models.Place, index map[uuid.UUID]int) error {
	query := `
        SELECT id, created_at, updated_at, place_id, author, content
        FROM notes
        WHERE place_id = ANY($1)
        ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt, &n.PlaceID, &n.Author, &n.Content); err != nil {
			return fmt.Errorf("failed to scan note row: %w", err)
		}
		if i, ok := index[n.PlaceID]; ok {
			places[i].Notes = append(places[i].Notes, n)
		}
	}
	return rows.Err()
}

func (r *RepositoryImpl) attachTags(ctx context.Context, ids []uuid.UUID, places []models.Place, index map[uuid.UUID]int) error {
	query := `
        SELECT pt.place_id, t.id, t.created_at, t.name, t.color
        FROM place_tags pt
        JOIN tags t ON t.id = pt.tag_id
        WHERE pt.place_id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to query place tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var placeID uuid.UUID
		var t models.Tag
		if err := rows.Scan(&placeID, &t.ID, &t.CreatedAt, &t.Name, &t.Color); err != nil {
			return fmt.Errorf("failed to scan tag row: %w", err)
		}
		if i, ok := index[placeID]; ok {
			places[i].Tags = append(places[i].Tags, t)
		}
	}
	return rows.Err()
}

// Update applies a partial update; nil fields are left untouched.
func (r *RepositoryImpl) Update(ctx context.Context, id uuid.UUID, upd models.PlaceUpdate) (*models.Place, error) {
	builder := sq.Update("places").
		PlaceholderFormat(sq.Dollar).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + placeColumns)

	if upd.Name != nil {
		builder = builder.Set("name", *upd.Name)
	}
	if upd.Address != nil {
		builder = builder.Set("address", *upd.Address)
	}
	if upd.Status != nil {
		builder = builder.Set("status", *upd.Status)
	}
	if upd.Rating != nil {
		builder = builder.Set("rating", *upd.Rating)
	}
	if upd.PriceLevel != nil {
		builder = builder.Set("price_level", *upd.PriceLevel)
	}
	if upd.Phone != nil {
		builder = builder.Set("phone", *upd.Phone)
	}
	if upd.Website != nil {
		builder = builder.Set("website", *upd.Website)
	}
	if upd.OpeningHours != nil {
		builder = builder.Set("opening_hours", *upd.OpeningHours)
	}
	if upd.RawReviews != nil {
		builder = builder.Set("raw_reviews", *upd.RawReviews)
	}
	if upd.AISummary != nil {
		builder = builder.Set("ai_summary", *upd.AISummary)
	}
	if upd.AICoupleInsights != nil {
		builder = builder.Set("ai_couple_insights", *upd.AICoupleInsights)
	}
	if upd.AIVibeTags != nil {
		builder = builder.Set("ai_vibe_tags", *upd.AIVibeTags)
	}
	if upd.AIPoeticDescription != nil {
		builder = builder.Set("ai_poetic_description", *upd.AIPoeticDescription)
	}
	if upd.AIGeneralDescription != nil {
		builder = builder.Set("ai_general_description", *upd.AIGeneralDescription)
	}
	if upd.AIProcessedAt != nil {
		builder = builder.Set("ai_processed_at", *upd.AIProcessedAt)
	}
	if upd.PhotoURLs != nil {
		builder = builder.Set("photo_urls", *upd.PhotoURLs)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	place, err := scanPlace(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update place: %w", err)
	}

	return place, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	r.logger.Info("Place deleted", zap.String("id", id.String()))
	return nil
}

// PhotoPaths returns the storage paths of all photos attached to a place,
// for best-effort object cleanup before deletion.
func (r *RepositoryImpl) PhotoPaths(ctx context.Context, placeID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT storage_path FROM photos WHERE place_id = $1`, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query photo paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan photo path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
