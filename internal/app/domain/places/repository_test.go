package places

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khldd/eternal-hope/internal/app/models"
)

var placeColumnNames = []string{
	"id", "created_at", "updated_at", "google_place_id", "google_maps_url", "name", "address",
	"latitude", "longitude", "status", "rating", "price_level", "types", "phone", "website",
	"opening_hours", "raw_reviews", "ai_summary", "ai_couple_insights", "ai_vibe_tags",
	"ai_poetic_description", "ai_general_description", "ai_processed_at", "photo_urls", "added_by",
}

func placeRow(id uuid.UUID, name string) []any {
	now := time.Now()
	return []any{
		id, now, now, "ChIJtest", "https://maps.google.com/?cid=1", name, nil,
		33.8938, 35.5018, models.StatusPlanned, nil, nil, []string{"cafe"}, nil, nil,
		json.RawMessage(`[]`), json.RawMessage(`[]`), nil, nil, []string{},
		nil, nil, nil, []string{}, models.AuthorKhaled,
	}
}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *RepositoryImpl) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewRepository(mock, zap.NewNop())
}

func TestCreatePlace(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	insertArgs := make([]any, 22)
	for i := range insertArgs {
		insertArgs[i] = pgxmock.AnyArg()
	}
	mock.ExpectQuery("INSERT INTO places").
		WithArgs(insertArgs...).
		WillReturnRows(pgxmock.NewRows(placeColumnNames).AddRow(placeRow(id, "Jeita Grotto")...))

	place, err := repo.Create(context.Background(), models.CreatePlaceRequest{
		GooglePlaceID: "ChIJtest",
		GoogleMapsURL: "https://maps.google.com/?cid=1",
		Name:          "Jeita Grotto",
		Latitude:      33.8938,
		Longitude:     35.5018,
		Status:        models.StatusPlanned,
		AddedBy:       models.AuthorKhaled,
	})
	require.NoError(t, err)
	assert.Equal(t, id, place.ID)
	assert.Equal(t, "Jeita Grotto", place.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPlacesNestsNotesAndTags(t *testing.T) {
	mock, repo := newMockRepo(t)
	placeID := uuid.New()
	noteID := uuid.New()
	tagID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM places ORDER BY created_at DESC").
		WillReturnRows(pgxmock.NewRows(placeColumnNames).AddRow(placeRow(placeID, "Byblos Old Souk")...))
	mock.ExpectQuery("SELECT (.+) FROM notes").
		WithArgs([]uuid.UUID{placeID}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at", "place_id", "author", "content"}).
			AddRow(noteID, now, now, placeID, models.AuthorAmal, "Best man'ouche on the coast."))
	mock.ExpectQuery("SELECT (.+) FROM place_tags").
		WithArgs([]uuid.UUID{placeID}).
		WillReturnRows(pgxmock.NewRows([]string{"place_id", "id", "created_at", "name", "color"}).
			AddRow(placeID, tagID, now, "food", nil))

	places, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, places, 1)
	require.Len(t, places[0].Notes, 1)
	assert.Equal(t, models.AuthorAmal, places[0].Notes[0].Author)
	require.Len(t, places[0].Tags, 1)
	assert.Equal(t, "food", places[0].Tags[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPlacesEmpty(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM places ORDER BY created_at DESC").
		WillReturnRows(pgxmock.NewRows(placeColumnNames))

	places, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, places)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePlaceSetsOnlyProvidedFields(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()
	status := models.StatusBeenThere

	mock.ExpectQuery("UPDATE places SET updated_at = \\$1, status = \\$2 WHERE id = \\$3").
		WithArgs(pgxmock.AnyArg(), status, id.String()).
		WillReturnRows(pgxmock.NewRows(placeColumnNames).AddRow(placeRow(id, "Raouche Rocks")...))

	place, err := repo.Update(context.Background(), id, models.PlaceUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, id, place.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePlaceNotFound(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()
	name := "Renamed"

	mock.ExpectQuery("UPDATE places SET").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Update(context.Background(), id, models.PlaceUpdate{Name: &name})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeletePlace(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM places WHERE id = \\$1").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePlaceNotFound(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM places WHERE id = \\$1").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), id), models.ErrNotFound)
}

func TestPhotoPaths(t *testing.T) {
	mock, repo := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT storage_path FROM photos").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"storage_path"}).
			AddRow(id.String() + "/1714000000000-1234.jpg").
			AddRow(id.String() + "/1714000000001-5678.jpg"))

	paths, err := repo.PhotoPaths(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
