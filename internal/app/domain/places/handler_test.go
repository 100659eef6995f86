package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khldd/eternal-hope/internal/app/models"
	"github.com/khldd/eternal-hope/internal/app/state"
)

type fakeRepo struct {
	created    []models.CreatePlaceRequest
	listResult []models.Place
	updated    *models.Place
	updateErr  error
	deleteErr  error
	photoPaths []string
	deletedIDs []uuid.UUID
}

func (f *fakeRepo) Create(_ context.Context, req models.CreatePlaceRequest) (*models.Place, error) {
	f.created = append(f.created, req)
	return &models.Place{
		ID:      uuid.New(),
		Name:    req.Name,
		Status:  req.Status,
		AddedBy: req.AddedBy,
	}, nil
}

func (f *fakeRepo) List(context.Context) ([]models.Place, error) {
	return f.listResult, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, upd models.PlaceUpdate) (*models.Place, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updated != nil {
		return f.updated, nil
	}
	p := &models.Place{ID: id, Name: "Updated"}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	return p, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeRepo) PhotoPaths(context.Context, uuid.UUID) ([]string, error) {
	return f.photoPaths, nil
}

type fakeStore struct {
	mu        sync.Mutex
	removed   []string
	removeErr error
}

func (f *fakeStore) Upload(context.Context, string, string, io.Reader) error { return nil }

func (f *fakeStore) Remove(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, path)
	return f.removeErr
}

func (f *fakeStore) PublicURL(path string) string { return "https://cdn.test/" + path }

func newTestRouter(repo Repository, store *fakeStore) (*gin.Engine, *state.Store) {
	gin.SetMode(gin.TestMode)
	session := state.NewStore("", zap.NewNop())
	h := NewHandler(repo, store, session, zap.NewNop())
	r := gin.New()
	r.POST("/places", h.CreatePlace)
	r.GET("/places", h.ListPlaces)
	r.PATCH("/places/:id", h.UpdatePlace)
	r.DELETE("/places/:id", h.DeletePlace)
	return r, session
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePlaceDefaultsStatus(t *testing.T) {
	repo := &fakeRepo{}
	r, _ := newTestRouter(repo, &fakeStore{})

	w := doJSON(t, r, http.MethodPost, "/places", models.CreatePlaceRequest{
		Name:    "Jeita Grotto",
		AddedBy: models.AuthorAmal,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.created, 1)
	assert.Equal(t, models.StatusPlanned, repo.created[0].Status)
}

func TestCreatePlaceRejectsUnknownAuthor(t *testing.T) {
	repo := &fakeRepo{}
	r, _ := newTestRouter(repo, &fakeStore{})

	w := doJSON(t, r, http.MethodPost, "/places", map[string]string{
		"name":     "Jeita Grotto",
		"added_by": "someone-else",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.created)
}

func TestCreatePlaceRequiresName(t *testing.T) {
	r, _ := newTestRouter(&fakeRepo{}, &fakeStore{})

	w := doJSON(t, r, http.MethodPost, "/places", map[string]string{"added_by": "khaled"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPlacesAppliesFilters(t *testing.T) {
	repo := &fakeRepo{listResult: []models.Place{
		{ID: uuid.New(), Name: "Jeita Grotto", Status: models.StatusPlanned},
		{ID: uuid.New(), Name: "Byblos Old Souk", Status: models.StatusBeenThere},
	}}
	r, _ := newTestRouter(repo, &fakeStore{})

	w := doJSON(t, r, http.MethodGet, "/places?status=been_there", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got []models.Place
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Byblos Old Souk", got[0].Name)
}

func TestListPlacesRejectsBadStatus(t *testing.T) {
	r, _ := newTestRouter(&fakeRepo{}, &fakeStore{})

	w := doJSON(t, r, http.MethodGet, "/places?status=visited", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePlaceStatusOnly(t *testing.T) {
	// Marking a place as visited needs nothing beyond the status field.
	r, _ := newTestRouter(&fakeRepo{}, &fakeStore{})
	id := uuid.New()

	w := doJSON(t, r, http.MethodPatch, "/places/"+id.String(), map[string]string{"status": "been_there"})
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Place
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.StatusBeenThere, got.Status)
}

func TestUpdatePlaceNotFoundResponse(t *testing.T) {
	repo := &fakeRepo{updateErr: models.ErrNotFound}
	r, _ := newTestRouter(repo, &fakeStore{})

	w := doJSON(t, r, http.MethodPatch, "/places/"+uuid.NewString(), map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdatePlaceRejectsBadStatus(t *testing.T) {
	r, _ := newTestRouter(&fakeRepo{}, &fakeStore{})

	w := doJSON(t, r, http.MethodPatch, "/places/"+uuid.NewString(), map[string]string{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeletePlaceRemovesStoredPhotos(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{photoPaths: []string{id.String() + "/a.jpg", id.String() + "/b.jpg"}}
	store := &fakeStore{}
	r, _ := newTestRouter(repo, store)

	w := doJSON(t, r, http.MethodDelete, "/places/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{id}, repo.deletedIDs)
	assert.ElementsMatch(t, repo.photoPaths, store.removed)
}

func TestDeletePlaceSucceedsWhenStorageFails(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{photoPaths: []string{id.String() + "/a.jpg"}}
	store := &fakeStore{removeErr: errors.New("storage down")}
	r, _ := newTestRouter(repo, store)

	w := doJSON(t, r, http.MethodDelete, "/places/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{id}, repo.deletedIDs)
}

func TestWritesSyncSessionSnapshot(t *testing.T) {
	repo := &fakeRepo{}
	r, session := newTestRouter(repo, &fakeStore{})

	w := doJSON(t, r, http.MethodPost, "/places", models.CreatePlaceRequest{
		Name:    "Tyre Beach",
		AddedBy: models.AuthorKhaled,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Place
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, session.Places(), 1)
	assert.Equal(t, "Tyre Beach", session.Places()[0].Name)

	w = doJSON(t, r, http.MethodDelete, "/places/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, session.Places())
}

func TestListPlacesRefreshesSessionSnapshot(t *testing.T) {
	repo := &fakeRepo{listResult: []models.Place{
		{ID: uuid.New(), Name: "Jeita Grotto", Status: models.StatusPlanned},
	}}
	r, session := newTestRouter(repo, &fakeStore{})

	w := doJSON(t, r, http.MethodGet, "/places?status=been_there", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Snapshot keeps the unfiltered fetch even when the response is filtered.
	require.Len(t, session.Places(), 1)
	assert.Equal(t, "Jeita Grotto", session.Places()[0].Name)
}

func TestDeletePlaceNotFoundResponse(t *testing.T) {
	repo := &fakeRepo{deleteErr: models.ErrNotFound}
	r, _ := newTestRouter(repo, &fakeStore{})

	w := doJSON(t, r, http.MethodDelete, "/places/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
