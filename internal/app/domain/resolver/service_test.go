package resolver

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khldd/eternal-hope/internal/app/models"
)

// fakePlacesAPI implements placesAPI with canned responses per method.
type fakePlacesAPI struct {
	detailsByID map[string]*models.ResolvedPlace
	searchHits  map[string]*models.ResolvedPlace
	geocodeHit  *models.ResolvedPlace

	detailCalls  []string
	searchCalls  []string
	geocodeCalls []Coordinates
}

func (f *fakePlacesAPI) GetPlaceByID(_ context.Context, placeID string) (*models.ResolvedPlace, error) {
	f.detailCalls = append(f.detailCalls, placeID)
	return f.detailsByID[placeID], nil
}

func (f *fakePlacesAPI) SearchPlace(_ context.Context, query string, _ *Coordinates) (*models.ResolvedPlace, error) {
	f.searchCalls = append(f.searchCalls, query)
	return f.searchHits[query], nil
}

func (f *fakePlacesAPI) ReverseGeocode(_ context.Context, coords Coordinates) (*models.ResolvedPlace, error) {
	f.geocodeCalls = append(f.geocodeCalls, coords)
	return f.geocodeHit, nil
}

// failingTransport makes every outbound request error, so shortened-URL
// expansion cannot leave the test process.
type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("no network in tests")
}

func newTestService(api placesAPI) *Service {
	svc := NewService(api, zap.NewNop())
	svc.httpClient = &http.Client{Transport: failingTransport{}}
	return svc
}

func TestResolve_PlaceIDWins(t *testing.T) {
	api := &fakePlacesAPI{
		detailsByID: map[string]*models.ResolvedPlace{
			"0xabc:0xdef": {PlaceID: "ChIJdetails", Name: "Jeita Grotto", Latitude: 33.9425, Longitude: 35.6381},
		},
	}
	svc := newTestService(api)

	place, err := svc.Resolve(context.Background(), "https://www.google.com/maps/place/Jeita+Grotto/data=!1s0xabc:0xdef")
	require.NoError(t, err)
	assert.Equal(t, "Jeita Grotto", place.Name)
	assert.Equal(t, []string{"0xabc:0xdef"}, api.detailCalls)
	assert.Empty(t, api.searchCalls)
}

func TestResolve_FallsBackToTextSearch(t *testing.T) {
	api := &fakePlacesAPI{
		searchHits: map[string]*models.ResolvedPlace{
			"Byblos Old Souk": {PlaceID: "ChIJbyblos", Name: "Byblos Old Souk", Latitude: 34.1205, Longitude: 35.6481},
		},
	}
	svc := newTestService(api)

	place, err := svc.Resolve(context.Background(), "https://www.google.com/maps/place/Byblos+Old+Souk")
	require.NoError(t, err)
	assert.Equal(t, "ChIJbyblos", place.PlaceID)
	assert.Equal(t, []string{"Byblos Old Souk"}, api.searchCalls)
}

func TestResolve_CoordinatesOnlyReverseGeocodes(t *testing.T) {
	api := &fakePlacesAPI{
		geocodeHit: &models.ResolvedPlace{Name: "Raouche", Address: "Raouche, Beirut, Lebanon", Latitude: 33.8869, Longitude: 35.4697},
	}
	svc := newTestService(api)

	place, err := svc.Resolve(context.Background(), "https://www.google.com/maps/@33.8869,35.4697,14z")
	require.NoError(t, err)
	assert.Equal(t, "Raouche", place.Name)
	require.Len(t, api.geocodeCalls, 1)
	assert.InDelta(t, 33.8869, api.geocodeCalls[0].Lat, 1e-9)
}

func TestResolve_NothingFound(t *testing.T) {
	svc := newTestService(&fakePlacesAPI{})

	_, err := svc.Resolve(context.Background(), "https://www.google.com/maps/place/Nowhere+Special")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResolve_SlicesNeverNil(t *testing.T) {
	api := &fakePlacesAPI{
		detailsByID: map[string]*models.ResolvedPlace{
			"0xaa:0xbb": {PlaceID: "ChIJbare", Name: "Bare Place", Latitude: 1, Longitude: 2},
		},
	}
	svc := newTestService(api)

	place, err := svc.Resolve(context.Background(), "https://maps.google.com/?data=!1s0xaa:0xbb")
	require.NoError(t, err)
	assert.NotNil(t, place.Reviews)
	assert.NotNil(t, place.PhotoURLs)
}

func TestResolve_CoordinateBackfill(t *testing.T) {
	// Details without geometry still produce coordinates from the URL.
	api := &fakePlacesAPI{
		detailsByID: map[string]*models.ResolvedPlace{
			"0xcc:0xdd": {PlaceID: "ChIJnogeo", Name: "No Geometry"},
		},
	}
	svc := newTestService(api)

	place, err := svc.Resolve(context.Background(), "https://www.google.com/maps/place/x/@33.5,35.5,12z/data=!1s0xcc:0xdd")
	require.NoError(t, err)
	assert.InDelta(t, 33.5, place.Latitude, 1e-9)
	assert.InDelta(t, 35.5, place.Longitude, 1e-9)
}

func TestResolve_ShortURLExpansionFailureContinues(t *testing.T) {
	svc := newTestService(&fakePlacesAPI{})

	// Expansion fails, the original URL parses to nothing, not found.
	_, err := svc.Resolve(context.Background(), "https://maps.app.goo.gl/abc123")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestResolve_CachesByURL(t *testing.T) {
	api := &fakePlacesAPI{
		detailsByID: map[string]*models.ResolvedPlace{
			"0xee:0xff": {PlaceID: "ChIJcached", Name: "Cached Place", Latitude: 3, Longitude: 4},
		},
	}
	svc := newTestService(api)
	url := "https://maps.google.com/?data=!1s0xee:0xff"

	first, err := svc.Resolve(context.Background(), url)
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), url)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, api.detailCalls, 1)
}

func TestResolve_NoProviderServesMockData(t *testing.T) {
	svc := newTestService(nil)

	place, err := svc.Resolve(context.Background(), "https://www.google.com/maps/place/Our+Spot/@33.9,35.5,15z")
	require.NoError(t, err)
	assert.Equal(t, "Our Spot", place.Name)
	assert.InDelta(t, 33.9, place.Latitude, 1e-9)
	assert.InDelta(t, 35.5, place.Longitude, 1e-9)
	assert.NotEmpty(t, place.PlaceID)
}
