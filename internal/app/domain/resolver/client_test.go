package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeMapsServer serves canned Places and Geocoding API responses.
func fakeMapsServer(t *testing.T, handlers map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected provider call: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func detailsPayload() map[string]any {
	return map[string]any{
		"status": "OK",
		"result": map[string]any{
			"place_id":          "ChIJjeita",
			"name":              "Jeita Grotto",
			"formatted_address": "Jeita, Lebanon",
			"geometry":          map[string]any{"location": map[string]any{"lat": 33.9425, "lng": 35.6381}},
			"rating":            4.7,
			"types":             []string{"natural_feature"},
			"opening_hours":     map[string]any{"weekday_text": []string{"Monday: 9:00 AM – 6:00 PM"}},
			"reviews": []map[string]any{
				{"text": "Breathtaking.", "rating": 5, "author_name": "Traveler"},
			},
			"photos": []map[string]any{
				{"photo_reference": "ref1"}, {"photo_reference": "ref2"}, {"photo_reference": "ref3"},
				{"photo_reference": "ref4"}, {"photo_reference": "ref5"}, {"photo_reference": "ref6"},
				{"photo_reference": "ref7"}, {"photo_reference": "ref8"},
			},
			"editorial_summary": map[string]any{"overview": "A limestone cave system."},
		},
	}
}

func TestGetPlaceByID(t *testing.T) {
	srv := fakeMapsServer(t, map[string]any{
		"/maps/api/place/details/json": detailsPayload(),
	})
	defer srv.Close()
	client := NewPlacesClientWithBaseURL("test-key", srv.URL, zap.NewNop())

	place, err := client.GetPlaceByID(context.Background(), "ChIJjeita")
	require.NoError(t, err)
	require.NotNil(t, place)

	assert.Equal(t, "Jeita Grotto", place.Name)
	assert.InDelta(t, 33.9425, place.Latitude, 1e-9)
	require.NotNil(t, place.Rating)
	assert.InDelta(t, 4.7, *place.Rating, 1e-9)
	assert.Equal(t, []string{"Monday: 9:00 AM – 6:00 PM"}, place.OpeningHours)
	require.NotNil(t, place.EditorialSummary)
	assert.Equal(t, "A limestone cave system.", *place.EditorialSummary)

	// Photo URLs are capped and carry the key and width.
	require.Len(t, place.PhotoURLs, 6)
	assert.Contains(t, place.PhotoURLs[0], "maxwidth=800")
	assert.Contains(t, place.PhotoURLs[0], "photo_reference=ref1")
}

func TestGetPlaceByIDNotFound(t *testing.T) {
	srv := fakeMapsServer(t, map[string]any{
		"/maps/api/place/details/json": map[string]any{"status": "NOT_FOUND"},
	})
	defer srv.Close()
	client := NewPlacesClientWithBaseURL("test-key", srv.URL, zap.NewNop())

	place, err := client.GetPlaceByID(context.Background(), "ChIJmissing")
	require.NoError(t, err)
	assert.Nil(t, place)
}

func TestSearchPlaceFetchesTopResultDetails(t *testing.T) {
	srv := fakeMapsServer(t, map[string]any{
		"/maps/api/place/textsearch/json": map[string]any{
			"status": "OK",
			"results": []map[string]any{
				{"place_id": "ChIJjeita"},
				{"place_id": "ChIJsecond"},
			},
		},
		"/maps/api/place/details/json": detailsPayload(),
	})
	defer srv.Close()
	client := NewPlacesClientWithBaseURL("test-key", srv.URL, zap.NewNop())

	place, err := client.SearchPlace(context.Background(), "Jeita Grotto", &Coordinates{Lat: 33.94, Lng: 35.63})
	require.NoError(t, err)
	require.NotNil(t, place)
	assert.Equal(t, "ChIJjeita", place.PlaceID)
}

func TestSearchPlaceZeroResults(t *testing.T) {
	srv := fakeMapsServer(t, map[string]any{
		"/maps/api/place/textsearch/json": map[string]any{"status": "ZERO_RESULTS"},
	})
	defer srv.Close()
	client := NewPlacesClientWithBaseURL("test-key", srv.URL, zap.NewNop())

	place, err := client.SearchPlace(context.Background(), "nowhere", nil)
	require.NoError(t, err)
	assert.Nil(t, place)
}

func TestReverseGeocode(t *testing.T) {
	srv := fakeMapsServer(t, map[string]any{
		"/maps/api/geocode/json": map[string]any{
			"status": "OK",
			"results": []map[string]any{
				{
					"place_id":          "ChIJaddr",
					"formatted_address": "Corniche El Manara, Beirut, Lebanon",
					"types":             []string{"route"},
				},
			},
		},
	})
	defer srv.Close()
	client := NewPlacesClientWithBaseURL("test-key", srv.URL, zap.NewNop())

	place, err := client.ReverseGeocode(context.Background(), Coordinates{Lat: 33.8869, Lng: 35.4697})
	require.NoError(t, err)
	require.NotNil(t, place)

	// Name is the leading segment of the formatted address.
	assert.Equal(t, "Corniche El Manara", place.Name)
	assert.Equal(t, "Corniche El Manara, Beirut, Lebanon", place.Address)
	assert.InDelta(t, 33.8869, place.Latitude, 1e-9)
	assert.NotNil(t, place.Reviews)
}

func TestClientPropagatesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	client := NewPlacesClientWithBaseURL("test-key", srv.URL, zap.NewNop())

	_, err := client.GetPlaceByID(context.Background(), "ChIJany")
	assert.Error(t, err)
}
