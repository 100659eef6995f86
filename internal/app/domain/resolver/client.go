package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/khldd/eternal-hope/internal/app/models"
	"github.com/khldd/eternal-hope/internal/observability/metrics"
)

const (
	defaultMapsBaseURL = "https://maps.googleapis.com"
	searchRadiusMeters = 1000
	maxPhotoURLs       = 6
	photoMaxWidth      = 800
)

// PlacesClient calls the Google Places and Geocoding REST APIs.
type PlacesClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewPlacesClient(apiKey string, logger *zap.Logger) *PlacesClient {
	return &PlacesClient{
		baseURL:    defaultMapsBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// NewPlacesClientWithBaseURL is used by tests to point the client at a fake
// provider.
func NewPlacesClientWithBaseURL(apiKey, baseURL string, logger *zap.Logger) *PlacesClient {
	c := NewPlacesClient(apiKey, logger)
	c.baseURL = baseURL
	return c
}

type placesDetailsResponse struct {
	Status string `json:"status"`
	Result *struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		Rating               *float64 `json:"rating"`
		PriceLevel           *int     `json:"price_level"`
		Types                []string `json:"types"`
		FormattedPhoneNumber *string  `json:"formatted_phone_number"`
		Website              *string  `json:"website"`
		OpeningHours         *struct {
			WeekdayText []string `json:"weekday_text"`
		} `json:"opening_hours"`
		Reviews []struct {
			Text       string  `json:"text"`
			Rating     float64 `json:"rating"`
			AuthorName string  `json:"author_name"`
		} `json:"reviews"`
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
		EditorialSummary *struct {
			Overview string `json:"overview"`
		} `json:"editorial_summary"`
	} `json:"result"`
}

type textSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID string `json:"place_id"`
	} `json:"results"`
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID          string   `json:"place_id"`
		FormattedAddress string   `json:"formatted_address"`
		Types            []string `json:"types"`
	} `json:"results"`
}

// GetPlaceByID fetches full place details. Returns (nil, nil) when the
// provider reports the place as not found.
func (c *PlacesClient) GetPlaceByID(ctx context.Context, placeID string) (*models.ResolvedPlace, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "place_id,name,formatted_address,geometry,rating,price_level,types,formatted_phone_number,website,opening_hours,reviews,photos,editorial_summary")
	q.Set("key", c.apiKey)

	var data placesDetailsResponse
	if err := c.getJSON(ctx, "/maps/api/place/details/json", q, "details", &data); err != nil {
		return nil, err
	}

	if data.Status != "OK" || data.Result == nil {
		c.logger.Debug("Place details lookup returned no result",
			zap.String("place_id", placeID),
			zap.String("status", data.Status))
		return nil, nil
	}

	place := data.Result

	var photoURLs []string
	for i, photo := range place.Photos {
		if i >= maxPhotoURLs {
			break
		}
		if photo.PhotoReference != "" {
			photoURLs = append(photoURLs,
				fmt.Sprintf("%s/maps/api/place/photo?maxwidth=%d&photo_reference=%s&key=%s",
					c.baseURL, photoMaxWidth, photo.PhotoReference, c.apiKey))
		}
	}

	reviews := make([]models.Review, 0, len(place.Reviews))
	for _, r := range place.Reviews {
		reviews = append(reviews, models.Review{
			Text:       r.Text,
			Rating:     r.Rating,
			AuthorName: r.AuthorName,
		})
	}

	resolved := &models.ResolvedPlace{
		PlaceID:    place.PlaceID,
		Name:       place.Name,
		Address:    place.FormattedAddress,
		Latitude:   place.Geometry.Location.Lat,
		Longitude:  place.Geometry.Location.Lng,
		Rating:     place.Rating,
		PriceLevel: place.PriceLevel,
		Types:      place.Types,
		Phone:      place.FormattedPhoneNumber,
		Website:    place.Website,
		Reviews:    reviews,
		PhotoURLs:  photoURLs,
	}
	if resolved.Types == nil {
		resolved.Types = []string{}
	}
	if resolved.PhotoURLs == nil {
		resolved.PhotoURLs = []string{}
	}
	if place.OpeningHours != nil {
		resolved.OpeningHours = place.OpeningHours.WeekdayText
	}
	if place.EditorialSummary != nil && place.EditorialSummary.Overview != "" {
		summary := place.EditorialSummary.Overview
		resolved.EditorialSummary = &summary
	}

	return resolved, nil
}

// SearchPlace runs a text search, biased toward coords when present, and
// fetches full details for the top result.
func (c *PlacesClient) SearchPlace(ctx context.Context, query string, coords *Coordinates) (*models.ResolvedPlace, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("key", c.apiKey)
	if coords != nil {
		q.Set("location", fmt.Sprintf("%f,%f", coords.Lat, coords.Lng))
		q.Set("radius", fmt.Sprintf("%d", searchRadiusMeters))
	}

	var data textSearchResponse
	if err := c.getJSON(ctx, "/maps/api/place/textsearch/json", q, "textsearch", &data); err != nil {
		return nil, err
	}

	if data.Status != "OK" || len(data.Results) == 0 {
		return nil, nil
	}

	return c.GetPlaceByID(ctx, data.Results[0].PlaceID)
}

// ReverseGeocode turns coordinates into an address-only record with no
// identifier-keyed metadata.
func (c *PlacesClient) ReverseGeocode(ctx context.Context, coords Coordinates) (*models.ResolvedPlace, error) {
	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%f,%f", coords.Lat, coords.Lng))
	q.Set("key", c.apiKey)

	var data geocodeResponse
	if err := c.getJSON(ctx, "/maps/api/geocode/json", q, "geocode", &data); err != nil {
		return nil, err
	}

	if data.Status != "OK" || len(data.Results) == 0 {
		return nil, nil
	}

	result := data.Results[0]
	name := result.FormattedAddress
	if idx := strings.Index(name, ","); idx >= 0 {
		name = name[:idx]
	}

	types := result.Types
	if types == nil {
		types = []string{}
	}

	return &models.ResolvedPlace{
		PlaceID:   result.PlaceID,
		Name:      name,
		Address:   result.FormattedAddress,
		Latitude:  coords.Lat,
		Longitude: coords.Lng,
		Types:     types,
		Reviews:   []models.Review{},
		PhotoURLs: []string{},
	}, nil
}

func (c *PlacesClient) getJSON(ctx context.Context, path string, query url.Values, operation string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to build provider request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.observe(ctx, operation, time.Since(start), err)
	if err != nil {
		return errors.Wrapf(err, "provider %s request failed", operation)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("provider %s returned status %d", operation, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode provider %s response", operation)
	}
	return nil
}

func (c *PlacesClient) observe(ctx context.Context, operation string, elapsed time.Duration, err error) {
	m := metrics.Get()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("operation", operation))
	m.ProviderCallDuration.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.ProviderCallErrorsTotal.Add(ctx, 1, attrs)
	}
}
