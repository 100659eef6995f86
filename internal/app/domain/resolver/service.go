package resolver

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/khldd/eternal-hope/internal/app/models"
)

// placesAPI is the provider surface the resolution chain needs.
type placesAPI interface {
	GetPlaceByID(ctx context.Context, placeID string) (*models.ResolvedPlace, error)
	SearchPlace(ctx context.Context, query string, coords *Coordinates) (*models.ResolvedPlace, error)
	ReverseGeocode(ctx context.Context, coords Coordinates) (*models.ResolvedPlace, error)
}

var _ placesAPI = (*PlacesClient)(nil)

// Service resolves a raw Google Maps URL or free-text query into a single
// canonical place record through an ordered fallback chain.
type Service struct {
	api        placesAPI
	httpClient *http.Client
	cache      *gocache.Cache
	logger     *zap.Logger
}

// NewService builds a resolver. api may be nil when no maps key is
// configured; Resolve then serves mock place data instead of failing.
func NewService(api placesAPI, logger *zap.Logger) *Service {
	return &Service{
		api:        api,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      gocache.New(5*time.Minute, 10*time.Minute),
		logger:     logger,
	}
}

// NewServiceFromClient adapts a concrete provider client, keeping the
// no-provider path when client is nil.
func NewServiceFromClient(client *PlacesClient, logger *zap.Logger) *Service {
	if client == nil {
		return NewService(nil, logger)
	}
	return NewService(client, logger)
}

// Resolve turns a raw Google Maps URL into a place record. Up to three
// outbound calls: shortened-link expansion, the primary lookup, and one
// extra details fetch on the text-search path.
func (s *Service) Resolve(ctx context.Context, rawURL string) (*models.ResolvedPlace, error) {
	ctx, span := otel.Tracer("PlaceResolver").Start(ctx, "Resolve")
	defer span.End()

	targetURL := strings.TrimSpace(rawURL)

	// Expand shortened URLs (goo.gl, maps.app.goo.gl)
	if strings.Contains(targetURL, "goo.gl") {
		targetURL = s.expandShortURL(ctx, targetURL)
	}
	span.SetAttributes(attribute.Int("url.length", len(targetURL)))

	if cached, found := s.cache.Get(targetURL); found {
		place := cached.(models.ResolvedPlace)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &place, nil
	}

	parsed := ParseMapsURL(targetURL)

	if s.api == nil {
		s.logger.Warn("Maps API key not configured, returning mock place data")
		place := mockPlaceData(parsed)
		s.cache.SetDefault(targetURL, *place)
		return place, nil
	}

	place, err := s.resolveParsed(ctx, parsed, targetURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution failed")
		return nil, err
	}
	if place == nil {
		span.SetStatus(codes.Error, "no place found")
		return nil, models.ErrNotFound
	}

	// Always populated, from geometry, reverse geocode, or the extracted
	// coordinates as last resort.
	if place.Latitude == 0 && place.Longitude == 0 && parsed.Coordinates != nil {
		place.Latitude = parsed.Coordinates.Lat
		place.Longitude = parsed.Coordinates.Lng
	}
	if place.Reviews == nil {
		place.Reviews = []models.Review{}
	}
	if place.PhotoURLs == nil {
		place.PhotoURLs = []string{}
	}

	s.cache.SetDefault(targetURL, *place)
	span.SetStatus(codes.Ok, "place resolved")
	return place, nil
}

// resolveParsed walks the priority chain: identifier > name+search >
// coordinates-only. Stops at first success.
func (s *Service) resolveParsed(ctx context.Context, parsed ParsedMapsURL, targetURL string) (*models.ResolvedPlace, error) {
	if parsed.PlaceID != "" {
		place, err := s.api.GetPlaceByID(ctx, parsed.PlaceID)
		if err != nil {
			s.logger.Error("Place details lookup failed", zap.String("place_id", parsed.PlaceID), zap.Error(err))
		}
		if place != nil {
			return place, nil
		}
	}

	query := parsed.PlaceName
	if query == "" {
		query = ExtractSearchQuery(targetURL)
	}
	if query != "" {
		place, err := s.api.SearchPlace(ctx, query, parsed.Coordinates)
		if err != nil {
			s.logger.Error("Place text search failed", zap.String("query", query), zap.Error(err))
		}
		if place != nil {
			return place, nil
		}
	}

	if parsed.Coordinates != nil {
		place, err := s.api.ReverseGeocode(ctx, *parsed.Coordinates)
		if err != nil {
			s.logger.Error("Reverse geocode failed",
				zap.Float64("lat", parsed.Coordinates.Lat),
				zap.Float64("lng", parsed.Coordinates.Lng),
				zap.Error(err))
		}
		if place != nil {
			return place, nil
		}
	}

	return nil, nil
}

// expandShortURL follows redirects to obtain the canonical long URL. On any
// failure the original string is returned so resolution can continue.
func (s *Service) expandShortURL(ctx context.Context, shortURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, shortURL, nil)
	if err != nil {
		return shortURL
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("Failed to expand shortened URL, continuing with original",
			zap.String("url", shortURL), zap.Error(err))
		return shortURL
	}
	defer resp.Body.Close()

	return resp.Request.URL.String()
}

type mockPlace struct {
	name      string
	address   string
	latitude  float64
	longitude float64
	types     []string
	photoURLs []string
}

var mockPlaces = []mockPlace{
	{
		name:      "Byblos Old Souk",
		address:   "Byblos, Lebanon",
		latitude:  34.1205,
		longitude: 35.6481,
		types:     []string{"tourist_attraction", "point_of_interest"},
		photoURLs: []string{
			"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800",
			"https://images.unsplash.com/photo-1518020382113-a7e8fc38eac9?w=800",
		},
	},
	{
		name:      "Jeita Grotto",
		address:   "Jeita, Lebanon",
		latitude:  33.9425,
		longitude: 35.6381,
		types:     []string{"natural_feature", "tourist_attraction"},
		photoURLs: []string{
			"https://images.unsplash.com/photo-1504893524553-b855bce32c67?w=800",
			"https://images.unsplash.com/photo-1544551763-46a013bb70d5?w=800",
		},
	},
	{
		name:      "Raouche Rocks",
		address:   "Beirut, Lebanon",
		latitude:  33.8869,
		longitude: 35.4697,
		types:     []string{"natural_feature", "tourist_attraction"},
		photoURLs: []string{
			"https://images.unsplash.com/photo-1501594907352-04cda38ebc29?w=800",
			"https://images.unsplash.com/photo-1433086966358-54859d0ed716?w=800",
		},
	},
}

// mockPlaceData builds a usable record for development without an API key.
// Extracted name and coordinates win over the canned values.
func mockPlaceData(parsed ParsedMapsURL) *models.ResolvedPlace {
	picked := mockPlaces[rand.Intn(len(mockPlaces))]

	rating := 4.5
	priceLevel := 2
	editorial := "A stunning destination that captures the essence of natural beauty and cultural heritage."

	place := &models.ResolvedPlace{
		PlaceID:    fmt.Sprintf("mock_%d", time.Now().UnixMilli()),
		Name:       picked.name,
		Address:    picked.address,
		Latitude:   picked.latitude,
		Longitude:  picked.longitude,
		Rating:     &rating,
		PriceLevel: &priceLevel,
		Types:      picked.types,
		OpeningHours: []string{
			"Monday: 9:00 AM – 6:00 PM",
			"Tuesday: 9:00 AM – 6:00 PM",
		},
		Reviews: []models.Review{
			{
				Text:       "Beautiful place with amazing views. Perfect for a quiet afternoon together.",
				Rating:     5,
				AuthorName: "Traveler",
			},
			{
				Text:       "Such a romantic spot! We loved watching the sunset here.",
				Rating:     5,
				AuthorName: "Couple Explorer",
			},
		},
		PhotoURLs:        picked.photoURLs,
		EditorialSummary: &editorial,
	}

	if parsed.PlaceName != "" {
		place.Name = parsed.PlaceName
	}
	if parsed.Coordinates != nil {
		place.Latitude = parsed.Coordinates.Lat
		place.Longitude = parsed.Coordinates.Lng
	}

	return place
}
