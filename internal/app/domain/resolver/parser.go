package resolver

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Coordinates is a latitude/longitude pair extracted from a URL.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ParsedMapsURL holds whatever could be extracted from a Google Maps URL.
// Each field is extracted independently; any of them may be empty.
type ParsedMapsURL struct {
	PlaceID     string
	Coordinates *Coordinates
	PlaceName   string
}

var (
	// Place identifier forms, in priority order.
	placeIDTokenRe = regexp.MustCompile(`(?i)!1s(0x[a-f0-9]+:[a-f0-9x]+)`)
	cidRe          = regexp.MustCompile(`[?&]cid=(\d+)`)
	ftidRe         = regexp.MustCompile(`(?i)ftid=(0x[a-f0-9]+:[a-f0-9x]+)`)

	// @lat,lng,zoom and q=lat,lng coordinate forms.
	atCoordRe    = regexp.MustCompile(`@(-?\d+\.?\d*),(-?\d+\.?\d*),?(\d+)?z?`)
	queryCoordRe = regexp.MustCompile(`[?&]q=(-?\d+\.?\d*),(-?\d+\.?\d*)`)

	// Human-readable name from the /place/<name>/ path segment.
	placeNameRe = regexp.MustCompile(`/place/([^/@]+)`)

	searchPathRe = regexp.MustCompile(`/search/([^/]+)`)
	queryParamRe = regexp.MustCompile(`[?&]q=([^&]+)`)
	bareCoordsRe = regexp.MustCompile(`^-?\d+\.?\d*,-?\d+\.?\d*$`)

	mapsURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^https?://(www\.)?google\.[a-z.]+/maps`),
		regexp.MustCompile(`^https?://maps\.google\.[a-z.]+`),
		regexp.MustCompile(`^https?://goo\.gl/maps`),
		regexp.MustCompile(`^https?://maps\.app\.goo\.gl`),
		regexp.MustCompile(`^https?://goo\.gl/`),
	}
)

// ParseMapsURL extracts a place identifier, coordinates and a place name
// from the assorted Google Maps URL shapes. Pure and side-effect free.
// When several identifier forms are present the priority is
// place-id token > cid > ftid.
func ParseMapsURL(raw string) ParsedMapsURL {
	result := ParsedMapsURL{}
	cleanURL := strings.TrimSpace(raw)

	if m := placeIDTokenRe.FindStringSubmatch(cleanURL); m != nil {
		result.PlaceID = m[1]
	}
	if m := cidRe.FindStringSubmatch(cleanURL); m != nil && result.PlaceID == "" {
		result.PlaceID = m[1]
	}
	if m := ftidRe.FindStringSubmatch(cleanURL); m != nil && result.PlaceID == "" {
		result.PlaceID = m[1]
	}

	if m := atCoordRe.FindStringSubmatch(cleanURL); m != nil {
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lng, errLng := strconv.ParseFloat(m[2], 64)
		if errLat == nil && errLng == nil {
			result.Coordinates = &Coordinates{Lat: lat, Lng: lng}
		}
	}
	if result.Coordinates == nil {
		if m := queryCoordRe.FindStringSubmatch(cleanURL); m != nil {
			lat, errLat := strconv.ParseFloat(m[1], 64)
			lng, errLng := strconv.ParseFloat(m[2], 64)
			if errLat == nil && errLng == nil {
				result.Coordinates = &Coordinates{Lat: lat, Lng: lng}
			}
		}
	}

	if m := placeNameRe.FindStringSubmatch(cleanURL); m != nil {
		result.PlaceName = decodeURLSegment(m[1])
	}

	return result
}

// IsGoogleMapsURL reports whether raw looks like a Google Maps URL,
// including the shortened redirect forms.
func IsGoogleMapsURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	for _, pattern := range mapsURLPatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// ExtractSearchQuery pulls a free-text search query out of a URL for the
// text-search fallback. Coordinate-only q= values are skipped, those are
// handled by the coordinate extractors.
func ExtractSearchQuery(raw string) string {
	if m := searchPathRe.FindStringSubmatch(raw); m != nil {
		return decodeURLSegment(m[1])
	}

	if m := queryParamRe.FindStringSubmatch(raw); m != nil {
		q := decodeURLSegment(m[1])
		if !bareCoordsRe.MatchString(q) {
			return q
		}
	}

	return ""
}

func decodeURLSegment(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
