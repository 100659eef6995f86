package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PlaceStatus is the lifecycle stage of a place in the journal.
type PlaceStatus string

const (
	StatusPlanned   PlaceStatus = "planned"
	StatusBeenThere PlaceStatus = "been_there"
	StatusFavorite  PlaceStatus = "favorite"
	StatusDream     PlaceStatus = "dream"
)

// ValidStatus reports whether s is one of the four place statuses.
func ValidStatus(s PlaceStatus) bool {
	switch s {
	case StatusPlanned, StatusBeenThere, StatusFavorite, StatusDream:
		return true
	}
	return false
}

// Author is one of the two fixed users. This is deliberately a closed
// two-value set, not a general identity system.
type Author string

const (
	AuthorKhaled Author = "khaled"
	AuthorAmal   Author = "amal"
)

// ValidAuthor reports whether a is khaled or amal.
func ValidAuthor(a Author) bool {
	return a == AuthorKhaled || a == AuthorAmal
}

// Place is a single point of interest the couple tracks.
type Place struct {
	ID                   uuid.UUID       `json:"id"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	GooglePlaceID        string          `json:"google_place_id"`
	GoogleMapsURL        string          `json:"google_maps_url"`
	Name                 string          `json:"name"`
	Address              *string         `json:"address"`
	Latitude             float64         `json:"latitude"`
	Longitude            float64         `json:"longitude"`
	Status               PlaceStatus     `json:"status"`
	Rating               *float64        `json:"rating"`
	PriceLevel           *int            `json:"price_level"`
	Types                []string        `json:"types"`
	Phone                *string         `json:"phone"`
	Website              *string         `json:"website"`
	OpeningHours         json.RawMessage `json:"opening_hours"`
	RawReviews           json.RawMessage `json:"raw_reviews"`
	AISummary            *string         `json:"ai_summary"`
	AICoupleInsights     *string         `json:"ai_couple_insights"`
	AIVibeTags           []string        `json:"ai_vibe_tags"`
	AIPoeticDescription  *string         `json:"ai_poetic_description"`
	AIGeneralDescription *string         `json:"ai_general_description"`
	AIProcessedAt        *time.Time      `json:"ai_processed_at"`
	PhotoURLs            []string        `json:"photo_urls"`
	AddedBy              Author          `json:"added_by"`

	// Populated on list reads only.
	Notes []Note `json:"notes,omitempty"`
	Tags  []Tag  `json:"tags,omitempty"`
}

// PlaceUpdate carries a partial update for PATCH /places/{id}. Nil fields
// are left untouched.
type PlaceUpdate struct {
	Name                 *string          `json:"name"`
	Address              *string          `json:"address"`
	Status               *PlaceStatus     `json:"status"`
	Rating               *float64         `json:"rating"`
	PriceLevel           *int             `json:"price_level"`
	Phone                *string          `json:"phone"`
	Website              *string          `json:"website"`
	OpeningHours         *json.RawMessage `json:"opening_hours"`
	RawReviews           *json.RawMessage `json:"raw_reviews"`
	AISummary            *string          `json:"ai_summary"`
	AICoupleInsights     *string          `json:"ai_couple_insights"`
	AIVibeTags           *[]string        `json:"ai_vibe_tags"`
	AIPoeticDescription  *string          `json:"ai_poetic_description"`
	AIGeneralDescription *string          `json:"ai_general_description"`
	AIProcessedAt        *time.Time       `json:"ai_processed_at"`
	PhotoURLs            *[]string        `json:"photo_urls"`
}

// Note belongs to exactly one place; never deleted programmatically.
type Note struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	PlaceID   uuid.UUID `json:"place_id"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
}

// Photo is an object-storage backed image attached to a place.
type Photo struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	PlaceID     uuid.UUID `json:"place_id"`
	StoragePath string    `json:"storage_path"`
	PublicURL   string    `json:"public_url,omitempty"`
	Caption     *string   `json:"caption"`
	UploadedBy  Author    `json:"uploaded_by"`
}

// Tag is a named, optionally colorized label. Tags are seeded externally
// and read-only through the API.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Color     *string   `json:"color"`
}

// Review is a single captured provider review.
type Review struct {
	Text       string  `json:"text"`
	Rating     float64 `json:"rating"`
	AuthorName string  `json:"authorName"`
}

// ResolvedPlace is what the resolver returns for a URL or text query.
// Latitude/Longitude are always populated when a record is returned.
type ResolvedPlace struct {
	PlaceID          string   `json:"placeId"`
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Rating           *float64 `json:"rating"`
	PriceLevel       *int     `json:"priceLevel"`
	Types            []string `json:"types"`
	Phone            *string  `json:"phone"`
	Website          *string  `json:"website"`
	OpeningHours     []string `json:"openingHours"`
	Reviews          []Review `json:"reviews"`
	PhotoURLs        []string `json:"photoUrls"`
	EditorialSummary *string  `json:"editorialSummary"`
}

// VibeAnalysis is the five-field AI structure attached to a place.
type VibeAnalysis struct {
	Summary            string   `json:"summary"`
	CoupleInsights     string   `json:"coupleInsights"`
	VibeTags           []string `json:"vibeTags"`
	PoeticDescription  string   `json:"poeticDescription"`
	GeneralDescription string   `json:"generalDescription"`
}

// NoteContext is a prior personal note passed into a refresh analysis.
type NoteContext struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// AnalyzeRequest is the body of POST /places/analyze.
type AnalyzeRequest struct {
	PlaceName        string        `json:"placeName"`
	PlaceTypes       []string      `json:"placeTypes"`
	Reviews          []Review      `json:"reviews"`
	ExistingNotes    []NoteContext `json:"existingNotes"`
	IsRefresh        bool          `json:"isRefresh"`
	EditorialSummary *string       `json:"editorialSummary"`
}

// CreateNoteRequest is the body of POST /notes.
type CreateNoteRequest struct {
	PlaceID uuid.UUID `json:"place_id"`
	Author  Author    `json:"author"`
	Content string    `json:"content"`
}

// CreatePlaceRequest is the body of POST /places.
type CreatePlaceRequest struct {
	GooglePlaceID        string          `json:"google_place_id"`
	GoogleMapsURL        string          `json:"google_maps_url"`
	Name                 string          `json:"name"`
	Address              *string         `json:"address"`
	Latitude             float64         `json:"latitude"`
	Longitude            float64         `json:"longitude"`
	Status               PlaceStatus     `json:"status"`
	Rating               *float64        `json:"rating"`
	PriceLevel           *int            `json:"price_level"`
	Types                []string        `json:"types"`
	Phone                *string         `json:"phone"`
	Website              *string         `json:"website"`
	OpeningHours         json.RawMessage `json:"opening_hours"`
	RawReviews           json.RawMessage `json:"raw_reviews"`
	AISummary            *string         `json:"ai_summary"`
	AICoupleInsights     *string         `json:"ai_couple_insights"`
	AIVibeTags           []string        `json:"ai_vibe_tags"`
	AIPoeticDescription  *string         `json:"ai_poetic_description"`
	AIGeneralDescription *string         `json:"ai_general_description"`
	AIProcessedAt        *time.Time      `json:"ai_processed_at"`
	PhotoURLs            []string        `json:"photo_urls"`
	AddedBy              Author          `json:"added_by"`
}
