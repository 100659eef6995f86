// Package state is the client-facing session state container: the place
// list snapshot, the selected place, filter predicates and the map
// viewport. It is constructor-injected, never an ambient singleton, and
// only the current user and viewport survive restarts.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khldd/eternal-hope/internal/app/models"
)

// Viewport is the persisted map camera position.
type Viewport struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
}

// Store holds the denormalized client copy of the journal. All mutations
// are synchronous and local; the backend rows stay authoritative.
type Store struct {
	mu          sync.RWMutex
	places      []models.Place
	selected    *uuid.UUID
	filter      Filter
	currentUser models.Author
	viewport    Viewport

	path   string
	logger *zap.Logger
}

// persistedState is the subset serialized at process boundaries.
type persistedState struct {
	CurrentUser models.Author `json:"current_user"`
	Viewport    Viewport      `json:"viewport"`
}

func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{
		path:        path,
		currentUser: models.AuthorKhaled,
		viewport:    Viewport{Latitude: 33.8938, Longitude: 35.5018, Zoom: 9},
		logger:      logger,
	}
}

// SetPlaces replaces the local snapshot, typically after a list fetch.
func (s *Store) SetPlaces(places []models.Place) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.places = places
	if s.selected != nil && s.findLocked(*s.selected) < 0 {
		s.selected = nil
	}
}

// UpsertPlace applies an optimistic local update after a successful write.
func (s *Store) UpsertPlace(place models.Place) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.findLocked(place.ID); i >= 0 {
		s.places[i] = place
		return
	}
	// New places sort first, list order is creation time descending.
	s.places = append([]models.Place{place}, s.places...)
}

// RemovePlace drops a place from the snapshot after a successful delete.
func (s *Store) RemovePlace(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.findLocked(id); i >= 0 {
		s.places = append(s.places[:i], s.places[i+1:]...)
	}
	if s.selected != nil && *s.selected == id {
		s.selected = nil
	}
}

func (s *Store) findLocked(id uuid.UUID) int {
	for i := range s.places {
		if s.places[i].ID == id {
			return i
		}
	}
	return -1
}

// Places returns the snapshot with the current filter applied.
func (s *Store) Places() []models.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterPlaces(s.places, s.filter)
}

// Select sets the selected-place pointer; nil clears it.
func (s *Store) Select(id *uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

// Selected returns the selected place, or nil when nothing is selected.
func (s *Store) Selected() *models.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	if i := s.findLocked(*s.selected); i >= 0 {
		place := s.places[i]
		return &place
	}
	return nil
}

func (s *Store) SetFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *Store) SetCurrentUser(a models.Author) error {
	if !models.ValidAuthor(a) {
		return models.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUser = a
	return nil
}

func (s *Store) CurrentUser() models.Author {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser
}

func (s *Store) SetViewport(v Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = v
}

func (s *Store) Viewport() Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// Save serializes the persisted subset (current user, viewport) to disk.
func (s *Store) Save() error {
	s.mu.RLock()
	snapshot := persistedState{
		CurrentUser: s.currentUser,
		Viewport:    s.viewport,
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}
	return nil
}

// Load restores the persisted subset. A missing file is not an error.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read session state: %w", err)
	}

	var snapshot persistedState
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn("Ignoring malformed session state file", zap.String("path", s.path), zap.Error(err))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if models.ValidAuthor(snapshot.CurrentUser) {
		s.currentUser = snapshot.CurrentUser
	}
	if snapshot.Viewport != (Viewport{}) {
		s.viewport = snapshot.Viewport
	}
	return nil
}
