package store

import (
	"context"
	"sync"

	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
)

// DefaultZoom is the initial map zoom level.
const DefaultZoom = 17

// LatLng is a map position.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// MapStore holds the map viewport.
type MapStore struct {
	app *AppStore

	mu     sync.Mutex
	center *LatLng
	zoom   int
}

// NewMapStore creates a map store whose default center comes from the app
// settings.
func NewMapStore(app *AppStore) *MapStore {
	return &MapStore{app: app, zoom: DefaultZoom}
}

// Center returns the current center. Until one is set it is read from the
// default_latitude and default_longitude settings.
func (s *MapStore) Center(ctx context.Context) LatLng {
	s.mu.Lock()
	if s.center != nil {
		c := *s.center
		s.mu.Unlock()
		return c
	}
	s.mu.Unlock()

	var c LatLng
	if settings, ok := s.app.Settings(ctx); ok {
		c.Lat, _ = settings.Float(domain.SettingDefaultLatitude)
		c.Lng, _ = settings.Float(domain.SettingDefaultLongitude)
	}
	return c
}

// SetCenter moves the map.
func (s *MapStore) SetCenter(c LatLng) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = &c
}

// Zoom returns the zoom level.
func (s *MapStore) Zoom() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// SetZoom sets the zoom level.
func (s *MapStore) SetZoom(z int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = z
}

// Reset returns to the default viewport.
func (s *MapStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = nil
	s.zoom = DefaultZoom
}
