package store

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
)

// DeviceFilter narrows List. Zero values match everything.
type DeviceFilter struct {
	// Query matches device ID or name, case-insensitively.
	Query string
	// Occupied, when set, matches occupancy.
	Occupied *bool
	// Network matches network_type exactly.
	Network string
	// Only restricts the result to these device IDs (favorites).
	Only []string
	// IncludeHidden keeps devices flagged is_hidden.
	IncludeHidden bool
}

func (f DeviceFilter) match(d *domain.Device) bool {
	if d.IsHidden && !f.IncludeHidden {
		return false
	}
	if f.Occupied != nil && d.IsOccupied != *f.Occupied {
		return false
	}
	if f.Network != "" && !strings.EqualFold(d.NetworkType, f.Network) {
		return false
	}
	if f.Only != nil && !slices.Contains(f.Only, d.DeviceID) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(d.DeviceID), q) && !strings.Contains(strings.ToLower(d.Name), q) {
			return false
		}
	}
	return true
}

// DeviceStore holds the device list keyed by device ID.
type DeviceStore struct {
	api  API
	dash *Dashboard

	mu      sync.RWMutex
	devices map[string]*domain.Device
	fetched bool
}

// NewDeviceStore creates a device store.
func NewDeviceStore(api API, dash *Dashboard) *DeviceStore {
	return &DeviceStore{
		api:     api,
		dash:    dash,
		devices: make(map[string]*domain.Device),
	}
}

// deviceList accepts both shapes the backend returns for "devices": an
// array, or an object keyed by device ID (map=true).
type deviceList []domain.Device

func (l *deviceList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var m map[string]domain.Device
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		out := make([]domain.Device, 0, len(m))
		for id, d := range m {
			if d.DeviceID == "" {
				d.DeviceID = id
			}
			out = append(out, d)
		}
		*l = out
		return nil
	}
	var arr []domain.Device
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	*l = arr
	return nil
}

// Fetch replaces the list with the backend's.
func (s *DeviceStore) Fetch(ctx context.Context) ([]domain.Device, error) {
	var resp struct {
		Devices deviceList `json:"devices"`
	}
	err := track(s.dash, func() error {
		return s.api.Get(ctx, "/api/device?map=true", &resp)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.devices = make(map[string]*domain.Device, len(resp.Devices))
	for i := range resp.Devices {
		d := resp.Devices[i]
		s.devices[d.DeviceID] = &d
	}
	s.fetched = true
	s.mu.Unlock()

	return s.List(DeviceFilter{IncludeHidden: true}), nil
}

// Get fetches one device and refreshes it in the list.
func (s *DeviceStore) Get(ctx context.Context, id string) (*domain.Device, error) {
	var resp struct {
		Device *domain.Device `json:"device"`
	}
	err := track(s.dash, func() error {
		return s.api.Get(ctx, "/api/device/"+url.PathEscape(id), &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Device == nil {
		return nil, domain.ErrDecodeResponse.WithDetails("reply has no device")
	}
	s.UpdateInList(*resp.Device)
	return resp.Device, nil
}

// Create registers a device and adds it to the list.
func (s *DeviceStore) Create(ctx context.Context, d domain.Device) (*domain.Device, error) {
	if strings.TrimSpace(d.DeviceID) == "" {
		return nil, domain.ErrInvalidArgument.WithDetails("device_id is required")
	}
	body := map[string]any{
		"device_id":        d.DeviceID,
		"name":             d.Name,
		"network_type":     d.NetworkType,
		"firmware_version": d.FirmwareVersion,
		"latitude":         d.Latitude,
		"longitude":        d.Longitude,
		"is_allowed":       d.IsAllowed,
		"is_blocked":       d.IsBlocked,
		"is_hidden":        d.IsHidden,
	}
	var resp struct {
		Device *domain.Device `json:"device"`
	}
	err := track(s.dash, func() error {
		return s.api.Post(ctx, "/api/device", body, &resp)
	})
	if err != nil {
		return nil, err
	}
	created := d
	if resp.Device != nil {
		created = *resp.Device
	}
	s.Push(created)
	return &created, nil
}

// Update sends the changed fields of a device. Keys follow the JSON names
// of domain.Device. The result is nil when the reply carries no device and
// the device is not listed.
func (s *DeviceStore) Update(ctx context.Context, id string, fields map[string]any) (*domain.Device, error) {
	var resp struct {
		Device *domain.Device `json:"device"`
	}
	err := track(s.dash, func() error {
		return s.api.Put(ctx, "/api/device/"+url.PathEscape(id), fields, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Device != nil {
		s.UpdateInList(*resp.Device)
		return resp.Device, nil
	}

	// No device in the reply: patch the listed copy.
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return nil, nil
	}
	patched := *d
	raw, _ := json.Marshal(fields)
	if err := json.Unmarshal(raw, &patched); err != nil {
		return nil, domain.ErrInvalidArgument.WithCause(err)
	}
	patched.DeviceID = id
	s.devices[id] = &patched
	cp := patched
	return &cp, nil
}

// Delete removes a device.
func (s *DeviceStore) Delete(ctx context.Context, id string) error {
	err := track(s.dash, func() error {
		return s.api.Delete(ctx, "/api/device/"+url.PathEscape(id), nil)
	})
	if err != nil {
		return err
	}
	s.RemoveFromList(id)
	return nil
}

// Push adds a device to the list.
func (s *DeviceStore) Push(d domain.Device) {
	s.UpdateInList(d)
}

// UpdateInList replaces a device in the list.
func (s *DeviceStore) UpdateInList(d domain.Device) {
	if d.DeviceID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[d.DeviceID] = &d
}

// RemoveFromList drops a device from the list.
func (s *DeviceStore) RemoveFromList(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.devices, id)
}

// ApplyParkingEvent updates occupancy of a listed device. Events for
// unknown devices are ignored.
func (s *DeviceStore) ApplyParkingEvent(ev domain.ParkingEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ev.Apply(s.devices[ev.DeviceID])
}

// Lookup returns a copy of a listed device.
func (s *DeviceStore) Lookup(id string) (domain.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[id]
	if !ok {
		return domain.Device{}, false
	}
	return *d, true
}

// List returns the matching devices sorted by name, then ID.
func (s *DeviceStore) List(f DeviceFilter) []domain.Device {
	s.mu.RLock()
	out := make([]domain.Device, 0, len(s.devices))
	for _, d := range s.devices {
		if f.match(d) {
			out = append(out, *d)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Device) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.DeviceID, b.DeviceID)
	})
	return out
}

// Fetched reports whether the list was loaded since the last reset.
func (s *DeviceStore) Fetched() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetched
}

// Reset drops the list.
func (s *DeviceStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = make(map[string]*domain.Device)
	s.fetched = false
}
