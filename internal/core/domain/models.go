package domain

import (
	"encoding/json"
	"slices"
	"strconv"
	"time"
)

// Envelope actions the backend may attach to a reply.
const (
	// ActionHideMessage suppresses flash surfacing of the reply's messages.
	ActionHideMessage = "hideMessage"

	// ActionLogout invites the user to sign in again.
	ActionLogout = "logout"
)

// Envelope is the part of every API reply the console interprets itself.
// The data field (devices, users, ...) is decoded separately.
type Envelope struct {
	Message  string   `json:"message,omitempty"`
	Messages []string `json:"messages,omitempty"`
	Actions  []string `json:"actions,omitempty"`
}

// HasAction reports whether the envelope carried the named action.
func (e Envelope) HasAction(action string) bool {
	return HasAction(e.Actions, action)
}

// HasAction reports whether actions contains action.
func HasAction(actions []string, action string) bool {
	return slices.Contains(actions, action)
}

// Beacon is one BLE beacon seen by a sensor.
type Beacon struct {
	BeaconNumber int `json:"beacon_number"`
	Major        int `json:"major"`
	Minor        int `json:"minor"`
	RSSI         int `json:"rssi"`
}

// Device is a parking sensor.
type Device struct {
	DeviceID        string    `json:"device_id"`
	Name            string    `json:"name"`
	NetworkType     string    `json:"network_type"`
	FirmwareVersion float64   `json:"firmware_version"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Beacons         []Beacon  `json:"beacons"`
	HappenedAt      time.Time `json:"happened_at"`
	IsOccupied      bool      `json:"is_occupied"`
	IsAllowed       bool      `json:"is_allowed"`
	IsBlocked       bool      `json:"is_blocked"`
	IsHidden        bool      `json:"is_hidden"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// ParkingEvent is a live occupancy change pushed for a device.
type ParkingEvent struct {
	DeviceID        string    `json:"device_id"`
	IsOccupied      bool      `json:"is_occupied"`
	HappenedAt      time.Time `json:"happened_at"`
	FirmwareVersion float64   `json:"firmware_version"`
	Beacons         []Beacon  `json:"beacons"`
}

// Apply copies the event's state onto d. Events for other devices are
// ignored and reported as false.
func (ev ParkingEvent) Apply(d *Device) bool {
	if d == nil || d.DeviceID != ev.DeviceID {
		return false
	}
	d.IsOccupied = ev.IsOccupied
	d.HappenedAt = ev.HappenedAt
	if ev.FirmwareVersion != 0 {
		d.FirmwareVersion = ev.FirmwareVersion
	}
	if ev.Beacons != nil {
		d.Beacons = ev.Beacons
	}
	return true
}

// User is a platform account as listed by /api/user.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	AccessLevel int       `json:"access_level"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewUser is the body for creating an account.
type NewUser struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccessLevel int    `json:"access_level"`
}

// AuthUser is the signed-in account returned by the login call.
type AuthUser struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	AccessLevel int       `json:"access_level"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	Favorites   []string  `json:"favorites"`
}

// IsFavorite reports whether deviceID is among the user's favorites.
func (u *AuthUser) IsFavorite(deviceID string) bool {
	return u != nil && slices.Contains(u.Favorites, deviceID)
}

// ToggleFavorite adds or removes deviceID and returns whether it is now a
// favorite.
func (u *AuthUser) ToggleFavorite(deviceID string) bool {
	if i := slices.Index(u.Favorites, deviceID); i >= 0 {
		u.Favorites = slices.Delete(u.Favorites, i, i+1)
		return false
	}
	u.Favorites = append(u.Favorites, deviceID)
	return true
}

// ActivityLog is one occupancy sample for a device.
type ActivityLog struct {
	ID              int64     `json:"id"`
	RawID           string    `json:"raw_id"`
	DeviceID        string    `json:"device_id"`
	FirmwareVersion float64   `json:"firmware_version"`
	NetworkType     string    `json:"network_type"`
	HappenedAt      time.Time `json:"happened_at"`
	Timestamp       int64     `json:"timestamp"`
	BeaconsAmount   int       `json:"beacons_amount"`
	MagnetAbsTotal  int       `json:"magnet_abs_total"`
	PeakDistanceCm  int       `json:"peak_distance_cm"`
	RadarCumulative int       `json:"radar_cumulative"`
	IsOccupied      bool      `json:"is_occupied"`
	Beacons         []Beacon  `json:"beacons"`
}

// KeepaliveLog is one health report for a device. The common fields are
// typed; network-specific counters are kept in Extra.
type KeepaliveLog struct {
	ID                int64     `json:"id"`
	RawID             string    `json:"raw_id"`
	DeviceID          string    `json:"device_id"`
	FirmwareVersion   float64   `json:"firmware_version"`
	NetworkType       string    `json:"network_type"`
	HappenedAt        time.Time `json:"happened_at"`
	Timestamp         int64     `json:"timestamp"`
	IdleVoltage       int       `json:"idle_voltage"`
	BatteryPercentage int       `json:"battery_percentage"`
	Current           int       `json:"current"`
	ResetCount        int       `json:"reset_count"`
	TemperatureMin    int       `json:"temperature_min"`
	TemperatureMax    int       `json:"temperature_max"`
	RadarError        int       `json:"radar_error"`
	MagError          int       `json:"mag_error"`
	TcveError         int       `json:"tcve_error"`

	Extra map[string]json.RawMessage `json:"-"`
}

var keepaliveTyped = map[string]struct{}{
	"id": {}, "raw_id": {}, "device_id": {}, "firmware_version": {},
	"network_type": {}, "happened_at": {}, "timestamp": {}, "idle_voltage": {},
	"battery_percentage": {}, "current": {}, "reset_count": {},
	"temperature_min": {}, "temperature_max": {}, "radar_error": {},
	"mag_error": {}, "tcve_error": {},
}

// UnmarshalJSON decodes the typed fields and stashes the rest in Extra.
func (k *KeepaliveLog) UnmarshalJSON(data []byte) error {
	type plain KeepaliveLog
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for key := range keepaliveTyped {
		delete(all, key)
	}
	*k = KeepaliveLog(p)
	if len(all) > 0 {
		k.Extra = all
	}
	return nil
}

// Well-known app settings keys.
const (
	SettingDefaultLatitude  = "default_latitude"
	SettingDefaultLongitude = "default_longitude"
	SettingGoogleAPIKey     = "google_api_key"
)

// AppSettings is the backend's app:settings hash.
type AppSettings map[string]string

// Float returns the named setting parsed as a float.
func (s AppSettings) Float(key string) (float64, bool) {
	v, ok := s[key]
	if !ok || v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// LoginResponse is the body of a successful /api/auth/login call.
type LoginResponse struct {
	Envelope
	Token    string      `json:"token"`
	User     AuthUser    `json:"user"`
	Settings AppSettings `json:"settings"`
}
