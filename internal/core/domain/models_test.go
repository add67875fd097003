package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParkingEvent_Apply(t *testing.T) {
	d := &Device{DeviceID: "860000000000001", FirmwareVersion: 5.3}
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	ev := ParkingEvent{DeviceID: "860000000000001", IsOccupied: true, HappenedAt: at}
	if !ev.Apply(d) {
		t.Fatal("Apply() = false, want true")
	}
	if !d.IsOccupied || !d.HappenedAt.Equal(at) {
		t.Errorf("device not updated: %+v", d)
	}
	if d.FirmwareVersion != 5.3 {
		t.Errorf("zero firmware in event should not overwrite, got %v", d.FirmwareVersion)
	}

	other := ParkingEvent{DeviceID: "other", IsOccupied: false}
	if other.Apply(d) {
		t.Error("Apply() for another device should return false")
	}
	if !d.IsOccupied {
		t.Error("event for another device must not change state")
	}
}

func TestAuthUser_ToggleFavorite(t *testing.T) {
	u := &AuthUser{Favorites: []string{"a"}}

	if !u.ToggleFavorite("b") {
		t.Error("ToggleFavorite(b) should add")
	}
	if !u.IsFavorite("b") {
		t.Error("IsFavorite(b) = false after add")
	}
	if u.ToggleFavorite("a") {
		t.Error("ToggleFavorite(a) should remove")
	}
	if u.IsFavorite("a") {
		t.Error("IsFavorite(a) = true after removal")
	}

	var nilUser *AuthUser
	if nilUser.IsFavorite("a") {
		t.Error("nil user has no favorites")
	}
}

func TestKeepaliveLog_UnmarshalJSON(t *testing.T) {
	raw := `{"id":7,"device_id":"d1","network_type":"NB-IoT","battery_percentage":88,"rssi_average":-91,"t3412":3600}`

	var k KeepaliveLog
	if err := json.Unmarshal([]byte(raw), &k); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if k.ID != 7 || k.DeviceID != "d1" || k.BatteryPercentage != 88 {
		t.Errorf("typed fields = %+v", k)
	}
	if len(k.Extra) != 2 {
		t.Fatalf("len(Extra) = %d, want 2", len(k.Extra))
	}
	if string(k.Extra["rssi_average"]) != "-91" {
		t.Errorf("Extra[rssi_average] = %s", k.Extra["rssi_average"])
	}
	if _, ok := k.Extra["device_id"]; ok {
		t.Error("typed fields should not be duplicated into Extra")
	}
}

func TestAppSettings_Float(t *testing.T) {
	s := AppSettings{
		SettingDefaultLatitude:  "35.8989",
		SettingDefaultLongitude: "not-a-number",
	}

	if v, ok := s.Float(SettingDefaultLatitude); !ok || v != 35.8989 {
		t.Errorf("Float(lat) = %v, %v", v, ok)
	}
	if _, ok := s.Float(SettingDefaultLongitude); ok {
		t.Error("Float() of a non-number should fail")
	}
	if _, ok := s.Float("missing"); ok {
		t.Error("Float() of a missing key should fail")
	}
}

func TestLoginResponse_Decode(t *testing.T) {
	raw := `{"token":"a.b.c","user":{"id":1,"email":"root@example.com","access_level":0,"enabled":true,"favorites":["d1"]},"settings":{"default_latitude":"35.9"}}`

	var r LoginResponse
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if r.Token != "a.b.c" || r.User.Email != "root@example.com" {
		t.Errorf("decoded = %+v", r)
	}
	if !r.User.IsFavorite("d1") {
		t.Error("favorites not decoded")
	}
	if r.Settings[SettingDefaultLatitude] != "35.9" {
		t.Errorf("settings = %v", r.Settings)
	}
}
