package command

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/foxcodenine/iot-parking-console/internal/cli/output"
	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
	"github.com/foxcodenine/iot-parking-console/pkg/token"
)

const stamp = "2006-01-02 15:04:05"

func when(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(stamp)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// devicesView renders the device list; JSON and YAML see plain devices.
type devicesView struct {
	devices   []domain.Device
	favorites map[string]bool
}

func (v devicesView) MarshalJSON() ([]byte, error) {
	if v.devices == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.devices)
}

func (v devicesView) Table(wide bool) *output.Table {
	t := &output.Table{Headers: []string{"", "DEVICE_ID", "NAME", "NETWORK", "OCCUPIED", "LAST_EVENT"}}
	if wide {
		t.Headers = append(t.Headers, "LATITUDE", "LONGITUDE", "FIRMWARE", "BEACONS", "FLAGS")
	}
	for _, d := range v.devices {
		fav := ""
		if v.favorites[d.DeviceID] {
			fav = "★"
		}
		row := []string{fav, d.DeviceID, dash(d.Name), dash(d.NetworkType), yesNo(d.IsOccupied), when(d.HappenedAt)}
		if wide {
			row = append(row, num(d.Latitude), num(d.Longitude), num(d.FirmwareVersion),
				strconv.Itoa(len(d.Beacons)), deviceFlags(d))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func deviceFlags(d domain.Device) string {
	var flags []string
	if d.IsAllowed {
		flags = append(flags, "allowed")
	}
	if d.IsBlocked {
		flags = append(flags, "blocked")
	}
	if d.IsHidden {
		flags = append(flags, "hidden")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// usersView renders accounts with readable access levels.
type usersView []domain.User

func (v usersView) Table(wide bool) *output.Table {
	t := &output.Table{Headers: []string{"ID", "EMAIL", "ACCESS", "ENABLED"}}
	if wide {
		t.Headers = append(t.Headers, "CREATED", "UPDATED")
	}
	for _, u := range v {
		row := []string{strconv.FormatInt(u.ID, 10), u.Email, token.AccessLevel(u.AccessLevel).String(), yesNo(u.Enabled)}
		if wide {
			row = append(row, when(u.CreatedAt), when(u.UpdatedAt))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

type activityView []domain.ActivityLog

func (v activityView) Table(wide bool) *output.Table {
	t := &output.Table{Headers: []string{"HAPPENED_AT", "OCCUPIED", "BEACONS", "MAGNET", "PEAK_CM", "RADAR"}}
	if wide {
		t.Headers = append(t.Headers, "NETWORK", "FIRMWARE", "RAW_ID")
	}
	for _, l := range v {
		row := []string{when(l.HappenedAt), yesNo(l.IsOccupied), strconv.Itoa(l.BeaconsAmount),
			strconv.Itoa(l.MagnetAbsTotal), strconv.Itoa(l.PeakDistanceCm), strconv.Itoa(l.RadarCumulative)}
		if wide {
			row = append(row, dash(l.NetworkType), num(l.FirmwareVersion), dash(l.RawID))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

type keepaliveView []domain.KeepaliveLog

func (v keepaliveView) Table(wide bool) *output.Table {
	t := &output.Table{Headers: []string{"HAPPENED_AT", "BATTERY", "VOLTAGE", "RESETS", "TEMP"}}
	if wide {
		t.Headers = append(t.Headers, "RADAR_ERR", "MAG_ERR", "TCVE_ERR", "EXTRA")
	}
	for _, l := range v {
		row := []string{when(l.HappenedAt), fmt.Sprintf("%d%%", l.BatteryPercentage), strconv.Itoa(l.IdleVoltage),
			strconv.Itoa(l.ResetCount), fmt.Sprintf("%d..%d", l.TemperatureMin, l.TemperatureMax)}
		if wide {
			row = append(row, strconv.Itoa(l.RadarError), strconv.Itoa(l.MagError), strconv.Itoa(l.TcveError), extraKeys(l.Extra))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func extraKeys(extra map[string]json.RawMessage) string {
	if len(extra) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(extra))
	for k, v := range extra {
		parts = append(parts, k+"="+string(v))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

// parseFields turns KEY=VALUE pairs into a JSON object. Values that parse
// as JSON keep their type; anything else is a string.
func parseFields(pairs []string) (map[string]any, error) {
	fields := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("want KEY=VALUE, got %q", p))
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		fields[key] = v
	}
	return fields, nil
}

// parseStrings turns KEY=VALUE pairs into a string map.
func parseStrings(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("want KEY=VALUE, got %q", p))
		}
		out[key] = value
	}
	return out, nil
}
