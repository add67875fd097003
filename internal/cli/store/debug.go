package store

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
)

// DefaultLogWindow is the range used when none was chosen.
const DefaultLogWindow = 24 * time.Hour

// DebugStore fetches activity and keepalive logs for one device over a
// time range. Range bounds are kept in milliseconds.
type DebugStore struct {
	api  API
	dash *Dashboard
	now  func() time.Time

	mu        sync.Mutex
	deviceID  string
	fromMs    int64
	toMs      int64
	activity  []domain.ActivityLog
	keepalive []domain.KeepaliveLog
}

// NewDebugStore creates a debug store.
func NewDebugStore(api API, dash *Dashboard) *DebugStore {
	return &DebugStore{api: api, dash: dash, now: time.Now}
}

// SelectDevice chooses the device whose logs are fetched.
func (s *DebugStore) SelectDevice(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceID = id
}

// SelectedDevice returns the chosen device ID.
func (s *DebugStore) SelectedDevice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceID
}

// SetRange sets the window in milliseconds since the epoch.
func (s *DebugStore) SetRange(fromMs, toMs int64) error {
	if fromMs > toMs {
		return domain.ErrInvalidArgument.WithDetails("from is after to")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fromMs, s.toMs = fromMs, toMs
	return nil
}

// Range returns the window in milliseconds.
func (s *DebugStore) Range() (fromMs, toMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fromMs, s.toMs
}

// query builds the request path suffix. The backend takes whole seconds:
// from is rounded down and to is rounded up so the window never shrinks.
func (s *DebugStore) query() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deviceID == "" {
		return "", domain.ErrInvalidArgument.WithDetails("no device selected")
	}
	if s.fromMs == 0 && s.toMs == 0 {
		now := s.now()
		s.toMs = now.UnixMilli()
		s.fromMs = now.Add(-DefaultLogWindow).UnixMilli()
	}

	q := url.Values{}
	q.Set("from_date", fmt.Sprint(floorDiv(s.fromMs, 1000)))
	q.Set("to_date", fmt.Sprint(ceilDiv(s.toMs, 1000)))
	return url.PathEscape(s.deviceID) + "?" + q.Encode(), nil
}

// FetchActivityLogs loads occupancy samples for the selection.
func (s *DebugStore) FetchActivityLogs(ctx context.Context) ([]domain.ActivityLog, error) {
	suffix, err := s.query()
	if err != nil {
		return nil, err
	}
	var resp struct {
		ActivityLogs []domain.ActivityLog `json:"activity_logs"`
	}
	err = track(s.dash, func() error {
		return s.api.Get(ctx, "/api/activity-logs/"+suffix, &resp)
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.activity = resp.ActivityLogs
	s.mu.Unlock()
	return resp.ActivityLogs, nil
}

// FetchKeepaliveLogs loads health reports for the selection.
func (s *DebugStore) FetchKeepaliveLogs(ctx context.Context) ([]domain.KeepaliveLog, error) {
	suffix, err := s.query()
	if err != nil {
		return nil, err
	}
	var resp struct {
		KeepaliveLogs []domain.KeepaliveLog `json:"keepalive_logs"`
	}
	err = track(s.dash, func() error {
		return s.api.Get(ctx, "/api/keepalive-logs/"+suffix, &resp)
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.keepalive = resp.KeepaliveLogs
	s.mu.Unlock()
	return resp.KeepaliveLogs, nil
}

// ActivityLogs returns the last fetched activity logs.
func (s *DebugStore) ActivityLogs() []domain.ActivityLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activity
}

// KeepaliveLogs returns the last fetched keepalive logs.
func (s *DebugStore) KeepaliveLogs() []domain.KeepaliveLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keepalive
}

// Reset clears the selection and fetched logs.
func (s *DebugStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceID = ""
	s.fromMs, s.toMs = 0, 0
	s.activity, s.keepalive = nil, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}
