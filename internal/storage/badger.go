package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// BadgerTier is the on-disk durable tier.
type BadgerTier struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger
	closed atomic.Bool

	lastGCTime atomic.Int64 // Unix milliseconds

	metricsTotalSize  prometheus.Gauge
	metricsLastGCTime prometheus.Gauge

	stopCh chan struct{}
	doneCh chan struct{}
}

// OpenBadger opens (or creates) the state directory in cfg.Dir.
func OpenBadger(cfg Config, logger *slog.Logger) (*BadgerTier, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: logger}

	bc := cfg.Badger
	if bc.CacheSize > 0 {
		opts.BlockCacheSize = bc.CacheSize
	}
	if bc.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = bc.ValueLogFileSize
	}
	opts.SyncWrites = bc.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	t := &BadgerTier{
		db:     db,
		cfg:    bc,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go t.gcLoop()

	logger.Debug("badger tier opened", "dir", cfg.Dir)

	return t, nil
}

// Get retrieves a value by key.
func (t *BadgerTier) Get(_ context.Context, key string) (string, error) {
	if t.closed.Load() {
		return "", ErrClosed
	}

	var value []byte
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return "", err
	}

	return string(value), nil
}

// Set stores a key-value pair.
func (t *BadgerTier) Set(_ context.Context, key, value string) error {
	if t.closed.Load() {
		return ErrClosed
	}
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

// Delete removes a key.
func (t *BadgerTier) Delete(_ context.Context, key string) error {
	if t.closed.Load() {
		return ErrClosed
	}
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Keys lists every key starting with prefix.
func (t *BadgerTier) Keys(_ context.Context, prefix string) ([]string, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}

	var keys []string
	err := t.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})

	return keys, err
}

// GC runs value log garbage collection until nothing is left to rewrite.
func (t *BadgerTier) GC(_ context.Context) error {
	for {
		err := t.db.RunValueLogGC(t.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
				break
			}
			return fmt.Errorf("gc: %w", err)
		}
	}

	t.lastGCTime.Store(time.Now().UnixMilli())
	t.updateMetrics()
	return nil
}

// Close stops background GC and closes the database.
func (t *BadgerTier) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	close(t.stopCh)
	<-t.doneCh

	if err := t.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// RegisterMetrics registers size and GC gauges with registry.
func (t *BadgerTier) RegisterMetrics(registry prometheus.Registerer) *BadgerTier {
	t.metricsTotalSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "parking_console",
		Subsystem: "state",
		Name:      "size_bytes",
		Help:      "Durable state size in bytes (LSM + value log)",
	})
	t.metricsLastGCTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "parking_console",
		Subsystem: "state",
		Name:      "last_gc_timestamp_seconds",
		Help:      "Unix timestamp of the last value log GC",
	})

	registry.MustRegister(t.metricsTotalSize, t.metricsLastGCTime)
	t.updateMetrics()

	return t
}

func (t *BadgerTier) updateMetrics() {
	if t.metricsTotalSize == nil {
		return
	}
	lsm, vlog := t.db.Size()
	t.metricsTotalSize.Set(float64(lsm + vlog))
	if ms := t.lastGCTime.Load(); ms > 0 {
		t.metricsLastGCTime.Set(float64(ms) / 1000.0)
	}
}

func (t *BadgerTier) gcLoop() {
	defer close(t.doneCh)

	interval, err := time.ParseDuration(t.cfg.GCInterval)
	if err != nil || interval <= 0 {
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := t.GC(context.Background()); err != nil {
				t.logger.Warn("state gc failed", "error", err)
			}
		case <-t.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
// Badger is chatty at info level, so info is demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}
