package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"sync"
)

// FileWatcher is the subset of confloader.Watcher the reloader needs.
type FileWatcher interface {
	Watch(path string) error
	OnChange(func(path string))
}

// Reloader serves a certificate pair from disk and reloads it on change.
// A failed reload keeps the previous certificate.
type Reloader struct {
	certFile string
	keyFile  string
	logger   *slog.Logger

	mu   sync.RWMutex
	cert *tls.Certificate
}

// NewReloader loads the pair once; it fails if the files are unusable.
func NewReloader(certFile, keyFile string, logger *slog.Logger) (*Reloader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reloader{certFile: certFile, keyFile: keyFile, logger: logger}
	if err := r.Reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}
	return r, nil
}

// Watch hooks the reloader into w.
func (r *Reloader) Watch(w FileWatcher) error {
	if err := w.Watch(r.certFile); err != nil {
		return err
	}
	if err := w.Watch(r.keyFile); err != nil {
		return err
	}
	w.OnChange(func(string) {
		if err := r.Reload(); err != nil {
			r.logger.Error("certificate reload failed", "cert_file", r.certFile, "error", err)
		}
	})
	return nil
}

// Reload reads the pair from disk.
func (r *Reloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()

	r.logger.Info("certificate loaded", "cert_file", r.certFile)
	return nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *Reloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// ServerConfig returns a server TLS config backed by the reloader.
func (r *Reloader) ServerConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: r.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}
