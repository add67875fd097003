package storage

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/foxcodenine/iot-parking-console/pkg/crypto/adaptive"
)

// Sealed encrypts values before handing them to the wrapped tier. The key
// is bound as additional data, so a value copied under another key fails
// to open.
type Sealed struct {
	tier   Tier
	cipher adaptive.Cipher
}

// NewSealed wraps tier with cipher.
func NewSealed(tier Tier, cipher adaptive.Cipher) *Sealed {
	return &Sealed{tier: tier, cipher: cipher}
}

// Get retrieves and decrypts a value.
func (s *Sealed) Get(ctx context.Context, key string) (string, error) {
	raw, err := s.tier.Get(ctx, key)
	if err != nil {
		return "", err
	}
	ct, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("sealed: decode %s: %w", key, err)
	}
	pt, err := s.cipher.Decrypt(ct, []byte(key))
	if err != nil {
		return "", fmt.Errorf("sealed: open %s: %w", key, err)
	}
	return string(pt), nil
}

// Set encrypts and stores a value.
func (s *Sealed) Set(ctx context.Context, key, value string) error {
	ct, err := s.cipher.Encrypt([]byte(value), []byte(key))
	if err != nil {
		return fmt.Errorf("sealed: seal %s: %w", key, err)
	}
	return s.tier.Set(ctx, key, base64.StdEncoding.EncodeToString(ct))
}

// Delete removes a key.
func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.tier.Delete(ctx, key)
}

// Close closes the wrapped tier.
func (s *Sealed) Close() error {
	return s.tier.Close()
}
