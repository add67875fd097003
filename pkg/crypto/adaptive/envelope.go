package adaptive

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// hkdfInfo binds derived keys to this application.
const hkdfInfo = "iot-parking-console/v1"

// DeriveKey stretches secret into a 32-byte key with HKDF-SHA256.
func DeriveKey(secret []byte, salt string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty secret", ErrKeySize)
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, secret, []byte(salt), []byte(hkdfInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// FromSecret builds a cipher from a shared secret string. For AES-GCM a
// secret of 16, 24 or 32 bytes is used verbatim so that values stay
// readable by peers importing the raw key; any other secret is derived.
func FromSecret(secret string, cipherType CipherType) (Cipher, error) {
	key := []byte(secret)
	if cipherType == CipherAESGCM {
		switch len(key) {
		case 16, 24, 32:
			return NewWithType(key, cipherType)
		}
	}
	derived, err := DeriveKey(key, string(cipherType))
	if err != nil {
		return nil, err
	}
	return NewWithType(derived, cipherType)
}

// Seal encrypts plaintext and returns nonce||ciphertext in standard base64.
func Seal(c Cipher, plaintext []byte) (string, error) {
	out, err := c.Encrypt(plaintext, nil)
	if err != nil {
		return "", fmt.Errorf("adaptive: seal: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal.
func Open(c Cipher, sealed string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("adaptive: open: %w", err)
	}
	plain, err := c.Decrypt(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("adaptive: open: %w", err)
	}
	return plain, nil
}
