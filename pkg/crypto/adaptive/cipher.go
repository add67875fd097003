package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

var (
	// ErrKeySize is returned when a key has the wrong length for the cipher.
	ErrKeySize = errors.New("adaptive: invalid key size")

	// ErrShortCiphertext is returned when the input cannot hold a nonce.
	ErrShortCiphertext = errors.New("adaptive: ciphertext too short")
)

// Cipher provides authenticated encryption. Ciphertexts carry their nonce
// as a prefix.
type Cipher interface {
	Type() CipherType
	Encrypt(plaintext, additionalData []byte) ([]byte, error)
	Decrypt(ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
	Overhead() int
}

// New picks AES-GCM where the platform accelerates it and ChaCha20-Poly1305
// elsewhere.
func New(key []byte) (Cipher, error) {
	if hasAESNI() {
		return NewWithType(key, CipherAESGCM)
	}
	return NewWithType(key, CipherChaCha20)
}

// NewWithType creates a cipher of the specified type.
func NewWithType(key []byte, cipherType CipherType) (Cipher, error) {
	var (
		aead cipher.AEAD
		err  error
	)

	switch cipherType {
	case CipherAESGCM:
		switch len(key) {
		case 16, 24, 32:
		default:
			return nil, fmt.Errorf("%w: aes-gcm needs 16, 24 or 32 bytes, got %d", ErrKeySize, len(key))
		}
		block, berr := aes.NewCipher(key)
		if berr != nil {
			return nil, berr
		}
		aead, err = cipher.NewGCM(block)
	case CipherChaCha20:
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("%w: chacha20-poly1305 needs %d bytes, got %d", ErrKeySize, chacha20poly1305.KeySize, len(key))
		}
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, errors.New("adaptive: unknown cipher type: " + string(cipherType))
	}
	if err != nil {
		return nil, err
	}

	return &aeadCipher{typ: cipherType, aead: aead}, nil
}

// hasAESNI reports whether Go's crypto/aes is hardware accelerated here.
func hasAESNI() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}

type aeadCipher struct {
	typ  CipherType
	aead cipher.AEAD
}

func (c *aeadCipher) Type() CipherType { return c.typ }

func (c *aeadCipher) NonceSize() int { return c.aead.NonceSize() }

func (c *aeadCipher) Overhead() int { return c.aead.Overhead() }

func (c *aeadCipher) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

func (c *aeadCipher) Decrypt(ciphertext, additionalData []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(ciphertext) < n+c.aead.Overhead() {
		return nil, ErrShortCiphertext
	}
	return c.aead.Open(nil, ciphertext[:n], ciphertext[n:], additionalData)
}
