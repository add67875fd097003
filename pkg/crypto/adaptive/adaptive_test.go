package adaptive

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func testKey(n int) []byte {
	k := make([]byte, n)
	for i := range k {
		k[i] = byte(i)
	}
	return k
}

func TestNew(t *testing.T) {
	c, err := New(testKey(32))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.Type() != CipherAESGCM && c.Type() != CipherChaCha20 {
		t.Errorf("New() returned unknown cipher type: %s", c.Type())
	}
}

func TestNewWithType_KeySizes(t *testing.T) {
	tests := []struct {
		name    string
		typ     CipherType
		keyLen  int
		wantErr bool
	}{
		{"aes-128", CipherAESGCM, 16, false},
		{"aes-192", CipherAESGCM, 24, false},
		{"aes-256", CipherAESGCM, 32, false},
		{"aes bad", CipherAESGCM, 10, true},
		{"chacha", CipherChaCha20, 32, false},
		{"chacha bad", CipherChaCha20, 16, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWithType(testKey(tt.keyLen), tt.typ)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWithType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrKeySize) {
				t.Errorf("error = %v, want ErrKeySize", err)
			}
		})
	}
}

func TestNewWithType_Unknown(t *testing.T) {
	if _, err := NewWithType(testKey(32), "rot13"); err == nil {
		t.Error("NewWithType(unknown) should return error")
	}
}

func TestEncryptDecrypt(t *testing.T) {
	for _, typ := range []CipherType{CipherAESGCM, CipherChaCha20} {
		t.Run(string(typ), func(t *testing.T) {
			c, err := NewWithType(testKey(32), typ)
			if err != nil {
				t.Fatal(err)
			}

			plaintext := []byte("eyJhbGciOi.payload.sig")
			aad := []byte("parking-console:token")

			ct, err := c.Encrypt(plaintext, aad)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if len(ct) != c.NonceSize()+len(plaintext)+c.Overhead() {
				t.Errorf("ciphertext length = %d", len(ct))
			}

			pt, err := c.Decrypt(ct, aad)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(pt, plaintext) {
				t.Errorf("Decrypt() = %q, want %q", pt, plaintext)
			}

			if _, err := c.Decrypt(ct, []byte("other")); err == nil {
				t.Error("Decrypt() with wrong additional data should fail")
			}

			ct[len(ct)-1] ^= 0xff
			if _, err := c.Decrypt(ct, aad); err == nil {
				t.Error("Decrypt() of tampered ciphertext should fail")
			}
		})
	}
}

func TestDecrypt_TooShort(t *testing.T) {
	c, err := NewWithType(testKey(16), CipherAESGCM)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decrypt([]byte("short"), nil); !errors.Is(err, ErrShortCiphertext) {
		t.Errorf("Decrypt() error = %v, want ErrShortCiphertext", err)
	}
}

func TestSealOpen(t *testing.T) {
	c, err := FromSecret("0123456789abcdef0123456789abcdef", CipherAESGCM)
	if err != nil {
		t.Fatalf("FromSecret() error = %v", err)
	}

	sealed, err := Seal(c, []byte("AIzaSyExample"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		t.Fatalf("sealed value is not base64: %v", err)
	}
	if c.NonceSize() != 12 || len(raw) < 12 {
		t.Fatalf("sealed value should carry a 12-byte nonce prefix")
	}

	plain, err := Open(c, sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if string(plain) != "AIzaSyExample" {
		t.Errorf("Open() = %q", plain)
	}
}

func TestOpen_Errors(t *testing.T) {
	c, _ := FromSecret("0123456789abcdef", CipherAESGCM)

	if _, err := Open(c, "%%%"); err == nil {
		t.Error("Open() of invalid base64 should fail")
	}

	other, _ := FromSecret("fedcba9876543210", CipherAESGCM)
	sealed, _ := Seal(other, []byte("value"))
	if _, err := Open(c, sealed); err == nil {
		t.Error("Open() with a different key should fail")
	}
}

func TestFromSecret_DerivesOddLengths(t *testing.T) {
	a, err := FromSecret("short", CipherAESGCM)
	if err != nil {
		t.Fatalf("FromSecret() error = %v", err)
	}
	b, err := FromSecret("short", CipherAESGCM)
	if err != nil {
		t.Fatal(err)
	}

	sealed, _ := Seal(a, []byte("x"))
	if _, err := Open(b, sealed); err != nil {
		t.Errorf("derived keys should be deterministic: %v", err)
	}

	if _, err := FromSecret("", CipherChaCha20); err == nil {
		t.Error("FromSecret(\"\") should fail")
	}
}

func TestDeriveKey(t *testing.T) {
	k1, err := DeriveKey([]byte("secret"), "salt-a")
	if err != nil {
		t.Fatal(err)
	}
	k2, _ := DeriveKey([]byte("secret"), "salt-b")

	if len(k1) != 32 {
		t.Errorf("len = %d, want 32", len(k1))
	}
	if bytes.Equal(k1, k2) {
		t.Error("different salts should produce different keys")
	}
}
