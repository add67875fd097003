// Package adaptive provides authenticated encryption for values the console
// and the env service exchange or persist.
//
// Supported Algorithms:
//
//   - AES-GCM: sealed env values (12-byte nonce prefix, base64), the format
//     the platform dashboard has always decrypted
//   - ChaCha20-Poly1305: at-rest encryption of the durable storage tier on
//     hosts without AES hardware support
//
// Secrets that are not a valid AES key length are stretched with HKDF-SHA256.
//
// Usage:
//
//	c, err := adaptive.FromSecret(secret, adaptive.CipherAESGCM)
//	sealed, err := adaptive.Seal(c, []byte("AIza..."))
//	plain, err := adaptive.Open(c, sealed)
package adaptive
