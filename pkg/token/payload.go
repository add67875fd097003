// Package token decodes the payload segment of platform bearer tokens.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrAbsent is returned when there is no token to decode.
	ErrAbsent = errors.New("token: absent")

	// ErrMalformed is returned when the token cannot be decoded.
	ErrMalformed = errors.New("token: malformed")
)

// segmentCount is the number of dot-delimited segments in a bearer token.
const segmentCount = 3

// parser only decodes segments; it is never used to verify signatures.
var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// alphabet maps the standard base64 alphabet onto base64url so that
// tokens produced by either encoder decode the same way.
var alphabet = strings.NewReplacer("+", "-", "/", "_")

// Payload is the decoded middle segment of a bearer token.
type Payload struct {
	// ExpiresAt is nil when the token carries no exp claim.
	ExpiresAt *time.Time

	// AccessLevel is LevelUnknown when the claim is missing.
	AccessLevel AccessLevel

	Email     string
	UserID    int64
	Timestamp int64

	// Claims holds every claim of the payload.
	Claims jwt.MapClaims
}

// Decode decodes the payload segment of raw without verifying anything.
//
// It returns ErrAbsent for an empty token and an error wrapping
// ErrMalformed for every other failure.
func Decode(raw string) (*Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrAbsent
	}

	parts := strings.Split(raw, ".")
	if len(parts) != segmentCount {
		return nil, fmt.Errorf("%w: expected %d segments, got %d", ErrMalformed, segmentCount, len(parts))
	}
	if parts[1] == "" {
		return nil, fmt.Errorf("%w: empty payload segment", ErrMalformed)
	}

	data, err := parser.DecodeSegment(alphabet.Replace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: payload segment: %w", ErrMalformed, err)
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload json: %w", ErrMalformed, err)
	}
	if claims == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformed)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: exp claim: %w", ErrMalformed, err)
	}

	p := &Payload{
		AccessLevel: LevelUnknown,
		Claims:      claims,
	}
	if exp != nil {
		t := exp.Time
		p.ExpiresAt = &t
	}
	if v, ok := number(claims["access_level"]); ok {
		p.AccessLevel = AccessLevel(v)
	}
	if v, ok := number(claims["user_id"]); ok {
		p.UserID = v
	}
	if v, ok := number(claims["timestamp"]); ok {
		p.Timestamp = v
	}
	if v, ok := claims["email"].(string); ok {
		p.Email = v
	}

	return p, nil
}

// Claims is the collapsed form of Decode: any failure, including an
// absent token, yields (nil, false). It never panics.
func Claims(raw string) (*Payload, bool) {
	p, err := Decode(raw)
	if err != nil {
		return nil, false
	}
	return p, true
}

// IsExpired reports whether the payload expired before now.
// A payload without an exp claim never expires.
func (p *Payload) IsExpired(now time.Time) bool {
	if p == nil || p.ExpiresAt == nil {
		return false
	}
	return p.ExpiresAt.Unix() < now.Unix()
}

// IsExpired reports whether p has expired against the wall clock.
func IsExpired(p *Payload) bool {
	return p.IsExpired(time.Now())
}

func number(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}
