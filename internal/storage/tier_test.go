package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"token", "parking-console:token"},
		{"parking-console:token", "parking-console:token"},
		{"", "parking-console:"},
	}

	for _, tt := range tests {
		if got := Key(tt.name); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestLookup(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	tier, err := OpenRedis(ctx, Config{RedisAddr: mr.Addr()})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok, err := Lookup(ctx, tier, KeyToken); ok || err != nil {
		t.Errorf("Lookup() of missing key = ok %v, err %v", ok, err)
	}

	_ = tier.Set(ctx, KeyToken, "x")
	if v, ok, err := Lookup(ctx, tier, KeyToken); !ok || err != nil || v != "x" {
		t.Errorf("Lookup() = %q, %v, %v", v, ok, err)
	}

	_ = tier.Close()
	if _, _, err := Lookup(ctx, tier, KeyToken); !errors.Is(err, ErrClosed) {
		t.Errorf("Lookup() on closed tier error = %v, want ErrClosed", err)
	}
}
