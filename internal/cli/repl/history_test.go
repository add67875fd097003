package repl

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestHistory_Add(t *testing.T) {
	h := NewHistory("")
	h.Add("devices")
	h.Add("devices")
	h.Add("   ")
	h.Add("users")

	if got := h.Entries(); !reflect.DeepEqual(got, []string{"devices", "users"}) {
		t.Errorf("Entries() = %v", got)
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory("")
	h.maxSize = 3
	for _, c := range []string{"a", "b", "c", "d"} {
		h.Add(c)
	}
	if got := h.Entries(); !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
		t.Errorf("Entries() = %v", got)
	}
}

func TestHistory_Get(t *testing.T) {
	h := NewHistory("")
	h.Add("first")
	h.Add("second")

	tests := []struct {
		index int
		want  string
	}{
		{0, "second"},
		{1, "first"},
		{2, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := h.Get(tt.index); got != tt.want {
			t.Errorf("Get(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".parking-console", "history")

	h := NewHistory(file)
	h.Add("login ops@example.com")
	h.Add("device list")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("history mode = %o, want 600", perm)
	}

	h2 := NewHistory(file)
	if err := h2.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(h2.Entries(), h.Entries()) {
		t.Errorf("loaded %v, want %v", h2.Entries(), h.Entries())
	}
}

func TestHistory_MissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "none"))
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}

	mem := NewHistory("")
	mem.Add("x")
	if err := mem.Save(); err != nil {
		t.Errorf("Save() in memory error = %v", err)
	}
}
