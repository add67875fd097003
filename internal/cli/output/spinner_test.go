package output

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestSpinner_StartStop(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Fetching devices")

	s.Start()
	s.Start() // no second goroutine
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Fetching devices") {
		t.Errorf("output = %q, want message", out)
	}
	if !strings.HasSuffix(out, "\r\033[K") {
		t.Errorf("output should end by clearing the line, got %q", out)
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "idle")
	s.Stop()
	s.Stop()
	if buf.Len() != 0 {
		t.Errorf("Stop() without Start wrote %q", buf.String())
	}
}

func TestSpinner_SuccessFail(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*Spinner)
		want string
	}{
		{"success", func(s *Spinner) { s.Success("Saved") }, "✓ Saved\n"},
		{"fail", func(s *Spinner) { s.Fail("Rejected") }, "✗ Rejected\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewSpinner(&buf, "working")
			s.Start()
			tt.fn(s)
			if !strings.HasSuffix(buf.String(), tt.want) {
				t.Errorf("output = %q, want suffix %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRun(t *testing.T) {
	boom := errors.New("boom")

	var buf bytes.Buffer
	if err := Run(&buf, "Loading", func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want boom", err)
	}
	if !strings.Contains(buf.String(), "Loading") {
		t.Errorf("Run() output = %q, want spinner", buf.String())
	}

	called := false
	if err := Run(nil, "quiet", func() error { called = true; return nil }); err != nil {
		t.Errorf("Run(nil) error = %v", err)
	}
	if !called {
		t.Error("Run(nil) did not call fn")
	}
}

func TestInteractive_File(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if Interactive(f) {
		t.Error("a regular file is not a terminal")
	}
}
