package repl

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) exec(_ context.Context, args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func run(t *testing.T, input string, rec *recorder, opts ...Option) (string, *REPL) {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithIO(strings.NewReader(input), &out)}, opts...)
	r := New(rec.exec, opts...)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String(), r
}

func TestREPL_Exit(t *testing.T) {
	for _, input := range []string{"exit\ndevices\n", "quit\n", ""} {
		rec := &recorder{}
		run(t, input, rec)
		if len(rec.calls) != 0 {
			t.Errorf("input %q executed %v", input, rec.calls)
		}
	}
}

func TestREPL_Dispatch(t *testing.T) {
	rec := &recorder{}
	out, r := run(t, "\n  device get a1\nlogin ops@example.com 'pa ss'\nmap", rec,
		WithPrompt(func() string { return "> " }),
		WithRedactor(func(args []string) []string {
			if args[0] == "login" && len(args) > 2 {
				args[2] = "***"
			}
			return args
		}),
	)

	want := [][]string{
		{"device", "get", "a1"},
		{"login", "ops@example.com", "pa ss"},
		{"map"},
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if !strings.HasPrefix(out, "> ") {
		t.Errorf("output = %q, want prompt", out)
	}
	hist := r.history.Entries()
	if hist[1] != "login ops@example.com ***" {
		t.Errorf("history = %v, password not redacted", hist)
	}
}

func TestREPL_ErrorsKeepRunning(t *testing.T) {
	rec := &recorder{err: errors.New("not authenticated")}
	out, _ := run(t, "devices\nusers\nbad 'quote\nexit\n", rec)

	if len(rec.calls) != 2 {
		t.Errorf("calls = %v, want 2", rec.calls)
	}
	if strings.Count(out, "Error: not authenticated") != 2 {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "Error: unbalanced quote") {
		t.Errorf("output = %q, want quote error", out)
	}
}

func TestREPL_Builtins(t *testing.T) {
	rec := &recorder{}
	out, _ := run(t, "devices\nhistory\nhelp dev\nhelp\n", rec,
		WithCompleter(NewCompleter("devices", "device", "users")))

	if !strings.Contains(out, "   1  devices") {
		t.Errorf("history output missing: %q", out)
	}
	if !strings.Contains(out, "device\ndevices\n") {
		t.Errorf("help completion missing: %q", out)
	}
	// bare help goes to the executor
	if len(rec.calls) != 2 || rec.calls[1][0] != "help" {
		t.Errorf("calls = %v", rec.calls)
	}
}

func TestREPL_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}
	r := New(rec.exec, WithIO(strings.NewReader("devices\n"), &bytes.Buffer{}))
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("calls = %v", rec.calls)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"device list", []string{"device", "list"}, false},
		{`  a   "b c"  'd e' `, []string{"a", "b c", "d e"}, false},
		{`x\ y`, []string{"x y"}, false},
		{`say "it's"`, []string{"say", "it's"}, false},
		{`empty ""`, []string{"empty", ""}, false},
		{`open "quote`, nil, true},
		{`trailing\`, nil, true},
	}
	for _, tt := range tests {
		got, err := Split(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Split(%q) error = %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinSplit(t *testing.T) {
	args := []string{"settings", "update", "name=Bay 1", "it's", ""}
	got, err := Split(Join(args))
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if !reflect.DeepEqual(got, args) {
		t.Errorf("Split(Join()) = %q, want %q", got, args)
	}
}
