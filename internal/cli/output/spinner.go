package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Spinner displays a progress animation while a request is in flight.
type Spinner struct {
	w        io.Writer
	message  string
	frames   []string
	interval time.Duration

	mu      sync.Mutex
	done    chan struct{}
	stopped chan struct{}
	running bool
}

// NewSpinner creates a new spinner.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 100 * time.Millisecond,
	}
}

// Start starts the animation. Starting a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})

	go func(done, stopped chan struct{}) {
		defer close(stopped)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", s.frames[i%len(s.frames)], s.message)
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}(s.done, s.stopped)
}

// halt stops the animation goroutine and reports whether it was running.
func (s *Spinner) halt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.running = false
	close(s.done)
	<-s.stopped
	return true
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	if s.halt() {
		fmt.Fprint(s.w, "\r\033[K")
	}
}

// Success stops the spinner with a success message.
func (s *Spinner) Success(message string) {
	s.halt()
	fmt.Fprintf(s.w, "\r\033[K✓ %s\n", message)
}

// Fail stops the spinner with a failure message.
func (s *Spinner) Fail(message string) {
	s.halt()
	fmt.Fprintf(s.w, "\r\033[K✗ %s\n", message)
}

// Run shows a spinner on w while fn runs. A nil w runs fn silently.
func Run(w io.Writer, message string, fn func() error) error {
	if w == nil {
		return fn()
	}
	s := NewSpinner(w, message)
	s.Start()
	defer s.Stop()
	return fn()
}

// Interactive reports whether f is a terminal worth animating on.
func Interactive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
