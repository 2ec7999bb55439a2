package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/muesli/termenv"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// Spinner animates a progress indicator on stderr while a long operation
// runs. On non-terminals it degrades to plain status lines.
type Spinner struct {
	w       io.Writer
	msg     string
	styles  *Styles
	animate bool

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func newSpinner(w io.Writer, msg string, styles *Styles, animate bool) *Spinner {
	return &Spinner{
		w:       w,
		msg:     msg,
		styles:  styles,
		animate: animate,
	}
}

// Start begins the animation. It is a no-op when already running.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	if !s.animate {
		fmt.Fprintln(s.w, s.msg)
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	termenv.NewOutput(s.w).HideCursor()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		frame := 0
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				fmt.Fprintf(s.w, "\r%s %s", s.styles.Info.Render(spinnerFrames[frame]), s.msg)
				frame = (frame + 1) % len(spinnerFrames)
			}
		}
	}()
}

// Stop halts the animation and clears the spinner line.
func (s *Spinner) Stop() {
	s.halt()
}

// Success stops the spinner and prints a success line in its place.
func (s *Spinner) Success(msg string) {
	s.halt()
	fmt.Fprintln(s.w, s.styles.Success.Render("✓ "+msg))
}

// Fail stops the spinner and prints a failure line in its place.
func (s *Spinner) Fail(msg string) {
	s.halt()
	fmt.Fprintln(s.w, s.styles.Error.Render("✗ "+msg))
}

func (s *Spinner) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	if !s.animate {
		return
	}
	close(s.stop)
	<-s.done
	fmt.Fprint(s.w, "\r\033[K")
	termenv.NewOutput(s.w).ShowCursor()
}
