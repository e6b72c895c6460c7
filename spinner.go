package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ANSI codes for terminal output.
const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
	colorDim   = "\033[2m"
	clearLine  = "\r\033[K"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 80 * time.Millisecond

// spinner animates a status line on out while a server call is in flight.
// On anything but a terminal Start and Stop do nothing, so piped output and
// tests see only the command results.
type spinner struct {
	mu    sync.Mutex
	out   io.Writer
	isTTY bool

	stop chan struct{}
	done chan struct{}
}

func newSpinner(out io.Writer) *spinner {
	return &spinner{out: out, isTTY: isTerminal(out)}
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// frame renders tick n of the animation for msg.
func frame(n int, msg string, elapsed time.Duration) string {
	return fmt.Sprintf("\r%s%s %s%s %s[%s]%s  ",
		colorCyan, spinnerFrames[n%len(spinnerFrames)], msg, colorReset,
		colorDim, elapsed.Round(100*time.Millisecond), colorReset)
}

// Start draws msg until Stop. A second Start while running is ignored.
func (s *spinner) Start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil || !s.isTTY {
		return
	}
	stop, done := make(chan struct{}), make(chan struct{})
	s.stop, s.done = stop, done

	go func() {
		defer close(done)
		began := time.Now()
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()
		for n := 0; ; n++ {
			_, _ = io.WriteString(s.out, frame(n, msg, time.Since(began)))
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the animation and clears its line.
func (s *spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}

	close(stop)
	<-done
	_, _ = io.WriteString(s.out, clearLine)
}
