package tui

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"runnotate/pkg/config"
	"runnotate/pkg/keys"
	"runnotate/pkg/session"
)

// keyBuffer is how many presses may queue up while the engine renders
const keyBuffer = 64

// ErrNotStarted is returned by Show before Start
var ErrNotStarted = errors.New("tui: display not started")

// TUI is a terminal display for the labeling engine. The bubbletea program runs
// in its own goroutine; the engine talks to it only through Show, ReadKey and
// Visible.
type TUI struct {
	program *tea.Program
	keys    chan keys.Code

	started atomic.Bool
	visible atomic.Bool
	done    chan struct{}

	mu  sync.Mutex
	err error
}

var _ session.Display = (*TUI)(nil)

// NewTUI creates a display whose legend is built from bindings. Without
// options the program takes over the terminal's alternate screen.
func NewTUI(bindings *config.Bindings, opts ...tea.ProgramOption) *TUI {
	ch := make(chan keys.Code, keyBuffer)
	model := NewModel(bindings, ch)

	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}

	return &TUI{
		program: tea.NewProgram(&model, opts...),
		keys:    ch,
		done:    make(chan struct{}),
	}
}

// Start runs the program in the background. The display stays visible until
// the program exits, either through Stop or ctrl+c.
func (t *TUI) Start() {
	if !t.started.CompareAndSwap(false, true) {
		return
	}
	t.visible.Store(true)

	go func() {
		defer close(t.done)
		_, err := t.program.Run()

		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		t.visible.Store(false)
	}()
}

// Show hands a frame to the program
func (t *TUI) Show(frame session.Frame) error {
	if !t.started.Load() {
		return ErrNotStarted
	}
	t.program.Send(FrameMsg{Frame: frame})
	return nil
}

// ReadKey returns the next key press, or keys.None when none arrived in time
func (t *TUI) ReadKey(timeout time.Duration) keys.Code {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case k := <-t.keys:
		return k
	case <-t.done:
		return keys.None
	case <-timer.C:
		return keys.None
	}
}

// Visible reports whether the program is still running
func (t *TUI) Visible() bool {
	return t.visible.Load()
}

// Stop quits the program and waits for the terminal to be restored
func (t *TUI) Stop() error {
	if !t.started.Load() {
		return nil
	}
	t.program.Quit()
	<-t.done
	return t.Err()
}

// Err returns the error the program exited with, if any
func (t *TUI) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
