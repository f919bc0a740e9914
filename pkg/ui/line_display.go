package ui

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"runnotate/pkg/keys"
	"runnotate/pkg/session"
)

// LineDisplay drives a session from a byte stream, one key per byte, and prints
// one progress line per rendered frame. It serves piped input where no terminal
// UI can run. The display closes once the stream is exhausted and every key
// read from it has been handed out.
type LineDisplay struct {
	out    io.Writer
	keys   chan keys.Code
	closed atomic.Bool

	done     chan struct{}
	stopOnce sync.Once
	// finished is closed when the reader goroutine returns
	finished chan struct{}

	lastShown string
}

var _ session.Display = (*LineDisplay)(nil)

// NewLineDisplay starts reading keys from in and writes frames to out
func NewLineDisplay(in io.Reader, out io.Writer) *LineDisplay {
	d := &LineDisplay{
		out:      out,
		keys:     make(chan keys.Code, 64),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go d.readLoop(in)
	return d
}

func (d *LineDisplay) readLoop(in io.Reader) {
	defer close(d.finished)
	defer close(d.keys)

	r := bufio.NewReader(in)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		code, ok := byteCode(b)
		if !ok {
			continue
		}
		select {
		case d.keys <- code:
		case <-d.done:
			return
		}
	}
}

// byteCode maps a raw input byte to a key code. A line feed counts as Enter so
// line-oriented scripts behave like a terminal in raw mode.
func byteCode(b byte) (keys.Code, bool) {
	switch b {
	case '\n', '\r':
		return keys.Enter, true
	case 0x7f:
		return keys.Delete, true
	}
	if b < 0x20 && b != byte(keys.Backspace) && b != byte(keys.Tab) && b != byte(keys.Escape) {
		return keys.None, false
	}
	return keys.Code(b), true
}

// Show prints the frame when the image changes or its label does
func (d *LineDisplay) Show(frame session.Frame) error {
	key := fmt.Sprintf("%s|%s", frame.Image.Path, frame.Label)
	if key == d.lastShown {
		return nil
	}
	d.lastShown = key

	_, err := fmt.Fprintln(d.out, ProgressLine(frame.Position, frame.Total, frame.LabeledCount, frame.Image.Name(), frame.Label))
	return err
}

// ReadKey returns the next scripted key or keys.None after timeout
func (d *LineDisplay) ReadKey(timeout time.Duration) keys.Code {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case k, ok := <-d.keys:
		if !ok {
			d.closed.Store(true)
			return keys.None
		}
		return k
	case <-timer.C:
		return keys.None
	}
}

// Close stops the reader once the session no longer wants keys. A read already
// blocked on the input returns when the input yields its next byte.
func (d *LineDisplay) Close() {
	d.stopOnce.Do(func() {
		close(d.done)
		d.closed.Store(true)
	})
}

// Visible reports whether the input stream still has keys to give
func (d *LineDisplay) Visible() bool {
	return !d.closed.Load()
}
