package logger

import (
	"bufio"
	"bytes"
	"io"
	"sync"
)

// Held buffers JSON log events while something else owns the terminal. Release
// replays them in console format and lets later events through directly.
type Held struct {
	mu  sync.Mutex
	buf bytes.Buffer
	out io.Writer
}

// Write buffers p until Release, then forwards it
func (h *Held) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.out != nil {
		return h.out.Write(p)
	}
	return h.buf.Write(p)
}

// Release writes the buffered events to out. Calling it again is a no-op.
func (h *Held) Release(out io.Writer) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.out != nil {
		return nil
	}
	h.out = consoleWriter(out)

	scanner := bufio.NewScanner(&h.buf)
	for scanner.Scan() {
		if _, err := h.out.Write(scanner.Bytes()); err != nil {
			return err
		}
	}
	h.buf.Reset()
	return scanner.Err()
}
