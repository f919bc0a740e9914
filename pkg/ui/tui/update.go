package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"runnotate/pkg/keys"
	"runnotate/pkg/session"
)

// FrameMsg carries the next frame from the engine
type FrameMsg struct {
	Frame session.Frame
}

// ImageInfoMsg delivers the header of the frame's image once read
type ImageInfoMsg ImageInfo

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.hasFrame {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FrameMsg:
		return m, m.setFrame(msg.Frame)

	case ImageInfoMsg:
		// A late reply for an image the reviewer already moved past is dropped
		if msg.Path == m.frame.Image.Path {
			m.info = ImageInfo(msg)
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) setFrame(frame session.Frame) tea.Cmd {
	changed := !m.hasFrame || frame.Image.Path != m.frame.Image.Path
	m.frame = frame
	m.hasFrame = true
	if !changed {
		return nil
	}

	m.info = ImageInfo{Path: frame.Image.Path}
	path := frame.Image.Path
	return func() tea.Msg {
		return ImageInfoMsg(loadImageInfo(path))
	}
}

// handleKeyPress forwards bound-or-not key codes to the engine. Only ctrl+c and
// ? are handled by the display itself.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	}

	code, ok := KeyCode(msg)
	if !ok {
		return m, nil
	}

	select {
	case m.keyOut <- code:
	default:
		// engine is behind; a stale burst of keys is not worth blocking the UI for
		m.dropped++
	}
	return m, nil
}

// KeyCode translates a terminal key event into the raw code the bindings use.
// Printable runes map to their code point, so an unshifted letter yields its
// lowercase code. Modified keys other than the named ones are not translated.
func KeyCode(msg tea.KeyMsg) (keys.Code, bool) {
	if msg.Alt || msg.Paste {
		return keys.None, false
	}

	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return keys.None, false
		}
		return keys.Code(msg.Runes[0]), true
	case tea.KeySpace:
		return keys.Space, true
	case tea.KeyEnter:
		return keys.Enter, true
	case tea.KeyEsc:
		return keys.Escape, true
	case tea.KeyBackspace:
		return keys.Backspace, true
	case tea.KeyTab:
		return keys.Tab, true
	case tea.KeyDelete:
		return keys.Delete, true
	}
	return keys.None, false
}
