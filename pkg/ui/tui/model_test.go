package tui

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"runnotate/pkg/config"
	"runnotate/pkg/dataset"
	"runnotate/pkg/keys"
	"runnotate/pkg/session"
)

func testBindings(t *testing.T) *config.Bindings {
	t.Helper()
	b, err := config.Resolve(
		map[string]config.LabelSpec{
			"yes": {Keys: []string{"Y"}, Color: "#00FF00"},
			"no":  {Keys: []string{"N", "0"}},
		},
		config.ControlsSpec{Quit: []string{"Q", "ESC"}, Next: []string{"SPACE"}, Back: []string{"BACK"}},
	)
	require.NoError(t, err)
	return b
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
	return path
}

func TestKeyCode(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want keys.Code
		ok   bool
	}{
		{"letter", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}}, keys.Code('y'), true},
		{"shifted letter", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'Y'}}, keys.Code('Y'), true},
		{"digit", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'0'}}, keys.Code('0'), true},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, keys.Space, true},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, keys.Enter, true},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, keys.Escape, true},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, keys.Backspace, true},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, keys.Tab, true},
		{"delete", tea.KeyMsg{Type: tea.KeyDelete}, keys.Delete, true},
		{"alt letter", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}, Alt: true}, keys.None, false},
		{"paste", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("yes"), Paste: true}, keys.None, false},
		{"arrow", tea.KeyMsg{Type: tea.KeyUp}, keys.None, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := KeyCode(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestKeysAreForwarded(t *testing.T) {
	ch := make(chan keys.Code, 1)
	m := NewModel(testBindings(t), ch)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	assert.Nil(t, cmd)
	assert.Equal(t, keys.Code('y'), <-ch)

	// full buffer drops instead of blocking
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.Equal(t, 1, m.dropped)
}

func TestCtrlCQuits(t *testing.T) {
	ch := make(chan keys.Code, 1)
	m := NewModel(testBindings(t), ch)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, ch)
}

func TestFrameRendering(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "12.png", 3, 2)

	m := NewModel(testBindings(t), make(chan keys.Code, 1))
	assert.Contains(t, m.View(), "Loading images")

	green := config.Color{G: 255}
	frame := session.Frame{
		Image:        dataset.Image{ID: 12, Path: path},
		Position:     4,
		Total:        10,
		Label:        "yes",
		Labeled:      true,
		Overlay:      &green,
		LabeledCount: 5,
	}

	_, cmd := m.Update(FrameMsg{Frame: frame})
	require.NotNil(t, cmd, "a new image triggers a header read")
	m.Update(cmd())

	assert.Equal(t, 3, m.info.Width)
	assert.Equal(t, 2, m.info.Height)
	assert.Equal(t, "png", m.info.Format)

	view := m.View()
	assert.Contains(t, view, "12.png")
	assert.Contains(t, view, "5 / 10")
	assert.Contains(t, view, "yes")
	assert.Contains(t, view, "png 3x2")
	assert.Contains(t, view, "save and quit")

	// same image again, e.g. after an unbound key
	_, cmd = m.Update(FrameMsg{Frame: frame})
	assert.Nil(t, cmd)
}

func TestStaleImageInfoIsDropped(t *testing.T) {
	m := NewModel(testBindings(t), make(chan keys.Code, 1))
	m.Update(FrameMsg{Frame: session.Frame{Image: dataset.Image{ID: 2, Path: "/x/2.jpg"}, Total: 2}})

	m.Update(ImageInfoMsg{Path: "/x/1.jpg", Width: 9, Height: 9})
	assert.Zero(t, m.info.Width)
}

func TestUnreadableImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "3.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	info := loadImageInfo(path)
	assert.Error(t, info.Err)
	assert.Equal(t, int64(12), info.Size)

	m := NewModel(testBindings(t), make(chan keys.Code, 1))
	_, cmd := m.Update(FrameMsg{Frame: session.Frame{Image: dataset.Image{ID: 3, Path: path}, Total: 1}})
	m.Update(cmd())
	assert.Contains(t, m.View(), "unlabeled")
}

func TestLegend(t *testing.T) {
	legend := buildLegend(testBindings(t))

	byText := map[string]string{}
	for _, e := range legend {
		byText[e.text] = e.keys
	}
	assert.Equal(t, "N/0", byText["no"], "declaration order")
	assert.Equal(t, "Y", byText["yes"])
	assert.Equal(t, "SPACE", byText["next"])
	assert.Equal(t, "ESC/Q", byText["save and quit"])
	assert.NotContains(t, byText, "clear label")
}

func TestHelpToggle(t *testing.T) {
	m := NewModel(testBindings(t), make(chan keys.Code, 1))
	m.Update(FrameMsg{Frame: session.Frame{Image: dataset.Image{ID: 1, Path: "/x/1.jpg"}, Total: 1}})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	assert.Contains(t, m.View(), "Press ? for keys")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{500, "500 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatBytes(tt.bytes))
	}
}
