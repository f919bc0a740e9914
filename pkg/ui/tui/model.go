package tui

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"runnotate/pkg/config"
	"runnotate/pkg/keys"
	"runnotate/pkg/session"
)

// ImageInfo is what the panel shows about the file behind a frame
type ImageInfo struct {
	Path   string
	Width  int
	Height int
	Format string
	Size   int64
	Err    error
}

// legendEntry is one line of the key legend
type legendEntry struct {
	keys string
	text string
}

// Model is the bubbletea model behind the display. It is only touched from
// the program goroutine.
type Model struct {
	spinner  spinner.Model
	progress progress.Model

	frame    session.Frame
	hasFrame bool
	info     ImageInfo
	legend   []legendEntry

	// Translated key codes go here; the engine drains it through TUI.ReadKey
	keyOut chan<- keys.Code

	width    int
	height   int
	showHelp bool
	dropped  int
}

// NewModel creates a model that forwards key codes to keyOut
func NewModel(bindings *config.Bindings, keyOut chan<- keys.Code) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	p := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	p.Width = 40

	return Model{
		spinner:  s,
		progress: p,
		legend:   buildLegend(bindings),
		keyOut:   keyOut,
		showHelp: true,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func buildLegend(b *config.Bindings) []legendEntry {
	if b == nil {
		return nil
	}

	var legend []legendEntry
	for _, label := range b.Labels() {
		if names := keyNames(b.KeysFor(label)); names != "" {
			legend = append(legend, legendEntry{keys: names, text: label})
		}
	}

	controls := []struct {
		set  config.KeySet
		text string
	}{
		{b.NextKeys(), "next"},
		{b.BackKeys(), "back"},
		{b.DeleteKeys(), "clear label"},
		{b.QuitKeys(), "save and quit"},
	}
	for _, c := range controls {
		if names := keyNames(c.set.Codes()); names != "" {
			legend = append(legend, legendEntry{keys: names, text: c.text})
		}
	}
	return legend
}

func keyNames(codes []keys.Code) string {
	var names []string
	for _, code := range codes {
		if name := keys.Name(code); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, "/")
}

// loadImageInfo reads the image header without decoding pixels
func loadImageInfo(path string) ImageInfo {
	info := ImageInfo{Path: path}

	stat, err := os.Stat(path)
	if err != nil {
		info.Err = err
		return info
	}
	info.Size = stat.Size()

	file, err := os.Open(path)
	if err != nil {
		info.Err = err
		return info
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		info.Err = err
		return info
	}
	info.Width = cfg.Width
	info.Height = cfg.Height
	info.Format = format
	return info
}

// FormatBytes formats bytes to human readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
