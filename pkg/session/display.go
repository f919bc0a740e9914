package session

import (
	"time"

	"runnotate/pkg/config"
	"runnotate/pkg/dataset"
	"runnotate/pkg/keys"
)

// Frame is everything a display needs to render one image
type Frame struct {
	Image    dataset.Image
	Position int
	Total    int

	// Label is the current label of the image, empty when Labeled is false
	Label   string
	Labeled bool

	// Overlay is the label's color, nil for an unlabeled image
	Overlay *config.Color

	LabeledCount int
}

// Display shows frames and yields raw key codes
type Display interface {
	// Show renders a frame. An error ends the session after the flush.
	Show(frame Frame) error

	// ReadKey waits up to timeout for one key and returns keys.None when none arrived
	ReadKey(timeout time.Duration) keys.Code

	// Visible reports whether the display surface is still open
	Visible() bool
}
