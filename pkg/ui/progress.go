package ui

import (
	"fmt"
	"strings"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// Bar renders done out of total as a fixed-width bar
func Bar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, width-filled)
}

// ProgressLine is the one-line status shown per image in line mode
func ProgressLine(position, total, labeled int, name, label string) string {
	status := Dim("unlabeled")
	if label != "" {
		status = Green(label)
	}
	return fmt.Sprintf("[%s] %d/%d %s %s | %d labeled",
		Bar(labeled, total, 20), position+1, total, Cyan(name), status, labeled)
}
