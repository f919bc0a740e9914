package session

import (
	"errors"
	"time"

	"runnotate/pkg/keys"
)

// tick is one scripted ReadKey result. close makes the display invisible at that read.
type tick struct {
	key   keys.Code
	close bool
}

func press(codes ...keys.Code) []tick {
	ticks := make([]tick, len(codes))
	for i, c := range codes {
		ticks[i] = tick{key: c}
	}
	return ticks
}

// scriptedDisplay replays ticks and closes itself once the script runs out
type scriptedDisplay struct {
	ticks   []tick
	frames  []Frame
	visible bool

	showErr     error
	panicOnShow int
}

func newScriptedDisplay(ticks ...tick) *scriptedDisplay {
	return &scriptedDisplay{ticks: ticks, visible: true}
}

func (d *scriptedDisplay) Show(frame Frame) error {
	d.frames = append(d.frames, frame)
	if d.panicOnShow > 0 && len(d.frames) == d.panicOnShow {
		panic("render exploded")
	}
	return d.showErr
}

func (d *scriptedDisplay) ReadKey(time.Duration) keys.Code {
	if len(d.ticks) == 0 {
		d.visible = false
		return keys.None
	}
	t := d.ticks[0]
	d.ticks = d.ticks[1:]
	if t.close {
		d.visible = false
	}
	return t.key
}

func (d *scriptedDisplay) Visible() bool { return d.visible }

func (d *scriptedDisplay) lastFrame() Frame { return d.frames[len(d.frames)-1] }

var errRender = errors.New("surface lost")
