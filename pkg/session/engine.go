package session

import (
	"context"
	"fmt"
	"time"

	"runnotate/pkg/config"
	"runnotate/pkg/dataset"
	apperrors "runnotate/pkg/errors"
	"runnotate/pkg/keys"
	"runnotate/pkg/labels"
	"runnotate/pkg/logger"
)

// DefaultPollInterval bounds each key wait so visibility is rechecked often
const DefaultPollInterval = 50 * time.Millisecond

// Step is the transition a key caused
type Step int

const (
	StepNone Step = iota
	StepQuit
	StepBack
	StepNext
	StepDelete
	StepLabel
)

func (s Step) String() string {
	switch s {
	case StepQuit:
		return "quit"
	case StepBack:
		return "back"
	case StepNext:
		return "next"
	case StepDelete:
		return "delete"
	case StepLabel:
		return "label"
	default:
		return "none"
	}
}

// StopReason says why the loop ended
type StopReason string

const (
	StopNone      StopReason = ""
	StopQuitKey   StopReason = "quit key"
	StopClosed    StopReason = "display closed"
	StopCancelled StopReason = "cancelled"
	StopError     StopReason = "error"
)

// Engine is the labeling state machine. It is not safe for concurrent use.
type Engine struct {
	bindings *config.Bindings
	sequence []dataset.Image
	store    *labels.Store
	logger   logger.Logger

	position int
	running  bool
	stopped  StopReason
}

// NewEngine builds an engine positioned at stamp. A stamp below the sequence
// length is taken modulo its length, so -1 resumes on the last image; a stamp
// past the end restarts at the first image.
func NewEngine(bindings *config.Bindings, sequence []dataset.Image, store *labels.Store, stamp int, log logger.Logger) (*Engine, error) {
	if len(sequence) == 0 {
		return nil, apperrors.New(apperrors.ErrorTypeConfiguration, "no eligible images in the sequence")
	}
	if bindings == nil {
		return nil, apperrors.New(apperrors.ErrorTypeConfiguration, "no key bindings")
	}
	if store == nil {
		store = labels.New()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	n := len(sequence)
	position := 0
	if stamp < n {
		position = ((stamp % n) + n) % n
	} else {
		log.WithFields(map[string]interface{}{
			"stamp":  stamp,
			"images": len(sequence),
		}).Info("Checkpoint outside the sequence, starting from the beginning")
	}

	return &Engine{
		bindings: bindings,
		sequence: sequence,
		store:    store,
		logger:   log,
		position: position,
		running:  true,
	}, nil
}

// Position returns the current index into the sequence
func (e *Engine) Position() int { return e.position }

// Total returns the sequence length
func (e *Engine) Total() int { return len(e.sequence) }

// Running reports whether the loop has not been asked to stop
func (e *Engine) Running() bool { return e.running }

// StopReason returns why the loop stopped, empty while running
func (e *Engine) StopReason() StopReason { return e.stopped }

// Store returns the label store the engine mutates
func (e *Engine) Store() *labels.Store { return e.store }

// Current returns the image at the current position and its id, re-parsed from
// the filename. A name that no longer parses means the sequence is corrupt.
func (e *Engine) Current() (dataset.Image, error) {
	img := e.sequence[e.position]
	id, ok := dataset.ParseID(img.Name())
	if !ok || id != img.ID {
		return img, apperrors.New(apperrors.ErrorTypeCorruptSequence,
			fmt.Sprintf("image %q at position %d does not carry id %d", img.Name(), e.position, img.ID))
	}
	return img, nil
}

// Frame builds the render state for the current image
func (e *Engine) Frame() (Frame, error) {
	img, err := e.Current()
	if err != nil {
		return Frame{}, err
	}

	frame := Frame{
		Image:        img,
		Position:     e.position,
		Total:        len(e.sequence),
		LabeledCount: e.store.Len(),
	}
	if label, ok := e.store.Get(img.ID); ok {
		color := e.bindings.ColorFor(label)
		frame.Label = label
		frame.Labeled = true
		frame.Overlay = &color
	}
	return frame, nil
}

// Dispatch applies one key and wraps the position. First match wins:
// quit, back, next, delete, label.
func (e *Engine) Dispatch(k keys.Code) (Step, error) {
	step, err := e.apply(k)
	if err != nil {
		return StepNone, err
	}

	n := len(e.sequence)
	e.position = ((e.position % n) + n) % n
	return step, nil
}

func (e *Engine) apply(k keys.Code) (Step, error) {
	b := e.bindings
	switch {
	case b.QuitKeys().Contains(k):
		e.stop(StopQuitKey)
		return StepQuit, nil

	case b.BackKeys().Contains(k):
		e.position--
		return StepBack, nil

	case b.NextKeys().Contains(k):
		e.position++
		return StepNext, nil

	case b.DeleteKeys().Contains(k):
		img, err := e.Current()
		if err != nil {
			return StepNone, err
		}
		e.store.Remove(img.ID)
		e.logger.WithField("image_id", img.ID).Debug("Label removed")
		return StepDelete, nil

	case b.IsLabelKey(k):
		img, err := e.Current()
		if err != nil {
			return StepNone, err
		}
		label, _ := b.LabelFor(k)
		e.store.Assign(img.ID, label)
		e.logger.WithFields(map[string]interface{}{
			"image_id": img.ID,
			"label":    label,
		}).Debug("Label assigned")
		e.position++
		return StepLabel, nil
	}

	return StepNone, nil
}

func (e *Engine) stop(reason StopReason) {
	e.running = false
	e.stopped = reason
}

// Run drives the loop until a quit key, a closed display, a cancelled context
// or an error. The position it stops on is the one to persist.
func (e *Engine) Run(ctx context.Context, display Display, poll time.Duration) error {
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	logger.LogComponentStart(e.logger, "engine", map[string]interface{}{
		"images":   len(e.sequence),
		"position": e.position,
	})

	for e.running {
		frame, err := e.Frame()
		if err != nil {
			e.stop(StopError)
			return err
		}

		if err := display.Show(frame); err != nil {
			e.stop(StopError)
			return fmt.Errorf("display failed: %w", err)
		}

		k := display.ReadKey(poll)

		if !display.Visible() {
			e.stop(StopClosed)
			break
		}
		if ctx.Err() != nil {
			e.stop(StopCancelled)
			break
		}

		if _, err := e.Dispatch(k); err != nil {
			e.stop(StopError)
			return err
		}
	}

	logger.LogComponentStop(e.logger, "engine", string(e.stopped))
	return nil
}
