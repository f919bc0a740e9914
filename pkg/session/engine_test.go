package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"runnotate/pkg/config"
	"runnotate/pkg/dataset"
	apperrors "runnotate/pkg/errors"
	"runnotate/pkg/keys"
	"runnotate/pkg/labels"
	"runnotate/pkg/logger"
)

const (
	keyQuit   = keys.Code('q')
	keyNext   = keys.Code('n')
	keyBack   = keys.Code('b')
	keyDelete = keys.Code('x')
	keyCat    = keys.Code('c')
	keyDog    = keys.Code('d')
)

func testBindings(t *testing.T) *config.Bindings {
	t.Helper()
	b, err := config.Resolve(
		map[string]config.LabelSpec{
			"cat": {Keys: []string{"c", "1"}, Color: "#ff0000"},
			"dog": {Keys: []string{"d"}},
		},
		config.ControlsSpec{
			Quit:   []string{"q", "Esc"},
			Next:   []string{"n"},
			Back:   []string{"b"},
			Delete: []string{"x"},
		},
	)
	require.NoError(t, err)
	return b
}

func sequence(ids ...uint64) []dataset.Image {
	seq := make([]dataset.Image, len(ids))
	for i, id := range ids {
		seq[i] = dataset.Image{ID: id, Path: fmt.Sprintf("/images/%d.jpg", id)}
	}
	return seq
}

func newTestEngine(t *testing.T, n int, stamp int) *Engine {
	t.Helper()
	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = uint64(i + 1)
	}
	e, err := NewEngine(testBindings(t), sequence(ids...), labels.New(), stamp, logger.NewNopLogger())
	require.NoError(t, err)
	return e
}

func TestNewEngineEmptySequence(t *testing.T) {
	_, err := NewEngine(testBindings(t), nil, labels.New(), 0, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))
}

func TestNewEngineInitialPosition(t *testing.T) {
	tests := []struct {
		stamp int
		want  int
	}{
		{0, 0},
		{2, 2},
		{4, 4},
		{5, 0},
		{99, 0},
		{-1, 4},
		{-7, 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("stamp %d", tt.stamp), func(t *testing.T) {
			e := newTestEngine(t, 5, tt.stamp)
			assert.Equal(t, tt.want, e.Position())
			assert.True(t, e.Running())
		})
	}
}

func TestDispatchWrapsForward(t *testing.T) {
	e := newTestEngine(t, 3, 0)
	for i := 0; i < 3; i++ {
		step, err := e.Dispatch(keyNext)
		require.NoError(t, err)
		assert.Equal(t, StepNext, step)
	}
	assert.Equal(t, 0, e.Position())
}

func TestDispatchWrapsBackward(t *testing.T) {
	e := newTestEngine(t, 4, 0)
	step, err := e.Dispatch(keyBack)
	require.NoError(t, err)
	assert.Equal(t, StepBack, step)
	assert.Equal(t, 3, e.Position())
}

func TestDispatchLabelAutoAdvances(t *testing.T) {
	e := newTestEngine(t, 3, 1)

	step, err := e.Dispatch(keyCat)
	require.NoError(t, err)
	assert.Equal(t, StepLabel, step)
	assert.Equal(t, 2, e.Position())

	label, ok := e.Store().Get(2)
	assert.True(t, ok)
	assert.Equal(t, "cat", label)

	// last image wraps to the first after labeling
	_, err = e.Dispatch(keys.Code('1'))
	require.NoError(t, err)
	assert.Equal(t, 0, e.Position())
	label, _ = e.Store().Get(3)
	assert.Equal(t, "cat", label)
}

func TestDispatchDeleteKeepsPosition(t *testing.T) {
	e := newTestEngine(t, 3, 0)
	e.Store().Assign(1, "dog")

	step, err := e.Dispatch(keyDelete)
	require.NoError(t, err)
	assert.Equal(t, StepDelete, step)
	assert.Equal(t, 0, e.Position())
	assert.True(t, e.Store().IsEmpty())

	step, err = e.Dispatch(keyDelete)
	require.NoError(t, err)
	assert.Equal(t, StepDelete, step, "deleting an unlabeled image is a no-op")
}

func TestDispatchUnknownKeyIsNoop(t *testing.T) {
	e := newTestEngine(t, 3, 1)
	for _, k := range []keys.Code{keys.None, keys.Code('z'), keys.Invalid, keys.Space} {
		step, err := e.Dispatch(k)
		require.NoError(t, err)
		assert.Equal(t, StepNone, step)
	}
	assert.Equal(t, 1, e.Position())
	assert.True(t, e.Store().IsEmpty())
	assert.True(t, e.Running())
}

func TestDispatchPriority(t *testing.T) {
	b, err := config.Resolve(
		map[string]config.LabelSpec{"cat": {Keys: []string{"n"}}},
		config.ControlsSpec{Quit: []string{"q"}, Next: []string{"n"}, Back: []string{"n", "b"}},
	)
	require.NoError(t, err)

	e, err := NewEngine(b, sequence(1, 2, 3), labels.New(), 0, nil)
	require.NoError(t, err)

	step, err := e.Dispatch(keyNext)
	require.NoError(t, err)
	assert.Equal(t, StepBack, step, "back is checked before next and label")
	assert.Equal(t, 2, e.Position())
	assert.True(t, e.Store().IsEmpty())
}

func TestDispatchQuit(t *testing.T) {
	e := newTestEngine(t, 3, 2)
	step, err := e.Dispatch(keys.Escape)
	require.NoError(t, err)
	assert.Equal(t, StepQuit, step)
	assert.False(t, e.Running())
	assert.Equal(t, StopQuitKey, e.StopReason())
	assert.Equal(t, 2, e.Position())
}

func TestFrameOverlay(t *testing.T) {
	e := newTestEngine(t, 2, 0)

	frame, err := e.Frame()
	require.NoError(t, err)
	assert.False(t, frame.Labeled)
	assert.Nil(t, frame.Overlay)

	e.Store().Assign(1, "cat")
	frame, err = e.Frame()
	require.NoError(t, err)
	assert.True(t, frame.Labeled)
	assert.Equal(t, "cat", frame.Label)
	require.NotNil(t, frame.Overlay)
	assert.Equal(t, config.Color{R: 255}, *frame.Overlay)
	assert.Equal(t, 1, frame.LabeledCount)

	e.Store().Assign(1, "dog")
	frame, err = e.Frame()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultColor, *frame.Overlay)
}

func TestRunQuitKey(t *testing.T) {
	e := newTestEngine(t, 3, 0)
	d := newScriptedDisplay(press(keyNext, keyCat, keyQuit)...)

	require.NoError(t, e.Run(context.Background(), d, 0))

	assert.Equal(t, StopQuitKey, e.StopReason())
	assert.Equal(t, 2, e.Position(), "resume lands on the image being viewed")
	label, _ := e.Store().Get(2)
	assert.Equal(t, "cat", label)
	assert.Len(t, d.frames, 3)
}

func TestRunCloseBeatsQuit(t *testing.T) {
	e := newTestEngine(t, 3, 1)
	d := newScriptedDisplay(tick{key: keyQuit, close: true})

	require.NoError(t, e.Run(context.Background(), d, 0))
	assert.Equal(t, StopClosed, e.StopReason())
	assert.Equal(t, 1, e.Position())
}

func TestRunCloseIgnoresKeyInSameTick(t *testing.T) {
	e := newTestEngine(t, 3, 1)
	d := newScriptedDisplay(tick{key: keyCat, close: true})

	require.NoError(t, e.Run(context.Background(), d, 0))

	assert.Equal(t, StopClosed, e.StopReason())
	assert.Equal(t, 1, e.Position())
	assert.True(t, e.Store().IsEmpty(), "the key read in the closing tick is ignored")
}

func TestRunNoKeyRerenders(t *testing.T) {
	e := newTestEngine(t, 3, 1)
	d := newScriptedDisplay(press(keys.None, keys.None, keyQuit)...)

	require.NoError(t, e.Run(context.Background(), d, 0))

	require.Len(t, d.frames, 3)
	for _, f := range d.frames {
		assert.Equal(t, uint64(2), f.Image.ID)
		assert.Equal(t, 3, f.Total)
	}
}

func TestRunCancelledContext(t *testing.T) {
	e := newTestEngine(t, 3, 0)
	d := newScriptedDisplay(press(keyNext, keyNext)...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, e.Run(ctx, d, 0))
	assert.Equal(t, StopCancelled, e.StopReason())
	assert.Equal(t, 0, e.Position())
}

func TestRunDisplayError(t *testing.T) {
	e := newTestEngine(t, 3, 0)
	d := newScriptedDisplay(press(keyNext)...)
	d.showErr = errRender

	err := e.Run(context.Background(), d, 0)
	require.ErrorIs(t, err, errRender)
	assert.Equal(t, StopError, e.StopReason())
}

func TestRunCorruptSequence(t *testing.T) {
	seq := []dataset.Image{
		{ID: 1, Path: "/images/1.jpg"},
		{ID: 2, Path: "/images/cover.jpg"},
	}
	e, err := NewEngine(testBindings(t), seq, labels.New(), 0, nil)
	require.NoError(t, err)

	d := newScriptedDisplay(press(keyNext, keyNext)...)
	err = e.Run(context.Background(), d, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeCorruptSequence))
	assert.Equal(t, 1, e.Position())
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "label", StepLabel.String())
	assert.Equal(t, "none", Step(42).String())
}
