package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"runnotate/pkg/logger"
)

func TestPathFor(t *testing.T) {
	tests := []struct {
		out  string
		want string
	}{
		{"out/labels.csv", "out/labels.sav"},
		{"labels", "labels.sav"},
		{"run.2024.csv", "run.2024.sav"},
		{filepath.Join("a.b", "labels"), filepath.Join("a.b", "labels.sav")},
	}

	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			assert.Equal(t, tt.want, PathFor(tt.out))
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.sav")
	mgr := NewManager(path, logger.NewNopLogger())

	assert.False(t, mgr.Exists())
	require.NoError(t, mgr.Save(Checkpoint{Stamp: 7, SequenceDigest: "abc"}))
	assert.True(t, mgr.Exists())

	cp := mgr.Load()
	assert.Equal(t, 7, cp.Stamp)
	assert.Equal(t, "abc", cp.SequenceDigest)
	assert.False(t, cp.UpdatedAt.IsZero())

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveWritesStampField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.sav")
	mgr := NewManager(path, logger.NewNopLogger())
	require.NoError(t, mgr.Save(Checkpoint{Stamp: 3, UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, float64(3), doc["stamp"])
	assert.Equal(t, "2024-01-02T03:04:05Z", doc["updated_at"])
	assert.NotContains(t, doc, "sequence_digest")
}

func TestLoadFallsBackToZero(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		warns   bool
	}{
		{"missing", nil, false},
		{"malformed", strPtr("{stamp"), true},
		{"no stamp", strPtr(`{"updated_at":"2024-01-01T00:00:00Z"}`), true},
		{"wrong type", strPtr(`{"stamp":"three"}`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "labels.sav")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0644))
			}

			tl := logger.NewTestLogger()
			cp := NewManager(path, tl).Load()
			assert.Equal(t, Checkpoint{}, cp)
			assert.Equal(t, tt.warns, len(tl.GetMessagesByLevel("WARN")) > 0)
		})
	}
}

func TestLoadMinimalDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.sav")
	require.NoError(t, os.WriteFile(path, []byte(`{"stamp": 12}`), 0644))

	cp := NewManager(path, logger.NewNopLogger()).Load()
	assert.Equal(t, 12, cp.Stamp)
	assert.Empty(t, cp.SequenceDigest)
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.sav")
	mgr := NewManager(path, logger.NewNopLogger())

	require.NoError(t, mgr.Delete(), "deleting a missing checkpoint is fine")
	require.NoError(t, mgr.Save(Checkpoint{Stamp: 1}))
	require.NoError(t, mgr.Delete())
	assert.False(t, mgr.Exists())
}

func strPtr(s string) *string { return &s }
