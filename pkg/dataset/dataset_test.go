package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "runnotate/pkg/errors"
	"runnotate/pkg/logger"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name string
		id   uint64
		ok   bool
	}{
		{"1.jpg", 1, true},
		{"0042.png", 42, true},
		{"7.", 7, true},
		{"12.tar.gz", 0, false},
		{"a1.jpg", 0, false},
		{"1a.jpg", 0, false},
		{"12", 0, false},
		{".jpg", 0, false},
		{"99999999999999999999999.jpg", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseID(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "3.jpg", "1.png", "2.jpg", "notes.txt", "4.tar.gz", "cover.jpg")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "5.jpg"), 0755))

	images, err := Scan(dir, nil)
	require.NoError(t, err)
	require.Len(t, images, 3)

	assert.Equal(t, Image{ID: 1, Path: filepath.Join(dir, "1.png")}, images[0])
	assert.Equal(t, uint64(2), images[1].ID)
	assert.Equal(t, uint64(3), images[2].ID)
	assert.Equal(t, "3.jpg", images[2].Name())
}

func TestScanWarnsOnOversizedID(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "1.jpg", "99999999999999999999999.jpg", "cover.jpg")
	tl := logger.NewTestLogger()

	images, err := Scan(dir, tl)
	require.NoError(t, err)
	require.Len(t, images, 1)

	warnings := tl.GetMessagesByLevel("WARN")
	require.Len(t, warnings, 1, "only the oversized id is reported, not cover.jpg")
	assert.Equal(t, "99999999999999999999999.jpg", warnings[0].Fields["file"])
}

func TestScanKeepsFilenameOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2.jpg", "10.jpg", "1.jpg")

	images, err := Scan(dir, nil)
	require.NoError(t, err)

	ids := []uint64{}
	for _, img := range images {
		ids = append(ids, img.ID)
	}
	assert.Equal(t, []uint64{1, 10, 2}, ids)
}

func TestScanMissingDirectory(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeIO))
}

func TestDigest(t *testing.T) {
	a := []Image{{ID: 1, Path: "/x/1.jpg"}, {ID: 2, Path: "/x/2.jpg"}}
	b := []Image{{ID: 1, Path: "/elsewhere/1.jpg"}, {ID: 2, Path: "/elsewhere/2.jpg"}}
	c := []Image{{ID: 1, Path: "/x/1.jpg"}}

	da, err := Digest(a)
	require.NoError(t, err)
	db, err := Digest(b)
	require.NoError(t, err)
	dc, err := Digest(c)
	require.NoError(t, err)

	assert.Len(t, da, 64)
	assert.Equal(t, da, db, "digest depends on names, not directory")
	assert.NotEqual(t, da, dc)
}
