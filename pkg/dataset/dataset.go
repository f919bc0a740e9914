package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/gowebpki/jcs"
	apperrors "runnotate/pkg/errors"
	"runnotate/pkg/logger"
)

// namePattern is the only filename shape that enters a sequence: an all-digit
// stem followed by a single extension
var namePattern = regexp.MustCompile(`^(\d+)\.[^.]*$`)

// Image is one reviewable file
type Image struct {
	ID   uint64
	Path string
}

// Name returns the image's filename
func (i Image) Name() string {
	return filepath.Base(i.Path)
}

// ParseID extracts the id from a filename, reporting false when the name is not eligible
func ParseID(name string) (uint64, bool) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Scan lists the eligible images of a flat directory in filename order.
// Ineligible entries and subdirectories are skipped silently. A name of the
// right shape whose id does not fit in 64 bits is skipped with a warning.
// Order is by name, not by numeric id, so unpadded names such as 10.jpg sort
// before 2.jpg.
func Scan(dir string, log logger.Logger) ([]Image, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeIO, fmt.Sprintf("failed to read image directory %s", dir), err)
	}

	var images []Image
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := ParseID(entry.Name())
		if !ok {
			if namePattern.MatchString(entry.Name()) {
				log.WithField("file", entry.Name()).Warn("Image id out of range, skipping")
			}
			continue
		}
		images = append(images, Image{ID: id, Path: filepath.Join(dir, entry.Name())})
	}

	sort.Slice(images, func(i, j int) bool { return images[i].Name() < images[j].Name() })
	return images, nil
}

// Digest fingerprints a sequence by the RFC 8785 canonical form of its filename list.
// Two scans of an unchanged directory give the same digest.
func Digest(images []Image) (string, error) {
	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.Name()
	}

	raw, err := json.Marshal(names)
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize sequence: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
