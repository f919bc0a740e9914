package labels

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	apperrors "runnotate/pkg/errors"
)

// Header is the column row of the record file
var Header = []string{"id", "label"}

// Entry is one labeled image
type Entry struct {
	ID    uint64
	Label string
}

// Store maps image ids to labels. Absence means unlabeled.
// It is owned by a single session and is not safe for concurrent use.
type Store struct {
	labels map[uint64]string
}

// New creates an empty store
func New() *Store {
	return &Store{labels: make(map[uint64]string)}
}

// Load reads a record file. A missing file yields an empty store and the
// parent directory is created so the later save has somewhere to go.
func Load(path string) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, apperrors.Wrap(apperrors.ErrorTypeIO, "failed to create output directory", err)
			}
			return New(), nil
		}
		return nil, apperrors.Wrap(apperrors.ErrorTypeIO, "failed to open record file", err)
	}
	defer file.Close()

	store, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return store, nil
}

// Read parses a record stream. The header must name an id and a label column;
// other columns are ignored.
func Read(r io.Reader) (*Store, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return New(), nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeIO, "malformed record header", err)
	}

	idCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case "id":
			idCol = i
		case "label":
			labelCol = i
		}
	}
	if idCol < 0 || labelCol < 0 {
		return nil, apperrors.New(apperrors.ErrorTypeIO, fmt.Sprintf("record header %v lacks id/label columns", header))
	}

	store := New()
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrorTypeIO, fmt.Sprintf("malformed record on line %d", line), err)
		}
		if idCol >= len(row) || labelCol >= len(row) {
			return nil, apperrors.New(apperrors.ErrorTypeIO, fmt.Sprintf("short record on line %d", line))
		}

		id, err := strconv.ParseUint(strings.TrimSpace(row[idCol]), 10, 64)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrorTypeIO, fmt.Sprintf("invalid id on line %d", line), err)
		}
		store.labels[id] = row[labelCol]
	}

	return store, nil
}

// Get returns the label of an image
func (s *Store) Get(id uint64) (string, bool) {
	label, ok := s.labels[id]
	return label, ok
}

// Assign sets the label of an image, replacing any previous one
func (s *Store) Assign(id uint64, label string) {
	s.labels[id] = label
}

// Remove clears the label of an image. Removing an unlabeled id is a no-op.
func (s *Store) Remove(id uint64) {
	delete(s.labels, id)
}

// IsEmpty reports whether no image is labeled
func (s *Store) IsEmpty() bool {
	return len(s.labels) == 0
}

// Len returns the number of labeled images
func (s *Store) Len() int {
	return len(s.labels)
}

// Entries returns all labels sorted by image id
func (s *Store) Entries() []Entry {
	entries := make([]Entry, 0, len(s.labels))
	for id, label := range s.labels {
		entries = append(entries, Entry{ID: id, Label: label})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// Counts tallies images per label
func (s *Store) Counts() map[string]int {
	counts := make(map[string]int)
	for _, label := range s.labels {
		counts[label]++
	}
	return counts
}

// Write encodes the store as CSV sorted by id
func (s *Store) Write(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, e := range s.Entries() {
		if err := writer.Write([]string{strconv.FormatUint(e.ID, 10), e.Label}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Save writes the store to path atomically and reports whether anything was written.
// An empty store leaves the destination untouched so a run that labeled nothing
// cannot wipe out an earlier record.
func (s *Store) Save(path string) (bool, error) {
	if s.IsEmpty() {
		return false, nil
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrorTypeIO, "failed to create temporary record file", err)
	}

	if err := s.Write(file); err != nil {
		file.Close()
		os.Remove(tempPath)
		return false, apperrors.Wrap(apperrors.ErrorTypeIO, "failed to encode records", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return false, apperrors.Wrap(apperrors.ErrorTypeIO, "failed to sync record file", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return false, apperrors.Wrap(apperrors.ErrorTypeIO, "failed to close record file", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return false, apperrors.Wrap(apperrors.ErrorTypeIO, "failed to replace record file", err)
	}

	return true, nil
}
