package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "runnotate/pkg/errors"
	"runnotate/pkg/logger"
)

// Extension is the suffix that replaces the record file's extension
const Extension = ".sav"

// Checkpoint is the persisted session position
type Checkpoint struct {
	Stamp          int       `json:"stamp"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
	SequenceDigest string    `json:"sequence_digest,omitempty"`
}

// PathFor derives the checkpoint path from the record path
func PathFor(out string) string {
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + Extension
}

// Manager handles checkpoint operations
type Manager struct {
	checkpointPath string
	logger         logger.Logger
}

// NewManager creates a manager for the checkpoint at path
func NewManager(path string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{
		checkpointPath: path,
		logger:         log.WithField("checkpoint", path),
	}
}

// Path returns the checkpoint file path
func (m *Manager) Path() string {
	return m.checkpointPath
}

// Load reads the checkpoint, falling back to the zero value on any failure
func (m *Manager) Load() Checkpoint {
	data, err := os.ReadFile(m.checkpointPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.logger.Debug("No checkpoint found, starting from the beginning")
		} else {
			m.logger.WithError(err).Warn("Checkpoint unreadable, starting from the beginning")
		}
		return Checkpoint{}
	}

	var raw struct {
		Stamp          *int   `json:"stamp"`
		UpdatedAt      string `json:"updated_at"`
		SequenceDigest string `json:"sequence_digest"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		m.logger.WithError(err).Warn("Checkpoint malformed, starting from the beginning")
		return Checkpoint{}
	}
	if raw.Stamp == nil {
		m.logger.Warn("Checkpoint has no stamp, starting from the beginning")
		return Checkpoint{}
	}

	cp := Checkpoint{Stamp: *raw.Stamp, SequenceDigest: raw.SequenceDigest}
	if t, err := time.Parse(time.RFC3339Nano, raw.UpdatedAt); err == nil {
		cp.UpdatedAt = t
	}
	m.logger.InfoWithFields("Checkpoint loaded", map[string]interface{}{
		"stamp":      cp.Stamp,
		"updated_at": cp.UpdatedAt,
	})
	return cp
}

// Save writes the checkpoint to disk atomically
func (m *Manager) Save(cp Checkpoint) error {
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}

	tempPath := m.checkpointPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeIO, "failed to create temporary checkpoint file", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cp); err != nil {
		file.Close()
		os.Remove(tempPath)
		return apperrors.Wrap(apperrors.ErrorTypeIO, "failed to encode checkpoint", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return apperrors.Wrap(apperrors.ErrorTypeIO, "failed to sync checkpoint file", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return apperrors.Wrap(apperrors.ErrorTypeIO, "failed to close checkpoint file", err)
	}

	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return apperrors.Wrap(apperrors.ErrorTypeIO, "failed to replace checkpoint file", err)
	}

	m.logger.DebugWithFields("Checkpoint saved", map[string]interface{}{
		"stamp": cp.Stamp,
	})
	return nil
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	m.logger.Info("Checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}
