package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"runnotate/pkg/checkpoint"
	"runnotate/pkg/config"
	"runnotate/pkg/dataset"
	apperrors "runnotate/pkg/errors"
	"runnotate/pkg/labels"
	"runnotate/pkg/logger"
	"runnotate/pkg/retry"
)

// Options tune how a session is opened
type Options struct {
	// Lock takes an advisory lock on <out>.lock for the session's lifetime
	Lock bool

	// Restart discards the checkpoint so the session starts on the first image.
	// Labels already in the record are kept.
	Restart bool

	PollInterval time.Duration
	Logger       logger.Logger

	// SaveRetry governs the final flush; nil uses retry.DefaultConfig
	SaveRetry *retry.Config
}

// Summary describes a finished session
type Summary struct {
	SessionID      string
	Position       int
	Total          int
	Labeled        int
	Counts         map[string]int
	Written        bool
	RecordPath     string
	CheckpointPath string
	StopReason     StopReason
}

// Session is one labeling run against a record file
type Session struct {
	id      string
	out     string
	digest  string
	poll    time.Duration
	saves   *retry.Config
	restart bool

	engine      *Engine
	checkpoints *checkpoint.Manager
	lock        *flock.Flock
	logger      logger.Logger

	closed  bool
	summary Summary
}

// Open loads the record file, the checkpoint and the image sequence and builds
// the engine. Any failure here is fatal and nothing is written.
func Open(cfg *config.Config, opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	id := uuid.NewString()
	log = log.WithField("session_id", id)

	saves := retry.DefaultConfig()
	if opts.SaveRetry != nil {
		c := *opts.SaveRetry
		saves = &c
	}
	if saves.Logger == nil {
		saves.Logger = log
	}

	s := &Session{
		id:     id,
		out:    cfg.OutPath,
		poll:   opts.PollInterval,
		saves:   saves,
		restart: opts.Restart,
		logger:  log,
	}

	if opts.Lock {
		if err := s.acquireLock(); err != nil {
			return nil, err
		}
	}

	engine, err := s.load(cfg)
	if err != nil {
		s.releaseLock()
		return nil, err
	}
	s.engine = engine

	logger.LogComponentStart(log, "session", map[string]interface{}{
		"data":     cfg.DataDir,
		"out":      cfg.OutPath,
		"images":   engine.Total(),
		"labeled":  engine.Store().Len(),
		"position": engine.Position(),
	})
	return s, nil
}

func (s *Session) load(cfg *config.Config) (*Engine, error) {
	store, err := labels.Load(cfg.OutPath)
	if err != nil {
		return nil, err
	}

	s.checkpoints = checkpoint.NewManager(checkpoint.PathFor(cfg.OutPath), s.logger)
	if s.restart && s.checkpoints.Exists() {
		if err := s.checkpoints.Delete(); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrorTypeIO, "failed to discard checkpoint", err)
		}
	}
	cp := s.checkpoints.Load()

	sequence, err := dataset.Scan(cfg.DataDir, s.logger)
	if err != nil {
		return nil, err
	}

	if digest, err := dataset.Digest(sequence); err != nil {
		s.logger.WithError(err).Warn("Could not fingerprint the image sequence")
	} else {
		s.digest = digest
		if cp.SequenceDigest != "" && cp.SequenceDigest != digest {
			s.logger.WithField("data", cfg.DataDir).Warn("Image directory changed since the last session")
		}
	}

	return NewEngine(cfg.Bindings(), sequence, store, cp.Stamp, s.logger)
}

func (s *Session) acquireLock() error {
	if err := os.MkdirAll(filepath.Dir(s.out), 0755); err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeIO, "failed to create output directory", err)
	}

	lock := flock.New(s.out + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeIO, "failed to take output lock", err)
	}
	if !ok {
		return apperrors.New(apperrors.ErrorTypeLocked, fmt.Sprintf("another session is writing %s", s.out))
	}

	s.lock = lock
	s.logger.WithField("lock", lock.Path()).Debug("Output lock acquired")
	return nil
}

func (s *Session) releaseLock() {
	if s.lock == nil {
		return
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger.WithError(err).Warn("Failed to release output lock")
	}
	s.lock = nil
}

// ID returns the session's unique id
func (s *Session) ID() string { return s.id }

// Engine returns the underlying state machine
func (s *Session) Engine() *Engine { return s.engine }

// Run executes the loop and flushes on every exit path. A panic raised by the
// display is re-raised once the flush is done.
func (s *Session) Run(ctx context.Context, display Display) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", fmt.Sprint(r)).Error("Session panicked, flushing before exit")
			s.engine.stop(StopError)
			if _, cerr := s.Close(); cerr != nil {
				s.logger.WithError(cerr).Error("Flush after panic failed")
			}
			panic(r)
		}

		if _, cerr := s.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if err := s.engine.Run(ctx, display, s.poll); err != nil {
		s.logger.WithError(err).Error("Session loop failed")
		return err
	}
	return nil
}

// Close saves the label store when it is not empty, always saves the checkpoint
// and releases the lock. Transient write failures are retried. Calling it again
// returns the first summary.
func (s *Session) Close() (Summary, error) {
	if s.closed {
		return s.summary, nil
	}
	s.closed = true
	defer s.releaseLock()

	store := s.engine.Store()
	summary := Summary{
		SessionID:      s.id,
		Position:       s.engine.Position(),
		Total:          s.engine.Total(),
		Labeled:        store.Len(),
		Counts:         store.Counts(),
		RecordPath:     s.out,
		CheckpointPath: s.checkpoints.Path(),
		StopReason:     s.engine.StopReason(),
	}

	var errs []error

	written, err := retry.DoWithResult(func() (bool, error) {
		return store.Save(s.out)
	}, s.saves)
	switch {
	case err != nil:
		s.logger.WithError(err).Error("Failed to save labels")
		errs = append(errs, err)
	case !written:
		s.logger.WithField("out", s.out).Info("Nothing to save")
	default:
		s.logger.WithFields(map[string]interface{}{
			"out":     s.out,
			"labeled": summary.Labeled,
		}).Info("Labels saved")
	}
	summary.Written = written

	cp := checkpoint.Checkpoint{
		Stamp:          summary.Position,
		UpdatedAt:      time.Now().UTC(),
		SequenceDigest: s.digest,
	}
	if err := retry.Do(func() error { return s.checkpoints.Save(cp) }, s.saves); err != nil {
		s.logger.WithError(err).Error("Failed to save checkpoint")
		errs = append(errs, err)
	}

	s.summary = summary
	logger.LogComponentStop(s.logger, "session", string(summary.StopReason))
	return summary, errors.Join(errs...)
}
