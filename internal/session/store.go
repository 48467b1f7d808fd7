package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/shipwright/internal/config"
	"github.com/cameronsjo/shipwright/internal/fileutil"
	"github.com/cameronsjo/shipwright/internal/lock"
)

const lockName = "session"

// Store persists a session under a state directory.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore returns a store rooted at stateDir. Nothing is created until the
// first write.
func NewStore(stateDir string) *Store {
	return &Store{dir: stateDir, now: time.Now}
}

// Path returns the session file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, config.SessionFileName)
}

// Load reads the session. A missing file yields a new session.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sess); err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, fmt.Errorf("parse session %s: %w", s.Path(), err)
	}
	return &sess, nil
}

// Save writes the session atomically and stamps UpdatedAt.
func (s *Store) Save(sess *Session) error {
	sess.UpdatedAt = s.now().UTC().Truncate(time.Second)

	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := fileutil.WriteFile(s.Path(), data, 0644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Update loads the session, applies fn and saves the result while holding
// the session lock. Nothing is saved if fn fails.
func (s *Store) Update(ctx context.Context, fn func(*Session) error) (*Session, error) {
	var updated *Session
	err := lock.WithLock(ctx, s.dir, lockName, func() error {
		sess, err := s.Load()
		if err != nil {
			return err
		}
		if err := fn(sess); err != nil {
			return err
		}
		if err := s.Save(sess); err != nil {
			return err
		}
		updated = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Reset removes the session file so the next Load starts fresh.
func (s *Store) Reset(ctx context.Context) error {
	return lock.WithLock(ctx, s.dir, lockName, func() error {
		if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove session: %w", err)
		}
		return nil
	})
}
