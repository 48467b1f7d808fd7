package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/shipwright/internal/manifest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), ".shipwright"))
	store.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return store
}

func TestStore_Path(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".shipwright")
	assert.Equal(t, filepath.Join(dir, "session.yaml"), NewStore(dir).Path())
}

func TestStore_LoadMissingReturnsNew(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, New(), sess)

	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err), "load does not create the file")
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	sess := New()
	sess.BaseImage = "python:3.9-slim"
	sess.AddDependency("flask")
	sess.AddEnvVar("Z", "1")
	sess.AddEnvVar("A", "{{ not a template }}")
	sess.SetSteps([]manifest.Step{manifest.StepRunCommand, manifest.StepUnknown})
	require.NoError(t, store.Save(sess))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sess.Snapshot(), loaded.Snapshot())
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), loaded.UpdatedAt)
}

func TestStore_LoadEmptyFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0755))
	require.NoError(t, os.WriteFile(store.Path(), nil, 0644))

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, New(), sess)
}

func TestStore_LoadRejectsUnknownFields(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0755))
	require.NoError(t, os.WriteFile(store.Path(), []byte("base_image: alpine\nimage: nope\n"), 0644))

	_, err := store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse session")
}

func TestStore_Update(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Update(ctx, func(s *Session) error {
		s.AddDependency("flask")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"flask"}, sess.Dependencies)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"flask"}, loaded.Dependencies)
}

func TestStore_UpdateErrorDoesNotSave(t *testing.T) {
	store := newTestStore(t)
	boom := errors.New("boom")

	_, err := store.Update(context.Background(), func(s *Session) error {
		s.AddDependency("flask")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, func(s *Session) error {
				s.AddEnvVar("", "x")
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, workers, sess.Env.Len())
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Reset(ctx), "reset without a session")

	_, err := store.Update(ctx, func(s *Session) error {
		s.BaseImage = "alpine"
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, New(), sess)
}
