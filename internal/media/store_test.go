package media

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "media"))
	require.NoError(t, err)
	return store
}

func TestFileStore_SaveAndDelete(t *testing.T) {
	store := newStore(t)

	ref, err := store.Save(strings.NewReader("payload"), "cat.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".png"))

	data, err := os.ReadFile(store.Path(ref))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, store.Delete(ref))
	_, err = os.Stat(store.Path(ref))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(ref))
}

func TestFileStore_RefsAreUnique(t *testing.T) {
	store := newStore(t)

	a, err := store.Save(strings.NewReader("one"), "same.jpg")
	require.NoError(t, err)
	b, err := store.Save(strings.NewReader("two"), "same.jpg")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestFileStore_SaveFailureLeavesNothing(t *testing.T) {
	store := newStore(t)

	_, err := store.Save(brokenReader{}, "cat.png")
	require.Error(t, err)

	entries, err := os.ReadDir(store.root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileStore_PathConfinedToRoot(t *testing.T) {
	store := newStore(t)

	path := store.Path("../../etc/passwd")
	assert.Equal(t, filepath.Join(store.root, "passwd"), path)
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }
