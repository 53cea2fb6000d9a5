package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dagu-org/flowprobe/internal/fileutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	file := filepath.Join(tmp, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	assert.True(t, fileutil.FileExists(file))
	assert.False(t, fileutil.FileExists(filepath.Join(tmp, "missing.txt")))
}

func TestIsDir(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	assert.True(t, fileutil.IsDir(tmp))
	assert.False(t, fileutil.IsDir(filepath.Join(tmp, "missing")))
}

func TestCopyFile(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	src := filepath.Join(tmp, "src.py")
	require.NoError(t, os.WriteFile(src, []byte("pipeline"), 0600))

	t.Run("CreatesParentDirs", func(t *testing.T) {
		dst := filepath.Join(tmp, "dags", "nested", "dst.py")
		require.NoError(t, fileutil.CopyFile(src, dst))

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "pipeline", string(data))
	})

	t.Run("TruncatesExisting", func(t *testing.T) {
		dst := filepath.Join(tmp, "dst.py")
		require.NoError(t, os.WriteFile(dst, []byte("old content that is longer"), 0600))
		require.NoError(t, fileutil.CopyFile(src, dst))

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "pipeline", string(data))
	})

	t.Run("MissingSource", func(t *testing.T) {
		err := fileutil.CopyFile(filepath.Join(tmp, "missing"), filepath.Join(tmp, "out"))
		assert.Error(t, err)
	})
}

func TestCopyDir(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	src := filepath.Join(tmp, "data")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.csv"), []byte("1,2"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "b.csv"), []byte("3,4"), 0600))

	dst := filepath.Join(tmp, "copy")
	require.NoError(t, fileutil.CopyDir(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "1,2", string(data))

	data, err = os.ReadFile(filepath.Join(dst, "sub", "b.csv"))
	require.NoError(t, err)
	assert.Equal(t, "3,4", string(data))
}

func TestResolvePath(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		got, err := fileutil.ResolvePath("")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Tilde", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		got, err := fileutil.ResolvePath("~/scenarios")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "scenarios"), got)
	})

	t.Run("EnvVar", func(t *testing.T) {
		t.Setenv("FLOWPROBE_TEST_DIR", "sub")

		got, err := fileutil.ResolvePath("$FLOWPROBE_TEST_DIR/x")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
	})
}
