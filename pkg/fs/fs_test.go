package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePartialCreatesFileAndParentDir(t *testing.T) {
	final := filepath.Join(t.TempDir(), "sub", "episode.mp3")

	f, err := CreatePartial(final)
	require.NoError(t, err)
	defer f.Close()

	assert.FileExists(t, PartialPath(final))
}

func TestCommitPartialRenamesIntoPlace(t *testing.T) {
	final := filepath.Join(t.TempDir(), "episode.mp3")

	f, err := CreatePartial(final)
	require.NoError(t, err)
	_, err = f.WriteString("audio")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, CommitPartial(final))

	assert.FileExists(t, final)
	assert.NoFileExists(t, PartialPath(final))
}

func TestCommitPartialRemovesStalePartialOnFailure(t *testing.T) {
	final := filepath.Join(t.TempDir(), "episode.mp3")

	f, err := CreatePartial(final)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	// A directory at the final path makes the rename fail.
	require.NoError(t, os.Mkdir(final, 0o755))

	err = CommitPartial(final)

	assert.Error(t, err)
	assert.NoFileExists(t, PartialPath(final))
}

func TestRemovePartialToleratesMissingFile(t *testing.T) {
	final := filepath.Join(t.TempDir(), "episode.mp3")

	assert.NotPanics(t, func() { RemovePartial(final) })
}

func TestListDirEntriesSkipsSubdirsAndTreatsMissingDirAsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	names, err := ListDirEntries(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json"}, names)

	names, err = ListDirEntries(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestIsPartialFile(t *testing.T) {
	assert.True(t, IsPartialFile("episode.mp3.partial"))
	assert.False(t, IsPartialFile("episode.mp3"))
}
