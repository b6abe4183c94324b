package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxpv/castsync/pkg/metadata"
	"github.com/mxpv/castsync/pkg/progress"
)

func TestScanRecoversKnownEpisodesFromSidecars(t *testing.T) {
	dir := t.TempDir()
	guid := "episode-guid"
	sidecar := &metadata.EpisodeSidecar{
		Title:         "Episode 1",
		GUID:          &guid,
		OriginalURL:   "https://example.com/ep1.mp3",
		AudioFilename: "2024-01-01-episode-1.mp3",
		ContentHash:   "sha256:abc",
	}
	require.NoError(t, metadata.WriteEpisodeSidecar(dir, "2024-01-01-episode-1", sidecar))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-01-01-episode-1.mp3"), []byte("audio"), 0o644))
	require.NoError(t, metadata.WritePodcastMetadata(dir, &metadata.PodcastMetadata{Title: "Show", FeedURL: "https://example.com/feed.xml"}))

	known, err := Scan(dir, progress.NoopSink{})

	require.NoError(t, err)
	assert.Len(t, known, 1)
	entry, ok := known["episode-guid"]
	require.True(t, ok)
	assert.Equal(t, "2024-01-01-episode-1.mp3", entry.AudioFilename)
}

func TestScanRemovesLeftoverPartialFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.mp3.partial"), []byte("x"), 0o644))

	events := &recordingSink{}
	_, err := Scan(dir, events)

	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "stale.mp3.partial"))
	assert.Contains(t, events.kinds, "PartialFilesCleanedUp")
}

func TestScanSkipsMalformedSidecarWithoutFailing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	known, err := Scan(dir, progress.NoopSink{})

	require.NoError(t, err)
	assert.Empty(t, known)
}

func TestScanOnEmptyDirectoryIsValid(t *testing.T) {
	dir := t.TempDir()

	known, err := Scan(dir, progress.NoopSink{})

	require.NoError(t, err)
	assert.Empty(t, known)
}

type recordingSink struct {
	kinds []string
}

func (s *recordingSink) Handle(e progress.Event) {
	switch e.(type) {
	case progress.PartialFilesCleanedUp:
		s.kinds = append(s.kinds, "PartialFilesCleanedUp")
	}
}
