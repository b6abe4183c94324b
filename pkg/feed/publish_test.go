package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxpv/castsync/pkg/metadata"
)

func TestPublishOrdersEpisodesNewestFirst(t *testing.T) {
	link := "https://example.com"
	pm := &metadata.PodcastMetadata{
		Title:     "Test Podcast",
		Link:      &link,
		FeedURL:   "https://example.com/feed.xml",
		UpdatedAt: time.Now(),
	}

	older := "2024-01-01T00:00:00Z"
	newer := "2024-06-01T00:00:00Z"
	sidecars := []*metadata.EpisodeSidecar{
		{Title: "Older", PubDate: &older, OriginalURL: "https://example.com/older.mp3", AudioFilename: "older.mp3", ContentHash: "sha256:a"},
		{Title: "Newer", PubDate: &newer, OriginalURL: "https://example.com/newer.mp3", AudioFilename: "newer.mp3", ContentHash: "sha256:b"},
	}

	built, err := Publish(pm, sidecars, "http://127.0.0.1:8080")

	require.NoError(t, err)
	require.Len(t, built.Items, 2)
	assert.Equal(t, "Newer", built.Items[0].Title)
	assert.Equal(t, "Older", built.Items[1].Title)
}

func TestPublishEnclosurePointsAtServeHost(t *testing.T) {
	pm := &metadata.PodcastMetadata{Title: "Show", FeedURL: "https://example.com/feed.xml", UpdatedAt: time.Now()}
	sidecars := []*metadata.EpisodeSidecar{
		{Title: "Ep 1", OriginalURL: "https://example.com/ep1.mp3", AudioFilename: "ep1.mp3", ContentHash: "sha256:a"},
	}

	built, err := Publish(pm, sidecars, "http://localhost:9090")

	require.NoError(t, err)
	require.Len(t, built.Items, 1)
	assert.Contains(t, built.Items[0].Enclosure.URL, "http://localhost:9090/ep1.mp3")
}

func TestPublishWithNoEpisodesYieldsEmptyFeed(t *testing.T) {
	pm := &metadata.PodcastMetadata{Title: "Show", FeedURL: "https://example.com/feed.xml", UpdatedAt: time.Now()}

	built, err := Publish(pm, nil, "http://localhost:9090")

	require.NoError(t, err)
	assert.Empty(t, built.Items)
}
