package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "castsync.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesFeedList(t *testing.T) {
	path := writeConfig(t, `
schedule = "0 */6 * * *"

[[feed]]
name = "example"
source = "https://example.com/feed.xml"
output_dir = "/tmp/example"
limit = 5
concurrent = 4
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, "example", cfg.Feeds[0].Name)
	assert.Equal(t, "https://example.com/feed.xml", cfg.Feeds[0].Source)
	assert.Equal(t, "/tmp/example", cfg.Feeds[0].OutputDir)
	assert.Equal(t, 5, cfg.Feeds[0].Limit)
	assert.Equal(t, 4, cfg.Feeds[0].Concurrent)
	assert.Equal(t, "0 */6 * * *", cfg.Schedule)
}

func TestLoadAppliesDefaultConcurrency(t *testing.T) {
	path := writeConfig(t, `
[[feed]]
name = "example"
source = "https://example.com/feed.xml"
output_dir = "/tmp/example"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, 3, cfg.Feeds[0].Concurrent)
}

func TestLoadAppliesBatchDefaultConcurrency(t *testing.T) {
	path := writeConfig(t, `
[defaults]
concurrent = 8

[[feed]]
name = "example"
source = "https://example.com/feed.xml"
output_dir = "/tmp/example"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Feeds[0].Concurrent)
}

func TestLoadRejectsEmptyFeedList(t *testing.T) {
	path := writeConfig(t, `schedule = "@hourly"`)

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoadRejectsFeedMissingSource(t *testing.T) {
	path := writeConfig(t, `
[[feed]]
name = "broken"
output_dir = "/tmp/broken"
`)

	_, err := Load(path)

	assert.Error(t, err)
}
