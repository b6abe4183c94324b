package config

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxpv/castsync/pkg/progress"
	"github.com/mxpv/castsync/pkg/transport"
)

const miniFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Mini</title>
<item><title>One</title><guid>1</guid><enclosure url="https://example.com/1.mp3" type="audio/mpeg"/></item>
</channel></rss>`

type fakeClient struct{ fail bool }

func (c *fakeClient) GetBytes(ctx context.Context, url string) ([]byte, error) {
	if c.fail {
		return nil, assert.AnError
	}
	return []byte(miniFeed), nil
}

func (c *fakeClient) OpenStream(ctx context.Context, url string) (*transport.Stream, error) {
	body := []byte("audio")
	length := int64(len(body))
	return &transport.Stream{Status: 200, ContentLength: &length, Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestRunBatchSyncsEveryFeed(t *testing.T) {
	cfg := &BatchConfig{Feeds: []Feed{
		{Name: "a", Source: "https://example.com/a.xml", OutputDir: t.TempDir(), Concurrent: 1},
		{Name: "b", Source: "https://example.com/b.xml", OutputDir: t.TempDir(), Concurrent: 1},
	}}

	results, err := RunBatch(context.Background(), cfg, &fakeClient{}, progress.NoopSink{})

	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 1, results["a"].Downloaded)
}

func TestRunBatchAggregatesPerFeedFailures(t *testing.T) {
	cfg := &BatchConfig{Feeds: []Feed{
		{Name: "good", Source: "https://example.com/good.xml", OutputDir: t.TempDir(), Concurrent: 1},
	}}

	_, err := RunBatch(context.Background(), cfg, &fakeClient{fail: true}, progress.NoopSink{})

	assert.Error(t, err)
}
