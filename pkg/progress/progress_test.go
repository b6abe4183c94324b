package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopSinkHandlesAllVariants(t *testing.T) {
	var sink NoopSink
	total := int64(1024)

	assert.NotPanics(t, func() {
		sink.Handle(FetchingFeed{Source: "https://example.com/feed.xml"})
		sink.Handle(FeedParsed{PodcastTitle: "Test Podcast", TotalEpisodes: 10, NewEpisodes: 5})
		sink.Handle(ScanStarted{TotalFiles: 20})
		sink.Handle(ScanProgress{Processed: 10})
		sink.Handle(ScanCompleted{KnownEpisodes: 7})
		sink.Handle(PartialFilesCleanedUp{Count: 2})
		sink.Handle(DownloadStarting{SlotID: 0, EpisodeTitle: "Episode 1", TotalBytes: &total})
		sink.Handle(DownloadProgress{SlotID: 0, BytesDownloaded: 512, TotalBytes: &total})
		sink.Handle(Finalizing{SlotID: 0, EpisodeTitle: "Episode 1"})
		sink.Handle(DownloadCompleted{SlotID: 0, EpisodeTitle: "Episode 1", BytesDownloaded: 1024})
		sink.Handle(DownloadFailed{SlotID: 1, EpisodeTitle: "Episode 2", ErrorMessage: "connection timeout"})
		sink.Handle(SyncCompleted{Downloaded: 4, Skipped: 5, Failed: 1})
	})
}

// collectingSink records every event it receives; used to assert a sink
// tolerates concurrent invocation without corrupting its own state.
type collectingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *collectingSink) Handle(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func TestSinkToleratesConcurrentInvocation(t *testing.T) {
	sink := &collectingSink{}
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			sink.Handle(DownloadStarting{SlotID: slot, EpisodeTitle: "Episode"})
			sink.Handle(DownloadCompleted{SlotID: slot, EpisodeTitle: "Episode", BytesDownloaded: 100})
		}(i)
	}
	wg.Wait()

	assert.Len(t, sink.events, 16)
}
