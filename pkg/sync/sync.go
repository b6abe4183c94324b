// Package sync implements the orchestrator: it wires the feed loader,
// state scanner, planner, and episode downloader into one sync run.
package sync

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mxpv/castsync/pkg/download"
	"github.com/mxpv/castsync/pkg/feed"
	"github.com/mxpv/castsync/pkg/metadata"
	"github.com/mxpv/castsync/pkg/progress"
	"github.com/mxpv/castsync/pkg/state"
	"github.com/mxpv/castsync/pkg/transport"
)

// Options configures a single sync run.
type Options struct {
	// Source is a feed URL or a local feed file path.
	Source string
	// OutputDir is the directory synced episodes live in.
	OutputDir string
	// MaxConcurrent bounds the episode downloader's worker pool.
	MaxConcurrent int
	// Limit caps how many new episodes are downloaded this run. Nil
	// means no cap.
	Limit *int
	// Sink receives progress events. Never nil; pass progress.NoopSink{}
	// for quiet mode.
	Sink progress.Sink
}

// FailedEpisode records why one episode's download failed.
type FailedEpisode struct {
	Title        string
	ErrorMessage string
}

// Result is the terminal outcome of a sync run.
type Result struct {
	Downloaded     int
	Skipped        int
	Failed         int
	FailedEpisodes []FailedEpisode
}

// Run executes one full sync: fetch, write podcast metadata, scan,
// plan, download, summarize. A feed-fetch or scan failure aborts the
// whole run; a per-episode download failure is recorded but never
// cancels its peers.
func Run(ctx context.Context, client transport.Client, opts Options) (*Result, error) {
	sink := opts.Sink
	if sink == nil {
		sink = progress.NoopSink{}
	}

	sink.Handle(progress.FetchingFeed{Source: opts.Source})

	feedURL := opts.Source
	if feed.IsLocalPath(opts.Source) {
		feedURL = feed.FilePathToURL(opts.Source)
	}

	raw, err := feed.FetchBytes(ctx, client, opts.Source)
	if err != nil {
		return nil, err
	}

	podcast, err := feed.Parse(raw, feedURL)
	if err != nil {
		return nil, err
	}

	pm := metadata.FromPodcast(podcast, time.Now())
	if err := metadata.WritePodcastMetadata(opts.OutputDir, pm); err != nil {
		return nil, errors.Wrap(err, "write podcast metadata")
	}

	known, err := state.Scan(opts.OutputDir, sink)
	if err != nil {
		return nil, errors.Wrap(err, "scan output directory")
	}

	plan := state.CreatePlan(podcast.Episodes, known, opts.Limit)

	sink.Handle(progress.FeedParsed{
		PodcastTitle:  podcast.Title,
		TotalEpisodes: len(podcast.Episodes) + podcast.Dropped,
		NewEpisodes:   len(plan.ToDownload),
	})

	// Skipped never includes episodes merely excluded by --limit: those
	// are still pending, just deferred to a future run. AlreadyPresent
	// is computed by the planner before limiting, so it's immune to that.
	skipped := plan.AlreadyPresent + podcast.Dropped

	result := &Result{Skipped: skipped}
	if len(plan.ToDownload) == 0 {
		sink.Handle(progress.SyncCompleted{Downloaded: 0, Skipped: skipped, Failed: 0})
		return result, nil
	}

	downloaded, failedEpisodes := downloadAll(ctx, client, plan.ToDownload, opts.OutputDir, opts.MaxConcurrent, sink)

	result.Downloaded = downloaded
	result.Failed = len(failedEpisodes)
	result.FailedEpisodes = failedEpisodes

	sink.Handle(progress.SyncCompleted{Downloaded: result.Downloaded, Skipped: result.Skipped, Failed: result.Failed})

	return result, nil
}

// downloadAll runs the bounded worker pool: max_concurrent permits,
// each a stable slot id reused as workers finish. Dispatch order
// follows plan (newest-first); completion order is not deterministic.
func downloadAll(ctx context.Context, client transport.Client, plan state.Plan, outputDir string, maxConcurrent int, sink progress.Sink) (int, []FailedEpisode) {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if maxConcurrent > len(plan) {
		maxConcurrent = len(plan)
	}

	slots := make(chan int, maxConcurrent)
	for i := 0; i < maxConcurrent; i++ {
		slots <- i
	}

	var (
		mu         sync.Mutex
		downloaded int
		failed     []FailedEpisode
	)

	g, gctx := errgroup.WithContext(ctx)

	for _, planned := range plan {
		planned := planned
		slotID := <-slots

		g.Go(func() error {
			defer func() { slots <- slotID }()

			_, err := download.Run(gctx, client, planned.Episode, outputDir, planned.BaseName, slotID, sink)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.WithError(err).WithField("episode", planned.Episode.Title).Warn("episode download failed")
				failed = append(failed, FailedEpisode{Title: planned.Episode.Title, ErrorMessage: err.Error()})
			} else {
				downloaded++
			}
			return nil
		})
	}

	_ = g.Wait()

	return downloaded, failed
}
