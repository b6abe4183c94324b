package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/castsync/pkg/config"
	"github.com/mxpv/castsync/pkg/feed"
	"github.com/mxpv/castsync/pkg/metadata"
	"github.com/mxpv/castsync/pkg/progress"
	"github.com/mxpv/castsync/pkg/server"
	"github.com/mxpv/castsync/pkg/state"
	"github.com/mxpv/castsync/pkg/sync"
	"github.com/mxpv/castsync/pkg/transport"
)

type opts struct {
	Positional struct {
		Source    string `positional-arg-name:"source" description:"feed URL or local file path"`
		OutputDir string `positional-arg-name:"output-dir" description:"directory to sync episodes into"`
	} `positional-args:"yes"`

	Concurrent int    `long:"concurrent" short:"c" default:"3" description:"max parallel downloads"`
	Limit      int    `long:"limit" short:"l" description:"download at most N new episodes, newest first"`
	Quiet      bool   `long:"quiet" short:"q" description:"suppress progress output"`
	Debug      bool   `long:"debug" description:"enable debug logging"`

	Config    string `long:"config" description:"batch config TOML path (mutually exclusive with positional args)"`
	Watch     string `long:"watch" description:"cron expression to re-run the batch on a schedule, requires --config"`
	Serve     bool   `long:"serve" description:"serve the output directory over HTTP after syncing"`
	Host      string `long:"host" default:"127.0.0.1:8080" description:"address to serve on"`
	Republish bool   `long:"republish" description:"write local-feed.xml pointing at --host after syncing"`
}

func main() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
	})

	o := opts{}
	if _, err := flags.Parse(&o); err != nil {
		os.Exit(1)
	}

	if o.Debug {
		log.SetLevel(log.DebugLevel)
	}

	var sink progress.Sink = progress.NoopSink{}
	if !o.Quiet {
		sink = &progress.LogSink{}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-stop
		log.Info("shutting down")
		cancel()
	}()

	client := transport.New(30 * time.Second)

	os.Exit(run(ctx, &o, client, sink))
}

func run(ctx context.Context, o *opts, client transport.Client, sink progress.Sink) int {
	if o.Config != "" {
		return runBatch(ctx, o, client, sink)
	}
	return runSingle(ctx, o, client, sink)
}

func runSingle(ctx context.Context, o *opts, client transport.Client, sink progress.Sink) int {
	if o.Positional.Source == "" || o.Positional.OutputDir == "" {
		log.Error("source and output-dir are required unless --config is given")
		return 1
	}

	var limit *int
	if o.Limit > 0 {
		limit = &o.Limit
	}

	result, err := sync.Run(ctx, client, sync.Options{
		Source:        o.Positional.Source,
		OutputDir:     o.Positional.OutputDir,
		MaxConcurrent: o.Concurrent,
		Limit:         limit,
		Sink:          sink,
	})
	if err != nil {
		log.WithError(err).Error("sync failed")
		return 1
	}

	if o.Serve || o.Republish {
		if err := republish(o.Positional.OutputDir, o.Host); err != nil {
			log.WithError(err).Error("failed to republish local feed")
			return 1
		}
	}

	if o.Serve {
		if err := serve(ctx, o.Host, o.Positional.OutputDir); err != nil {
			log.WithError(err).Error("server error")
			return 1
		}
	}

	if result.Downloaded == 0 && result.Failed > 0 {
		return 1
	}
	return 0
}

func runBatch(ctx context.Context, o *opts, client transport.Client, sink progress.Sink) int {
	cfg, err := config.Load(o.Config)
	if err != nil {
		log.WithError(err).Error("failed to load config")
		return 1
	}

	cronExpr := o.Watch
	if cronExpr == "" {
		cronExpr = cfg.Schedule
	}
	if cronExpr != "" {
		if err := config.Watch(ctx, cfg, client, sink, cronExpr); err != nil && err != context.Canceled {
			log.WithError(err).Error("watch loop exited with error")
			return 1
		}
		return 0
	}

	results, err := config.RunBatch(ctx, cfg, client, sink)
	if err != nil {
		log.WithError(err).Error("one or more feeds failed to sync")
	}

	anyDownloaded := false
	anyFailed := false
	for _, r := range results {
		if r.Downloaded > 0 {
			anyDownloaded = true
		}
		if r.Failed > 0 {
			anyFailed = true
		}
	}

	if !anyDownloaded && anyFailed {
		return 1
	}
	if err != nil {
		return 1
	}
	return 0
}

func republish(outputDir, host string) error {
	pm, err := metadata.ReadPodcastMetadata(outputDir)
	if err != nil {
		return err
	}

	known, err := state.Scan(outputDir, progress.NoopSink{})
	if err != nil {
		return err
	}

	sidecars := make([]*metadata.EpisodeSidecar, 0, len(known))
	for _, entry := range known {
		sidecar, err := metadata.ReadEpisodeSidecar(entry.SidecarPath)
		if err != nil {
			log.WithError(err).WithField("sidecar", entry.SidecarPath).Warn("skipping unreadable sidecar during republish")
			continue
		}
		sidecars = append(sidecars, sidecar)
	}

	xmlDoc, err := feed.Publish(pm, sidecars, "http://"+host)
	if err != nil {
		return err
	}

	return feed.WriteLocalFeed(outputDir, xmlDoc)
}

func serve(ctx context.Context, host, outputDir string) error {
	srv := server.New(host, outputDir)
	log.WithField("addr", host).Info("serving output directory")
	return server.Serve(ctx, srv)
}
