package progress

import (
	log "github.com/sirupsen/logrus"
)

// LogSink renders every event as a structured logrus line, in the same
// WithFields style the rest of castsync uses for diagnostics. It's the
// default sink outside --quiet mode.
type LogSink struct{}

func (LogSink) Handle(e Event) {
	switch ev := e.(type) {
	case FetchingFeed:
		log.WithField("source", ev.Source).Info("fetching feed")
	case FeedParsed:
		log.WithFields(log.Fields{
			"podcast":        ev.PodcastTitle,
			"total_episodes": ev.TotalEpisodes,
			"new_episodes":   ev.NewEpisodes,
		}).Info("feed parsed")
	case ScanStarted:
		log.WithField("total_files", ev.TotalFiles).Debug("scan started")
	case ScanProgress:
		log.WithField("processed", ev.Processed).Debug("scan progress")
	case ScanCompleted:
		log.WithField("known_episodes", ev.KnownEpisodes).Debug("scan completed")
	case PartialFilesCleanedUp:
		log.WithField("count", ev.Count).Info("removed leftover partial files")
	case DownloadStarting:
		log.WithFields(log.Fields{
			"slot":    ev.SlotID,
			"episode": ev.EpisodeTitle,
		}).Info("download starting")
	case DownloadProgress:
		fields := log.Fields{
			"slot":  ev.SlotID,
			"bytes": ev.BytesDownloaded,
		}
		if ev.TotalBytes != nil {
			fields["total_bytes"] = *ev.TotalBytes
		}
		log.WithFields(fields).Debug("download progress")
	case Finalizing:
		log.WithFields(log.Fields{
			"slot":    ev.SlotID,
			"episode": ev.EpisodeTitle,
		}).Debug("finalizing")
	case DownloadCompleted:
		log.WithFields(log.Fields{
			"slot":    ev.SlotID,
			"episode": ev.EpisodeTitle,
			"bytes":   ev.BytesDownloaded,
		}).Info("download completed")
	case DownloadFailed:
		log.WithFields(log.Fields{
			"slot":    ev.SlotID,
			"episode": ev.EpisodeTitle,
			"error":   ev.ErrorMessage,
		}).Warn("download failed")
	case SyncCompleted:
		log.WithFields(log.Fields{
			"downloaded": ev.Downloaded,
			"skipped":    ev.Skipped,
			"failed":     ev.Failed,
		}).Info("sync completed")
	}
}
