// Package state implements the output directory scanner (what's
// already downloaded) and the sync planner (what to download next).
package state

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/mxpv/castsync/pkg/fs"
	"github.com/mxpv/castsync/pkg/metadata"
	"github.com/mxpv/castsync/pkg/progress"
)

// Entry is one already-downloaded episode as recovered from its
// sidecar.
type Entry struct {
	SidecarPath   string
	AudioFilename string
	GUID          string
}

// OutputState maps an episode's identity key (GUID if present, else its
// enclosure URL) to what the scanner found on disk for it.
type OutputState map[string]Entry

// Scan walks dir non-recursively, removes leftover .partial files, and
// reads every episode sidecar it finds into an OutputState. Malformed
// sidecars are logged and skipped rather than failing the scan.
func Scan(dir string, sink progress.Sink) (OutputState, error) {
	names, err := fs.ListDirEntries(dir)
	if err != nil {
		return nil, err
	}

	sink.Handle(progress.ScanStarted{TotalFiles: len(names)})

	partialsRemoved := 0
	out := make(OutputState)

	for i, name := range names {
		switch {
		case fs.IsPartialFile(name):
			path := filepath.Join(dir, name)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.WithError(err).WithField("path", path).Warn("failed to remove partial file")
			}
			partialsRemoved++

		case fs.HasSuffix(name, ".json") && !metadata.IsPodcastMetadataFile(name):
			path := filepath.Join(dir, name)
			sidecar, err := metadata.ReadEpisodeSidecar(path)
			if err != nil {
				log.WithError(err).WithField("path", path).Warn("skipping malformed sidecar")
				continue
			}

			entry := Entry{SidecarPath: path, AudioFilename: sidecar.AudioFilename}
			if sidecar.GUID != nil {
				entry.GUID = *sidecar.GUID
			}
			out[sidecar.IdentityKey()] = entry
		}

		if (i+1)%50 == 0 {
			sink.Handle(progress.ScanProgress{Processed: i + 1})
		}
	}

	if partialsRemoved > 0 {
		sink.Handle(progress.PartialFilesCleanedUp{Count: partialsRemoved})
	}

	sink.Handle(progress.ScanCompleted{KnownEpisodes: len(out)})

	return out, nil
}
