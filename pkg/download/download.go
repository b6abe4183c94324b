// Package download implements the episode downloader: the OPEN ->
// STREAMING -> FINALIZE -> DONE state machine that turns one planned
// episode into an audio file plus its sidecar.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/mxpv/castsync/pkg/filename"
	"github.com/mxpv/castsync/pkg/fs"
	"github.com/mxpv/castsync/pkg/metadata"
	"github.com/mxpv/castsync/pkg/model"
	"github.com/mxpv/castsync/pkg/progress"
	"github.com/mxpv/castsync/pkg/transport"
)

const (
	chunkSize        = 32 * 1024
	progressInterval = 250 * time.Millisecond
)

// Result is what a successful download produced.
type Result struct {
	BytesDownloaded int64
	ContentHash     string
	AudioFilename   string
}

// Run executes the downloader state machine for one planned episode.
// baseName is the collision-free base the planner assigned; slotID
// identifies this worker's row in the progress sink for the run.
func Run(ctx context.Context, client transport.Client, episode *model.Episode, outputDir, baseName string, slotID int, sink progress.Sink) (*Result, error) {
	url := episode.Enclosure.URL

	stream, err := client.OpenStream(ctx, url)
	if err != nil {
		return nil, fail(sink, slotID, episode.Title, "", &Error{Kind: Transport, Err: err})
	}
	defer stream.Body.Close()

	if stream.Status < 200 || stream.Status >= 300 {
		return nil, fail(sink, slotID, episode.Title, "", &Error{Kind: BadStatus, Status: stream.Status})
	}

	ext := filename.Extension(episode.Enclosure)
	audioFilename := baseName + "." + ext
	finalPath := filepath.Join(outputDir, audioFilename)

	sink.Handle(progress.DownloadStarting{
		SlotID:       slotID,
		EpisodeTitle: episode.Title,
		TotalBytes:   stream.ContentLength,
	})

	bytesDownloaded, contentHash, err := streamToPartial(stream.Body, finalPath, stream.ContentLength, slotID, episode.Title, sink)
	if err != nil {
		return nil, fail(sink, slotID, episode.Title, finalPath, err)
	}

	sink.Handle(progress.Finalizing{SlotID: slotID, EpisodeTitle: episode.Title})

	if err := fs.CommitPartial(finalPath); err != nil {
		return nil, fail(sink, slotID, episode.Title, finalPath, &Error{Kind: RenameFailed, Err: err})
	}

	sidecar := metadata.FromEpisode(episode, audioFilename, contentHash, time.Now())
	if err := metadata.WriteEpisodeSidecar(outputDir, baseName, sidecar); err != nil {
		return nil, fail(sink, slotID, episode.Title, "", &Error{Kind: Metadata, Err: err})
	}

	sink.Handle(progress.DownloadCompleted{
		SlotID:          slotID,
		EpisodeTitle:    episode.Title,
		BytesDownloaded: bytesDownloaded,
	})

	return &Result{BytesDownloaded: bytesDownloaded, ContentHash: contentHash, AudioFilename: audioFilename}, nil
}

// streamToPartial copies body into finalPath's .partial file, hashing
// every chunk exactly once and emitting throttled progress updates.
func streamToPartial(body io.Reader, finalPath string, totalBytes *int64, slotID int, title string, sink progress.Sink) (int64, string, error) {
	file, err := fs.CreatePartial(finalPath)
	if err != nil {
		return 0, "", &Error{Kind: Io, Err: err}
	}
	defer file.Close()

	hasher := sha256.New()
	buf := make([]byte, chunkSize)
	var downloaded int64
	lastEmit := time.Time{}

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
			if _, writeErr := file.Write(buf[:n]); writeErr != nil {
				return 0, "", &Error{Kind: Io, Err: writeErr}
			}
			downloaded += int64(n)

			if time.Since(lastEmit) >= progressInterval {
				sink.Handle(progress.DownloadProgress{SlotID: slotID, BytesDownloaded: downloaded, TotalBytes: totalBytes})
				lastEmit = time.Now()
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return 0, "", &Error{Kind: Transport, Err: readErr}
		}
	}

	sink.Handle(progress.DownloadProgress{SlotID: slotID, BytesDownloaded: downloaded, TotalBytes: totalBytes})

	if err := file.Sync(); err != nil {
		return 0, "", &Error{Kind: Io, Err: err}
	}

	contentHash := fmt.Sprintf("sha256:%s", hex.EncodeToString(hasher.Sum(nil)))
	return downloaded, contentHash, nil
}

func fail(sink progress.Sink, slotID int, title, finalPath string, err error) error {
	if finalPath != "" {
		fs.RemovePartial(finalPath)
	}
	sink.Handle(progress.DownloadFailed{SlotID: slotID, EpisodeTitle: title, ErrorMessage: err.Error()})
	return err
}
