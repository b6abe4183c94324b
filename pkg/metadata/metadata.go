// Package metadata defines the on-disk JSON shapes castsync writes next
// to downloaded audio: one podcast.json per output directory, and one
// sidecar per episode.
package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/mxpv/castsync/pkg/model"
)

// PodcastMetadata is written to <output>/podcast.json on every
// successful sync, overwriting the previous copy.
type PodcastMetadata struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Link        *string   `json:"link"`
	Author      *string   `json:"author"`
	ImageURL    *string   `json:"image_url"`
	FeedURL     string    `json:"feed_url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EpisodeSidecar is written to <output>/<base>.json next to its audio
// file. Optional fields omitted from JSON when absent.
type EpisodeSidecar struct {
	Title         string  `json:"title"`
	Description   *string `json:"description,omitempty"`
	PubDate       *string `json:"pub_date,omitempty"`
	GUID          *string `json:"guid,omitempty"`
	OriginalURL   string  `json:"original_url"`
	DownloadedAt  string  `json:"downloaded_at"`
	Duration      *string `json:"duration,omitempty"`
	EpisodeNumber *int    `json:"episode_number,omitempty"`
	SeasonNumber  *int    `json:"season_number,omitempty"`
	AudioFilename string  `json:"audio_filename"`
	ContentHash   string  `json:"content_hash"`
}

// IdentityKey is the GUID if present, else the original enclosure URL —
// the same rule model.Episode.IdentityKey uses, so a round-tripped
// sidecar identifies the same episode it was written for.
func (s *EpisodeSidecar) IdentityKey() string {
	if s.GUID != nil && *s.GUID != "" {
		return *s.GUID
	}
	return s.OriginalURL
}

// FromPodcast converts a parsed Podcast into the metadata record
// written to podcast.json, stamping updatedAt (normalized to UTC) as
// its update time.
func FromPodcast(p *model.Podcast, updatedAt time.Time) *PodcastMetadata {
	return &PodcastMetadata{
		Title:       p.Title,
		Description: optionalString(p.Description),
		Link:        optionalString(p.Link),
		Author:      optionalString(p.Author),
		ImageURL:    optionalString(p.ImageURL),
		FeedURL:     p.FeedURL,
		UpdatedAt:   updatedAt.UTC(),
	}
}

// FromEpisode converts a parsed Episode plus its post-download facts
// into the sidecar record written next to its audio file.
func FromEpisode(e *model.Episode, audioFilename, contentHash string, downloadedAt time.Time) *EpisodeSidecar {
	s := &EpisodeSidecar{
		Title:         e.Title,
		Description:   optionalString(e.Description),
		OriginalURL:   e.Enclosure.URL,
		DownloadedAt:  downloadedAt.UTC().Format(time.RFC3339),
		Duration:      optionalString(e.Duration),
		EpisodeNumber: e.EpisodeNumber,
		SeasonNumber:  e.SeasonNumber,
		AudioFilename: audioFilename,
		ContentHash:   contentHash,
	}
	if e.GUID != "" {
		guid := e.GUID
		s.GUID = &guid
	}
	if e.PubDate != nil {
		pub := e.PubDate.UTC().Format(time.RFC3339)
		s.PubDate = &pub
	}
	return s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

const podcastFilename = "podcast.json"

// PodcastMetadataPath returns the fixed podcast.json path for an output
// directory.
func PodcastMetadataPath(outputDir string) string {
	return filepath.Join(outputDir, podcastFilename)
}

// IsPodcastMetadataFile reports whether name is the reserved
// podcast-level metadata file, as opposed to an episode sidecar.
func IsPodcastMetadataFile(name string) bool {
	return name == podcastFilename
}

// WritePodcastMetadata pretty-prints m to <outputDir>/podcast.json,
// creating outputDir if missing.
func WritePodcastMetadata(outputDir string, m *PodcastMetadata) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrapf(err, "create output directory %s", outputDir)
	}
	return writeJSON(PodcastMetadataPath(outputDir), m)
}

// ReadPodcastMetadata reads and decodes <outputDir>/podcast.json.
func ReadPodcastMetadata(outputDir string) (*PodcastMetadata, error) {
	path := PodcastMetadataPath(outputDir)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var m PodcastMetadata
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return &m, nil
}

// WriteEpisodeSidecar pretty-prints s to <outputDir>/<base>.json.
func WriteEpisodeSidecar(outputDir, base string, s *EpisodeSidecar) error {
	return writeJSON(filepath.Join(outputDir, base+".json"), s)
}

// ReadEpisodeSidecar reads and decodes an episode sidecar from path.
func ReadEpisodeSidecar(path string) (*EpisodeSidecar, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read sidecar %s", path)
	}
	var s EpisodeSidecar
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrapf(err, "decode sidecar %s", path)
	}
	return &s, nil
}

func writeJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	b = append(b, '\n')
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
