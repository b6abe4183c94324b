package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	itunes "github.com/eduncan911/podcast"
	"github.com/pkg/errors"

	"github.com/mxpv/castsync/pkg/metadata"
)

const localFeedFilename = "local-feed.xml"

// republishedEpisode is one downloaded episode as it will appear in the
// republished local feed.
type republishedEpisode struct {
	sidecar *metadata.EpisodeSidecar
	pubDate time.Time
	hasDate bool
}

// Publish builds an RSS 2.0 + iTunes document for the episodes already
// present in the output directory, with every enclosure pointed at
// serveHost. It mirrors the shape the original feed had, but only ever
// lists what has actually been downloaded.
func Publish(pm *metadata.PodcastMetadata, sidecars []*metadata.EpisodeSidecar, serveHost string) (*itunes.Podcast, error) {
	link := ""
	if pm.Link != nil {
		link = *pm.Link
	}

	now := time.Now()
	p := itunes.New(pm.Title, link, describe(pm.Description), &pm.UpdatedAt, &now)

	if pm.Author != nil {
		p.IAuthor = *pm.Author
	}
	if pm.ImageURL != nil {
		p.AddImage(*pm.ImageURL)
	}

	episodes := make([]republishedEpisode, 0, len(sidecars))
	for _, s := range sidecars {
		re := republishedEpisode{sidecar: s}
		if s.PubDate != nil {
			if t, err := time.Parse(time.RFC3339, *s.PubDate); err == nil {
				re.pubDate = t
				re.hasDate = true
			}
		}
		episodes = append(episodes, re)
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		a, b := episodes[i], episodes[j]
		switch {
		case !a.hasDate && !b.hasDate:
			return false
		case !a.hasDate:
			return false
		case !b.hasDate:
			return true
		default:
			return a.pubDate.After(b.pubDate)
		}
	})

	for _, re := range episodes {
		s := re.sidecar
		item := itunes.Item{
			GUID:  s.IdentityKey(),
			Title: s.Title,
			Link:  fmt.Sprintf("%s/%s", serveHost, s.AudioFilename),
		}
		// Every item needs a non-empty description; fall back to the title
		// when the sidecar has none.
		item.Description = s.Title
		if s.Description != nil && *s.Description != "" {
			item.Description = *s.Description
		}
		if re.hasDate {
			item.AddPubDate(&re.pubDate)
		}
		if s.Duration != nil {
			item.AddDuration(parseDurationSeconds(*s.Duration))
		}

		enclosureURL := fmt.Sprintf("%s/%s", serveHost, s.AudioFilename)
		item.AddEnclosure(enclosureURL, itunes.MP3, 0)

		if _, err := p.AddItem(item); err != nil {
			return nil, errors.Wrapf(err, "publish episode %q", s.Title)
		}
	}

	return &p, nil
}

// WriteLocalFeed writes a published podcast's RSS+iTunes XML to
// <outputDir>/local-feed.xml, overwriting any previous copy.
func WriteLocalFeed(outputDir string, p *itunes.Podcast) error {
	path := filepath.Join(outputDir, localFeedFilename)
	if err := os.WriteFile(path, p.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

func describe(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseDurationSeconds converts an "HH:MM:SS"-shaped duration string
// into seconds; unparseable durations yield 0, which the feed reader
// treats as "unknown".
func parseDurationSeconds(s string) int64 {
	var h, m, sec int64
	switch n := countColons(s); n {
	case 2:
		fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec)
	case 1:
		fmt.Sscanf(s, "%d:%d", &m, &sec)
	default:
		fmt.Sscanf(s, "%d", &sec)
	}
	return h*3600 + m*60 + sec
}

func countColons(s string) int {
	n := 0
	for _, r := range s {
		if r == ':' {
			n++
		}
	}
	return n
}
