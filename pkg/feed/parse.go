package feed

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/castsync/pkg/model"
)

// Parse decodes RSS 2.0 (with iTunes extensions) bytes into a Podcast.
// feedURL is the normalized source identifier stamped onto the result
// (the fetch URL for remote feeds, or a file:// form for local ones).
//
// Items with no enclosure are dropped with a warning log rather than
// failing the whole feed; an empty item list is a valid, empty podcast.
func Parse(xmlBytes []byte, feedURL string) (*model.Podcast, error) {
	parser := gofeed.NewParser()

	parsed, err := parser.Parse(bytes.NewReader(xmlBytes))
	if err != nil {
		return nil, &ParseError{Reason: "malformed RSS document", Err: err}
	}

	if strings.TrimSpace(parsed.Title) == "" {
		return nil, &ParseError{Reason: "channel is missing a title"}
	}

	podcast := &model.Podcast{
		Title:       parsed.Title,
		Description: parsed.Description,
		Link:        parsed.Link,
		FeedURL:     feedURL,
	}

	if parsed.ITunesExt != nil && parsed.ITunesExt.Author != "" {
		podcast.Author = parsed.ITunesExt.Author
	} else if parsed.Author != nil {
		podcast.Author = parsed.Author.Name
	}

	if parsed.Image != nil && parsed.Image.URL != "" {
		podcast.ImageURL = parsed.Image.URL
	} else if parsed.ITunesExt != nil && parsed.ITunesExt.Image != "" {
		podcast.ImageURL = parsed.ITunesExt.Image
	}

	for _, item := range parsed.Items {
		episode, ok := parseEpisode(item)
		if !ok {
			podcast.Dropped++
			continue
		}
		podcast.Episodes = append(podcast.Episodes, episode)
	}

	return podcast, nil
}

func parseEpisode(item *gofeed.Item) (*model.Episode, bool) {
	title := item.Title
	if strings.TrimSpace(title) == "" {
		title = "Untitled"
	}

	if len(item.Enclosures) == 0 {
		log.WithField("episode_title", title).Warn("dropping episode with no enclosure")
		return nil, false
	}
	enc := item.Enclosures[0]
	if strings.TrimSpace(enc.URL) == "" {
		log.WithField("episode_title", title).Warn("dropping episode with empty enclosure URL")
		return nil, false
	}

	episode := &model.Episode{
		Title:       title,
		Description: item.Description,
		GUID:        item.GUID,
		Enclosure: model.Enclosure{
			URL:      enc.URL,
			MIMEType: enc.Type,
		},
	}

	if enc.Length != "" {
		if length, err := strconv.ParseInt(enc.Length, 10, 64); err == nil && length > 0 {
			episode.Enclosure.Length = &length
		}
	}

	if item.PublishedParsed != nil {
		pub := *item.PublishedParsed
		episode.PubDate = &pub
	}

	if item.ITunesExt != nil {
		episode.Duration = item.ITunesExt.Duration
		if n, err := strconv.Atoi(item.ITunesExt.Episode); err == nil {
			episode.EpisodeNumber = &n
		}
		if n, err := strconv.Atoi(item.ITunesExt.Season); err == nil {
			episode.SeasonNumber = &n
		}
	}

	return episode, true
}
