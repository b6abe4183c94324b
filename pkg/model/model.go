// Package model defines the feed/episode data types shared by every other
// package in castsync.
package model

import "time"

// Podcast is a parsed RSS 2.0 feed, including the iTunes channel
// extensions castsync understands.
type Podcast struct {
	Title       string
	Description string
	Link        string
	Author      string
	ImageURL    string
	// FeedURL is the normalized source identifier: the original URL for
	// remote feeds, or a synthesized file:// form for local files.
	FeedURL string
	// Episodes preserves feed order.
	Episodes []*Episode
	// Dropped counts feed items excluded during parsing itself (e.g. no
	// enclosure) — never downloaded, so the orchestrator folds this
	// into its skipped count.
	Dropped int
}

// Episode is a single podcast feed item with a downloadable enclosure.
type Episode struct {
	Title       string
	Description string
	// PubDate is nil when the feed didn't supply one, or supplied one
	// castsync couldn't parse as RFC 822.
	PubDate *time.Time
	// GUID is the feed-supplied identifier. Empty when absent; IdentityKey
	// falls back to the enclosure URL in that case.
	GUID      string
	Enclosure Enclosure

	Duration      string
	EpisodeNumber *int
	SeasonNumber  *int
}

// Enclosure is the audio payload attached to an episode.
type Enclosure struct {
	URL string
	// Length is the declared byte size from the feed, not a measured one.
	Length   *int64
	MIMEType string
}

// IdentityKey is the value the state scanner and sync planner use to
// decide whether an episode has already been downloaded: the GUID when
// present, otherwise the enclosure URL.
func (e *Episode) IdentityKey() string {
	if e.GUID != "" {
		return e.GUID
	}
	return e.Enclosure.URL
}
