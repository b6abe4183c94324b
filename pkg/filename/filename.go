// Package filename derives deterministic on-disk base names for
// downloaded episodes from feed metadata alone, with no filesystem
// access.
package filename

import (
	"path"
	"regexp"
	"strings"

	"github.com/mxpv/castsync/pkg/model"
)

const maxTitleLength = 100

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// BaseName yields the base such that the final audio path is
// <output>/<base>.<ext> and the sidecar is <output>/<base>.json. It is
// pure and deterministic: two calls over the same episode agree.
func BaseName(e *model.Episode) string {
	slug := Slugify(e.Title)
	if e.PubDate == nil {
		return slug
	}
	return e.PubDate.UTC().Format("2006-01-02") + "-" + slug
}

// Slugify lowercases title, collapses every run of non [a-z0-9]
// characters into a single hyphen, trims leading/trailing hyphens, and
// truncates to maxTitleLength, cutting at the last hyphen when one lies
// in the second half of the kept text and mid-word otherwise. An empty
// result becomes "untitled".
func Slugify(title string) string {
	lower := strings.ToLower(title)
	slug := nonSlugRun.ReplaceAllString(lower, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxTitleLength {
		slug = truncateAtBoundary(slug, maxTitleLength)
	}

	if slug == "" {
		return "untitled"
	}
	return slug
}

func truncateAtBoundary(s string, max int) string {
	cut := s[:max]
	if idx := strings.LastIndex(cut, "-"); idx > max/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, "-")
}

var validAudioExtensions = map[string]bool{
	"mp3": true, "m4a": true, "mp4": true, "aac": true,
	"ogg": true, "opus": true, "wav": true, "flac": true,
}

var mimeToExtension = map[string]string{
	"audio/mpeg":   "mp3",
	"audio/mp3":    "mp3",
	"audio/mp4":    "m4a",
	"audio/m4a":    "m4a",
	"audio/x-m4a":  "m4a",
	"audio/aac":    "aac",
	"audio/ogg":    "ogg",
	"audio/opus":   "opus",
	"audio/wav":    "wav",
	"audio/x-wav":  "wav",
	"audio/flac":   "flac",
	"audio/x-flac": "flac",
}

const defaultExtension = "mp3"

// Extension picks the audio file extension: the enclosure URL's path
// suffix when it names a known audio type, otherwise a MIME-type
// mapping, otherwise "mp3".
func Extension(enc model.Enclosure) string {
	if ext := extensionFromURL(enc.URL); ext != "" {
		return ext
	}
	if enc.MIMEType != "" {
		if ext, ok := mimeToExtension[strings.ToLower(enc.MIMEType)]; ok {
			return ext
		}
	}
	return defaultExtension
}

func extensionFromURL(rawURL string) string {
	clean := rawURL
	if idx := strings.IndexAny(clean, "?#"); idx >= 0 {
		clean = clean[:idx]
	}
	ext := strings.TrimPrefix(path.Ext(clean), ".")
	ext = strings.ToLower(ext)
	if validAudioExtensions[ext] {
		return ext
	}
	return ""
}
