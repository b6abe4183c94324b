// Package fs wraps the handful of filesystem primitives the state
// scanner and episode downloader need: atomic-write staging via
// .partial files, and non-recursive directory enumeration.
package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const partialSuffix = ".partial"

// PartialPath returns the staging path a download writes to before it
// is committed: <finalPath>.partial.
func PartialPath(finalPath string) string {
	return finalPath + partialSuffix
}

// CreatePartial creates (or truncates) the .partial file for finalPath,
// making the parent directory first if needed.
func CreatePartial(finalPath string) (*os.File, error) {
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", dir)
	}

	partial := PartialPath(finalPath)
	f, err := os.Create(partial)
	if err != nil {
		return nil, errors.Wrapf(err, "create partial file %s", partial)
	}
	return f, nil
}

// CommitPartial renames finalPath's .partial file into place. This is
// the atomic commit point: same-directory rename is atomic on POSIX
// filesystems. On failure the partial is removed.
func CommitPartial(finalPath string) error {
	partial := PartialPath(finalPath)
	if err := os.Rename(partial, finalPath); err != nil {
		RemovePartial(finalPath)
		return errors.Wrapf(err, "rename %s to %s", partial, finalPath)
	}
	return nil
}

// RemovePartial deletes finalPath's .partial file, if present, logging
// and swallowing any error beyond "not found" since this always runs on
// a failure path that already has a primary error to report.
func RemovePartial(finalPath string) {
	partial := PartialPath(finalPath)
	if err := os.Remove(partial); err != nil && !os.IsNotExist(err) {
		log.WithError(err).WithField("path", partial).Warn("failed to remove partial file")
	}
}

// ListDirEntries returns the names of every non-directory entry directly
// in dir (no recursion, no subdirectories). A missing dir yields no
// names and no error.
func ListDirEntries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "read directory %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// HasSuffix reports whether name ends with suffix, case-sensitively —
// a small indirection kept for the scanner's *.partial and *.json
// filters, matching the teacher's habit of naming even trivial string
// checks.
func HasSuffix(name, suffix string) bool {
	return strings.HasSuffix(name, suffix)
}

// IsPartialFile reports whether name is a leftover .partial file.
func IsPartialFile(name string) bool {
	return HasSuffix(name, partialSuffix)
}
