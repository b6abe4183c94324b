package feed

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mxpv/castsync/pkg/transport"
)

// IsLocalPath reports whether source resolves to an existing file on
// disk. Per the loader contract, file existence wins over URL parsing:
// an ambiguous string that happens to also be a valid relative path is
// treated as a path.
func IsLocalPath(source string) bool {
	info, err := os.Stat(source)
	return err == nil && !info.IsDir()
}

// FilePathToURL synthesizes the normalized feed_url used for local
// files: a file:// form of the absolute path.
func FilePathToURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

// FetchBytes obtains the raw feed bytes, treating source as a local path
// when it exists and otherwise as a URL to fetch over client.
func FetchBytes(ctx context.Context, client transport.Client, source string) ([]byte, error) {
	if IsLocalPath(source) {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, &IOError{Path: source, Err: err}
		}
		return b, nil
	}

	b, err := client.GetBytes(ctx, source)
	if err != nil {
		return nil, &FetchError{URL: source, Err: err}
	}
	return b, nil
}
