// Package config loads the optional TOML file that drives castsync's
// batch mode: a list of feeds to keep synced, plus an optional cron
// schedule for --watch.
package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Feed is one configured feed/output pair in a batch run.
type Feed struct {
	// Name identifies this feed in logs and progress output.
	Name string `toml:"name"`
	// Source is a feed URL or a local feed file path.
	Source string `toml:"source"`
	// OutputDir is the directory this feed's episodes are synced to.
	OutputDir string `toml:"output_dir"`
	// Limit caps how many new episodes are downloaded per run. Zero
	// means no cap.
	Limit int `toml:"limit"`
	// Concurrent overrides the batch default MaxConcurrent for this
	// feed alone. Zero means "use the default".
	Concurrent int `toml:"concurrent"`
}

// Defaults holds batch-wide fallbacks applied to every Feed that
// doesn't set its own value.
type Defaults struct {
	Concurrent int `toml:"concurrent"`
}

// BatchConfig is the top-level shape of a castsync TOML config file.
type BatchConfig struct {
	Defaults Defaults `toml:"defaults"`
	Feeds    []Feed   `toml:"feed"`
	// Schedule is a cron expression for --watch. Empty means castsync
	// runs the batch once and exits.
	Schedule string `toml:"schedule"`
}

// Duration wraps time.Duration with TOML text unmarshaling from Go
// duration strings ("300ms", "1.5h", "2h45m"). No BatchConfig field has
// this type.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Load parses path as a BatchConfig and applies defaults/validation.
func Load(path string) (*BatchConfig, error) {
	var cfg BatchConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to load config file")
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *BatchConfig) applyDefaults() {
	if c.Defaults.Concurrent == 0 {
		c.Defaults.Concurrent = 3
	}
	for i := range c.Feeds {
		if c.Feeds[i].Concurrent == 0 {
			c.Feeds[i].Concurrent = c.Defaults.Concurrent
		}
	}
}

func (c *BatchConfig) validate() error {
	var result *multierror.Error

	if len(c.Feeds) == 0 {
		result = multierror.Append(result, errors.New("at least one feed must be specified"))
	}

	for i, feed := range c.Feeds {
		if feed.Source == "" {
			result = multierror.Append(result, errors.Errorf("feed %d: source is required", i))
		}
		if feed.OutputDir == "" {
			result = multierror.Append(result, errors.Errorf("feed %d: output_dir is required", i))
		}
	}

	return result.ErrorOrNil()
}
