package config

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/castsync/pkg/progress"
	"github.com/mxpv/castsync/pkg/sync"
	"github.com/mxpv/castsync/pkg/transport"
)

// RunBatch runs one sync per configured feed, aggregating per-feed
// failures instead of aborting on the first one — the same aggregation
// style the teacher uses for feed update errors.
func RunBatch(ctx context.Context, cfg *BatchConfig, client transport.Client, sink progress.Sink) (map[string]*sync.Result, error) {
	results := make(map[string]*sync.Result, len(cfg.Feeds))
	var multi *multierror.Error

	for _, f := range cfg.Feeds {
		logger := log.WithField("feed", f.Name)
		logger.Info("syncing feed")

		var limit *int
		if f.Limit > 0 {
			l := f.Limit
			limit = &l
		}

		result, err := sync.Run(ctx, client, sync.Options{
			Source:        f.Source,
			OutputDir:     f.OutputDir,
			MaxConcurrent: f.Concurrent,
			Limit:         limit,
			Sink:          sink,
		})
		if err != nil {
			logger.WithError(err).Error("feed sync failed")
			multi = multierror.Append(multi, errors.Wrapf(err, "feed %q", f.Name))
			continue
		}

		results[f.Name] = result
	}

	return results, multi.ErrorOrNil()
}
