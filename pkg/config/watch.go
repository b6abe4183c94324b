package config

import (
	"context"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/castsync/pkg/progress"
	"github.com/mxpv/castsync/pkg/transport"
)

// Watch runs the batch once immediately, then again on every firing of
// cronExpr until ctx is cancelled. A still-running batch is never
// double-scheduled — the same guard the teacher's scheduler uses.
func Watch(ctx context.Context, cfg *BatchConfig, client transport.Client, sink progress.Sink, cronExpr string) error {
	if _, err := RunBatch(ctx, cfg, client, sink); err != nil {
		log.WithError(err).Error("initial batch run failed")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(nil)))

	_, err := c.AddFunc(cronExpr, func() {
		if _, err := RunBatch(ctx, cfg, client, sink); err != nil {
			log.WithError(err).Error("scheduled batch run failed")
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	defer func() {
		log.Info("stopping scheduler")
		c.Stop()
	}()

	<-ctx.Done()
	return ctx.Err()
}
