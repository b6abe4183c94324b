// Package server serves a synced output directory over plain HTTP so
// any podcast client can point at it, using the same gin-gonic static
// file serving the teacher uses for its own download surface.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// New builds an http.Server exposing outputDir's contents at "/" —
// audio files, episode sidecars, podcast.json, and local-feed.xml if
// one has been published. No sessions, no auth, no templating: this is
// a debugging convenience, not a hosting surface.
func New(addr, outputDir string) *http.Server {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Static("/", outputDir)

	return &http.Server{
		Addr:    addr,
		Handler: r,
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
