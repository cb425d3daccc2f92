package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floorlottery/internal/handlers"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func (s *srv) serve(ct *cli.Context) error {
	if err := s.load(ct, true); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ct.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the background janitor to evict idle drand rounds.
	s.janitor(ctx)

	r := gin.Default()
	handlers.NewHTTPHandler(s.service, time.Local).RegisterRoutes(r)

	httpServer := &http.Server{
		Addr:    s.configs.Server.Addr(),
		Handler: cors.AllowAll().Handler(r),
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Infof("Server starting on http://%s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Infof("Server stopping")
		return httpServer.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
