package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/supabase/siwe/cmd"
	"github.com/supabase/siwe/internal/api"
	"github.com/supabase/siwe/internal/observability"
	"golang.org/x/sync/errgroup"
)

func main() {
	execCtx, execCancel := context.WithCancel(context.Background())
	defer execCancel()

	go func() {
		shutdownSignal := make(chan os.Signal, 1)
		signal.Notify(shutdownSignal, syscall.SIGTERM, syscall.SIGINT)

		sig := <-shutdownSignal
		logrus.Infof("Triggering shutdown from signal %s", sig)

		execCancel()

		select {
		case <-shutdownSignal:
			logrus.Infof("Received another shutdown signal, exiting")
			os.Exit(1)

		case <-time.After(time.Minute):
			logrus.Infof("Shutdown did not complete within a minute, exiting")
			os.Exit(1)
		}
	}()

	if err := cmd.RootCommand().ExecuteContext(execCtx); err != nil {
		logrus.WithError(err).Fatal(err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Minute)
	defer shutdownCancel()

	var eg errgroup.Group

	eg.Go(func() error {
		// wait for API servers to shut down gracefully
		api.WaitForCleanup(shutdownCtx)
		return nil
	})

	eg.Go(func() error {
		// wait for the metrics exporter to shut down gracefully
		observability.WaitForCleanup(shutdownCtx)
		return nil
	})

	_ = eg.Wait()
}
