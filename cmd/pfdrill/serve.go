package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/pfdrill/internal/generator"
	"github.com/verte-zerg/pfdrill/internal/server"
)

var serveAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the drill over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default 127.0.0.1:8080)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	r, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	applyStringFlag(cmd, "addr", &r.Addr, serveAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, _, err := loadDatabase(r.SpotsDir)
	if err != nil {
		return err
	}
	st, err := openBackend(ctx, r)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Printf("failed to close store: %v", cerr)
		}
	}()

	gen := generator.New()
	if r.Seed != 0 {
		gen = generator.NewWithSeed(r.Seed)
	}
	srv, err := server.New(ctx, cache, st, gen)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	httpSrv := &http.Server{
		Addr:              r.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("pfdrill listening on http://%s (backend %s, spots %s)", r.Addr, r.Backend, r.SpotsDir)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
