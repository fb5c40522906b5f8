package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/akoval/clubpoint/api"
	"github.com/akoval/clubpoint/club"
	"github.com/akoval/clubpoint/config"
	"github.com/akoval/clubpoint/session"
	eventlog "github.com/akoval/clubpoint/storage/bbolt"
	"github.com/akoval/clubpoint/web"
)

var (
	listenAddr string
	clubAPIURL string
	eventsDB   string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the booking backend server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		// Flags win over environment.
		if cmd.Flags().Changed("listen") {
			cfg.ListenAddr = listenAddr
		}
		if cmd.Flags().Changed("club-api-url") {
			cfg.ClubAPIURL = clubAPIURL
		}
		if cmd.Flags().Changed("events-db") {
			cfg.EventsDBPath = eventsDB
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

		store := session.NewStore(cfg.SessionTTL, logger)
		store.StartReaper(cfg.ReaperInterval)
		defer store.Stop()

		clubClient := club.New(cfg.ClubAPIURL, cfg.ClubAPIKey, logger)

		opts := []api.Option{
			api.WithLogger(logger),
			api.WithRegisterer(prometheus.DefaultRegisterer),
		}
		if cfg.EventsDBPath != "" {
			events, err := eventlog.Open(cfg.EventsDBPath)
			if err != nil {
				return fmt.Errorf("opening security-event journal: %w", err)
			}
			defer events.Close()
			opts = append(opts, api.WithEventStore(events))
		}

		a := api.New(clubClient, store, api.Config{
			LoginRateLimit:  cfg.LoginRateLimit,
			LoginRateWindow: cfg.LoginRateWindow,
			APIRateLimit:    cfg.APIRateLimit,
			APIRateWindow:   cfg.APIRateWindow,
			TrustedProxies:  cfg.TrustedProxies,
		}, opts...)
		defer a.Close()

		r := chi.NewRouter()
		r.Use(chimiddleware.RequestID)
		r.Use(chimiddleware.Logger)
		r.Use(chimiddleware.Recoverer)
		r.Use(api.SecurityHeaders)
		r.Use(a.Gate)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})
		r.Handle("/metrics", promhttp.Handler())
		r.Mount("/api/v1", a.Router())

		webHandler, err := web.Handler()
		if err != nil {
			return err
		}
		r.Handle("/*", webHandler)

		server := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		logger.Info("server started", "addr", cfg.ListenAddr, "club_api", cfg.ClubAPIURL)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().StringVarP(&listenAddr, "listen", "l", ":8080", "Address to listen on")
	serverCmd.Flags().StringVar(&clubAPIURL, "club-api-url", "", "Club-management API endpoint")
	serverCmd.Flags().StringVar(&eventsDB, "events-db", "", "Path to the security-event journal (empty to disable)")
}
