package main

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

	"github.com/gogpu/gg"

	"github.com/aswearingen91/skillcheck/internal/config"
	"github.com/aswearingen91/skillcheck/internal/handlers"
	"github.com/aswearingen91/skillcheck/internal/steg"
	"github.com/aswearingen91/skillcheck/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := newLogger(cfg)
	slog.SetDefault(log)
	steg.SetLogger(log.With("component", "steg"))
	gg.SetLogger(log.With("component", "render"))

	st, err := newStore(cfg)
	if err != nil {
		log.Error("storage setup failed", "err", err)
		os.Exit(1)
	}

	h := handlers.NewHandler(steg.New(steg.WithCompression(cfg.Compression)), st, cfg.Theme, cfg.Region, log)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("skillcheck: service up\n"))
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      loggingMiddleware(log, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("skillcheck starting", "addr", srv.Addr, "storage", cfg.Storage, "compression", cfg.Compression.String())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "err", err)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newStore(cfg config.Config) (store.Store, error) {
	if cfg.Storage == "imgur" {
		s := store.NewImgur(cfg.ImgurClientID)
		s.APIBase = cfg.ImgurAPI
		return s, nil
	}
	return store.NewDisk(cfg.DataDir, cfg.PublicURL)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Simple request logger
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
	})
}
