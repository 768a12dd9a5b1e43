package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/server"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// runServe starts the HTTP server until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments", ErrUsage)
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	if err := mergeRenderFlags(flags.set, &flags.render, cfg); err != nil {
		return err
	}
	if flags.set.Changed("addr") {
		cfg.Server.Addr = flags.addr
	}
	log := env.logger(flags.common.verbose)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	conv, err := md2card.NewConverter(converterOptions(cfg, 0, store, env)...)
	if err != nil {
		return err
	}
	defer conv.Close()

	session := md2card.NewSession(conv)
	deps := server.Deps{
		Renderer: conv,
		Session:  session,
		Store:    store,
		Logger:   log,
		Now:      env.Now,
	}
	if !flags.noSearch {
		deps.Searcher = env.NewSearchClient()
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}
	srv := &http.Server{
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	if flags.watch != "" {
		deck, err := buildDeckSettings(cfg, flags.render.card.css)
		if err != nil {
			_ = ln.Close()
			return err
		}
		warnUnknownTheme(env.Stderr, deck.theme)
		if err := startPreviewWatch(ctx, flags.watch, flags.debounce, deck, session, log); err != nil {
			_ = ln.Close()
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Info("server listening", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// startPreviewWatch renders the watched file into the server's session now
// and on every change.
func startPreviewWatch(ctx context.Context, path string, debounce time.Duration, deck deckSettings, session *md2card.Session, log *slog.Logger) error {
	if err := validateMarkdownExtension(path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}

	preview := &livePreview{session: session, deck: deck, path: path, log: log}
	if err := preview.render(ctx); err != nil {
		log.Error("initial render failed", slog.String("file", path), slog.String("error", err.Error()))
	}

	w := &fileWatcher{
		path:     path,
		debounce: debounce,
		onChange: func() {
			if err := preview.render(ctx); err != nil && ctx.Err() == nil {
				log.Error("render failed", slog.String("file", path), slog.String("error", err.Error()))
			}
		},
		onError: func(err error) {
			log.Warn("watch error", slog.String("error", err.Error()))
		},
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			log.Error("file watcher stopped", slog.String("error", err.Error()))
		}
	}()
	return nil
}
