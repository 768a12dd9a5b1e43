package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/fileutil"
)

// runWatch re-renders a deck's HTML whenever its Markdown file changes.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseWatchFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: watch takes exactly one markdown file", ErrUsage)
	}
	path := positional[0]
	if err := validateMarkdownExtension(path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	if err := mergeRenderFlags(flags.set, &flags.render, cfg); err != nil {
		return err
	}
	deck, err := buildDeckSettings(cfg, flags.render.card.css)
	if err != nil {
		return err
	}
	warnUnknownTheme(env.Stderr, deck.theme)

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

	outputDir := flags.output
	if outputDir == "" {
		outputDir = cfg.Output.DefaultDir
	}
	preview := &livePreview{
		session: md2card.NewSession(conv),
		deck:    deck,
		path:    path,
		outDir:  resolveDeckDir(path, outputDir, ""),
		log:     env.logger(flags.common.verbose),
	}

	if err := preview.render(ctx); err != nil {
		return err
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Watching %s (Ctrl+C to stop)\n", path)
	}

	w := &fileWatcher{
		path:     path,
		debounce: flags.debounce,
		onChange: func() {
			if err := preview.render(ctx); err != nil && ctx.Err() == nil {
				preview.log.Error("render failed", slog.String("file", path), slog.String("error", err.Error()))
			}
		},
		onError: func(err error) {
			preview.log.Warn("watch error", slog.String("error", err.Error()))
		},
	}
	return w.Run(ctx)
}

// livePreview renders one Markdown file through a Session. Only committed
// results are written, so a slow stale render never overwrites newer output.
type livePreview struct {
	session *md2card.Session
	deck    deckSettings
	path    string
	outDir  string // empty: keep the result in the session only
	log     *slog.Logger

	writeMu sync.Mutex
}

func (p *livePreview) render(ctx context.Context) error {
	content, err := os.ReadFile(p.path) // #nosec G304 -- user-provided path
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}

	res, committed, err := p.session.Render(ctx, p.deck.input(string(content), true))
	if err != nil {
		return err
	}
	if !committed {
		p.log.Debug("stale render discarded", slog.String("file", p.path))
		return nil
	}
	for _, warn := range res.Warnings {
		p.log.Warn("image not resolved", slog.String("id", warn.ID), slog.String("error", warn.Err.Error()))
	}
	if p.outDir == "" {
		p.log.Info("preview updated", slog.String("file", p.path), slog.Int("cards", len(res.Cards)))
		return nil
	}

	// Write whatever is current, which may be newer than res.
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	cur, gen := p.session.Current()
	if err := os.MkdirAll(p.outDir, dirPermissions); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrWriteOutput, p.outDir, err)
	}
	out := filepath.Join(p.outDir, documentFilename)
	if err := fileutil.WriteFileAtomic(out, cur.HTML, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	p.log.Info("deck updated",
		slog.String("output", out),
		slog.Int("cards", len(cur.Cards)),
		slog.Uint64("generation", gen),
	)
	return nil
}

// fileWatcher calls onChange once path has been quiet for debounce.
// The parent directory is watched so editors that replace the file on save
// are still seen.
type fileWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
	onError  func(error)
}

// Run blocks until ctx is done.
func (w *fileWatcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	d := newDebouncer(w.debounce, w.onChange)
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				d.Trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// debouncer runs fn once after the last Trigger in a burst.
type debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

// Trigger restarts the quiet period.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Stop cancels a pending call. Later triggers are ignored.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
