package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/alnah/go-md2card/internal/fileutil"
	"github.com/alnah/go-md2card/internal/imagestore"
)

// runImages manages the image store: add, list and rm.
func runImages(ctx context.Context, args []string, env *Environment) error {
	if len(args) == 0 {
		printImagesUsage(env.Stderr)
		return fmt.Errorf("%w: images needs a subcommand", ErrUsage)
	}
	sub, rest := args[0], args[1:]

	flags, positional, err := parseImagesFlags(rest, env.Stderr)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(flags.common.config, loadEnvConfig())
	if err != nil {
		return err
	}
	if flags.set.Changed("store") {
		cfg.Images.Store = flags.store
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	switch sub {
	case "add":
		if len(positional) == 0 {
			return fmt.Errorf("%w: images add needs at least one file or URL", ErrUsage)
		}
		return addImages(ctx, store, positional, flags.common.quiet, env)
	case "list", "ls":
		return listImages(ctx, store, env)
	case "rm":
		if len(positional) == 0 {
			return fmt.Errorf("%w: images rm needs at least one id", ErrUsage)
		}
		return removeImages(ctx, store, positional, flags.common.quiet, env)
	default:
		printImagesUsage(env.Stderr)
		return fmt.Errorf("%w: unknown images subcommand %q", ErrUsage, sub)
	}
}

// addImages stores local files or remote URLs and prints their references.
func addImages(ctx context.Context, store imagestore.Store, sources []string, quiet bool, env *Environment) error {
	var fetcher *imagestore.Fetcher
	var errs []error
	for _, src := range sources {
		var data []byte
		var err error
		if fileutil.IsURL(src) {
			if fetcher == nil {
				fetcher = imagestore.NewFetcher(env.HTTPClient)
			}
			data, err = fetcher.Fetch(ctx, src)
		} else {
			data, err = os.ReadFile(src) // #nosec G304 -- user-provided path
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src, err))
			continue
		}

		id, evicted, err := saveImage(ctx, store, data, env)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src, err))
			continue
		}
		for _, old := range evicted {
			fmt.Fprintf(env.Stderr, "evicted %s\n", old)
		}
		if !quiet {
			fmt.Fprintf(env.Stdout, "%s\t%s\t%s\n", imagestore.Reference(id), humanize.Bytes(uint64(len(data))), src)
		}
	}
	return errors.Join(errs...)
}

// saveImage validates data and stores it under a fresh id.
func saveImage(ctx context.Context, store imagestore.Store, data []byte, env *Environment) (string, []string, error) {
	uri, err := imagestore.EncodeImage(data)
	if err != nil {
		return "", nil, err
	}
	id := imagestore.NewImageID(env.Now())
	evicted, err := store.Save(ctx, id, uri)
	if err != nil {
		return "", nil, err
	}
	return id, evicted, nil
}

// listImages prints stored images, oldest first.
func listImages(ctx context.Context, store imagestore.Store, env *Environment) error {
	entries, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(env.Stdout, "No images stored.")
		return nil
	}

	now := env.Now()
	var total int64
	tw := tabwriter.NewWriter(env.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSIZE\tADDED")
	for _, e := range entries {
		total += e.Size
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, humanize.Bytes(uint64(e.Size)), humanize.RelTime(e.CreatedAt, now, "ago", "from now"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "\n%s in %s\n", humanize.Bytes(uint64(total)), pluralImages(len(entries)))
	return nil
}

// removeImages deletes ids. Unknown ids are reported after the others are removed.
func removeImages(ctx context.Context, store imagestore.Store, ids []string, quiet bool, env *Environment) error {
	var errs []error
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		if !quiet {
			fmt.Fprintf(env.Stdout, "Removed %s\n", id)
		}
	}
	return errors.Join(errs...)
}

func pluralImages(n int) string {
	if n == 1 {
		return "1 image"
	}
	return humanize.Comma(int64(n)) + " images"
}
