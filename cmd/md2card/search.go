package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/alnah/go-md2card/internal/fileutil"
	"github.com/alnah/go-md2card/internal/imagestore"
	"github.com/alnah/go-md2card/internal/search"
)

// extensions maps stored image types to file extensions.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// runSearch looks up images by keyword and optionally downloads or imports them.
func runSearch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseSearchFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	keyword := strings.TrimSpace(strings.Join(positional, " "))
	if keyword == "" {
		return fmt.Errorf("%w: %w", ErrUsage, search.ErrEmptyKeyword)
	}
	if flags.limit < 1 {
		return fmt.Errorf("%w: --limit must be at least 1", ErrUsage)
	}

	client := env.NewSearchClient()
	client.Limit = flags.limit
	results, err := client.Search(ctx, keyword)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintf(env.Stdout, "No images found for %q.\n", keyword)
		return nil
	}
	if !flags.common.quiet {
		for i, r := range results {
			fmt.Fprintf(env.Stdout, "%2d. %s\n    %s\n", i+1, r.Title, r.ThumbURL)
		}
	}

	var store imagestore.Store
	if flags.doImport {
		cfg, err := loadConfig(flags.common.config, loadEnvConfig())
		if err != nil {
			return err
		}
		if flags.set.Changed("store") {
			cfg.Images.Store = flags.store
		}
		store, err = openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()
	}
	if flags.download == "" && store == nil {
		return nil
	}
	if flags.download != "" {
		if err := os.MkdirAll(flags.download, dirPermissions); err != nil {
			return fmt.Errorf("%w: creating %s: %v", ErrWriteOutput, flags.download, err)
		}
	}

	var errs []error
	for i, r := range results {
		data, err := client.Download(ctx, r.ThumbURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("result %d: %w", i+1, err))
			continue
		}
		if flags.download != "" {
			path, err := writeDownload(flags.download, i, r, data)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if !flags.common.quiet {
				fmt.Fprintf(env.Stdout, "Saved %s (%s)\n", path, humanize.Bytes(uint64(len(data))))
			}
		}
		if store != nil {
			id, evicted, err := saveImage(ctx, store, data, env)
			if err != nil {
				errs = append(errs, fmt.Errorf("result %d: %w", i+1, err))
				continue
			}
			for _, old := range evicted {
				fmt.Fprintf(env.Stderr, "evicted %s\n", old)
			}
			if !flags.common.quiet {
				fmt.Fprintf(env.Stdout, "Imported %s\n", imagestore.Reference(id))
			}
		}
	}
	return errors.Join(errs...)
}

// writeDownload writes one result as NN-title.ext inside dir.
func writeDownload(dir string, index int, r search.Result, data []byte) (string, error) {
	ext, ok := extensions[http.DetectContentType(data)]
	if !ok {
		return "", fmt.Errorf("result %d: %w", index+1, imagestore.ErrImageType)
	}
	name := fmt.Sprintf("%02d-%s%s", index+1, fileutil.SanitizeFilename(r.Title, "image"), ext)
	path := filepath.Join(dir, name)
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return path, nil
}
