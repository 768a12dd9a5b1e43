package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/config"
)

const defaultDebounce = 200 * time.Millisecond

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// cardFlags holds card appearance flags.
type cardFlags struct {
	theme       string
	width       int
	height      int
	scale       float64
	transparent bool
	css         string
}

// backgroundFlags holds the custom gradient flags.
type backgroundFlags struct {
	from      string
	to        string
	direction string
}

// assetFlags holds asset-related flags.
type assetFlags struct {
	style     string // Name or path for CSS
	assetPath string // Override asset directory
}

// storeFlags holds image store flags.
type storeFlags struct {
	path   string
	remote bool
}

// renderFlags groups everything that shapes a rendered deck.
type renderFlags struct {
	card       cardFlags
	background backgroundFlags
	assets     assetFlags
	store      storeFlags
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common   commonFlags
	output   string
	workers  int
	timeout  string
	htmlOnly bool
	render   renderFlags
	set      *flag.FlagSet
}

// watchFlags holds flags for the watch command.
type watchFlags struct {
	common   commonFlags
	output   string
	debounce time.Duration
	render   renderFlags
	set      *flag.FlagSet
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common   commonFlags
	addr     string
	watch    string
	debounce time.Duration
	noSearch bool
	render   renderFlags
	set      *flag.FlagSet
}

// imagesFlags holds flags for the images command.
type imagesFlags struct {
	common commonFlags
	store  string
	set    *flag.FlagSet
}

// searchFlags holds flags for the search command.
type searchFlags struct {
	common   commonFlags
	limit    int
	download string
	store    string
	doImport bool
	set      *flag.FlagSet
}

// sampleFlags holds flags for the sample command.
type sampleFlags struct {
	output string
	force  bool
	quiet  bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addCardFlags adds card appearance flags to a FlagSet.
func addCardFlags(fs *flag.FlagSet, f *cardFlags) {
	fs.StringVar(&f.theme, "theme", "", "card theme name")
	fs.IntVar(&f.width, "width", 0, fmt.Sprintf("card width in px (%d-%d)", md2card.MinCardSide, md2card.MaxCardSide))
	fs.IntVar(&f.height, "height", 0, fmt.Sprintf("card height in px (%d-%d)", md2card.MinCardSide, md2card.MaxCardSide))
	fs.Float64Var(&f.scale, "scale", 0, "PNG device scale factor (0.5-4)")
	fs.BoolVar(&f.transparent, "transparent", false, "PNG without page background or shadows")
	fs.StringVar(&f.css, "css", "", "extra CSS file applied after the theme")
}

// addBackgroundFlags adds custom gradient flags to a FlagSet.
func addBackgroundFlags(fs *flag.FlagSet, f *backgroundFlags) {
	fs.StringVar(&f.from, "bg-from", "", "gradient start color")
	fs.StringVar(&f.to, "bg-to", "", "gradient end color")
	fs.StringVar(&f.direction, "bg-direction", "", "gradient direction (\"to right\", \"135deg\")")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// addStoreFlags adds image store flags to a FlagSet.
func addStoreFlags(fs *flag.FlagSet, f *storeFlags) {
	fs.StringVar(&f.path, "store", "", "image store database path")
	fs.BoolVar(&f.remote, "remote-images", false, "inline remote images into the export")
}

// addRenderFlags adds every deck-shaping flag group.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	addCardFlags(fs, &f.card)
	addBackgroundFlags(fs, &f.background)
	addAssetFlags(fs, &f.assets)
	addStoreFlags(fs, &f.store)
}

// newFlagSet creates a FlagSet whose usage goes to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseArgs parses args and marks failures as usage errors.
func parseArgs(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// newConvertFlagSet registers the convert flags into f.
func newConvertFlagSet(f *convertFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("convert", stderr, printConvertUsage)
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-deck timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write cards.html only, skip PNG export")
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	f.set = fs
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f, stderr)

	if err := parseArgs(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// newWatchFlagSet registers the watch flags into f.
func newWatchFlagSet(f *watchFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("watch", stderr, printWatchUsage)
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.DurationVar(&f.debounce, "debounce", defaultDebounce, "quiet period before re-rendering")
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	f.set = fs
	return fs
}

// parseWatchFlags parses watch command flags.
func parseWatchFlags(args []string, stderr io.Writer) (*watchFlags, []string, error) {
	f := &watchFlags{}
	fs := newWatchFlagSet(f, stderr)

	if err := parseArgs(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// newServeFlagSet registers the serve flags into f.
func newServeFlagSet(f *serveFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("serve", stderr, printServeUsage)
	fs.StringVar(&f.addr, "addr", "", "listen address (default "+config.DefaultServerAddr+")")
	fs.StringVar(&f.watch, "watch", "", "markdown file feeding the preview")
	fs.DurationVar(&f.debounce, "debounce", defaultDebounce, "quiet period before re-rendering the watched file")
	fs.BoolVar(&f.noSearch, "no-search", false, "disable the image search routes")
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	f.set = fs
	return fs
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := newServeFlagSet(f, stderr)

	if err := parseArgs(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// newImagesFlagSet registers the images flags into f.
func newImagesFlagSet(f *imagesFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("images", stderr, printImagesUsage)
	fs.StringVar(&f.store, "store", "", "image store database path")
	addCommonFlags(fs, &f.common)
	f.set = fs
	return fs
}

// parseImagesFlags parses images command flags.
func parseImagesFlags(args []string, stderr io.Writer) (*imagesFlags, []string, error) {
	f := &imagesFlags{}
	fs := newImagesFlagSet(f, stderr)

	if err := parseArgs(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// newSearchFlagSet registers the search flags into f.
func newSearchFlagSet(f *searchFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("search", stderr, printSearchUsage)
	fs.IntVar(&f.limit, "limit", 10, "maximum results to show")
	fs.StringVar(&f.download, "download", "", "download results into this directory")
	fs.BoolVar(&f.doImport, "import", false, "save results into the image store")
	fs.StringVar(&f.store, "store", "", "image store database path")
	addCommonFlags(fs, &f.common)
	f.set = fs
	return fs
}

// parseSearchFlags parses search command flags.
func parseSearchFlags(args []string, stderr io.Writer) (*searchFlags, []string, error) {
	f := &searchFlags{}
	fs := newSearchFlagSet(f, stderr)

	if err := parseArgs(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// newSampleFlagSet registers the sample flags into f.
func newSampleFlagSet(f *sampleFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("sample", stderr, printSampleUsage)
	fs.StringVarP(&f.output, "output", "o", "", "write the sample to this file instead of stdout")
	fs.BoolVarP(&f.force, "force", "f", false, "overwrite an existing output file")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	return fs
}

// parseSampleFlags parses sample command flags.
func parseSampleFlags(args []string, stderr io.Writer) (*sampleFlags, []string, error) {
	f := &sampleFlags{}
	fs := newSampleFlagSet(f, stderr)

	if err := parseArgs(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
