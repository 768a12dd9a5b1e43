package main

import (
	"fmt"
	"io"
	"strings"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/config"
	"github.com/alnah/go-md2card/internal/theme"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2card <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert markdown files to card decks (HTML + PNG)")
	fmt.Fprintln(w, "  watch      Re-render a deck on every save")
	fmt.Fprintln(w, "  serve      Start the HTTP editor backend")
	fmt.Fprintln(w, "  images     Manage the image store (add, list, rm)")
	fmt.Fprintln(w, "  search     Search images by keyword")
	fmt.Fprintln(w, "  sample     Print an example deck to start from")
	fmt.Fprintln(w, "  doctor     Check system configuration")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2card help <command>' for details on a specific command.")
}

// printCardFlagsUsage prints the flags shared by every rendering command.
func printCardFlagsUsage(w io.Writer) {
	fmt.Fprintln(w, "Card:")
	fmt.Fprintf(w, "      --theme <name>        Theme: %s\n", strings.Join(theme.Names(), ", "))
	fmt.Fprintf(w, "      --width <px>          Card width (%d-%d)\n", md2card.MinCardSide, md2card.MaxCardSide)
	fmt.Fprintf(w, "      --height <px>         Card height (%d-%d)\n", md2card.MinCardSide, md2card.MaxCardSide)
	fmt.Fprintf(w, "      --scale <f>           PNG device scale factor (%g-%g)\n", md2card.MinScale, md2card.MaxScale)
	fmt.Fprintln(w, "      --transparent         PNG without page background or shadows")
	fmt.Fprintln(w, "      --css <path>          Extra CSS file applied after the theme")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Background:")
	fmt.Fprintln(w, "      --bg-from <color>     Gradient start color (with --bg-to)")
	fmt.Fprintln(w, "      --bg-to <color>       Gradient end color")
	fmt.Fprintln(w, "      --bg-direction <s>    Gradient direction (\"to right\", \"135deg\")")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Assets:")
	fmt.Fprintln(w, "      --style <name|path>   CSS style name or file")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Images:")
	fmt.Fprintf(w, "      --store <path>        Image store database (default %s)\n", config.DefaultStorePath)
	fmt.Fprintln(w, "      --remote-images       Inline remote images into the export")
	fmt.Fprintln(w)
}

func printCommonFlagsUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2card convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown files to card decks. Each file becomes a directory")
	fmt.Fprintln(w, "holding cards.html and one PNG per card.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-deck timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --html-only           Write cards.html only, skip PNG export")
	fmt.Fprintln(w)
	printCardFlagsUsage(w)
	printCommonFlagsUsage(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2card watch <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Re-render cards.html whenever the file changes. Stop with Ctrl+C.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Watch:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintf(w, "      --debounce <d>        Quiet period before re-rendering (default %s)\n", defaultDebounce)
	fmt.Fprintln(w)
	printCardFlagsUsage(w)
	printCommonFlagsUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2card serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Start the HTTP backend for the card editor.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintf(w, "      --addr <host:port>    Listen address (default %s)\n", config.DefaultServerAddr)
	fmt.Fprintln(w, "      --watch <file.md>     Feed the preview from a markdown file")
	fmt.Fprintf(w, "      --debounce <d>        Quiet period for --watch (default %s)\n", defaultDebounce)
	fmt.Fprintln(w, "      --no-search           Disable the image search routes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Routes:")
	fmt.Fprintln(w, "  GET    /healthz                 Liveness probe")
	fmt.Fprintln(w, "  GET    /                        Latest rendered deck")
	fmt.Fprintln(w, "  POST   /api/render              Render markdown into the preview")
	fmt.Fprintln(w, "  POST   /api/export              Download a standalone cards.html")
	fmt.Fprintln(w, "  GET    /api/images              List stored images")
	fmt.Fprintln(w, "  POST   /api/images              Upload an image")
	fmt.Fprintln(w, "  GET    /api/images/{id}         Fetch an image")
	fmt.Fprintln(w, "  DELETE /api/images/{id}         Delete an image")
	fmt.Fprintln(w, "  GET    /api/search?keyword=<k>  Search images")
	fmt.Fprintln(w, "  POST   /api/search/import       Store a search result")
	fmt.Fprintln(w)
	printCardFlagsUsage(w)
	printCommonFlagsUsage(w)
}

// printImagesUsage prints usage for the images command.
func printImagesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2card images <add|list|rm> [args] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Manage the image store. Stored images are referenced in cards")
	fmt.Fprintln(w, "as ![img:<id>].")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  add <file|url>...   Store images and print their references")
	fmt.Fprintln(w, "  list                List stored images")
	fmt.Fprintln(w, "  rm <id>...          Delete images")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintf(w, "      --store <path>        Image store database (default %s)\n", config.DefaultStorePath)
	printCommonFlagsUsage(w)
}

// printSearchUsage prints usage for the search command.
func printSearchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2card search <keyword> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Search images by keyword.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --limit <n>           Maximum results (default 10, max 30)")
	fmt.Fprintln(w, "      --download <dir>      Download results into a directory")
	fmt.Fprintln(w, "      --import              Save results into the image store")
	fmt.Fprintln(w, "      --store <path>        Image store database for --import")
	printCommonFlagsUsage(w)
}

// printSampleUsage prints usage for the sample command.
func printSampleUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2card sample [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the built-in example deck: a cover and two content cards.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <file>       Write to a file instead of stdout")
	fmt.Fprintln(w, "  -f, --force               Overwrite an existing output file")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2card doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the environment, the temp directory and the image store.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print the report as JSON")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}
	if !isCommand(args[0]) {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "images":
		printImagesUsage(env.Stdout)
	case "search":
		printSearchUsage(env.Stdout)
	case "sample":
		printSampleUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2card version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2card help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	}
}
