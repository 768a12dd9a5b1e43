// Package md2card turns Markdown with a small frontmatter block into a deck of
// visual cards and exports it as one HTML document plus a PNG per card.
//
// # Quick Start
//
// Create a converter, convert markdown, and close when done:
//
//	conv, err := md2card.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, md2card.Input{
//	    Markdown: "---\ntitle: Weekly notes\nemoji: 🎈\n---\n\nFirst card\n\n---\n\nSecond card #go",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("cards.html", result.HTML, 0644)
//	for _, img := range result.Images {
//	    if img.Err == nil {
//	        os.WriteFile(img.Filename, img.PNG, 0644)
//	    }
//	}
//
// # Card Dialect
//
// An optional leading block between two lines of three or more hyphens holds
// flat "key: value" pairs. A non-empty title or emoji adds a cover card.
// The body is split into content cards on lines of three or more hyphens.
// Inside a card, ![img:<id>] embeds a pasted image from the image store and a
// trailing run of #tags becomes tag pills.
//
// # Conversion Pipeline
//
//  1. Frontmatter extraction and card segmentation
//  2. Image resolution, tag extraction, Markdown to HTML via Goldmark
//  3. Deck model: cover plus numbered content cards
//  4. Document assembly from templates with the generated stylesheet
//  5. PNG capture of each card via headless Chrome (go-rod)
//
// Parsing never fails. Unknown themes fall back to "default". Image lookup
// failures become ConvertResult.Warnings, and a card whose capture fails
// carries its own error in CardImage.Err.
//
// # Configuration
//
//	conv, err := md2card.NewConverter(
//	    md2card.WithImageStore(store),
//	    md2card.WithTimeout(time.Minute),
//	    md2card.WithAssetPath("/path/to/custom/assets"),
//	)
//
//	result, err := conv.Convert(ctx, md2card.Input{
//	    Markdown:   content,
//	    Theme:      "botanical",
//	    Size:       &md2card.CardSize{Width: 400, Height: 500},
//	    Background: &md2card.Background{Color1: "#6366f1", Color2: "#8b5cf6"},
//	    Scale:      3,
//	})
//
// # Live Preview
//
// Session keeps the newest rendered deck when renders overlap: a render that
// started earlier never replaces the result of one that started later.
//
// # Parallel Processing
//
//	pool := md2card.NewConverterPool(md2card.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	defer pool.Release(conv)
//
// # Browser Requirements
//
// PNG export requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package md2card
