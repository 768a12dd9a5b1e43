package md2card

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-md2card/internal/fileutil"
	"github.com/alnah/go-md2card/internal/process"
)

// cardRasterizer turns an assembled card document into one PNG per card.
type cardRasterizer interface {
	Rasterize(ctx context.Context, htmlContent string, cards []Card, opts rasterOptions) ([]CardImage, error)
	Close() error
}

// cardPage abstracts a loaded card document to test capture logic without a browser.
type cardPage interface {
	CardCount() int
	CaptureElement(ctx context.Context, i int) ([]byte, error)
	SetFallback(on bool) error
	CaptureClip(ctx context.Context, i int) ([]byte, error)
}

// Compile-time interface checks
var (
	_ cardRasterizer = (*rodRasterizer)(nil)
	_ cardPage       = (*rodPage)(nil)
)

// rasterOptions holds options for PNG capture.
type rasterOptions struct {
	width       int     // card width in CSS pixels
	scale       float64 // device scale factor
	transparent bool
}

const (
	// cardSelector matches the card boxes in document order.
	cardSelector = ".card-wrapper > .cover-card, .card-wrapper > .content-card"

	// fallbackClass switches gradient title text to a solid color.
	fallbackClass = "raster-fallback"

	// Viewport around the card column. Height only affects the first paint;
	// captures reach beyond the viewport.
	viewportMargin = 80
	viewportHeight = 800

	// minPNGBytes is the size under which a capture is treated as blank.
	minPNGBytes = 750
)

// captureCards captures every card with an element screenshot. A failed or
// blank capture is retried once with the fallback stylesheet and a clipped
// page screenshot. Cards that still fail carry their error and the remaining
// cards continue. Only context errors abort the loop.
func captureCards(ctx context.Context, page cardPage, cards []Card) ([]CardImage, error) {
	found := page.CardCount()
	images := make([]CardImage, len(cards))

	for i, c := range cards {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img := CardImage{Label: c.Label(), Filename: imageFilename(c)}
		if i >= found {
			img.Err = fmt.Errorf("%w: %s", ErrCardNotFound, img.Label)
			images[i] = img
			continue
		}

		png, err := checkCapture(page.CaptureElement(ctx, i))
		if err != nil {
			png, err = captureFallback(ctx, page, i)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			img.Err = fmt.Errorf("%w: %s: %v", ErrRasterize, img.Label, err)
		} else {
			img.PNG = png
		}
		images[i] = img
	}

	return images, nil
}

// captureFallback retries one card with the fallback class set on the body.
func captureFallback(ctx context.Context, page cardPage, i int) ([]byte, error) {
	if err := page.SetFallback(true); err != nil {
		return nil, fmt.Errorf("enabling fallback: %w", err)
	}
	defer func() { _ = page.SetFallback(false) }()

	return checkCapture(page.CaptureClip(ctx, i))
}

// checkCapture rejects captures too small to hold a rendered card.
func checkCapture(png []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if len(png) < minPNGBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrBlankCapture, len(png))
	}
	return png, nil
}

// rodPage implements cardPage on a loaded go-rod page.
type rodPage struct {
	page  *rod.Page
	cards rod.Elements
}

func (p *rodPage) CardCount() int {
	return len(p.cards)
}

func (p *rodPage) CaptureElement(ctx context.Context, i int) ([]byte, error) {
	return p.cards[i].Context(ctx).Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

func (p *rodPage) SetFallback(on bool) error {
	_, err := p.page.Eval(`(cls, on) => document.body.classList.toggle(cls, on)`, fallbackClass, on)
	return err
}

// cardBox is a card's bounding box in document coordinates.
type cardBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (p *rodPage) CaptureClip(ctx context.Context, i int) ([]byte, error) {
	page := p.page.Context(ctx)

	res, err := page.Eval(`(sel, i) => {
		const r = document.querySelectorAll(sel)[i].getBoundingClientRect();
		return {x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height};
	}`, cardSelector, i)
	if err != nil {
		return nil, fmt.Errorf("measuring card: %w", err)
	}

	var box cardBox
	if err := res.Value.Unmarshal(&box); err != nil {
		return nil, fmt.Errorf("measuring card: %w", err)
	}
	if box.Width <= 0 || box.Height <= 0 {
		return nil, fmt.Errorf("%w: empty card box", ErrBlankCapture)
	}

	return page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      box.X,
			Y:      box.Y,
			Width:  box.Width,
			Height: box.Height,
			Scale:  1,
		},
		CaptureBeyondViewport: true,
	})
}

// rodRasterizer implements cardRasterizer using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodRasterizer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

// newRodRasterizer creates a rodRasterizer with the given page load timeout.
func newRodRasterizer(timeout time.Duration) *rodRasterizer {
	return &rodRasterizer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRasterizer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	noSandbox := os.Getenv("ROD_NO_SANDBOX")
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || noSandbox == "1" || noSandbox == "true" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		process.KillProcessGroup(l.PID())
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return nil
}

// Close releases browser resources, including orphaned Chrome helpers.
func (r *rodRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		process.KillProcessGroup(r.launcher.PID())
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}

// Rasterize loads the document from a temp file in headless Chrome and
// captures each card. The returned slice is aligned with cards.
func (r *rodRasterizer) Rasterize(ctx context.Context, htmlContent string, cards []Card, opts rasterOptions) ([]CardImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}
	defer cleanup()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	blank, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer blank.Close()

	page := blank.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	if err := r.preparePage(page, opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if err := page.Navigate("file://" + tmpPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// Web fonts must be ready before the first capture.
	if _, err := page.Eval(`() => document.fonts.ready.then(() => true)`); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if opts.transparent {
		if err := page.AddStyleTag("", buildTransparentCSS()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	els, err := page.Elements(cardSelector)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCardNotFound, err)
	}

	return captureCards(ctx, &rodPage{page: page, cards: els}, cards)
}

// preparePage sets the viewport and, for transparent captures, clears the
// default white page background.
func (r *rodRasterizer) preparePage(page *rod.Page, opts rasterOptions) error {
	err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.width + viewportMargin,
		Height:            viewportHeight,
		DeviceScaleFactor: opts.scale,
	})
	if err != nil {
		return err
	}

	if !opts.transparent {
		return nil
	}
	alpha := 0.0
	return proto.EmulationSetDefaultBackgroundColorOverride{
		Color: &proto.DOMRGBA{A: &alpha},
	}.Call(page)
}
