package pipeline

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
)

var (
	// Image reference token: ![img:<id>]
	imageRefPattern = regexp.MustCompile(`!\[img:([^\]]+)\]`)

	// Trailing tag run anchored at the end of the text. The run starts at the
	// beginning of the text or after whitespace, and holds whitespace-separated
	// #word tokens (word characters or CJK ideographs).
	trailingTagsPattern = regexp.MustCompile(`(?:^|\s)(#[\w\p{Han}]+(?:\s+#[\w\p{Han}]+)*)\s*\z`)

	tagTokenPattern = regexp.MustCompile(`#[\w\p{Han}]+`)
)

// defaultTransformConcurrency bounds parallel segment transforms.
const defaultTransformConcurrency = 4

// Resolved image placeholders: the prefix, then the index in base 25 written
// with the letters a to y.
const (
	placeholderPrefix = "mdcardembed"
	placeholderBase   = 25
)

// ImageSource resolves image ids to embeddable blobs, usually data URIs.
// ok is false when the id is unknown. A non-nil error means the lookup itself failed.
type ImageSource interface {
	Get(ctx context.Context, id string) (data string, ok bool, err error)
}

// ImageError reports a failed lookup for one image id.
type ImageError struct {
	ID  string
	Err error
}

func (e ImageError) Error() string {
	return fmt.Sprintf("resolving image %q: %v", e.ID, e.Err)
}

func (e ImageError) Unwrap() error {
	return e.Err
}

// Content is the transformed body of one content card.
type Content struct {
	HTML        string
	Tags        []string
	ImageErrors []ImageError
}

// Transformer turns card segments into HTML.
type Transformer struct {
	images      ImageSource
	md          HTMLConverter
	concurrency int
}

// NewTransformer creates a Transformer. A nil ImageSource makes every image reference a miss.
func NewTransformer(images ImageSource, md HTMLConverter) *Transformer {
	if md == nil {
		md = NewGoldmarkConverter()
	}
	return &Transformer{images: images, md: md, concurrency: defaultTransformConcurrency}
}

// SetConcurrency bounds the number of segments transformed in parallel.
func (t *Transformer) SetConcurrency(n int) {
	if n > 0 {
		t.concurrency = n
	}
}

// Transform resolves images, extracts trailing tags, renders Markdown and
// appends the tag pills for one segment.
func (t *Transformer) Transform(ctx context.Context, segment string) (Content, error) {
	text, embeds, imgErrs := ResolveImages(ctx, segment, t.images)
	if err := ctx.Err(); err != nil {
		return Content{}, err
	}

	text, tags := ExtractTags(text)

	htmlContent, err := t.md.ToHTML(ctx, text)
	if err != nil {
		return Content{}, err
	}

	return Content{
		HTML:        embeds.Apply(htmlContent) + RenderTags(tags),
		Tags:        tags,
		ImageErrors: imgErrs,
	}, nil
}

// TransformAll transforms segments concurrently. Results keep document order
// regardless of completion order. Only cancellation or a Markdown conversion
// failure returns an error; image lookup failures are reported per content.
func (t *Transformer) TransformAll(ctx context.Context, segments []string) ([]Content, error) {
	results := make([]Content, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)

	for i, seg := range segments {
		g.Go(func() error {
			c, err := t.Transform(gctx, seg)
			if err != nil {
				return fmt.Errorf("card %d: %w", i+1, err)
			}
			results[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ResolveImages replaces every ![img:<id>] token. Each distinct id is looked up
// once: a hit becomes a placeholder recorded in the returned Embeds, a miss or a
// failed lookup removes the token. Failed lookups are returned per id and never
// stop resolution of the other ids.
//
// Blobs never pass through the Markdown renderer. Call Embeds.Apply on the
// rendered HTML to turn the placeholders into images.
func ResolveImages(ctx context.Context, text string, src ImageSource) (string, Embeds, []ImageError) {
	matches := imageRefPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, nil, nil
	}

	resolved := make(map[string]string, len(matches))
	var embeds Embeds
	var errs []ImageError
	for _, m := range matches {
		id := m[1]
		if _, seen := resolved[id]; seen {
			continue
		}
		resolved[id] = ""
		if src == nil {
			continue
		}
		data, ok, err := src.Get(ctx, id)
		if err != nil {
			errs = append(errs, ImageError{ID: id, Err: err})
			continue
		}
		if ok {
			if embeds == nil {
				embeds = make(Embeds)
			}
			ph := imagePlaceholder(len(embeds))
			embeds[ph] = data
			resolved[id] = ph
		}
	}

	out := imageRefPattern.ReplaceAllStringFunc(text, func(token string) string {
		id := imageRefPattern.FindStringSubmatch(token)[1]
		return resolved[id]
	})
	return out, embeds, errs
}

// Embeds maps the placeholders left by ResolveImages to their blobs.
type Embeds map[string]string

// Apply replaces every placeholder in htmlContent with an <img> element whose
// src is the escaped blob.
func (e Embeds) Apply(htmlContent string) string {
	if len(e) == 0 {
		return htmlContent
	}
	pairs := make([]string, 0, 2*len(e))
	for ph, blob := range e {
		pairs = append(pairs, ph, imageTag(blob))
	}
	return strings.NewReplacer(pairs...).Replace(htmlContent)
}

// imageTag returns the embed for one resolved image.
func imageTag(blob string) string {
	return `<img src="` + html.EscapeString(blob) + `" alt="image" />`
}

// imagePlaceholder names the n-th resolved image. It is letters only and
// ends in 'z', so no placeholder is a prefix of another.
func imagePlaceholder(n int) string {
	var digits []byte
	for {
		digits = append(digits, byte('a'+n%placeholderBase))
		n /= placeholderBase
		if n == 0 {
			break
		}
	}
	return placeholderPrefix + string(digits) + "z"
}

// ExtractTags removes the trailing run of #tag tokens from text and returns the
// remaining trimmed text with the tags in order. Text without a trailing run is
// returned trimmed with no tags.
//
// A body ending in "#heading" (no space) is read as a tag. A token glued to a
// preceding non-space character, as in "##a" or "issue#12", is not.
func ExtractTags(text string) (string, []string) {
	loc := trailingTagsPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return strings.TrimSpace(text), nil
	}
	run := text[loc[2]:loc[3]]
	return strings.TrimSpace(text[:loc[2]]), tagTokenPattern.FindAllString(run, -1)
}

// RenderTags returns the tag pill block, or "" when there are no tags.
func RenderTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<div class="tags-container">`)
	for _, tag := range tags {
		b.WriteString(`<span class="tag">`)
		b.WriteString(html.EscapeString(tag))
		b.WriteString(`</span>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}
