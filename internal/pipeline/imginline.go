package pipeline

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ImageFetcher downloads a remote image and returns it as a data URI.
type ImageFetcher interface {
	FetchDataURI(ctx context.Context, url string) (string, error)
}

// InlineRemoteImages rewrites http(s) <img> sources into data URIs so the
// document renders without network access. Each distinct URL is fetched once.
// A failed fetch leaves the original source in place and is reported with the
// URL as the image id. Data URIs, relative paths and other elements are untouched.
func InlineRemoteImages(ctx context.Context, htmlContent string, f ImageFetcher) (string, []ImageError, error) {
	if f == nil {
		return htmlContent, nil, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", nil, err
	}

	var imgs []*html.Node
	collectRemoteImages(doc, &imgs)
	if len(imgs) == 0 {
		return htmlContent, nil, nil
	}

	inlined := make(map[string]string)
	var errs []ImageError
	for _, n := range imgs {
		src := attrValue(n, "src")
		if _, seen := inlined[src]; seen {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		data, err := f.FetchDataURI(ctx, src)
		if err != nil {
			inlined[src] = ""
			errs = append(errs, ImageError{ID: src, Err: err})
			continue
		}
		inlined[src] = data
	}

	for _, n := range imgs {
		if data := inlined[attrValue(n, "src")]; data != "" {
			setAttr(n, "src", data)
		}
	}

	out, err := renderHTML(doc, isFragment)
	if err != nil {
		return "", nil, err
	}
	return out, errs, nil
}

// collectRemoteImages gathers <img> nodes whose src is an http(s) URL.
func collectRemoteImages(n *html.Node, out *[]*html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img && isRemoteURL(attrValue(n, "src")) {
		*out = append(*out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectRemoteImages(c, out)
	}
}

func isRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
