package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrFetch indicates a remote image could not be downloaded.
var ErrFetch = errors.New("image download failed")

// DefaultUserAgent is sent with image downloads. Some image hosts reject
// requests without a browser user agent.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const defaultFetchTimeout = 30 * time.Second

// Fetcher downloads remote images and validates them like pasted ones.
type Fetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewFetcher creates a Fetcher. A nil client gets a default with a 30s timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Fetcher{Client: client, UserAgent: DefaultUserAgent}
}

// Fetch downloads the image at rawURL. Only http and https are accepted.
// Bodies larger than MaxImageSize are rejected without reading them fully.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: unsupported URL %q", ErrFetch, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, rawURL, resp.Status)
	}
	if resp.ContentLength > MaxImageSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, resp.ContentLength, MaxImageSize)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, MaxImageSize)
	}
	return data, nil
}

// FetchDataURI downloads and validates an image and returns it as a data URI.
func (f *Fetcher) FetchDataURI(ctx context.Context, rawURL string) (string, error) {
	data, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return EncodeImage(data)
}
