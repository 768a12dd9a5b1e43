// Package search queries a third-party image search endpoint and downloads
// the results.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-md2card/internal/imagestore"
)

// Sentinel errors for search operations.
var (
	ErrEmptyKeyword = errors.New("search keyword is required")
	ErrUpstream     = errors.New("image search failed")
)

// DefaultEndpoint is the acjson image search endpoint.
const DefaultEndpoint = "https://image.baidu.com/search/acjson"

// DefaultLimit is the page size requested from the endpoint and the maximum
// number of results returned.
const DefaultLimit = 30

const (
	defaultSearchTimeout = 15 * time.Second
	maxResponseSize      = 4 * 1024 * 1024
)

// Result is one image search hit.
type Result struct {
	ThumbURL string `json:"thumb_url"`
	Title    string `json:"title"`
}

// Client performs image searches.
type Client struct {
	HTTP      *http.Client
	Endpoint  string
	UserAgent string
	Limit     int
	Fetcher   *imagestore.Fetcher
}

// NewClient creates a Client. A nil client gets a default with a 15s timeout.
func NewClient(client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: defaultSearchTimeout}
	}
	return &Client{
		HTTP:      client,
		Endpoint:  DefaultEndpoint,
		UserAgent: imagestore.DefaultUserAgent,
		Limit:     DefaultLimit,
		Fetcher:   imagestore.NewFetcher(client),
	}
}

// Search returns up to Limit results for keyword. Hits without a thumbnail
// are skipped. A hit without a page title uses the keyword as its title.
func (c *Client) Search(ctx context.Context, keyword string) ([]Result, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(keyword), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: upstream returned %s", ErrUpstream, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}
	return decodeResults(body, keyword, c.limit())
}

// Download retrieves one result image.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, error) {
	f := c.Fetcher
	if f == nil {
		f = imagestore.NewFetcher(c.HTTP)
	}
	return f.Fetch(ctx, imageURL)
}

func (c *Client) limit() int {
	if c.Limit <= 0 || c.Limit > DefaultLimit {
		return DefaultLimit
	}
	return c.Limit
}

func (c *Client) searchURL(keyword string) string {
	q := url.Values{}
	q.Set("tn", "resultjson_com")
	q.Set("ipn", "rj")
	q.Set("ct", "201326592")
	q.Set("fp", "result")
	q.Set("word", keyword)
	q.Set("queryWord", keyword)
	q.Set("cl", "2")
	q.Set("lm", "-1")
	q.Set("ie", "utf-8")
	q.Set("oe", "utf-8")
	q.Set("st", "-1")
	q.Set("ic", "0")
	q.Set("face", "0")
	q.Set("istype", "0")
	q.Set("nc", "1")
	q.Set("pn", strconv.Itoa(DefaultLimit))
	q.Set("rn", strconv.Itoa(DefaultLimit))
	q.Set("gsm", "1e")

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return endpoint + "?" + q.Encode()
}

type acjsonResponse struct {
	Data []struct {
		ThumbURL      string `json:"thumbURL"`
		FromPageTitle string `json:"fromPageTitle"`
	} `json:"data"`
}

// decodeResults parses an acjson payload. The endpoint escapes single quotes
// as \', which is not valid JSON.
func decodeResults(body []byte, keyword string, limit int) ([]Result, error) {
	body = bytes.ReplaceAll(body, []byte(`\'`), []byte(`'`))

	var raw acjsonResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}

	results := make([]Result, 0, min(len(raw.Data), limit))
	for _, d := range raw.Data {
		if len(results) == limit {
			break
		}
		if d.ThumbURL == "" {
			continue
		}
		title := strings.TrimSpace(d.FromPageTitle)
		if title == "" {
			title = keyword
		}
		results = append(results, Result{ThumbURL: d.ThumbURL, Title: title})
	}
	return results, nil
}
