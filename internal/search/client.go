// Package search queries the MangaDex catalog for titles and their covers
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"golang.org/x/sync/errgroup"

	"fiapo/internal/errors"
	"fiapo/internal/log"
)

const (
	// DefaultBaseURL is the MangaDex API root
	DefaultBaseURL = "https://api.mangadex.org"
	// DefaultCoverURL is the MangaDex cover CDN root
	DefaultCoverURL = "https://uploads.mangadex.org"
	// DefaultTimeout bounds a single search request
	DefaultTimeout = 5 * time.Second

	// Unknown stands in for a missing author or artist
	Unknown = "unknown"

	coverWorkers = 4
)

// Result is one catalog entry
type Result struct {
	ID           uuid.UUID
	EnglishTitle string
	RomajiTitle  string
	Author       string
	Artist       string
	CoverURL     string
}

// Hit is a Result with its cover thumbnail; Cover is nil when the cover
// could not be fetched.
type Hit struct {
	Result
	Cover image.Image
}

// Client talks to the catalog API
type Client struct {
	baseURL  string
	coverURL string
	timeout  time.Duration
	http     *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithCoverURL sets the cover CDN root
func WithCoverURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.coverURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout bounds each search request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the API at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		coverURL: DefaultCoverURL,
		timeout:  DefaultTimeout,
		http:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type mangaList struct {
	Result string  `json:"result"`
	Data   []manga `json:"data"`
}

type manga struct {
	ID         uuid.UUID `json:"id"`
	Attributes struct {
		Title     map[string]string   `json:"title"`
		AltTitles []map[string]string `json:"altTitles"`
	} `json:"attributes"`
	Relationships []relationship `json:"relationships"`
}

type relationship struct {
	Type       string `json:"type"`
	Attributes *struct {
		Name     string `json:"name"`
		FileName string `json:"fileName"`
	} `json:"attributes"`
}

// Search returns titles matching title, most followed first. A request
// that outlives the client timeout fails with SearchTimeout; no match
// fails with SearchNoResults.
func (c *Client) Search(ctx context.Context, title string) ([]Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("title", title)
	q.Set("order[followedCount]", "desc")
	q.Add("includes[]", "author")
	q.Add("includes[]", "artist")
	q.Add("includes[]", "cover_art")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/manga?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.NewSearchError("invalid search request", title, errors.SearchFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewSearchError("search request timed out", title, errors.SearchTimeout, err)
		}
		return nil, errors.NewSearchError("search request failed", title, errors.SearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewSearchError(fmt.Sprintf("search request failed with status %d", resp.StatusCode), title, errors.SearchFailed, nil)
	}

	var list mangaList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewSearchError("search request timed out", title, errors.SearchTimeout, err)
		}
		return nil, errors.NewSearchError("malformed search response", title, errors.SearchFailed, err)
	}
	if len(list.Data) == 0 {
		return nil, errors.NewSearchError("no titles found", title, errors.SearchNoResults, nil)
	}

	results := make([]Result, 0, len(list.Data))
	for _, m := range list.Data {
		results = append(results, c.toResult(m))
	}

	log.LogWithFields(log.F("query", title), log.F("results", len(results))).Debug("Search finished")
	return results, nil
}

func (c *Client) toResult(m manga) Result {
	r := Result{
		ID:           m.ID,
		EnglishTitle: englishTitle(m.Attributes.Title),
		Author:       Unknown,
		Artist:       Unknown,
	}
	for _, alt := range m.Attributes.AltTitles {
		if t, ok := alt["ja-ro"]; ok {
			r.RomajiTitle = t
			break
		}
	}

	authorSeen, artistSeen := false, false
	for _, rel := range m.Relationships {
		if rel.Attributes == nil {
			continue
		}
		switch rel.Type {
		case "author":
			if !authorSeen {
				r.Author, authorSeen = rel.Attributes.Name, true
			}
		case "artist":
			if !artistSeen {
				r.Artist, artistSeen = rel.Attributes.Name, true
			}
		case "cover_art":
			if r.CoverURL == "" && rel.Attributes.FileName != "" {
				r.CoverURL = fmt.Sprintf("%s/covers/%s/%s.512.jpg", c.coverURL, m.ID, rel.Attributes.FileName)
			}
		}
	}
	return r
}

// englishTitle prefers "en" and falls back to the first title by language
func englishTitle(titles map[string]string) string {
	if t, ok := titles["en"]; ok {
		return t
	}
	langs := make([]string, 0, len(titles))
	for lang := range titles {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	if len(langs) == 0 {
		return ""
	}
	return titles[langs[0]]
}

// FetchCover downloads the image at coverURL and scales it to fit in a
// size x size box.
func (c *Client) FetchCover(ctx context.Context, coverURL string, size uint) (image.Image, error) {
	if coverURL == "" {
		return nil, errors.NewSearchError("no cover", "", errors.SearchFailed, nil)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, errors.NewSearchError("invalid cover request", coverURL, errors.SearchFailed, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewSearchError("cover request failed", coverURL, errors.SearchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewSearchError(fmt.Sprintf("cover request failed with status %d", resp.StatusCode), coverURL, errors.SearchFailed, nil)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, errors.NewSearchError("cannot decode cover", coverURL, errors.SearchFailed, err)
	}
	return resize.Thumbnail(size, size, img, resize.Lanczos3), nil
}

// SearchWithCovers searches and then fetches every cover concurrently.
// Cover failures only leave that Hit without a cover.
func (c *Client) SearchWithCovers(ctx context.Context, title string, size uint) ([]Hit, error) {
	results, err := c.Search(ctx, title)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, len(results))
	var g errgroup.Group
	g.SetLimit(coverWorkers)
	for i, r := range results {
		hits[i].Result = r
		g.Go(func() error {
			cover, err := c.FetchCover(ctx, r.CoverURL, size)
			if err != nil {
				log.LogWithError(err).Debug("Cover unavailable")
				return nil
			}
			hits[i].Cover = cover
			return nil
		})
	}
	_ = g.Wait()
	return hits, nil
}
