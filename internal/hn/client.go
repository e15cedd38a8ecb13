// Package hn talks to a Hacker News search endpoint.
package hn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"hnstories/internal/domain"
	"hnstories/internal/logger"
)

// DefaultEndpoint is the public Algolia search API for Hacker News
const DefaultEndpoint = "https://hn.algolia.com/api/v1/search"

const maxBodyBytes = 8 << 20

// Options configures a Client
type Options struct {
	// Timeout bounds a single request. Zero means no timeout.
	Timeout   time.Duration
	UserAgent string
	// HTTPClient overrides the client used for requests
	HTTPClient *http.Client
}

// Client performs search requests
type Client struct {
	http      *http.Client
	userAgent string
	log       logger.Logger
}

// NewClient creates a search client
func NewClient(opts Options, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "hnstories"
	}
	return &Client{http: hc, userAgent: ua, log: log}
}

type searchResponse struct {
	Hits *[]hit `json:"hits"`
}

type hit struct {
	ObjectID    objectID `json:"objectID"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Author      string   `json:"author"`
	NumComments int      `json:"num_comments"`
	Points      int      `json:"points"`
}

// objectID accepts both the string IDs the live API returns and numeric IDs
type objectID string

func (id *objectID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = objectID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("objectID: %w", err)
	}
	*id = objectID(n.String())
	return nil
}

// Search runs q and returns the hits in the order the server sent them.
// Every failure is a *FetchError.
func (c *Client) Search(ctx context.Context, q domain.Query) ([]domain.Story, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.URL, http.NoBody)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, URL: q.URL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, URL: q.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &FetchError{
			Kind:   KindStatus,
			URL:    q.URL,
			Status: resp.StatusCode,
			Err:    errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	stories, err := decode(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Kind: KindPayload, URL: q.URL, Status: resp.StatusCode, Err: err}
	}

	c.log.Debug("Search completed",
		logger.String("term", q.Term),
		logger.Uint64("seq", q.Seq),
		logger.Int("hits", len(stories)),
		logger.Duration("elapsed", time.Since(start)))
	return stories, nil
}

func decode(r io.Reader) ([]domain.Story, error) {
	var body searchResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if body.Hits == nil {
		return nil, errors.New("response has no hits field")
	}

	stories := make([]domain.Story, 0, len(*body.Hits))
	for i, h := range *body.Hits {
		if h.ObjectID == "" {
			return nil, fmt.Errorf("hit %d has no objectID", i)
		}
		stories = append(stories, domain.Story{
			ID:          string(h.ObjectID),
			Title:       h.Title,
			URL:         h.URL,
			Author:      h.Author,
			NumComments: max(h.NumComments, 0),
			Points:      h.Points,
		})
	}
	return stories, nil
}

// StoryURL returns the Hacker News discussion page for a story
func StoryURL(id string) string {
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return ""
	}
	return "https://news.ycombinator.com/item?id=" + id
}
