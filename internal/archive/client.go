package archive

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/litfeed/internal/httpclient"
	"github.com/nao1215/litfeed/internal/model"
)

// DefaultEndpoint is the API endpoint template. "{lang}" is replaced with the
// requested language code.
const DefaultEndpoint = "https://{lang}.wikisource.org/w/api.php"

// langPlaceholder is substituted in endpoint templates.
const langPlaceholder = "{lang}"

// Fetcher fetches one page with its outbound links and categories.
type Fetcher interface {
	FetchPage(ctx context.Context, identifier, language string) (*Page, error)
}

// Searcher performs full-text search.
type Searcher interface {
	Search(ctx context.Context, term, language string, limit int) ([]SearchHit, error)
}

// SearchHit is one search result.
type SearchHit struct {
	Identifier string `json:"title"`
	Snippet    string `json:"snippet"`
}

// Client talks to a MediaWiki-style archive API.
type Client struct {
	http     *httpclient.Client
	endpoint string
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets the API endpoint template.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client using hc for transport.
func NewClient(hc *httpclient.Client, opts ...Option) *Client {
	c := &Client{
		http:     hc,
		endpoint: DefaultEndpoint,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the API URL for language.
func (c *Client) Endpoint(language string) string {
	return strings.ReplaceAll(c.endpoint, langPlaceholder, language)
}

// PageURL returns the human-readable URL of a page, or "" when the endpoint
// does not follow the /w/api.php convention.
func (c *Client) PageURL(title, language string) string {
	ep := c.Endpoint(language)
	base, ok := strings.CutSuffix(ep, "/w/api.php")
	if !ok {
		return ""
	}
	return base + "/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

// parseResponse is the action=parse payload (formatversion=2).
type parseResponse struct {
	Parse *struct {
		Title string `json:"title"`
		Text  string `json:"text"`
		Links []struct {
			Namespace int    `json:"ns"`
			Title     string `json:"title"`
		} `json:"links"`
		Categories []struct {
			Category string `json:"category"`
			Hidden   bool   `json:"hidden"`
		} `json:"categories"`
	} `json:"parse"`
	Error *APIError `json:"error"`
}

// queryResponse is the action=query payload for the list modules we use.
type queryResponse struct {
	Query struct {
		Search          []SearchHit `json:"search"`
		CategoryMembers []struct {
			Namespace int    `json:"ns"`
			Title     string `json:"title"`
		} `json:"categorymembers"`
		Random []struct {
			Namespace int    `json:"ns"`
			Title     string `json:"title"`
		} `json:"random"`
	} `json:"query"`
	Error *APIError `json:"error"`
}

func baseQuery(action string) url.Values {
	return url.Values{
		"action":        {action},
		"format":        {"json"},
		"formatversion": {"2"},
	}
}

// FetchPage fetches the rendered HTML, outbound links and categories of a
// page in one request. Server-side redirects are followed.
func (c *Client) FetchPage(ctx context.Context, identifier, language string) (*Page, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, ErrEmptyIdentifier
	}

	q := baseQuery("parse")
	q.Set("page", identifier)
	q.Set("prop", "text|links|categories")
	q.Set("redirects", "1")
	q.Set("disableeditsection", "1")

	var resp parseResponse
	if err := c.http.GetJSON(ctx, c.Endpoint(language), q, &resp); err != nil {
		return nil, fmt.Errorf("fetch %q: %w", identifier, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("fetch %q: %w", identifier, resp.Error)
	}
	if resp.Parse == nil {
		return nil, fmt.Errorf("fetch %q: %w", identifier, ErrPageNotFound)
	}

	p := resp.Parse
	page := &Page{
		Title:    p.Title,
		Language: language,
		HTML:     p.Text,
		Links:    make(model.LinkGraph, 0, len(p.Links)),
		URL:      c.PageURL(p.Title, language),
	}
	for _, l := range p.Links {
		page.Links = append(page.Links, model.Link{Title: l.Title, Namespace: l.Namespace})
	}
	for _, cat := range p.Categories {
		if cat.Hidden {
			continue
		}
		page.Categories = append(page.Categories, strings.ReplaceAll(cat.Category, "_", " "))
	}

	c.logger.Debug("fetched page",
		"title", page.Title,
		"language", language,
		"links", len(page.Links),
		"categories", len(page.Categories),
	)
	return page, nil
}

// Search returns up to limit main-namespace pages matching term.
func (c *Client) Search(ctx context.Context, term, language string, limit int) ([]SearchHit, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrEmptyIdentifier
	}

	q := baseQuery("query")
	q.Set("list", "search")
	q.Set("srsearch", term)
	q.Set("srnamespace", strconv.Itoa(model.NamespaceMain))
	q.Set("srlimit", strconv.Itoa(limit))

	var resp queryResponse
	if err := c.http.GetJSON(ctx, c.Endpoint(language), q, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("search %q: %w", term, resp.Error)
	}
	return resp.Query.Search, nil
}

// CategoryMembers returns up to limit main-namespace page titles in category.
// The category may be given with or without its namespace prefix.
func (c *Client) CategoryMembers(ctx context.Context, category, language string, limit int) ([]string, error) {
	if strings.TrimSpace(category) == "" {
		return nil, ErrEmptyIdentifier
	}
	if !strings.Contains(category, ":") {
		category = "Category:" + category
	}

	q := baseQuery("query")
	q.Set("list", "categorymembers")
	q.Set("cmtitle", category)
	q.Set("cmtype", "page")
	q.Set("cmnamespace", strconv.Itoa(model.NamespaceMain))
	q.Set("cmlimit", strconv.Itoa(limit))

	var resp queryResponse
	if err := c.http.GetJSON(ctx, c.Endpoint(language), q, &resp); err != nil {
		return nil, fmt.Errorf("category %q: %w", category, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("category %q: %w", category, resp.Error)
	}

	titles := make([]string, 0, len(resp.Query.CategoryMembers))
	for _, m := range resp.Query.CategoryMembers {
		titles = append(titles, m.Title)
	}
	return titles, nil
}

// Random returns up to limit random main-namespace page titles.
func (c *Client) Random(ctx context.Context, language string, limit int) ([]string, error) {
	q := baseQuery("query")
	q.Set("list", "random")
	q.Set("rnnamespace", strconv.Itoa(model.NamespaceMain))
	q.Set("rnlimit", strconv.Itoa(limit))

	var resp queryResponse
	if err := c.http.GetJSON(ctx, c.Endpoint(language), q, &resp); err != nil {
		return nil, fmt.Errorf("random: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("random: %w", resp.Error)
	}

	titles := make([]string, 0, len(resp.Query.Random))
	for _, r := range resp.Query.Random {
		titles = append(titles, r.Title)
	}
	return titles, nil
}
