package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the public Crossref REST API.
	BaseURL = "https://api.crossref.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is requests per second for the polite pool.
	RateLimit = 5.0

	// DefaultRows is the page size requested per call.
	DefaultRows = 100

	// UserAgent identifies the client to Crossref.
	UserAgent = "publication-tracker"
)

// SelectFields are the work fields requested from the API.
var SelectFields = []string{
	"type", "author", "DOI", "URL", "created", "publisher",
	"container-title", "issue", "published", "short-container-title",
	"title", "volume", "indexed", "resource", "page", "relation",
}

// Client is a rate-limited HTTP client for the works endpoint.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithMailto sets the contact address sent with every request.
func WithMailto(addr string) ClientOption {
	return func(c *Client) {
		c.mailto = addr
	}
}

// WithRateLimit overrides the requests-per-second limit.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewClient creates a new Crossref client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query describes one works request.
type Query struct {
	Author        string // query.author
	FromIndexDate string // filter from-index-date
	FromPubDate   string // filter from-pub-date
	Rows          int
}

// WorksPage is the decoded message of a works response. Raw holds each item
// as received, parallel to Items.
type WorksPage struct {
	TotalResults int
	Items        []Work
	Raw          []json.RawMessage
}

// RawItems returns the items as received, or re-encodes Items when the page
// was not built from a response.
func (p *WorksPage) RawItems() ([]json.RawMessage, error) {
	if len(p.Raw) == len(p.Items) {
		return p.Raw, nil
	}
	return EncodeWorks(p.Items)
}

type worksMessage struct {
	TotalResults int               `json:"total-results"`
	Items        []json.RawMessage `json:"items"`
}

type worksResponse struct {
	Status  string        `json:"status"`
	Message *worksMessage `json:"message"`
}

// worksURL builds the request URL for q.
func (c *Client) worksURL(q Query) string {
	rows := q.Rows
	if rows <= 0 {
		rows = DefaultRows
	}

	params := url.Values{}
	if q.Author != "" {
		params.Set("query.author", q.Author)
	}
	params.Set("rows", strconv.Itoa(rows))
	params.Set("select", strings.Join(SelectFields, ","))

	var filters []string
	if q.FromIndexDate != "" {
		filters = append(filters, "from-index-date:"+q.FromIndexDate)
	}
	if q.FromPubDate != "" {
		filters = append(filters, "from-pub-date:"+q.FromPubDate)
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}
	params.Set("sort", "indexed")
	params.Set("order", "asc")
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	return c.baseURL + "/works?" + params.Encode()
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return nil
}

// Works fetches one page of works matching q.
func (c *Client) Works(ctx context.Context, q Query) (*WorksPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.worksURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	ua := UserAgent
	if c.mailto != "" {
		ua += " (mailto:" + c.mailto + ")"
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp); err != nil {
		return nil, err
	}

	var decoded worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if decoded.Message == nil {
		return nil, fmt.Errorf("%w: missing message", ErrInvalidResponse)
	}

	page := &WorksPage{
		TotalResults: decoded.Message.TotalResults,
		Items:        make([]Work, len(decoded.Message.Items)),
		Raw:          decoded.Message.Items,
	}
	for i, raw := range page.Raw {
		if err := json.Unmarshal(raw, &page.Items[i]); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrInvalidResponse, i, err)
		}
	}
	return page, nil
}
