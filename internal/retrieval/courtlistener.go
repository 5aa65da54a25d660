package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jbarrena/calverify/internal/model"
	"github.com/jbarrena/calverify/internal/util"
	"github.com/jbarrena/calverify/internal/worker"
)

const courtListenerBase = "https://www.courtlistener.com"

// CourtListenerClient searches published opinions through the CourtListener
// REST API, restricted to California courts. It serves both the evidence
// fan-out (SearchProvider) and case-citation resolution (FindCase).
type CourtListenerClient struct {
	httpClient *http.Client
	limiter    *worker.Limiter
	baseURL    string
	userAgent  string
}

// NewCourtListenerClient builds the client. limiter may be shared with other
// outbound collaborators.
func NewCourtListenerClient(cfg model.HTTPConfig, limiter *worker.Limiter) *CourtListenerClient {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CourtListenerClient{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		limiter:    limiter,
		baseURL:    courtListenerBase,
		userAgent:  cfg.UserAgent,
	}
}

func (c *CourtListenerClient) Name() string { return "courtlistener" }

// clOpinion is the subset of the search result shape we consume.
type clOpinion struct {
	CaseName     string  `json:"caseName"`
	AbsoluteURL  string  `json:"absolute_url"`
	Snippet      string  `json:"snippet"`
	Court        string  `json:"court"`
	DateFiled    string  `json:"dateFiled"`
	CitationText string  `json:"citation_string"`
	Score        float64 `json:"score,omitempty"`
}

type clSearchResponse struct {
	Count   int         `json:"count"`
	Results []clOpinion `json:"results"`
}

// Search runs an opinion search. An empty result set is not an error.
func (c *CourtListenerClient) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "o")
	params.Set("court", "cal calctapp")
	params.Set("order_by", "score desc")
	if !opts.DateAfter.IsZero() {
		params.Set("filed_after", opts.DateAfter.Format("2006-01-02"))
	}
	if !opts.DateBefore.IsZero() {
		params.Set("filed_before", opts.DateBefore.Format("2006-01-02"))
	}

	resp, err := c.get(ctx, "/api/rest/v4/search/?"+params.Encode())
	if err != nil {
		return nil, err
	}

	sources := make([]model.Source, 0, limit)
	for _, op := range resp.Results {
		if len(sources) >= limit {
			break
		}
		title := op.CaseName
		if op.CitationText != "" {
			title = fmt.Sprintf("%s, %s", op.CaseName, op.CitationText)
		}
		sources = append(sources, model.Source{
			Title:    title,
			URL:      c.baseURL + op.AbsoluteURL,
			Excerpt:  StripHTML(op.Snippet),
			Category: model.CategoryCaseLaw,
		})
	}

	return &SearchResult{Sources: sources}, nil
}

// FindCase looks up one case by name. A nil source with nil error means no
// match; the citation resolver then falls back to a search link.
func (c *CourtListenerClient) FindCase(ctx context.Context, caseName string) (*model.Source, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("caseName:(%s)", caseName))
	params.Set("type", "o")
	params.Set("order_by", "score desc")

	resp, err := c.get(ctx, "/api/rest/v4/search/?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	op := resp.Results[0]
	return &model.Source{
		Title:    op.CaseName,
		URL:      c.baseURL + op.AbsoluteURL,
		Excerpt:  StripHTML(op.Snippet),
		Category: model.CategoryCaseLaw,
	}, nil
}

func (c *CourtListenerClient) get(ctx context.Context, path string) (*clSearchResponse, error) {
	full := c.baseURL + path
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, full); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("courtlistener request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return nil, Permanent(fmt.Errorf("courtlistener returned HTTP %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("courtlistener returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out clSearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, Permanent(fmt.Errorf("decode response: %w", err))
	}
	return &out, nil
}
