package retrieval

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jbarrena/calverify/internal/cite"
	"github.com/jbarrena/calverify/internal/model"
	"github.com/jbarrena/calverify/internal/util"
	"github.com/jbarrena/calverify/internal/worker"
)

// maxSectionExcerpt bounds how much statutory text one source carries.
const maxSectionExcerpt = 4000

// LegInfoProvider fetches the full text of California code sections cited in
// the question from the legislature's public site. Sources it returns carry
// the bill-text category, which lowers the confidence-gate threshold:
// verbatim statutory text is the strongest evidence the pipeline sees.
//
// The provider is citation-driven: a question with no recognizable code
// citation yields an empty result.
type LegInfoProvider struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	userAgent  string
}

func NewLegInfoProvider(cfg model.HTTPConfig, limiter *worker.Limiter) *LegInfoProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	return &LegInfoProvider{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		robots:     util.NewRobotsChecker(cfg.UserAgent, timeout),
		limiter:    limiter,
		userAgent:  cfg.UserAgent,
	}
}

func (p *LegInfoProvider) Name() string { return "leginfo" }

func (p *LegInfoProvider) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	var sources []model.Source

	for _, c := range cite.Extract(query) {
		if c.Kind != cite.KindCode {
			continue
		}
		resolved := cite.ResolveCode(c)
		if resolved == nil {
			continue
		}

		text, err := p.fetchSection(ctx, resolved.URL)
		if err != nil {
			// One unreachable section must not sink citations that resolved.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if text == "" {
			continue
		}

		sources = append(sources, model.Source{
			Title:      resolved.Title,
			URL:        resolved.URL,
			Excerpt:    text,
			Confidence: 1.0,
			Category:   model.CategoryBillText,
		})
		if opts.Limit > 0 && len(sources) >= opts.Limit {
			break
		}
	}

	return &SearchResult{Sources: sources}, nil
}

func (p *LegInfoProvider) fetchSection(ctx context.Context, sectionURL string) (string, error) {
	allowed, crawlDelay, err := p.robots.CanFetch(ctx, sectionURL)
	if err == nil && !allowed {
		return "", Permanent(fmt.Errorf("disallowed by robots.txt: %s", sectionURL))
	}

	if p.limiter != nil {
		if err := p.limiter.WaitWithDelay(ctx, sectionURL, crawlDelay); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sectionURL, nil)
	if err != nil {
		return "", Permanent(err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch section: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("leginfo returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("read section: %w", err)
	}

	text := strings.TrimSpace(StripHTML(string(body)))
	if len(text) > maxSectionExcerpt {
		text = text[:maxSectionExcerpt]
	}
	return text, nil
}
