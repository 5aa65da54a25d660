package guard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jbarrena/calverify/internal/model"
	"github.com/jbarrena/calverify/internal/util"
)

// LinkChecker probes resolved citation URLs with HEAD requests, honoring
// robots.txt. Dead links are reported as warnings only; official sites
// rate-limit and reorganize often enough that a failed probe is weak
// evidence of a bad citation.
type LinkChecker struct {
	client *http.Client
	robots *util.RobotsChecker
	agent  string
}

func NewLinkChecker(userAgent string, timeout time.Duration) *LinkChecker {
	return &LinkChecker{
		client: &http.Client{Timeout: timeout},
		robots: util.NewRobotsChecker(userAgent, timeout),
		agent:  userAgent,
	}
}

// Check probes each URL and accumulates warnings for the unreachable ones.
func (l *LinkChecker) Check(ctx context.Context, urls []string) model.GuardrailResult {
	result := model.GuardrailResult{Passed: true}

	for _, u := range urls {
		if ctx.Err() != nil {
			return result
		}
		if !l.robots.IsAllowed(ctx, u) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("link check skipped for %s (disallowed by robots.txt)", u))
			continue
		}
		if msg := l.probe(ctx, u); msg != "" {
			result.Warnings = append(result.Warnings, msg)
		}
	}
	return result
}

func (l *LinkChecker) probe(ctx context.Context, rawURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Sprintf("citation link %s is malformed", rawURL)
	}
	req.Header.Set("User-Agent", l.agent)

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Sprintf("citation link %s could not be reached", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusMethodNotAllowed {
		return fmt.Sprintf("citation link %s returned HTTP %d", rawURL, resp.StatusCode)
	}
	return ""
}
