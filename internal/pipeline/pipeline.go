// Package pipeline orchestrates one question turn: retrieve evidence, prune
// it, draft an answer, extract and verify claims, gate the result, and run
// guardrails. A TurnManager on top guarantees single-flight semantics per
// conversation.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jbarrena/calverify/internal/cite"
	"github.com/jbarrena/calverify/internal/claims"
	"github.com/jbarrena/calverify/internal/gate"
	"github.com/jbarrena/calverify/internal/guard"
	"github.com/jbarrena/calverify/internal/llm"
	"github.com/jbarrena/calverify/internal/model"
	"github.com/jbarrena/calverify/internal/retrieval"
	"github.com/jbarrena/calverify/internal/verify"
)

// FailureMessage is shown when the pipeline cannot reach its backends. The
// underlying error is logged, never rendered to the user.
const FailureMessage = "I'm having trouble connecting to my research sources right now. Please try again in a moment."

// Pipeline wires the per-turn stages together. Construct once, reuse across
// turns; every method is safe for concurrent use.
type Pipeline struct {
	cfg       *model.Config
	retriever *retrieval.Retriever
	pruner    *retrieval.Pruner
	claims    *claims.Extractor
	verifier  *verify.Verifier
	provider  llm.Provider
	resolver  *cite.Resolver
	guard     *guard.Runner
	mode      model.SourceMode
}

// Options are the pipeline's collaborators. Resolver and Guard may be nil.
type Options struct {
	Config    *model.Config
	Retriever *retrieval.Retriever
	Provider  llm.Provider // primary/fallback pair for drafting
	Verifier  *verify.Verifier
	Resolver  *cite.Resolver
	Guard     *guard.Runner
	Mode      model.SourceMode
}

func New(opts Options) *Pipeline {
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	mode := opts.Mode
	if mode == "" {
		mode = model.SourceModeHybrid
	}
	return &Pipeline{
		cfg:       cfg,
		retriever: opts.Retriever,
		pruner:    retrieval.NewPruner(cfg.Retrieval.SimilarityThreshold),
		claims:    claims.NewExtractor(),
		verifier:  opts.Verifier,
		provider:  opts.Provider,
		resolver:  opts.Resolver,
		guard:     opts.Guard,
		mode:      mode,
	}
}

// Ask answers one question in the pipeline's configured source mode.
func (p *Pipeline) Ask(ctx context.Context, question string) (*model.Answer, error) {
	return p.AskWithMode(ctx, question, p.mode)
}

// AskWithMode runs the full turn. Returned errors are either cancellation or
// unrecoverable transport failures; callers render FailureMessage for the
// latter.
func (p *Pipeline) AskWithMode(ctx context.Context, question string, mode model.SourceMode) (*model.Answer, error) {
	started := time.Now()
	exhaustive := retrieval.IsExhaustive(question)

	sources, content, err := p.retrieve(ctx, question, exhaustive)
	if err != nil {
		return nil, err
	}

	authoritative, open := model.SplitByAuthority(sources)

	switch mode {
	case model.SourceModeAuthoritative:
		return p.answerAuthoritative(ctx, question, authoritative)
	case model.SourceModeGeneral:
		authoritative = nil
		sources = open
	}

	if !exhaustive {
		open = p.pruner.Prune(open, question, p.cfg.Retrieval.TopK)
		sources = append(append([]model.Source{}, authoritative...), open...)
	}
	sources = model.AssignIDs(sources)

	resp, err := p.draft(ctx, question, sources, content)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("draft answer: %w", err)
	}
	sources = p.mergeGroundingSources(sources, resp)

	claimList := p.claims.Extract(resp.Text, sources)
	checkable := claimsToVerify(claimList, sources, mode)

	// Claims are checked against open evidence only; authoritative excerpts
	// are exempt from verification by definition.
	_, openEvidence := model.SplitByAuthority(sources)

	out, err := p.verifier.Verify(ctx, resp.Text, checkable, openEvidence)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("verify answer: %w", err)
	}

	hasBillText := anyCategory(sources, model.CategoryBillText)
	var decision gate.Decision
	switch {
	case len(checkable) == 0:
		// The verifier skipped the model call; its short-circuit status
		// stands and the gate's quote-count rule does not apply.
		decision = gate.Decision{Status: out.Status, ShouldShow: true}
	case out.Status == model.StatusUnverified:
		// Unusable verifier output degrades to unverified, never a refusal.
		decision = gate.Unverified()
	default:
		decision = gate.Evaluate(out.Report, hasBillText, resp.GroundingUsed)
	}

	answer := &model.Answer{
		Sources:       sources,
		Status:        decision.Status,
		Report:        &out.Report,
		Claims:        claimList,
		Caveat:        decision.Caveat,
		SourceMode:    mode,
		GroundingUsed: resp.GroundingUsed,
	}
	if decision.ShouldShow {
		answer.Text = out.VerifiedAnswer
	}

	p.runGuardrails(ctx, question, answer)

	slog.Debug("turn complete",
		"status", answer.Status,
		"coverage", out.Report.Coverage,
		"sources", len(sources),
		"claims", len(claimList),
		"exhaustive", exhaustive,
		"elapsed", time.Since(started))

	return answer, nil
}

// retrieve fans the question out, expanding into parallel query variants
// with raised limits in exhaustive mode.
func (p *Pipeline) retrieve(ctx context.Context, question string, exhaustive bool) ([]model.Source, string, error) {
	if p.retriever == nil {
		return nil, "", nil
	}

	opts := retrieval.SearchOptions{Limit: p.cfg.Retrieval.MaxResults}
	if !exhaustive {
		return p.retriever.Retrieve(ctx, question, opts)
	}

	opts.Limit = p.cfg.Retrieval.ExhaustiveResults
	variants := retrieval.QueryVariants(question)

	type variantResult struct {
		sources []model.Source
		content string
	}
	results := make([]variantResult, len(variants))
	var wg sync.WaitGroup
	for i, v := range variants {
		wg.Add(1)
		go func(idx int, query string) {
			defer wg.Done()
			srcs, content, err := p.retriever.Retrieve(ctx, query, opts)
			if err != nil {
				return
			}
			results[idx] = variantResult{sources: srcs, content: content}
		}(i, v)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	var merged []model.Source
	var content string
	byURL := make(map[string]int)
	for _, res := range results {
		if content == "" {
			content = res.content
		}
		for _, src := range res.sources {
			if idx, seen := byURL[src.URL]; seen {
				merged[idx] = src
				continue
			}
			byURL[src.URL] = len(merged)
			merged = append(merged, src)
		}
	}
	return merged, content, nil
}

// answerAuthoritative drafts from curated evidence only and skips
// verification entirely.
func (p *Pipeline) answerAuthoritative(ctx context.Context, question string, authoritative []model.Source) (*model.Answer, error) {
	sources := model.AssignIDs(authoritative)

	resp, err := p.draft(ctx, question, sources, "")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("draft answer: %w", err)
	}

	answer := &model.Answer{
		Text:            resp.Text,
		Sources:         sources,
		Status:          model.StatusNotNeeded,
		SourceMode:      model.SourceModeAuthoritative,
		IsAuthoritative: true,
	}
	p.runGuardrails(ctx, question, answer)
	return answer, nil
}

func (p *Pipeline) draft(ctx context.Context, question string, sources []model.Source, content string) (*llm.GenerateResponse, error) {
	return p.provider.Generate(ctx, llm.GenerateRequest{
		Prompt:    buildDraftPrompt(question, sources, content),
		System:    draftSystemInstruction,
		Grounding: p.cfg.LLM.Grounding,
		MaxTokens: p.cfg.LLM.MaxTokens,
	})
}

// mergeGroundingSources appends web-grounding sources the provider consulted,
// deduplicated by URL, continuing the existing ID sequence.
func (p *Pipeline) mergeGroundingSources(sources []model.Source, resp *llm.GenerateResponse) []model.Source {
	if len(resp.GroundingSources) == 0 {
		return sources
	}

	byURL := make(map[string]bool, len(sources))
	for _, s := range sources {
		byURL[s.URL] = true
	}
	for _, g := range resp.GroundingSources {
		if g.URL == "" || byURL[g.URL] {
			continue
		}
		byURL[g.URL] = true
		g.ID = len(sources) + 1
		g.Category = model.CategoryWebGrounding
		sources = append(sources, g)
	}
	return sources
}

// claimsToVerify filters claims for the verification pass. In hybrid mode a
// claim whose every inline citation points at authoritative evidence is
// exempt; claims citing open evidence, or citing nothing, are checked.
func claimsToVerify(claimList []model.Claim, sources []model.Source, mode model.SourceMode) []model.Claim {
	if mode != model.SourceModeHybrid {
		return claimList
	}

	authoritativeByID := make(map[int]bool, len(sources))
	for _, s := range sources {
		if s.Authoritative {
			authoritativeByID[s.ID] = true
		}
	}

	var out []model.Claim
	for _, c := range claimList {
		if len(c.Cites) > 0 && allAuthoritative(c.Cites, authoritativeByID) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func allAuthoritative(cites []int, authoritativeByID map[int]bool) bool {
	for _, id := range cites {
		if !authoritativeByID[id] {
			return false
		}
	}
	return true
}

// runGuardrails resolves citations in the final text and applies the guard
// suite. Guardrails never run on withheld text.
func (p *Pipeline) runGuardrails(ctx context.Context, question string, answer *model.Answer) {
	if p.guard == nil || answer.Text == "" {
		return
	}

	var citationURLs []string
	if p.resolver != nil {
		extracted := cite.Extract(answer.Text)
		if len(extracted) > 0 {
			resolved, err := p.resolver.Resolve(ctx, extracted)
			if err == nil {
				for _, src := range resolved {
					citationURLs = append(citationURLs, src.URL)
				}
			}
		}
	}

	result := p.guard.Run(ctx, question, answer, citationURLs)
	p.guard.Apply(answer, result)
}

func anyCategory(sources []model.Source, category string) bool {
	for _, s := range sources {
		if s.Category == category {
			return true
		}
	}
	return false
}
