package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jbarrena/calverify/internal/llm"
	"github.com/jbarrena/calverify/internal/model"
	"github.com/jbarrena/calverify/internal/verify"
)

// gatedProvider blocks drafting calls whose prompt contains "slow" until the
// context is cancelled; everything else returns immediately.
type gatedProvider struct {
	started   chan struct{}
	startOnce sync.Once
}

func (g *gatedProvider) Name() string { return "gated" }

func (g *gatedProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if strings.Contains(req.Prompt, "slow") {
		g.startOnce.Do(func() { close(g.started) })
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return &llm.GenerateResponse{Text: "Hello! Ask me about California law."}, nil
}

func newTurnManager(drafter llm.Provider) *TurnManager {
	p := New(Options{
		Provider: drafter,
		Verifier: verify.NewVerifier(&scriptedProvider{text: fullSupportJSON()}),
		Mode:     model.SourceModeGeneral,
	})
	return NewTurnManager(p)
}

func TestTurnManager_NewTurnCancelsPrior(t *testing.T) {
	drafter := &gatedProvider{started: make(chan struct{})}
	tm := newTurnManager(drafter)
	ctx := context.Background()

	type result struct {
		answer *model.Answer
		err    error
	}
	first := make(chan result, 1)
	go func() {
		a, err := tm.Ask(ctx, "a slow exhaustive research question")
		first <- result{a, err}
	}()

	select {
	case <-drafter.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first turn never started")
	}

	second, err := tm.Ask(ctx, "hi")
	if err != nil {
		t.Fatalf("second turn failed: %v", err)
	}

	select {
	case res := <-first:
		if !errors.Is(res.err, ErrSuperseded) {
			t.Errorf("superseded turn must report ErrSuperseded, got answer=%v err=%v", res.answer, res.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("superseded turn never returned")
	}

	if cur := tm.Current(); cur != second {
		t.Error("only the newest turn's answer may be applied")
	}
}

func TestTurnManager_StaleResultNeverApplied(t *testing.T) {
	drafter := &gatedProvider{started: make(chan struct{})}
	tm := newTurnManager(drafter)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		_, _ = tm.Ask(ctx, "a slow question")
		close(done)
	}()
	<-drafter.started

	second, err := tm.Ask(ctx, "hi")
	if err != nil {
		t.Fatal(err)
	}
	<-done

	if tm.Current() != second {
		t.Error("stale turn overwrote the current answer")
	}
}

func TestTurnManager_TransportFailureRendersFallbackMessage(t *testing.T) {
	tm := newTurnManager(&scriptedProvider{err: errors.New("dial tcp: connection refused")})

	answer, err := tm.Ask(context.Background(), "anything at all")
	if err != nil {
		t.Fatalf("transport failure must not surface as an error: %v", err)
	}
	if answer.Text != FailureMessage {
		t.Errorf("expected the connection-trouble message, got %q", answer.Text)
	}
	if answer.Status != model.StatusUnverified {
		t.Errorf("fallback answer is unverified, got %s", answer.Status)
	}
}

func TestTurnManager_CallerCancellationPropagates(t *testing.T) {
	drafter := &gatedProvider{started: make(chan struct{})}
	tm := newTurnManager(drafter)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := tm.Ask(ctx, "a slow question")
		result <- err
	}()
	<-drafter.started
	cancel()

	select {
	case err := <-result:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("caller cancellation must propagate, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled turn never returned")
	}
}
