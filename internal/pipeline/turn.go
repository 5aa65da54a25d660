package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/jbarrena/calverify/internal/model"
)

// ErrSuperseded is returned for a turn that was replaced by a newer one
// before it finished. Its result is discarded, never applied.
var ErrSuperseded = errors.New("turn superseded by a newer question")

// TurnManager serializes answer state across conversation turns with
// single-flight semantics: starting a new turn cancels the previous turn's
// context, and a turn that lost the race can never overwrite a newer answer.
type TurnManager struct {
	pipeline *Pipeline

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	current *model.Answer
}

func NewTurnManager(p *Pipeline) *TurnManager {
	return &TurnManager{pipeline: p}
}

// Ask runs one turn. Any in-flight prior turn is cancelled first. On
// transport failure (anything but cancellation) the returned answer carries
// FailureMessage so callers always have something renderable.
func (t *TurnManager) Ask(ctx context.Context, question string) (*model.Answer, error) {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	turnCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.seq++
	turn := t.seq
	t.mu.Unlock()

	defer cancel()

	answer, err := t.pipeline.Ask(turnCtx, question)
	if err != nil {
		if turnCtx.Err() != nil && ctx.Err() == nil {
			// Cancelled by a newer turn, not by the caller.
			return nil, ErrSuperseded
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		answer = &model.Answer{
			Text:   FailureMessage,
			Status: model.StatusUnverified,
		}
		err = nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if turn != t.seq {
		// A newer turn started while this one ran; its result is stale.
		return nil, ErrSuperseded
	}
	t.current = answer
	return answer, err
}

// Current returns the most recent completed answer, or nil.
func (t *TurnManager) Current() *model.Answer {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
