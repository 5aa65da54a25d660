package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jbarrena/calverify/internal/model"
)

// Asker answers one question; the pipeline satisfies this.
type Asker interface {
	Ask(ctx context.Context, question string) (*model.Answer, error)
}

// AskJob runs one question through an Asker.
type AskJob struct {
	Question string
	Asker    Asker
}

func (j *AskJob) Execute(ctx context.Context) Result {
	answer, err := j.Asker.Ask(ctx, j.Question)
	return &AskResult{
		Question: j.Question,
		Answer:   answer,
		Error:    err,
	}
}

// AskResult pairs a question with its answer or failure.
type AskResult struct {
	Question string
	Answer   *model.Answer
	Error    error
}

func (r *AskResult) GetError() error {
	return r.Error
}

// BatchProcessor answers multiple questions concurrently.
type BatchProcessor struct {
	asker       Asker
	concurrency int
}

func NewBatchProcessor(asker Asker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		asker:       asker,
		concurrency: concurrency,
	}
}

// ProcessQuestions fans the questions out over the pool and collects every
// result. Per-question failures are recorded in the result, not returned.
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questions []string) []*AskResult {
	if len(questions) == 0 {
		return []*AskResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-stop:
		}
	}()

	for _, q := range questions {
		pool.Submit(&AskJob{Question: q, Asker: b.asker})
	}

	results := pool.Wait()
	close(stop)

	askResults := make([]*AskResult, len(results))
	for i, result := range results {
		askResults[i] = result.(*AskResult)
	}

	return askResults
}

// ProcessFile reads questions from a file (one per line) and answers them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AskResult, error) {
	questions, err := ReadQuestionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	return b.ProcessQuestions(ctx, questions), nil
}

// ReadQuestionsFromFile reads one question per line, skipping blanks and
// '#' comments, deduplicating exact repeats.
func ReadQuestionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			questions = append(questions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return questions, nil
}
