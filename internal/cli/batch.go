package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbarrena/calverify/internal/model"
	"github.com/jbarrena/calverify/internal/pipeline"
	"github.com/jbarrena/calverify/internal/worker"
)

var (
	batchOut     string
	batchMode    string
	batchTimeout time.Duration
	batchWorkers int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <questions-file>",
	Short: "Answer many questions concurrently",
	Long: `Batch reads one question per line (blank lines and # comments are
skipped), runs each through the full verification pipeline, and writes the
answers as JSON lines.

Example:
  calverify batch questions.txt --out answers.jsonl --workers 3`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchOut, "out", "answers.jsonl", "output path (JSON lines)")
	batchCmd.Flags().StringVar(&batchMode, "mode", "hybrid", "source mode (authoritative, general, hybrid)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "overall batch timeout")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent questions (0 uses config)")
}

// batchRecord is one output line.
type batchRecord struct {
	Question string        `json:"question"`
	Answer   *model.Answer `json:"answer,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	mode := model.SourceMode(batchMode)
	switch mode {
	case model.SourceModeAuthoritative, model.SourceModeGeneral, model.SourceModeHybrid:
	default:
		return fmt.Errorf("unknown mode %q (authoritative, general, hybrid)", batchMode)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Output.Verbose = verbose

	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Concurrency.BatchWorkers
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	p, err := pipeline.NewFromConfig(ctx, cfg, mode)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, workers)
	results, err := processor.ProcessFile(ctx, args[0])
	if err != nil {
		return err
	}

	out, err := os.Create(batchOut)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() { _ = out.Close() }()

	enc := json.NewEncoder(out)
	var failed int
	for _, res := range results {
		rec := batchRecord{Question: res.Question, Answer: res.Answer}
		if res.Error != nil {
			rec.Error = res.Error.Error()
			failed++
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	fmt.Printf("Answered %d questions (%d failed): %s\n", len(results), failed, batchOut)
	return nil
}
