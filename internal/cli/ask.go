package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbarrena/calverify/internal/model"
	"github.com/jbarrena/calverify/internal/pipeline"
)

var (
	askMode     string
	askJSON     bool
	askTimeout  time.Duration
	askProvider string
	askModel    string
	askCorpus   string
	noGrounding bool
	strictGuard bool
	linkCheck   bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one California legal question with verification",
	Long: `Ask retrieves evidence, drafts an answer, verifies its factual claims
against the evidence, and only shows the answer when it clears the
confidence gate.

Source modes:
  authoritative  curated practice-guide corpus only; verification skipped
  general        open retrieval; full verification
  hybrid         both; verification applies to the open portion (default)

Example:
  calverify ask "Does a premarital agreement need to be in writing?"
  calverify ask --mode general --json "What does Family Code 1615 require?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askMode, "mode", "hybrid", "source mode (authoritative, general, hybrid)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full answer object as JSON")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall turn timeout")
	askCmd.Flags().StringVar(&askProvider, "llm-provider", "", "primary LLM provider (gemini, openai)")
	askCmd.Flags().StringVar(&askModel, "llm-model", "", "primary LLM model name")
	askCmd.Flags().StringVar(&askCorpus, "corpus", "", "path to the curated corpus YAML")
	askCmd.Flags().BoolVar(&noGrounding, "no-grounding", false, "disable web-search grounding")
	askCmd.Flags().BoolVar(&strictGuard, "strict", false, "withhold answers that fail guardrail checks")
	askCmd.Flags().BoolVar(&linkCheck, "link-check", false, "HEAD-check resolved citation links")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	mode := model.SourceMode(askMode)
	switch mode {
	case model.SourceModeAuthoritative, model.SourceModeGeneral, model.SourceModeHybrid:
	default:
		return fmt.Errorf("unknown mode %q (authoritative, general, hybrid)", askMode)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyAskFlags(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	p, err := pipeline.NewFromConfig(ctx, cfg, mode)
	if err != nil {
		return err
	}
	tm := pipeline.NewTurnManager(p)

	if verbose {
		fmt.Fprintf(os.Stderr, "Question: %s\nMode: %s\n\n", question, mode)
	}

	answer, err := tm.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	renderAnswer(answer)
	return nil
}

func applyAskFlags(cfg *model.Config) {
	if askProvider != "" {
		cfg.LLM.Provider = askProvider
	}
	if askModel != "" {
		cfg.LLM.Model = askModel
	}
	if askCorpus != "" {
		cfg.Retrieval.CorpusPath = askCorpus
	}
	if noGrounding {
		cfg.LLM.Grounding = false
	}
	if strictGuard {
		cfg.Guard.Strict = true
	}
	if linkCheck {
		cfg.Guard.LinkCheck = true
	}
	cfg.Output.Verbose = verbose
}

func renderAnswer(answer *model.Answer) {
	switch answer.Status {
	case model.StatusRefusal:
		fmt.Println(answer.Caveat)
	default:
		fmt.Println(answer.Text)
		if answer.Caveat != "" {
			fmt.Printf("\nNote: %s\n", answer.Caveat)
		}
	}

	if answer.Guardrails != nil && len(answer.Guardrails.Warnings) > 0 {
		fmt.Println()
		for _, w := range answer.Guardrails.Warnings {
			fmt.Printf("Warning: %s\n", w)
		}
	}

	if len(answer.Sources) > 0 && answer.Status != model.StatusRefusal {
		fmt.Println("\nSources:")
		for _, src := range answer.Sources {
			fmt.Printf("  [%d] %s\n      %s\n", src.ID, src.Title, src.URL)
		}
	}

	if answer.Report != nil {
		fmt.Printf("\nVerification: %s (coverage %.0f%%)\n", answer.Status, answer.Report.Coverage*100)
	} else if answer.Status == model.StatusNotNeeded {
		fmt.Printf("\nVerification: %s (authoritative sources only)\n", answer.Status)
	}
}
