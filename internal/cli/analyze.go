package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nofnotg/anamnesis/internal/logging"
	"github.com/nofnotg/anamnesis/internal/model"
	"github.com/nofnotg/anamnesis/internal/pipeline"
)

var (
	outJSON        string
	outMD          string
	analyzeTimeout time.Duration
	noFooter       bool

	contractIssueDate string
	waitingDays       int
	claimDate         string
	claimSystems      []string
	claimDiagnosis    string

	dictPath    string
	llmProvider string
	llmModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a single medical record and generate a disclosure-risk report",
	Long: `Analyze runs one OCR-exported medical record (.txt, .md, .html) through
the full pipeline: temporal anchoring, entity extraction, timeline
assembly, dispute scoring, episode grouping and disclosure-risk
assessment.

Contract and claim context enable per-event dispute scoring; without
them the timeline is built untagged.

Example:
  anamnesis analyze record.txt
  anamnesis analyze record.txt --issue-date 2024-01-01 --waiting-days 90 \
    --claim-date 2024-06-01 --claim-systems cancer --json report.json --md report.md
  anamnesis analyze record.html --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Contract/claim context flags
	analyzeCmd.Flags().StringVar(&contractIssueDate, "issue-date", "", "contract issue date (YYYY-MM-DD)")
	analyzeCmd.Flags().IntVar(&waitingDays, "waiting-days", 90, "contract waiting period in days")
	analyzeCmd.Flags().StringVar(&claimDate, "claim-date", "", "claim date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringSliceVar(&claimSystems, "claim-systems", nil, "claimed body-system codes (e.g. cancer,cardiovascular)")
	analyzeCmd.Flags().StringVar(&claimDiagnosis, "claim-diagnosis", "", "claimed diagnosis text")

	// Dictionary and LLM flags
	analyzeCmd.Flags().StringVar(&dictPath, "dict", "", "disclosure dictionary override file (YAML)")
	analyzeCmd.Flags().StringVar(&llmProvider, "llm", "", "narrative LLM provider (openai, ollama; disabled when empty)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "narrative LLM model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	if dictPath != "" {
		cfg.Dict.Path = dictPath
	}
	if err := configureLLM(cfg); err != nil {
		return err
	}

	docCtx, err := buildDocumentContext()
	if err != nil {
		return err
	}

	log := logging.Setup(cfg.Logging.Format, cfg.Logging.Level)
	runner, err := pipeline.NewRunner(cfg, log)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	data, err := runner.Process(ctx, path, docCtx)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Detected %d anchors\n", len(data.Anchors))
		fmt.Fprintf(os.Stderr, "✓ Extracted %d entities\n", len(data.Entities))
		fmt.Fprintf(os.Stderr, "✓ Timeline with %d events, %d episodes\n", data.Timeline.EventCount, len(data.Episodes))
		if data.Disclosure != nil {
			fmt.Fprintf(os.Stderr, "✓ Disclosure risk %.2f (%s)\n",
				data.Disclosure.OverallRiskScore, data.Disclosure.RiskAssessment.Level)
		}
		fmt.Fprintln(os.Stderr)
	}

	report := runner.BuildReport(ctx, data, docCtx)
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}
	renderer.RenderSummary(report)
	return nil
}

// buildDocumentContext parses the contract/claim flags. Both issue date
// and claim context are optional; dispute scoring requires the contract.
func buildDocumentContext() (pipeline.DocumentContext, error) {
	var docCtx pipeline.DocumentContext

	if contractIssueDate != "" {
		issue, err := time.Parse("2006-01-02", contractIssueDate)
		if err != nil {
			return docCtx, fmt.Errorf("parse --issue-date: %w", err)
		}
		if waitingDays < 0 {
			return docCtx, fmt.Errorf("--waiting-days must be non-negative")
		}
		docCtx.Contract = &model.ContractInfo{IssueDate: issue, WaitingPeriodDays: waitingDays}
	}

	if claimDate != "" || len(claimSystems) > 0 || claimDiagnosis != "" {
		claim := &model.ClaimSpec{
			BodySystems: claimSystems,
			Diagnosis:   claimDiagnosis,
		}
		if claimDate != "" {
			d, err := time.Parse("2006-01-02", claimDate)
			if err != nil {
				return docCtx, fmt.Errorf("parse --claim-date: %w", err)
			}
			claim.ClaimDate = d
		}
		docCtx.Claim = claim
	}
	return docCtx, nil
}

// configureLLM applies the LLM flags and resolves the API key from the
// environment. Keys never live in config files.
func configureLLM(cfg *model.Config) error {
	if llmProvider == "" {
		return nil
	}
	cfg.LLM.Provider = llmProvider
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	switch strings.ToLower(llmProvider) {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}
