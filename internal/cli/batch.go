package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nofnotg/anamnesis/internal/logging"
	"github.com/nofnotg/anamnesis/internal/model"
	"github.com/nofnotg/anamnesis/internal/pipeline"
	"github.com/nofnotg/anamnesis/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir|list-file>",
	Short: "Analyze multiple medical records in parallel",
	Long: `Batch analyzes many documents concurrently, one task per document:
- Input is either a directory of records or a list file of paths
- Each document runs the full pipeline independently
- Individual JSON and Markdown reports are written per document

Example:
  anamnesis batch ./records
  anamnesis batch paths.txt --concurrency 8 --output-dir ./reports
  anamnesis batch ./records --issue-date 2024-01-01 --claim-systems cancer`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./anamnesis-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Shared context flags (same semantics as analyze)
	batchCmd.Flags().StringVar(&contractIssueDate, "issue-date", "", "contract issue date (YYYY-MM-DD)")
	batchCmd.Flags().IntVar(&waitingDays, "waiting-days", 90, "contract waiting period in days")
	batchCmd.Flags().StringVar(&claimDate, "claim-date", "", "claim date (YYYY-MM-DD)")
	batchCmd.Flags().StringSliceVar(&claimSystems, "claim-systems", nil, "claimed body-system codes")
	batchCmd.Flags().StringVar(&claimDiagnosis, "claim-diagnosis", "", "claimed diagnosis text")
	batchCmd.Flags().StringVar(&dictPath, "dict", "", "disclosure dictionary override file (YAML)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

// batchRunner adapts the pipeline runner to the worker Processor
// interface, writing per-document reports as a side effect.
type batchRunner struct {
	runner   *pipeline.Runner
	renderer *pipeline.Renderer
	docCtx   pipeline.DocumentContext
	outDir   string
}

func (b *batchRunner) ProcessDocument(ctx context.Context, path string) (*model.Report, error) {
	data, err := b.runner.Process(ctx, path, b.docCtx)
	if err != nil {
		return nil, err
	}
	report := b.runner.BuildReport(ctx, data, b.docCtx)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := b.renderer.RenderJSON(report, filepath.Join(b.outDir, base+".json")); err != nil {
		return nil, err
	}
	if err := b.renderer.RenderMarkdown(report, filepath.Join(b.outDir, base+".md")); err != nil {
		return nil, err
	}
	return report, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	cfg.Concurrency.Workers = concurrency
	if dictPath != "" {
		cfg.Dict.Path = dictPath
	}

	docCtx, err := buildDocumentContext()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	log := logging.Setup(cfg.Logging.Format, cfg.Logging.Level)
	runner, err := pipeline.NewRunner(cfg, log)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	processor := &batchRunner{
		runner:   runner,
		renderer: pipeline.NewRenderer(cfg.Output.IncludeFooter),
		docCtx:   docCtx,
		outDir:   outputDir,
	}

	batch := worker.NewBatchProcessor(processor, cfg.Concurrency.Workers)
	results, err := batch.ProcessInput(ctx, input)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Path, r.Error)
			continue
		}
		succeeded++
	}
	fmt.Fprintf(os.Stderr, "\nProcessed %d documents: %d succeeded, %d failed\n",
		len(results), succeeded, failed)
	fmt.Fprintf(os.Stderr, "Reports written to %s\n", outputDir)

	if failed > 0 && succeeded == 0 {
		return fmt.Errorf("all %d documents failed", failed)
	}
	return nil
}
