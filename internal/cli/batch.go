package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/localaudit/localaudit/internal/pipeline"
	"github.com/localaudit/localaudit/internal/worker"
)

var (
	batchWorkers int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Audit multiple businesses from a file in parallel",
	Long: `Batch audits every business listed in a file, one per line in the form

  Business Name | City

Lines starting with # are skipped. Each audit produces a JSON and a
Markdown report in the output directory.

Example:
  localaudit batch businesses.txt
  localaudit batch businesses.txt --workers 8 --output-dir ./audits
  localaudit batch businesses.txt --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "number of concurrent audits")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./audit-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 15*time.Minute, "total timeout for the batch")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache (force fresh fetches)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Cache.Enabled = !noCache
	cfg.Output.IncludeFooter = !noFooter
	if batchWorkers > 0 {
		cfg.Concurrency.BatchWorkers = batchWorkers
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	entries, err := worker.ReadBatchFile(file)
	if err != nil {
		return fmt.Errorf("read batch file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Auditing %d businesses with %d workers\n\n", len(entries), cfg.Concurrency.BatchWorkers)

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers)
	outcomes := processor.Process(ctx, entries)

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	successCount := 0
	failureCount := 0

	for _, outcome := range outcomes {
		if outcome.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", outcome.Entry.BusinessName, outcome.Error)
			continue
		}
		successCount++

		slug := sanitizeFilename(outcome.Result.BusinessName)
		if err := renderer.RenderJSON(outcome.Result, filepath.Join(outputDir, slug+".json")); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: write JSON: %v\n", outcome.Entry.BusinessName, err)
			continue
		}
		if err := renderer.RenderMarkdown(outcome.Result, filepath.Join(outputDir, slug+".md")); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: write Markdown: %v\n", outcome.Entry.BusinessName, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "OK   %s: %d/100 (%s)\n",
			outcome.Result.BusinessName, outcome.Result.TotalScore, outcome.Result.Grade)
	}

	fmt.Fprintf(os.Stderr, "\nDone: %d audited, %d failed, reports in %s\n",
		successCount, failureCount, outputDir)
	return nil
}

// sanitizeFilename turns a business name into a safe report filename
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	)
	slug := replacer.Replace(strings.TrimSpace(name))
	if len(slug) > 100 {
		slug = slug[:100]
	}
	if slug == "" {
		slug = "audit"
	}
	return slug
}
