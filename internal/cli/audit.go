package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/localaudit/localaudit/internal/pipeline"
)

var (
	auditCity    string
	auditPlaceID string
	outJSON      string
	outMD        string
	auditTimeout time.Duration
	noCache      bool
	noFooter     bool
	llmEnabled   bool
	llmModel     string
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit <business name>",
	Short: "Audit a business profile and generate a scored report",
	Long: `Audit fetches a business's public profile data, scores it across six
categories, detects issues, and produces a prioritized action plan.

Example:
  localaudit audit "Austin Premier Plumbing" --city Austin
  localaudit audit "Austin Premier Plumbing" --city Austin --json audit.json --md audit.md
  localaudit audit --place-id ChIJLwPMoJm1RIYRx0lq_PAT2cQ
  localaudit audit "Austin Premier Plumbing" --llm --llm-model gpt-4o-mini`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVar(&auditCity, "city", "", "city the business operates in")
	auditCmd.Flags().StringVar(&auditPlaceID, "place-id", "", "Google Place ID (alternative to the business name)")

	auditCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (\"-\" for stdout)")
	auditCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	auditCmd.Flags().DurationVar(&auditTimeout, "timeout", 3*time.Minute, "overall audit timeout")
	auditCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache (force fresh fetches)")
	auditCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	auditCmd.Flags().BoolVar(&llmEnabled, "llm", false, "generate an LLM summary of the finished audit")
	auditCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runAudit(cmd *cobra.Command, args []string) error {
	businessName := ""
	if len(args) > 0 {
		businessName = args[0]
	}
	if businessName == "" && auditPlaceID == "" {
		return fmt.Errorf("a business name or --place-id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Cache.Enabled = !noCache
	cfg.Output.IncludeFooter = !noFooter
	if llmEnabled {
		cfg.LLM.Provider = "openai"
		cfg.LLM.Model = llmModel
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Auditing: %s\n\n", businessName)
	}

	result, err := p.Run(ctx, pipeline.AuditRequest{
		BusinessName: businessName,
		City:         auditCity,
		PlaceID:      auditPlaceID,
	})
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(result, outJSON); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		if verbose && outJSON != "-" {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(result, outMD); err != nil {
			return fmt.Errorf("write Markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", outMD)
		}
	}

	renderer.RenderSummary(result)
	return nil
}
