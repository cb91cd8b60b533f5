package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/localaudit/localaudit/internal/cache"
	"github.com/localaudit/localaudit/internal/issues"
	"github.com/localaudit/localaudit/internal/llm"
	"github.com/localaudit/localaudit/internal/model"
	"github.com/localaudit/localaudit/internal/pipeline"
	"github.com/localaudit/localaudit/internal/score"
	"github.com/localaudit/localaudit/internal/sources"
	"github.com/localaudit/localaudit/internal/webcheck"
	"github.com/localaudit/localaudit/internal/worker"
)

var (
	cfgFile string
	verbose bool
	logger  *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "localaudit",
	Short: "localaudit - Google Business Profile audit engine",
	Long: `localaudit audits a local business's Google Business Profile.

It pulls profile data from public sources, measures the linked website,
compares the business against nearby competitors, and produces a
deterministic 0-100 score with a prioritized fix-it plan.

The same profile data always produces the same score: there is no
randomness and no model in the scoring path.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
}

// Execute runs the root command
func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("localaudit v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.localaudit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and LOCALAUDIT_* environment variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.localaudit")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("LOCALAUDIT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func initLogger() {
	if logger != nil {
		return
	}
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		logger = zap.NewNop()
	}
}

// loadConfig layers the config file and environment over the defaults.
// Provider API keys come from their conventional environment variables
// when the file does not set them.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if cfg.Sources.SerperAPIKey == "" {
		cfg.Sources.SerperAPIKey = os.Getenv("SERPER_API_KEY")
	}
	if cfg.Sources.OutscraperAPIKey == "" {
		cfg.Sources.OutscraperAPIKey = os.Getenv("OUTSCRAPER_API_KEY")
	}
	if cfg.Sources.PageSpeedAPIKey == "" {
		cfg.Sources.PageSpeedAPIKey = os.Getenv("GOOGLE_PAGESPEED_API_KEY")
	}

	cfg.Output.Verbose = verbose
	return cfg, nil
}

// buildPipeline wires the full audit stack from configuration
func buildPipeline(cfg *model.Config) (*pipeline.Pipeline, error) {
	catalog, err := score.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load scoring catalogue: %w", err)
	}
	library, err := issues.LoadLibrary()
	if err != nil {
		return nil, fmt.Errorf("load issue library: %w", err)
	}

	var responseCache cache.Cache
	if cfg.Cache.Enabled {
		responseCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}
	limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	transport := sources.NewTransport(cfg.HTTP, responseCache, cfg.Cache.DiskTTL, limiter, logger)

	serper := sources.NewSerperClient(cfg.Sources, transport, logger)
	outscraper := sources.NewOutscraperClient(cfg.Sources, transport, logger)
	pagespeed := sources.NewPageSpeedClient(cfg.Sources, transport, logger)
	napChecker := webcheck.NewChecker(cfg.HTTP, logger)

	provider := pipeline.NewDataProvider(serper, outscraper, pagespeed, napChecker, logger)

	summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("configure summarizer: %w", err)
	}

	return pipeline.NewPipeline(
		provider,
		score.NewEngine(catalog),
		issues.NewDetector(library),
		summarizer,
		logger,
	), nil
}
