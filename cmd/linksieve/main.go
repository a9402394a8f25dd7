package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amosWeiskopf/linksieve/internal/config"
	"github.com/amosWeiskopf/linksieve/internal/input"
	"github.com/amosWeiskopf/linksieve/internal/logger"
	"github.com/amosWeiskopf/linksieve/pkg/analyzer"
	"github.com/amosWeiskopf/linksieve/pkg/crawler"
	"github.com/amosWeiskopf/linksieve/pkg/extractor"
	"github.com/amosWeiskopf/linksieve/pkg/reporter"
	"github.com/amosWeiskopf/linksieve/pkg/utils"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "linksieve",
		Short: "Linksieve - landing page link discovery across many sites",
		Long: `Linksieve fetches the landing page of every domain in a list, keeps the
links that match your patterns, and writes one JSON object mapping each
domain to its matched URLs. Every URL is attributed to a single domain.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(newCrawlCmd(v))
	return rootCmd
}

func newCrawlCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [DOMAINS_FILE] [PATTERNS]",
		Short: "Collect matching links from each domain's landing page",
		Long: `Reads one domain per line (first CSV column) from DOMAINS_FILE and a
comma-separated list of regular expressions from PATTERNS. A link is kept
when any pattern matches anywhere in its absolute URL.`,
		Example: `  linksieve crawl domains.csv '/product/,/p/\d+'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			verbose, _ := cmd.Flags().GetBool("verbose")
			return runCrawl(cmd, v, configPath, verbose, args[0], args[1])
		},
	}

	cmd.Flags().StringP("output", "o", "output.txt", "File the JSON result map is written to")
	cmd.Flags().Duration("timeout", crawler.DefaultTimeout, "Per-request timeout")
	cmd.Flags().String("user-agent", "", "User-Agent header (default: rotating browser agents)")
	cmd.Flags().String("summary", reporter.FormatTable, "Summary format on stderr (table, markdown, json, none)")
	cmd.Flags().Bool("pretty", false, "Indent the JSON result file")
	cmd.Flags().Bool("keep-self-links", false, "Keep empty and fragment-only hrefs, which resolve to the page itself")

	_ = v.BindPFlag("output.path", cmd.Flags().Lookup("output"))
	_ = v.BindPFlag("crawler.timeout", cmd.Flags().Lookup("timeout"))
	_ = v.BindPFlag("crawler.user_agent", cmd.Flags().Lookup("user-agent"))
	_ = v.BindPFlag("output.summary", cmd.Flags().Lookup("summary"))
	_ = v.BindPFlag("output.pretty", cmd.Flags().Lookup("pretty"))
	_ = v.BindPFlag("crawler.keep_self_links", cmd.Flags().Lookup("keep-self-links"))
	return cmd
}

func runCrawl(cmd *cobra.Command, v *viper.Viper, configPath string, verbose bool, domainsFile, patternArg string) error {
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Development: cfg.Logging.Development})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// Patterns compile before the domain file is even opened.
	c, err := crawler.New(utils.SplitPatterns(patternArg),
		crawler.WithTimeout(cfg.Crawler.Timeout),
		crawler.WithUserAgent(cfg.Crawler.UserAgent),
		crawler.WithMaxIdleConns(cfg.Crawler.MaxIdleConns),
		crawler.WithLogger(log),
		crawler.WithExtractor(extractor.New(
			extractor.WithSelfLinks(cfg.Crawler.KeepSelfLinks),
			extractor.WithMaxTokenBytes(cfg.Crawler.MaxTokenBytes),
		)),
	)
	if err != nil {
		return fmt.Errorf("failed to create crawler: %w", err)
	}

	domains, err := input.LoadDomains(domainsFile)
	if err != nil {
		return err
	}

	result := c.Run(context.Background(), domains)

	if err := reporter.WriteResults(cfg.Output.Path, result.Results, cfg.Output.Pretty); err != nil {
		return err
	}
	log.Info("results written",
		logger.String("path", cfg.Output.Path),
		logger.Int("domains", len(result.Results)),
	)

	summary := analyzer.New().Summarize(result)
	return reporter.RenderSummary(cmd.ErrOrStderr(), summary, cfg.Output.Summary)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
