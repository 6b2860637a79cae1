package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"PerguntaQueRespondo/backend/go/internal/crawler/collector"
	"PerguntaQueRespondo/backend/go/internal/crawler/pipeline"
	"PerguntaQueRespondo/backend/go/internal/models"

	"github.com/spf13/cobra"
)

var (
	query   string
	periods []string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection for a custom search query",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCollection(cmd.Context(), func(ctx context.Context, p *pipeline.Pipeline) ([]models.Article, error) {
			return p.Collect(ctx, query, testMode)
		})
	},
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Run the daily collection of recent news",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCollection(cmd.Context(), func(ctx context.Context, p *pipeline.Pipeline) ([]models.Article, error) {
			return p.Collect(ctx, collector.DailyQuery, testMode)
		})
	},
}

var historicalCmd = &cobra.Command{
	Use:   "historical",
	Short: "Backfill news month by month",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCollection(cmd.Context(), func(ctx context.Context, p *pipeline.Pipeline) ([]models.Article, error) {
			return p.CollectHistorical(ctx, periods, testMode)
		})
	},
}

func init() {
	collectCmd.Flags().StringVarP(&query, "query", "q", "", "search query")
	_ = collectCmd.MarkFlagRequired("query")
	historicalCmd.Flags().StringSliceVar(&periods, "period", nil, `periods to collect, e.g. "agosto de 2025" (default: the configured periods)`)

	for _, c := range []*cobra.Command{collectCmd, dailyCmd, historicalCmd} {
		c.Flags().BoolVar(&testMode, "test", false, "fewer results and nothing persisted")
		rootCmd.AddCommand(c)
	}
}

func runCollection(parent context.Context, run func(context.Context, *pipeline.Pipeline) ([]models.Article, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(periods) == 0 {
		periods = cfg.Crawler.HistoricalPeriods
	}

	ctx, stop := signalContext(parent)
	defer stop()

	p, err := pipeline.Build(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer p.Close()

	articles, err := run(ctx, p)
	if err != nil {
		return err
	}
	return printArticles(articles)
}

// printArticles writes the full articles in test mode and a title list otherwise.
func printArticles(articles []models.Article) error {
	if testMode {
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		return enc.Encode(articles)
	}
	fmt.Printf("%d novos artigos coletados\n", len(articles))
	for _, a := range articles {
		fmt.Printf("- %s (%s)\n", a.Title, a.Link)
	}
	return nil
}
