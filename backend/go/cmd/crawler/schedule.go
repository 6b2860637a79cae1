package main

import (
	"context"
	"time"

	"PerguntaQueRespondo/backend/go/internal/crawler/collector"
	"PerguntaQueRespondo/backend/go/internal/crawler/pipeline"
	"PerguntaQueRespondo/backend/go/internal/crawler/schedule"

	"github.com/spf13/cobra"
)

var (
	scheduleAt       string
	scheduleTimezone string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the daily collection every day at a fixed time until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		at := firstNonEmpty(scheduleAt, cfg.Crawler.Schedule.At)
		tz := firstNonEmpty(scheduleTimezone, cfg.Crawler.Schedule.Timezone)

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		p, err := pipeline.Build(ctx, cfg, appLogger)
		if err != nil {
			return err
		}
		defer p.Close()

		s, err := schedule.New(tz, appLogger.WithField("component", "schedule"))
		if err != nil {
			return err
		}
		err = s.Daily(at, "daily-news", func(ctx context.Context) error {
			articles, err := p.Collect(ctx, collector.DailyQuery, false)
			if err != nil {
				return err
			}
			appLogger.WithField("new_articles", len(articles)).Info("daily collection finished")
			return nil
		})
		if err != nil {
			return err
		}

		s.Start()
		appLogger.WithFields(map[string]interface{}{"at": at, "timezone": tz, "next": s.Next().Format(time.RFC3339)}).Info("scheduler started")
		<-ctx.Done()

		appLogger.Info("stopping scheduler...")
		stopCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		return s.Stop(stopCtx)
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleAt, "at", "", "time of day, HH:MM (default from config)")
	scheduleCmd.Flags().StringVar(&scheduleTimezone, "timezone", "", "IANA timezone (default from config)")
	rootCmd.AddCommand(scheduleCmd)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
