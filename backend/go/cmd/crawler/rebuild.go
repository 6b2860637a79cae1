package main

import (
	"fmt"

	"PerguntaQueRespondo/backend/go/internal/crawler/knowledge"
	"PerguntaQueRespondo/backend/go/internal/embedding"
	"PerguntaQueRespondo/backend/go/internal/rag/indexbuild"

	"github.com/spf13/cobra"
)

var match string

var rebuildCmd = &cobra.Command{
	Use:   "rebuild-index",
	Short: "Rebuild the vector index from every bronze record",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		emb, err := embedding.New(ctx, cfg.Embedding)
		if err != nil {
			return fmt.Errorf("failed to create embedding model: %w", err)
		}
		defer emb.Close()

		b := &indexbuild.Builder{
			Embedder:    emb,
			BronzeDir:   cfg.Crawler.BronzeDir,
			IndexDir:    cfg.Index.Dir,
			BatchSize:   cfg.Index.BatchSize,
			Concurrency: cfg.Index.Concurrency,
			Log:         appLogger.WithField("component", "indexbuild"),
		}
		n, err := b.Rebuild(ctx, match)
		if err != nil {
			return err
		}
		fmt.Printf("índice reconstruído com %d documentos em %s\n", n, cfg.Index.Dir)
		return nil
	},
}

func init() {
	rebuildCmd.Flags().StringVar(&match, "match", knowledge.DefaultPattern, "glob over bronze file names")
	rootCmd.AddCommand(rebuildCmd)
}
