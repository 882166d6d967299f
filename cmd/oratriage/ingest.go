package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/oratriage/internal/corpus"
)

func ingestCMD(cfgPath *string) *cobra.Command {
	var (
		dbDir   string
		opts    corpus.IngestOptions
		rebuild bool
	)
	ingest := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Chunk and index documents into a local corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBase(*cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = b.logger.Sync() }()
			if dbDir == "" {
				dbDir = b.cfg.Corpus.DefaultDir
			}
			opts.Rebuild = rebuild

			r := corpus.NewRetriever(b.logger)
			defer func() { _ = r.Close() }()
			report, err := r.Ingest(cmd.Context(), dbDir, args, opts)
			if err != nil {
				return err
			}
			for _, f := range report.Added {
				b.logger.Info("ingested", zap.String("file", f.Name), zap.Int("chunks", f.Chunks))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d file(s), skipped %d already-ingested file(s) into %s\n",
				len(report.Added), len(report.Skipped), dbDir)
			return nil
		},
	}
	ingest.Flags().StringVar(&dbDir, "db-dir", "", "corpus directory (default corpus.default_dir)")
	ingest.Flags().IntVar(&opts.ChunkSize, "chunk-size", corpus.DefaultChunkSize, "approximate chunk size in characters")
	ingest.Flags().IntVar(&opts.Overlap, "overlap", corpus.DefaultChunkOverlap, "chunk overlap in characters")
	ingest.Flags().BoolVar(&rebuild, "rebuild", false, "drop the existing index and manifest first")
	return ingest
}
