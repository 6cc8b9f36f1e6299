package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vendormatch/recommender/internal/catalog"
)

var (
	indexNoDedup bool
	indexReset   bool
)

var indexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Index vendor records into the vector store",
	Long: `Index loads a vendor extraction results file, flattens each record into
an embedding document, and upserts it into the store. Vendors already
present are skipped unless --no-dedup is given; --reset drops the
collection first and rebuilds it from scratch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := buildDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		path := d.cfg.VendorDataPath
		if len(args) > 0 {
			path = args[0]
		}

		indexer := catalog.NewIndexer(d.store, d.embedder, slog.Default())
		stats, err := indexer.Index(ctx, path, catalog.IndexOptions{
			Dedup: !indexNoDedup,
			Reset: indexReset,
		})
		if err != nil {
			return err
		}

		slog.Info("index run finished",
			"loaded", stats.Loaded,
			"indexed", stats.Indexed,
			"skipped", stats.Skipped,
			"too_small", stats.TooSmall,
		)
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&indexNoDedup, "no-dedup", false,
		"re-embed and upsert vendors even if their ids are already indexed")
	indexCmd.Flags().BoolVar(&indexReset, "reset", false,
		"delete and recreate the collection before indexing")
}
