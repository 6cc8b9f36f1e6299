package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vendormatch/recommender/internal/recommend"
)

var recommendTopK int

var recommendCmd = &cobra.Command{
	Use:   "recommend <query...>",
	Short: "Run a single recommendation query and print the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := buildDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		var opts []recommend.RunOption
		if recommendTopK > 0 {
			opts = append(opts, recommend.WithTopK(recommendTopK))
		}

		query := strings.Join(args, " ")
		state := d.newPipeline().Run(ctx, query, opts...)
		printResults(cmd, state)
		return nil
	},
}

func init() {
	recommendCmd.Flags().IntVar(&recommendTopK, "top-k", 0,
		"maximum number of vendors to return (defaults to the configured rerank top-k)")
}

// printResults renders a pipeline result for terminal use.
func printResults(cmd *cobra.Command, state recommend.State) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Query: %s\n", state.Query)
	if state.Err != "" {
		fmt.Fprintf(out, "Warning: %s\n", state.Err)
	}

	if len(state.Ranked) == 0 {
		fmt.Fprintln(out, "\nNo vendors found matching your request.")
		return
	}

	fmt.Fprintf(out, "\nFound %d relevant vendors:\n\n", len(state.Ranked))
	for _, v := range state.Ranked {
		fmt.Fprintf(out, "#%d - %s (relevance %.2f)\n", v.Rank, v.CompanyName, v.RelevanceScore)

		printField(out, "Also known as", v.TradingName)
		printField(out, "Industry", v.Industry)
		printField(out, "Services", v.Services)
		printField(out, "Location", v.City)
		printField(out, "Phone", v.Phone)
		printField(out, "Website", v.Website)

		fmt.Fprintf(out, "   Reasoning: %s\n", v.Reasoning)
		fmt.Fprintln(out, strings.Repeat("-", 70))
	}
}

func printField(out io.Writer, label, value string) {
	if value != "" {
		fmt.Fprintf(out, "   %s: %s\n", label, value)
	}
}
