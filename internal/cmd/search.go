package cmd

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/search"
)

var (
	searchCategory string
	searchMinPrice float64
	searchMaxPrice float64
	searchSort     string
	searchStrategy string
	searchLimit    int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank the catalog against a query",
	Long: `search syncs the catalog once and prints the products that match the
query, most relevant first unless --sort says otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchCategory, "category", "", "Only products in this category slug")
	searchCmd.Flags().Float64Var(&searchMinPrice, "min-price", 0, "Minimum price")
	searchCmd.Flags().Float64Var(&searchMaxPrice, "max-price", math.Inf(1), "Maximum price")
	searchCmd.Flags().StringVar(&searchSort, "sort", string(search.SortRelevance), "relevance, name, price-low or price-high")
	searchCmd.Flags().StringVar(&searchStrategy, "strategy", search.StrategyPositional, "positional or levenshtein")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "Maximum rows to print, 0 for all")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) == 1 {
		query = args[0]
	}

	store := newSynchronizer()
	if err := store.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("failed to sync catalog: %w", err)
	}

	filters := search.DefaultFilters()
	filters.Category = searchCategory
	filters.MinPrice = searchMinPrice
	filters.MaxPrice = searchMaxPrice
	filters.SortBy = search.ParseSortKey(searchSort)

	results := search.NewRanker(search.ParseStrategy(searchStrategy)).Rank(store.Snapshot().Products, query, filters)
	total := len(results)
	if searchLimit > 0 {
		results, _ = search.Paginate(results, 1, searchLimit)
	}

	printResults(cmd.OutOrStdout(), results)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d products\n", len(results), total)
	return nil
}

func printResults(out io.Writer, results []search.ScoredProduct) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\t%.2f\t%d\n", r.Similarity, r.ID, truncate(r.Name, 40), r.Category, r.Price, r.Stock)
	}
	w.Flush()
}

func truncate(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-1]) + "…"
}
