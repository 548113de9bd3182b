// Package cli implements the basket command line tool.
package cli

import (
	"fmt"

	"github.com/nutribudget/backend/internal/domain"
	"github.com/nutribudget/backend/internal/infrastructure/catalog"
	"github.com/spf13/cobra"
)

var version = "dev"

// NewRootCommand builds the basket command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "basket",
		Short: "Score grocery baskets and suggest healthier swaps",
		Long: `basket scores the items of a grocery receipt, summarizes the basket and
proposes healthier catalog substitutes within an optional budget.`,
		SilenceUsage: true,
	}

	root.AddCommand(newAnalyzeCommand())
	root.AddCommand(newCatalogCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "basket version %s\n", version)
		},
	})

	return root
}

// Execute runs the command tree against os.Args
func Execute() error {
	return NewRootCommand().Execute()
}

func loadCatalog(path string) (*domain.Catalog, error) {
	cat, err := catalog.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}
