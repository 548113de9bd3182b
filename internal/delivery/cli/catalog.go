package cli

import (
	"encoding/json"
	"fmt"

	"github.com/nutribudget/backend/internal/domain"
	"github.com/nutribudget/backend/internal/infrastructure/catalog"
	"github.com/spf13/cobra"
)

func newCatalogCommand() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate substitute catalogs",
	}
	cmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog file (defaults to the embedded catalog)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List catalog categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Catalog version %s (%d products)\n", cat.Version(), cat.Len())
			for _, category := range domain.KnownCategories() {
				count := len(cat.Lookup(category))
				if count == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-15s 0 (no substitutes)\n", category)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-15s %d\n", category, count)
			}
			return nil
		},
	})

	var showJSON bool
	show := &cobra.Command{
		Use:   "show <category>",
		Short: "Show the ranked products of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}

			category := domain.NormalizeCategory(args[0])
			entries := cat.Lookup(category)

			if showJSON {
				if entries == nil {
					entries = []domain.CatalogEntry{}
				}
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal entries: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No products in category %q.\n", category)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", category)
			for i, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %-30s $%7s  %3d\n", i+1, e.ProductName, e.Price, e.HealthScore)
			}
			return nil
		},
	}
	show.Flags().BoolVar(&showJSON, "json", false, "output entries as JSON")
	cmd.AddCommand(show)

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (version %s, %d products in %d categories)\n",
				args[0], cat.Version(), cat.Len(), len(cat.Categories()))
			return nil
		},
	})

	return cmd
}
