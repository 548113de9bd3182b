package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nutribudget/backend/config"
	"github.com/nutribudget/backend/internal/domain"
	"github.com/nutribudget/backend/internal/usecase"
	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	file        string
	budget      float64
	catalogPath string
	format      string
}

func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a basket of receipt items",
		Long: `Reads an analysis request ({"items":[...],"budget":20}) or a bare item
array from a file, or stdin when the file is "-", and prints the current and
optimized baskets.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var budget *float64
			if cmd.Flags().Changed("budget") {
				budget = &opts.budget
			}
			return runAnalyze(cmd, opts, budget)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", `items file ("-" for stdin)`)
	cmd.Flags().Float64VarP(&opts.budget, "budget", "b", 0, "spending cap for the optimized basket")
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "catalog file (defaults to catalog.path, then the embedded catalog)")
	cmd.Flags().StringVarP(&opts.format, "output", "o", "json", "output format: json or text")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, budget *float64) error {
	if opts.format != "json" && opts.format != "text" {
		return fmt.Errorf("unsupported output format %q", opts.format)
	}

	data, err := readInput(cmd, opts.file)
	if err != nil {
		return err
	}

	req, err := decodeRequest(data)
	if err != nil {
		return err
	}
	if budget != nil {
		req.Budget = budget
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	catalogPath := opts.catalogPath
	if catalogPath == "" {
		catalogPath = cfg.Catalog.Path
	}
	cat, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}

	response := usecase.NewAnalysisService(cat, usecase.AnalysisServiceConfigFrom(cfg)).Analyze(req.Items, req.Budget)
	if err := response.Err(); err != nil {
		return err
	}

	if opts.format == "text" {
		printReport(cmd.OutOrStdout(), response)
		return nil
	}

	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read items file: %w", err)
	}
	return data, nil
}

// decodeRequest accepts either a full request object or a bare item array
func decodeRequest(data []byte) (domain.AnalysisRequest, error) {
	var req domain.AnalysisRequest
	if err := json.Unmarshal(data, &req); err == nil {
		return req, nil
	}

	var items []domain.RawItem
	if err := json.Unmarshal(data, &items); err != nil {
		return req, fmt.Errorf("%w: items file is not valid JSON: %v", domain.ErrMalformedInput, err)
	}
	req.Items = items
	return req, nil
}

func printReport(w io.Writer, response domain.AnalysisResponse) {
	current := response.Current
	optimized := response.Optimized

	fmt.Fprintf(w, "Current basket: %d items, $%s, health %d\n",
		current.ItemCount, current.TotalCost, current.AvgHealthScore)
	for _, item := range current.Items {
		fmt.Fprintf(w, "  %-30s $%7s  %3d  %s\n", item.Name, item.Price, item.HealthScore, item.Category)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Optimized basket: $%s, health %d, saved $%s\n",
		optimized.Summary.TotalCost, optimized.Summary.AvgHealthScore, optimized.Summary.MoneySaved)
	for _, item := range optimized.OptimizedList {
		fmt.Fprintf(w, "  %-30s $%7s  %3d  %s\n", item.Name, item.Price, item.HealthScore, item.Reason)
	}

	if len(optimized.Swaps) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "No swaps suggested.")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Swaps:")
	for _, swap := range optimized.Swaps {
		fmt.Fprintf(w, "  %s -> %s (+%d health, saves $%s)\n",
			swap.Original.Name, swap.Replacement.ProductName, swap.ScoreGain(), swap.Savings)
	}
}
