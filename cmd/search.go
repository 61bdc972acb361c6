package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-harvester/internal/export"
	"github.com/JakeFAU/listing-harvester/internal/listing"
	"github.com/JakeFAU/listing-harvester/internal/search"
)

// newSearchCmd creates and configures the 'search' subcommand.
func newSearchCmd() *cobra.Command {
	var (
		location    string
		minPrice    float64
		maxPrice    float64
		sources     string
		filterBeds  float64
		filterBaths float64
		limit       int
		exportFmt   string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search listing sites and store the results",
		Long: `Runs one multi-source search: each requested site is scraped with
its own polite transport, results are normalized and upserted into the
store, and the combined listings are printed cheapest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setupEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer env.close()

			svc, err := env.searchService(cmd.Context())
			if err != nil {
				return err
			}

			opts := search.Options{
				Location: location,
				MinPrice: minPrice,
				MaxPrice: maxPrice,
				MinBeds:  filterBeds,
				MinBaths: filterBaths,
				Limit:    limit,
			}
			if sources != "" {
				opts.Sources = listing.ParseSources(sources)
				if len(opts.Sources) == 0 {
					return fmt.Errorf("no valid sources in %q", sources)
				}
			}

			result, err := svc.Search(cmd.Context(), opts)
			if err != nil {
				return err
			}

			printResult(cmd, result)

			if exportFmt != "" {
				format, err := export.ParseFormat(exportFmt)
				if err != nil {
					return err
				}
				path := output
				if path == "" {
					path = "listings." + exportFmt
				}
				if err := export.WriteFile(path, format, result.Records); err != nil {
					return err
				}
				cmd.Printf("Exported %d listings to %s\n", len(result.Records), path)
			}

			env.logger.Info("search command finished",
				zap.String("location", location),
				zap.Int("listings", len(result.Records)),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "city and state to search, e.g. \"Denver, CO\"")
	cmd.Flags().Float64Var(&minPrice, "min-price", 0, "minimum listing price")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "maximum listing price (default 1000000)")
	cmd.Flags().StringVar(&sources, "sources", "", "comma-separated sources (zillow,redfin,realtor); default all")
	cmd.Flags().Float64Var(&filterBeds, "filter-beds", 0, "minimum bedrooms, applied after scraping")
	cmd.Flags().Float64Var(&filterBaths, "filter-baths", 0, "minimum bathrooms, applied after scraping")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum listings to return")
	cmd.Flags().StringVar(&exportFmt, "export", "", "export format (csv or json)")
	cmd.Flags().StringVar(&output, "output", "", "export file path")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

func printResult(cmd *cobra.Command, result *search.Result) {
	for _, tag := range []listing.Source{listing.SourceZillow, listing.SourceRedfin, listing.SourceRealtor} {
		if count, ok := result.Counts[tag]; ok {
			cmd.Printf("%s: %d listings\n", tag, count)
		}
	}
	cmd.Printf("Total: %d listings\n\n", len(result.Records))

	for _, r := range result.Records {
		cmd.Printf("$%.0f  %.0f bd / %.1f ba  %s\n", r.Price, r.Bedrooms, r.Bathrooms, r.FullAddress())
		if r.URL != "" {
			cmd.Printf("        %s\n", r.URL)
		}
	}
}
