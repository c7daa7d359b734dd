// Command minsanctl classifies MINSAN codes and inspects product feeds from
// the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/giygas/minsan-api/config"
	"github.com/giygas/minsan-api/feed"
	"github.com/giygas/minsan-api/logging"
	"github.com/giygas/minsan-api/minsan"
	"github.com/giygas/minsan-api/validation"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "minsanctl",
		Short: "Classify MINSAN codes and inspect product feeds",
		Long: `minsanctl maps MINSAN product codes to their regulatory category.

The category is decided by the first digit of the code:
  0 - Human Use Medicines
  1 - Veterinary Medicines
  8 - Homeopathic / Natural Products
  9 - Parapharmaceuticals
Any other code is classified as Other.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if verbose {
				level = "debug"
			}
			logging.InitLogger(logging.Options{
				Env:     config.EnvDevelopment,
				Level:   level,
				Verbose: verbose,
				Console: cmd.ErrOrStderr(),
			})
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log parser details to stderr")

	rootCmd.AddCommand(
		newClassifyCmd(),
		newCategoriesCmd(),
		newDescribeCmd(),
		newScanCmd(),
	)

	return rootCmd
}

// newClassifyCmd prints one "code<TAB>category" line per argument
func newClassifyCmd() *cobra.Command {
	var describe bool

	cmd := &cobra.Command{
		Use:   "classify CODE...",
		Short: "Print the category of each MINSAN code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, code := range args {
				category := minsan.Classify(code)
				if describe {
					fmt.Fprintf(out, "%s\t%s\t%s\n", code, category, minsan.Describe(category))
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", code, category)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&describe, "describe", "d", false, "also print the category description")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Print the MINSAN category table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tDESCRIPTION")
			for _, c := range minsan.Categories() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Code, c.Name, c.Description)
			}
			return w.Flush()
		},
	}
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe NAME",
		Short: "Print the code and description of a category",
		Long: `Print the code and description of a category by exact name.
Names with spaces must be quoted, e.g. minsanctl describe "Veterinary Medicines".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			if !minsan.IsKnown(name) {
				return fmt.Errorf("unknown category: %q", name)
			}

			code, ok := minsan.CodeFor(name)
			if !ok {
				code = "-"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", code, name, minsan.Describe(name))
			return nil
		},
	}
}

// newScanCmd loads a feed and summarizes it by category
func newScanCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "scan SOURCE",
		Short: "Load a product feed (file or URL) and count products per category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			loader := feed.NewLoader(args[0])
			products, err := loader.Load(ctx)
			if err != nil {
				return err
			}

			report := validation.NewDataValidator().ReportDataQuality(products)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tPRODUCTS")
			for _, c := range minsan.Categories() {
				fmt.Fprintf(w, "%s\t%d\n", c.Name, report.CategoryCounts[c.Name])
			}
			fmt.Fprintf(w, "%s\t%d\n", minsan.Other, report.CategoryCounts[minsan.Other])
			fmt.Fprintf(w, "TOTAL\t%d\n", len(products))
			if err := w.Flush(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nSource: %s\n", loader.Source())
			fmt.Fprintf(out, "Available categories: %s\n", strings.Join(minsan.AvailableCategories(products), ", "))
			fmt.Fprintf(out, "Duplicate codes: %d, invalid products: %d, non standard codes: %d, unavailable: %d\n",
				len(report.DuplicateCodes), report.InvalidProducts, report.NonStandardCodes, report.UnavailableProducts)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "maximum time to load the feed")
	return cmd
}
