package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ebivariation/vepmap/internal/repeats"
)

func newRepeatsCmd() *cobra.Command {
	var (
		consequencesPath string
		dataframePath    string
		biomartURL       string
	)

	cmd := &cobra.Command{
		Use:   "repeats [flags] <variant-summary>",
		Short: "Extract repeat expansion variants from a ClinVar variant summary",
		Long: `Read a ClinVar variant summary dump (plain or gzipped TSV), keep the
NT expansion rows, resolve Ensembl genes through BioMart, classify each
variant as a trinucleotide or short tandem repeat expansion, and write the
six-column consequences table.`,
		Example: `  vepmap repeats variant_summary.txt.gz
  vepmap repeats --dataframe review.tsv -o consequences.tsv variant_summary.txt.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			resolver := repeats.NewBioMartResolver(biomartURL)
			records, err := repeats.Extract(cmd.Context(), args[0], resolver, logger)
			if err != nil {
				return err
			}

			if dataframePath != "" {
				f, err := os.Create(dataframePath)
				if err != nil {
					return fmt.Errorf("creating dataframe output: %w", err)
				}
				if err := repeats.WriteDataFrame(f, records); err != nil {
					f.Close()
					return fmt.Errorf("writing dataframe: %w", err)
				}
				if err := f.Close(); err != nil {
					return err
				}
				logger.Info("dataframe written", zap.String("path", dataframePath))
			}

			out := os.Stdout
			if consequencesPath != "" {
				out, err = os.Create(consequencesPath)
				if err != nil {
					return fmt.Errorf("creating consequences output: %w", err)
				}
				defer out.Close()
			}
			if err := repeats.WriteConsequences(out, records); err != nil {
				return fmt.Errorf("writing consequences: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&consequencesPath, "output", "o", "", "Consequences table output file (default: stdout)")
	cmd.Flags().StringVar(&dataframePath, "dataframe", "", "Also write the full per-record review table to this file")
	cmd.Flags().StringVar(&biomartURL, "biomart-url", repeats.DefaultBioMartURL, "Ensembl BioMart service URL")

	return cmd
}
