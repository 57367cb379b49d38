package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ebivariation/vepmap/internal/output"
	"github.com/ebivariation/vepmap/internal/pipeline"
	"github.com/ebivariation/vepmap/internal/severity"
	"github.com/ebivariation/vepmap/internal/store"
	"github.com/ebivariation/vepmap/internal/vep"
)

func newMapCmd() *cobra.Command {
	var (
		outputPath string
		useREST    bool
	)

	cmd := &cobra.Command{
		Use:   "map [flags] <input-file>",
		Short: "Map variant tokens to their most severe consequence",
		Long: `Read one variant token per line (CHROM:POS:REF:ALT, or dash/arrow separated
forms), annotate the unique variants in parallel batches, and write one
tab-delimited output row per input line, in input order.

Malformed tokens produce a "malformed" row; variants the annotation engine
returns no consequence for produce a "not_found" row.`,
		Example: `  vepmap map variants.txt
  vepmap map --rest --batch-size 200 -o consequences.tsv variants.txt
  vepmap map --store results.duckdb variants.txt
  cat variants.txt | vepmap map -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runMap(cmd, args[0], outputPath, useREST, logger)
		},
	}

	cmd.Flags().IntP("batch-size", "b", pipeline.DefaultBatchSize, "Variants per annotation engine invocation")
	cmd.Flags().IntP("concurrency", "c", 0, "Parallel batch workers (0 = number of CPUs)")
	cmd.Flags().Int("retries", 0, "Extra attempts per failing batch")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().String("store", "", "DuckDB result store, skips already-annotated variants")
	cmd.Flags().BoolVar(&useREST, "rest", false, "Annotate through the Ensembl REST API instead of a local VEP install")
	cmd.Flags().String("rest-url", vep.DefaultRESTBaseURL, "Ensembl REST base URL")
	cmd.Flags().String("vep-path", "vep", "Path to the VEP executable")
	cmd.Flags().String("species", "homo_sapiens", "Species name")
	cmd.Flags().String("assembly", "GRCh38", "Genome assembly")
	cmd.Flags().String("cache-dir", "", "VEP cache directory (default: VEP's own default)")
	cmd.Flags().Int("fork", 0, "VEP --fork workers per invocation (0 = unset)")
	cmd.Flags().StringSlice("extra-args", nil, "Extra arguments passed to the VEP executable")

	viper.BindPFlag("map.batch_size", cmd.Flags().Lookup("batch-size"))
	viper.BindPFlag("map.concurrency", cmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("map.retries", cmd.Flags().Lookup("retries"))
	viper.BindPFlag("store.path", cmd.Flags().Lookup("store"))
	viper.BindPFlag("vep.rest_url", cmd.Flags().Lookup("rest-url"))
	viper.BindPFlag("vep.path", cmd.Flags().Lookup("vep-path"))
	viper.BindPFlag("vep.species", cmd.Flags().Lookup("species"))
	viper.BindPFlag("vep.assembly", cmd.Flags().Lookup("assembly"))
	viper.BindPFlag("vep.cache_dir", cmd.Flags().Lookup("cache-dir"))
	viper.BindPFlag("vep.fork", cmd.Flags().Lookup("fork"))
	viper.BindPFlag("vep.extra_args", cmd.Flags().Lookup("extra-args"))

	return cmd
}

func runMap(cmd *cobra.Command, inputPath, outputPath string, useREST bool, logger *zap.Logger) error {
	cfg := pipeline.Config{
		BatchSize:   viper.GetInt("map.batch_size"),
		Concurrency: viper.GetInt("map.concurrency"),
		Retries:     viper.GetInt("map.retries"),
	}

	species := viper.GetString("vep.species")

	var annotator vep.Annotator
	if useREST {
		rest := vep.NewRESTAnnotator(viper.GetString("vep.rest_url"), species)
		rest.SetLogger(logger)
		annotator = rest
	} else {
		local := vep.NewExecAnnotator(vep.ExecConfig{
			Path:      viper.GetString("vep.path"),
			Species:   species,
			Assembly:  viper.GetString("vep.assembly"),
			CacheDir:  viper.GetString("vep.cache_dir"),
			Fork:      viper.GetInt("vep.fork"),
			ExtraArgs: viper.GetStringSlice("vep.extra_args"),
		})
		local.SetLogger(logger)
		annotator = local
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}

	if terms := viper.GetStringSlice("map.severity_rank"); len(terms) > 0 {
		ranker, err := severity.NewRanker(terms)
		if err != nil {
			return fmt.Errorf("severity_rank config: %w", err)
		}
		opts = append(opts, pipeline.WithRanker(ranker))
	}

	if storePath := viper.GetString("store.path"); storePath != "" {
		st, err := store.Open(storePath)
		if err != nil {
			return fmt.Errorf("opening result store: %w", err)
		}
		defer st.Close()
		opts = append(opts, pipeline.WithCache(st))
	}

	p, err := pipeline.New(cfg, annotator, opts...)
	if err != nil {
		return err
	}

	tokens, err := readTokens(inputPath)
	if err != nil {
		return err
	}

	rows, err := p.Run(cmd.Context(), tokens)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outputPath != "" {
		out, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer out.Close()
	}

	tw := output.NewTabWriter(out)
	if err := tw.WriteHeader(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := tw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	logger.Info("output written", zap.Int("rows", tw.Rows()))
	return nil
}

// readTokens reads one variant token per line, skipping blank lines and
// comments. "-" reads from stdin.
func readTokens(path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var tokens []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens = append(tokens, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return tokens, nil
}
