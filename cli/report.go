package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giygas/drug-mentions/config"
	"github.com/giygas/drug-mentions/logging"
	"github.com/giygas/drug-mentions/mentions"
	"github.com/giygas/drug-mentions/publicationsparser"
	"github.com/giygas/drug-mentions/report"
	"github.com/giygas/drug-mentions/scheduler"
	"github.com/giygas/drug-mentions/validation"
)

type reportOptions struct {
	dataDir   string
	sourceURL string
	seed      string
	depth     int
	format    string
	output    string
	quality   bool
}

func newReportCommand(deps *Deps) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the index once and write the drug report",
		Long: `Report reads drugs.csv, clinical_trials.csv, pubmed.csv and pubmed.json,
builds the mention index and writes one entry per drug with the journals
and dates it is mentioned at. It then prints the journal mentioning the
most distinct drugs and the drugs co-mentioned with the seed.

Example:
  drug-mentions report --data-dir ./data
  drug-mentions report --seed xylazine --depth 1 --output out/report.yaml
  drug-mentions report --source-url https://example.org/exports --quality`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, deps, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the source files (default $DATA_DIR)")
	cmd.Flags().StringVar(&opts.sourceURL, "source-url", "", "download the source files from this URL first (default $SOURCE_BASE_URL)")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "seed drug of the co-mention query (default $SEED_DRUG)")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "number of hops of the co-mention query (default $TRAVERSAL_DEPTH)")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format, json or yaml (default from the output extension, else json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.quality, "quality", false, "include the data quality report")

	return cmd
}

// applyReportFlags overrides cfg with the flags set on the command line
func applyReportFlags(cmd *cobra.Command, cfg *config.Config, opts *reportOptions) error {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = opts.dataDir
	}
	if flags.Changed("source-url") {
		cfg.SourceBaseURL = opts.sourceURL
	}
	if flags.Changed("seed") {
		cfg.SeedDrug = opts.seed
	}
	if flags.Changed("depth") {
		cfg.TraversalDepth = opts.depth
	}
	return config.Validate(cfg)
}

func runReport(cmd *cobra.Command, deps *Deps, opts *reportOptions) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return err
	}
	if err := applyReportFlags(cmd, cfg, opts); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	// stdout may carry the report, logs go to stderr
	logging.InitLoggerTo(cmd.ErrOrStderr(), "", cfg.LogLevel, 0, 0)

	format := report.FormatJSON
	if opts.format != "" {
		if format, err = report.ParseFormat(opts.format); err != nil {
			return err
		}
	} else if opts.output != "" {
		format = report.FormatFromPath(opts.output, report.FormatJSON)
	}

	validator := validation.NewDataValidator()
	if err := validator.ValidateInput(cfg.SeedDrug); err != nil {
		return fmt.Errorf("invalid seed drug: %w", err)
	}
	seed := publicationsparser.CleanText(cfg.SeedDrug)

	parser := publicationsparser.NewRecordsParser(cfg.DataDir, cfg.SourceBaseURL)
	snapshot, err := scheduler.BuildSnapshot(cmd.Context(), parser, validator)
	if err != nil {
		return err
	}

	if !snapshot.Index.Has(seed) {
		logging.Warn("Seed drug is not in the drug list", "seed", seed)
	}

	analytics, err := mentions.Analyze(snapshot.Index, seed, cfg.TraversalDepth)
	if err != nil && !errors.Is(err, mentions.ErrNoCoverageData) {
		return fmt.Errorf("failed to analyze index: %w", err)
	}
	if errors.Is(err, mentions.ErrNoCoverageData) {
		logging.Warn("No journal mentions any drug")
	}

	quality := snapshot.Quality
	if !opts.quality {
		quality = nil
	}
	doc := report.NewDocument(snapshot.Index, &analytics, quality)

	if opts.output == "" {
		if err := report.Write(cmd.OutOrStdout(), doc, format); err != nil {
			return err
		}
		return report.PrintAnalytics(cmd.ErrOrStderr(), analytics)
	}

	if err := report.WriteFile(opts.output, doc, format); err != nil {
		return err
	}
	logging.Info("Report written",
		"path", opts.output,
		"format", string(format),
		"drugs", len(doc.Drugs),
		"duration", snapshot.Duration.String())

	return report.PrintAnalytics(cmd.OutOrStdout(), analytics)
}
