package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taxonscope/pkg/errors"
	"github.com/matzehuels/taxonscope/pkg/occurrence"
	"github.com/matzehuels/taxonscope/pkg/pipeline"
	"github.com/matzehuels/taxonscope/pkg/render/heatmap"
)

type richnessOpts struct {
	rank      string
	globalCap int
	cellSize  float64
	regions   []string
	formats   string
	output    string
	app       appOverrides
}

// richnessCommand creates the richness command for heat-map exports.
func (c *CLI) richnessCommand() *cobra.Command {
	opts := richnessOpts{rank: pipeline.DefaultRank}

	cmd := &cobra.Command{
		Use:   "richness <name>",
		Short: "Map the species richness of a taxon",
		Long: `Map the species richness of a taxon.

The name is matched at --rank (default FAMILY). Geolocated occurrences are
then collected continent by continent, one paced request at a time, until
--cap records are admitted. Each occurrence falls into a one-degree grid
cell; a cell's weight is the number of distinct species seen in it.

The HTML output is the interactive heat map the server shows at /query.`,
		Example: `  taxonscope richness Felidae
  taxonscope richness Felidae --format html,csv -o maps/felidae
  taxonscope richness Panthera --rank genus --region Africa --region Asia --cap 500`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRichness(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.rank, "rank", "r", opts.rank, "rank to match the name at")
	cmd.Flags().IntVar(&opts.globalCap, "cap", 0, "admitted occurrences per run (default from config: 1000)")
	cmd.Flags().Float64Var(&opts.cellSize, "cell-size", 0, "grid cell edge in degrees (default 1)")
	cmd.Flags().StringSliceVar(&opts.regions, "region", nil, "continents to query, in order (default all)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): html (default), json, csv (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().IntVar(&opts.app.occPageSize, "page-size", 0, "occurrences requested per page, at most 300")
	cmd.Flags().DurationVar(&opts.app.pace, "pace", 0, "minimum spacing between occurrence requests (default from config: 1s)")
	cmd.Flags().BoolVar(&opts.app.dedupe, "dedupe", false, "drop occurrences already admitted under the same key")
	_ = cmd.RegisterFlagCompletionFunc("rank", completeRanks)
	_ = cmd.RegisterFlagCompletionFunc("format", completeValues(heatmap.Formats...))
	_ = cmd.RegisterFlagCompletionFunc("region", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(occurrence.Continents))
		for i, r := range occurrence.Continents {
			names[i] = r.Name
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// pipelineOptions turns flags into pipeline options, falling back to config.
func (c *CLI) pipelineOptions(name string, opts richnessOpts) (pipeline.Options, error) {
	p := pipeline.Options{
		Name:      name,
		Rank:      opts.rank,
		GlobalCap: opts.globalCap,
		CellSize:  opts.cellSize,
		Formats:   parseFormats(opts.formats, heatmap.FormatHTML),
		Regions:   c.Config.Occurrence.Regions,
		Logger:    c.Logger,
	}
	if p.GlobalCap == 0 {
		p.GlobalCap = c.Config.Occurrence.GlobalCap
	}
	if len(opts.regions) > 0 {
		regions, err := occurrence.SelectRegions(opts.regions)
		if err != nil {
			return p, errors.Wrap(errors.ErrCodeInvalidInput, err, "--region")
		}
		p.Regions = regions
	}
	return p, p.ValidateAndSetDefaults()
}

func (c *CLI) runRichness(ctx context.Context, name string, opts richnessOpts) error {
	popts, err := c.pipelineOptions(name, opts)
	if err != nil {
		return err
	}
	a, err := c.openApp(ctx, opts.app)
	if err != nil {
		return err
	}
	defer a.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Collecting occurrences of %s...", name))
	spinner.Start()

	result, err := a.runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Richness map failed")
		return err
	}
	spinner.StopWithSuccess("Mapped %s %s", popts.Rank, name)

	paths, err := writeArtifacts(result.Artifacts, popts.Formats, opts.output, name)
	for _, p := range paths {
		printFile(p)
	}
	if err != nil {
		return err
	}

	if result.Summary.Occurrences == 0 {
		printWarning("No geolocated occurrences found")
	}
	printKeyValue("Taxon key", strconv.FormatInt(int64(result.TaxonID), 10))
	printStats(
		stat{"%d occurrences", result.Summary.Occurrences},
		stat{"%d species", result.Summary.Species},
		stat{"%d cells", result.Summary.Cells},
		stat{"max richness %d", result.Summary.MaxRichness},
	)
	printDetail("collected in %s", result.Stats.CollectTime.Round(time.Millisecond))
	return nil
}
