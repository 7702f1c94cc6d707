package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sharktrack/sharktrack-backend-go/internal/config"
	"github.com/sharktrack/sharktrack-backend-go/internal/models"
	"github.com/sharktrack/sharktrack-backend-go/internal/service"
	"github.com/sharktrack/sharktrack-backend-go/internal/source"
)

// Views accepted by analyze --view
const (
	viewOverview   = "overview"
	viewSummary    = "summary"
	viewHistogram  = "histogram"
	viewConfidence = "confidence"
	viewHeatmap    = "heatmap"
	viewHotspots   = "hotspots"
)

type analyzeOptions struct {
	Input     string
	View      string
	Zoom      int
	Threshold float64
}

func newAnalyzeCommand(a *app) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the pipeline once and print the result as JSON",
		Long: "Run the pipeline against a GeoJSON file, or the configured source when\n" +
			"--input is omitted, and print one view or the full overview.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("zoom") {
				opts.Zoom = a.cfg.Hotspot.DefaultZoom
			}
			filter := models.HotspotFilter{Zoom: opts.Zoom}
			if cmd.Flags().Changed("threshold") {
				filter.Threshold = &opts.Threshold
			}
			return a.analyze(cmd, opts, filter)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Input, "input", "i", "", "GeoJSON feature collection file")
	f.StringVar(&opts.View, "view", viewOverview, "view to print (overview, summary, histogram, confidence, heatmap, hotspots)")
	f.IntVarP(&opts.Zoom, "zoom", "z", 0, "map zoom for hotspot clustering")
	f.Float64Var(&opts.Threshold, "threshold", 0, "hotspot threshold override")
	return cmd
}

func (a *app) analyze(cmd *cobra.Command, opts *analyzeOptions, filter models.HotspotFilter) error {
	ctx := cmd.Context()

	var src source.Source
	switch {
	case opts.Input != "":
		src = source.NewFileSource(opts.Input)
	case a.cfg.Source.Kind == config.SourceSQLite:
		repo, closeDB, err := a.openRepository(ctx)
		if err != nil {
			return err
		}
		defer closeDB()
		src = source.NewSQLiteSource(repo, a.cfg.Source.Dataset)
	default:
		var err error
		if src, err = a.newSource(nil); err != nil {
			return err
		}
	}

	svc, err := service.NewPipelineService(src, a.pipeline, nil, a.logger)
	if err != nil {
		return err
	}

	var result interface{}
	switch opts.View {
	case viewOverview:
		result, err = svc.Overview(ctx, filter)
	case viewSummary:
		result, err = svc.Summary(ctx)
	case viewHistogram:
		result, err = svc.Histogram(ctx)
	case viewConfidence:
		result, err = svc.Confidence(ctx)
	case viewHeatmap:
		result, err = svc.HeatField(ctx)
	case viewHotspots:
		result, err = svc.Hotspots(ctx, filter)
	default:
		return fmt.Errorf("unknown view %q", opts.View)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
