package cmd

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/pbfpipeline"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/shapepipeline"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/shashlikconfig"
	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/tilemath"
)

var extractCmd = &cobra.Command{
	Use:   "extract <shashlik_config_path>",
	Short: "Extract OSM spatial/vector data into a tile store",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().Bool("progress", true, "Show percent progress during save")
	if err := viper.BindPFlag("extract.progress", extractCmd.Flags().Lookup("progress")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	cfg, err := shashlikconfig.Load(args[0])
	if err != nil {
		return err
	}

	pipe := pbfpipeline.New(pbfpipeline.Config{
		MergePolygons:        cfg.MergePolygons,
		PreserveRoadTopology: cfg.PreserveRoadTopology,
	})

	ctx := context.Background()
	for _, area := range cfg.Areas {
		if !area.Enabled {
			continue
		}
		logger.Info("Processing area", "name", area.Name, "path", area.Path)
		if err := pipe.ProcessFile(ctx, area.Path, area.Bound()); err != nil {
			logger.Error("Failed to process area, skipping", "name", area.Name, "error", err)
			continue
		}
	}

	if cfg.PlanetData {
		pipe.PrepareForPlanetData()

		shapeCfg := shapepipeline.Config{
			LandPath:       cfg.LandPath,
			CountriesPath:  cfg.CountriesPath,
			CitiesPath:     cfg.CitiesPath,
			AdminLinesPath: cfg.AdminLinesPath,
		}
		worldBoundary := areasBoundary(cfg.Areas)
		logger.Info("Extracting planet-wide shapefile data", "land_path", shapeCfg.LandPath)
		if err := pipe.ExtractPlanetData(ctx, shapeCfg, worldBoundary, logger); err != nil {
			return fmt.Errorf("extract planet data: %w", err)
		}
	}

	outputDir := viper.GetString("output-dir")
	showProgress := viper.GetBool("extract.progress")

	if err := pipe.Finish(ctx, outputDir, showProgress); err != nil {
		return fmt.Errorf("save tile store: %w", err)
	}

	logger.Info("Extract complete", "output_dir", outputDir)
	return nil
}

// areasBoundary unions every enabled area's clip rectangle, falling back to
// the whole world when none are enabled — the rectangle shapefile
// extraction uses to discard shapes nowhere near any configured area.
func areasBoundary(areas []shashlikconfig.Area) orb.Bound {
	var b orb.Bound
	any := false
	for _, a := range areas {
		if !a.Enabled {
			continue
		}
		if !any {
			b = a.Bound()
			any = true
			continue
		}
		b = b.Union(a.Bound())
	}
	if !any {
		return tilemath.WorldRect()
	}
	return b
}
