package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShashlikMap/shashlik-tiles-gen-v0/internal/roadgraphbuilder"
)

var roadGraphCmd = &cobra.Command{
	Use:   "road-graph <osm_file> <graph_db_path>",
	Short: "Compute a road graph for routing",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoadGraph,
}

func init() {
	rootCmd.AddCommand(roadGraphCmd)
}

func runRoadGraph(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	osmFile, graphDBPath := args[0], args[1]

	logger.Info("Building road graph", "osm_file", osmFile)
	graph, err := roadgraphbuilder.Build(context.Background(), osmFile)
	if err != nil {
		return fmt.Errorf("build road graph: %w", err)
	}

	if err := graph.Save(graphDBPath); err != nil {
		return fmt.Errorf("save road graph: %w", err)
	}

	logger.Info("Road graph saved", "path", graphDBPath)
	return nil
}
