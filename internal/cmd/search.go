package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kvalheim/littleamap/internal/littlemap"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Sweep the world for filled-map ids and update the cache",
	Long: `search runs only the discovery phase: it sweeps player files, entity
region files and block region files for filled_map item ids, extends the
on-disk cache, and exits. Useful for benchmarking discovery separately
from rendering, or for warming the cache ahead of a later render.`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	if _, err := littlemap.LoadLevel(cfg); err != nil {
		return err
	}

	ids, err := littlemap.Search(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	logger.Info("search complete", "maps_found", len(ids))
	return nil
}
