package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kvalheim/littleamap/internal/littlemap"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Scan and render the tile pyramid from already-cached map ids",
	Long: `render runs the map-scan and render phases against whatever map ids the
on-disk cache already knows about (run "search" first, or just use the
bare root command to do both in one pass).`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	if _, err := littlemap.LoadLevel(cfg); err != nil {
		return err
	}

	ids, err := littlemap.CachedMapIDs(cfg)
	if err != nil {
		return err
	}

	summary, err := littlemap.Render(cmd.Context(), cfg, ids)
	if err != nil {
		return err
	}

	logSummary(summary)
	return nil
}
