// Package cmd builds the littleamap cobra command tree: a root command
// carrying the shared world/output/concurrency flags (bound through viper
// so they can also come from LITTLEAMAP_* env vars or a config file) plus
// the search and render verbs, each independently invocable.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kvalheim/littleamap/internal/littlemap"
	"github.com/kvalheim/littleamap/internal/search"
)

var (
	cfgFile string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "littleamap",
	Short: "Render a zoomable tile mosaic from a Minecraft world's filled maps",
	Long: `littleamap scans a Minecraft world for filled map items — in player
inventories, ender chests, entity inventories and block containers — and
composites them into a web-viewable pyramid of image tiles plus a banner
index, ready to serve as a static site.

Running with no subcommand performs a full search-then-render pass.`,
	RunE: runAll,
}

// Execute runs the root command; main() maps a non-nil return to exit 1.
func Execute() error {
	if logger == nil {
		initLogging()
	}
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./littleamap.yaml)")
	rootCmd.PersistentFlags().String("world", "", "path to the Minecraft world directory (required)")
	rootCmd.PersistentFlags().String("output", "", "path to the output directory (required)")
	rootCmd.PersistentFlags().Bool("force", false, "re-render every tile and thumbnail regardless of freshness")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress progress bars")
	rootCmd.PersistentFlags().Int("concurrency", 0, "parallel worker limit (default: number of CPUs)")
	rootCmd.PersistentFlags().String("format", "png", "tile image format: png or webp")
	rootCmd.PersistentFlags().String("bounds", "", "inclusive region-coordinate box \"x0,z0,x1,z1\" to limit the sweep (empty scans everything)")
	rootCmd.PersistentFlags().String("version-constraint", littlemap.CompatibleVersions, "semver constraint level.dat must satisfy, e.g. \">=1.18.0, <1.22.0\"")
	rootCmd.PersistentFlags().String("log-format", "text", "log output format: text or json")

	for _, f := range []string{"world", "output", "force", "quiet", "concurrency", "format", "bounds", "version-constraint", "log-format"} {
		if err := viper.BindPFlag(f, rootCmd.PersistentFlags().Lookup(f)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", f, err))
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("littleamap")
	}

	viper.SetEnvPrefix("LITTLEAMAP")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func initLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(viper.GetString("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error", "err":
		level = slog.LevelError
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(viper.GetString("log-format"), "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// pipelineConfig reads the bound flags into a littlemap.Config, validating
// the two required path flags.
func pipelineConfig() (littlemap.Config, error) {
	world := viper.GetString("world")
	output := viper.GetString("output")
	if world == "" || output == "" {
		return littlemap.Config{}, fmt.Errorf("--world and --output are both required")
	}

	format := viper.GetString("format")
	if format != "png" && format != "webp" {
		return littlemap.Config{}, fmt.Errorf("invalid --format %q: must be png or webp", format)
	}

	bounds, err := parseBounds(viper.GetString("bounds"))
	if err != nil {
		return littlemap.Config{}, err
	}

	concurrency := viper.GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	// Progress bars are drawn only when stderr is a terminal.
	quiet := viper.GetBool("quiet")
	if fi, err := os.Stderr.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		quiet = true
	}

	return littlemap.Config{
		WorldDir:          world,
		OutputDir:         output,
		Concurrency:       concurrency,
		Force:             viper.GetBool("force"),
		Quiet:             quiet,
		Format:            format,
		VersionConstraint: viper.GetString("version-constraint"),
		Bounds:            bounds,
	}, nil
}

// parseBounds parses the --bounds flag's "x0,z0,x1,z1" form; an empty
// string means no bounds.
func parseBounds(s string) (*search.Bounds, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid --bounds %q: want \"x0,z0,x1,z1\"", s)
	}
	vals := make([]int32, 4)
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid --bounds %q: %w", s, err)
		}
		vals[i] = int32(v)
	}
	return &search.Bounds{X0: vals[0], Z0: vals[1], X1: vals[2], Z1: vals[3]}, nil
}

func logSummary(summary littlemap.Summary) {
	if summary.UpToDate() {
		logger.Info("already up-to-date", "elapsed", summary.Elapsed)
		return
	}
	logger.Info("run complete",
		"tiles_rendered", summary.TilesRendered,
		"maps_rendered", summary.MapsRendered,
		"tiles_pruned", summary.TilesPruned,
		"maps_pruned", summary.MapsPruned,
		"elapsed", summary.Elapsed,
	)
}

func runAll(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	summary, err := littlemap.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	logSummary(summary)
	return nil
}
