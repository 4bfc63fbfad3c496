package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/quimicai/surfacelab/internal/logger"
	"github.com/quimicai/surfacelab/internal/tui"
)

var (
	configFile string
	contentDir string
	logLevel   string
	preset     string

	variables []string
	metric    string
	ranges    []string
	points    int
	weight    float64

	optimizerKind string
	latency       time.Duration
	empiricalMode bool
	jsonOutput    bool

	format      string
	outPath     string
	width       int
	height      int
	imageWidth  int
	imageHeight int

	httpAddr  string
	inboxPath string
	limit     int
	runsDir   string
)

// main runs the dashboard when no subcommand is given. It exits with status
// 1 when a command fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd registers every command and its flags. Flag defaults are
// written into the package vars as each flag is registered.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "quimicai",
		Short:         "response-surface lab for process optimization demos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetDefault(logger.NewText(logLevel, os.Stderr))
			if _, err := maxprocs.Set(maxprocs.Logger(maxprocsLogf)); err != nil {
				logger.Warn("failed to set GOMAXPROCS", "error", err)
			}
		},
		RunE: runDashboard,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&contentDir, "content", "", "directory with <tag>.md and <tag>.json overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.Flags().DurationVar(&latency, "latency", 10*time.Second, "simulated optimization time")
	rootCmd.Flags().StringVar(&optimizerKind, "optimizer", "", "optimizer (placeholder, grid)")

	domainsCmd := &cobra.Command{
		Use:   "domains [tag]",
		Short: "list domains or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listDomains,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [tag]",
		Short: "list configuration presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [tag]",
		Short: "plot the continuous metric function",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotDomain,
	}
	addSelectionFlags(plotCmd)
	plotCmd.Flags().BoolVar(&empiricalMode, "empirical", false, "smooth the historical samples instead")
	plotCmd.Flags().IntVar(&width, "width", 60, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 15, "plot height")

	smoothCmd := &cobra.Command{
		Use:   "smooth [tag]",
		Short: "fit and plot the historical sample table",
		Args:  cobra.MaximumNArgs(1),
		RunE:  smoothDomain,
	}
	addSelectionFlags(smoothCmd)
	smoothCmd.Flags().IntVar(&width, "width", 60, "plot width")
	smoothCmd.Flags().IntVar(&height, "height", 15, "plot height")

	optimizeCmd := &cobra.Command{
		Use:   "optimize [tag]",
		Short: "run the optimization and report savings",
		Args:  cobra.MaximumNArgs(1),
		RunE:  optimizeDomain,
	}
	addSelectionFlags(optimizeCmd)
	optimizeCmd.Flags().Float64Var(&weight, "weight", 0.5, "importance weight in [0, 1]")
	optimizeCmd.Flags().StringVar(&optimizerKind, "optimizer", "", "optimizer (placeholder, grid)")
	optimizeCmd.Flags().DurationVar(&latency, "latency", 10*time.Second, "simulated optimization time")
	optimizeCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as json")

	exportCmd := &cobra.Command{
		Use:   "export [tag]",
		Short: "export an evaluation as csv, json, svg or png",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportDomain,
	}
	addSelectionFlags(exportCmd)
	exportCmd.Flags().StringVar(&format, "format", "csv", "output format (csv, json, svg, png)")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&empiricalMode, "empirical", false, "export the smoothed historical samples")
	exportCmd.Flags().IntVar(&imageWidth, "width", 800, "image width")
	exportCmd.Flags().IntVar(&imageHeight, "height", 480, "image height")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the json api",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&httpAddr, "addr", "", "listen address (default :8080)")
	serveCmd.Flags().StringVar(&inboxPath, "inbox", "", "contact inbox database path")
	serveCmd.Flags().StringVar(&optimizerKind, "optimizer", "", "optimizer (placeholder, grid)")
	serveCmd.Flags().DurationVar(&latency, "latency", 10*time.Second, "simulated optimization time")

	inboxCmd := &cobra.Command{
		Use:   "inbox",
		Short: "list stored contact messages",
		Args:  cobra.NoArgs,
		RunE:  listInbox,
	}
	inboxCmd.Flags().StringVar(&inboxPath, "inbox", "", "contact inbox database path")
	inboxCmd.Flags().IntVar(&limit, "limit", 20, "maximum messages to show (0 for all)")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset (tag/name)")

	runCmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "run a scripted batch of evaluations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&runsDir, "runs-dir", "", "directory for saved runs")
	runCmd.Flags().StringVar(&optimizerKind, "optimizer", "", "optimizer (placeholder, grid)")
	runCmd.Flags().DurationVar(&latency, "latency", 10*time.Second, "simulated optimization time")

	runsCmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "list saved runs or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listRuns,
	}
	runsCmd.Flags().StringVar(&runsDir, "runs-dir", "", "directory for saved runs")
	runsCmd.Flags().IntVar(&width, "width", 60, "plot width")
	runsCmd.Flags().IntVar(&height, "height", 15, "plot height")

	rootCmd.AddCommand(domainsCmd, presetsCmd, plotCmd, smoothCmd, optimizeCmd, exportCmd, serveCmd, inboxCmd, initCmd, runCmd, runsCmd)
	return rootCmd
}

func maxprocsLogf(format string, args ...any) {
	logger.Debug(fmt.Sprintf(format, args...))
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&variables, "vars", "v", nil, "1 or 2 variables (key or display name)")
	cmd.Flags().StringVarP(&metric, "metric", "m", "", "metric name (prefix match)")
	cmd.Flags().StringArrayVarP(&ranges, "range", "r", nil, "range override name=low:high")
	cmd.Flags().IntVarP(&points, "points", "n", 50, "grid points per axis")
	cmd.Flags().StringVar(&preset, "preset", "", "preset name for the domain")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	s, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	opt, err := newOptimizer(s.cfg)
	if err != nil {
		return err
	}
	return tui.Run(s.registry, opt, s.cfg)
}

// signalContext ends on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
