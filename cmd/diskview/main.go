package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/diskview/internal/config"
	"github.com/san-kum/diskview/internal/fargo"
	"github.com/san-kum/diskview/internal/logging"
)

var (
	settingsFile string
	presetName   string
	logLevel     string
	logFormat    string
	dialectName  string

	timestep     int
	quantityName string

	// roche
	lobePoints int

	// modes
	ringIndex int
	maxMode   int

	// profile
	contrast bool

	// export
	gifTo    int
	svgScale float64

	// view
	fps      float64
	skip     int
	theme    string
	logScale bool
)

var (
	settings  *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00cccc"))

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "diskview",
		Short:             "inspect and play back protoplanetary disk simulation output",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				logCloser.Close()
				logCloser = nil
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&settingsFile, "settings", "", "viewer settings file (yaml)")
	pf.StringVar(&presetName, "preset", "", "use a named settings preset")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", string(config.LogFormatText), "log format (text, json)")
	pf.StringVar(&dialectName, "dialect", fargo.TWAM.Name, "output format dialect (twam, original)")

	infoCmd := &cobra.Command{
		Use:   "info <par>",
		Short: "show run configuration and field statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}
	addSnapshotFlags(infoCmd)

	planetsCmd := &cobra.Command{
		Use:   "planets <par>",
		Short: "list planet states and orbital elements",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlanets,
	}
	planetsCmd.Flags().IntVarP(&timestep, "timestep", "t", 0, "timestep")

	rocheCmd := &cobra.Command{
		Use:   "roche <par>",
		Short: "compute Roche lobe geometry of every planet",
		Args:  cobra.ExactArgs(1),
		RunE:  runRoche,
	}
	rocheCmd.Flags().IntVarP(&timestep, "timestep", "t", 0, "timestep")
	rocheCmd.Flags().IntVar(&lobePoints, "points", 0, "print this many lobe outline vertices per planet")

	profileCmd := &cobra.Command{
		Use:   "profile <par>",
		Short: "plot the azimuthally averaged radial profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfile,
	}
	addSnapshotFlags(profileCmd)
	profileCmd.Flags().BoolVar(&contrast, "contrast", false, "plot the profile relative to its mean")

	modesCmd := &cobra.Command{
		Use:   "modes <par>",
		Short: "azimuthal Fourier modes of one ring",
		Args:  cobra.ExactArgs(1),
		RunE:  runModes,
	}
	addSnapshotFlags(modesCmd)
	modesCmd.Flags().IntVar(&ringIndex, "ring", -1, "radial index (default: middle ring)")
	modesCmd.Flags().IntVar(&maxMode, "max-m", config.DefaultMaxMode, "highest mode number")

	exportCmd := &cobra.Command{
		Use:   "export <par> <outdir>",
		Short: "write a snapshot as json, csv, yaml and svg",
		Args:  cobra.ExactArgs(2),
		RunE:  runExport,
	}
	addSnapshotFlags(exportCmd)
	exportCmd.Flags().IntVar(&gifTo, "gif-to", -1, "also write an animation from --timestep up to this timestep")
	exportCmd.Flags().Float64Var(&svgScale, "svg-scale", 4, "svg size of one sub-pixel")
	addViewFlags(exportCmd)

	listCmd := &cobra.Command{
		Use:   "list <outdir>",
		Short: "list exported snapshots",
		Args:  cobra.ExactArgs(1),
		RunE:  runList,
	}

	viewCmd := &cobra.Command{
		Use:   "view <par>",
		Short: "play the run back in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runView,
	}
	addSnapshotFlags(viewCmd)
	viewCmd.Flags().Float64Var(&fps, "fps", config.DefaultFPS, "frames per second")
	viewCmd.Flags().IntVar(&skip, "skip", config.DefaultSkip, "timesteps per frame")
	addViewFlags(viewCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available settings presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(infoCmd, planetsCmd, rocheCmd, profileCmd, modesCmd, exportCmd, listCmd, viewCmd, presetsCmd)
	return rootCmd
}

func addSnapshotFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&timestep, "timestep", "t", 0, "timestep")
	cmd.Flags().StringVarP(&quantityName, "quantity", "q", fargo.Density.String(), "density, temperature, vrad or vtheta")
}

func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&theme, "theme", "default", "color theme")
	cmd.Flags().BoolVar(&logScale, "log", false, "logarithmic color scale")
}

// setup resolves settings in order defaults, preset, settings file, flags,
// then builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if presetName != "" {
		cfg = config.GetPreset(presetName)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
	}
	if settingsFile != "" {
		loaded, err := config.LoadOnto(settingsFile, cfg)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dialect") {
		cfg.Dialect = dialectName
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = config.LogFormat(logFormat)
	}
	if flags.Changed("quantity") {
		q, err := fargo.ParseQuantity(quantityName)
		if err != nil {
			return err
		}
		cfg.Quantity = q
	}
	if flags.Changed("fps") {
		cfg.Playback.FPS = fps
	}
	if flags.Changed("skip") {
		cfg.Playback.Skip = skip
	}
	if flags.Changed("theme") {
		cfg.View.Theme = theme
	}
	if flags.Changed("log") {
		cfg.View.LogScale = logScale
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	l, closer, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return err
	}
	settings, logger, logCloser = cfg, l, closer
	return nil
}

// openRun loads the run at par and moves to the --timestep snapshot.
func openRun(par string) (*fargo.Catalog, error) {
	cat := fargo.New(
		fargo.WithDialect(settings.GetDialect()),
		fargo.WithQuantity(settings.Quantity),
		fargo.WithLogger(logging.WithRun(logger, par)),
	)
	if _, err := cat.LoadFromFile(par); err != nil {
		return nil, err
	}
	if timestep != 0 {
		if err := cat.LoadTimestep(timestep); err != nil {
			return nil, err
		}
	}
	return cat, nil
}
