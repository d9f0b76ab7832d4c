package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/diskview/internal/analysis"
	"github.com/san-kum/diskview/internal/orbit"
	"github.com/san-kum/diskview/internal/roche"
	"github.com/san-kum/diskview/internal/storage"
	"github.com/san-kum/diskview/internal/viz"
)

func runInfo(cmd *cobra.Command, args []string) error {
	cat, err := openRun(args[0])
	if err != nil {
		return err
	}
	cfg, _ := cat.Config()
	t, _ := cat.CurrentTimestep()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, headerStyle.Render(filepath.Base(cfg.ConfigPath)))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "config\t%s\n", cfg.ConfigPath)
	fmt.Fprintf(w, "output\t%s\n", cfg.OutputDir)
	fmt.Fprintf(w, "dialect\t%s\n", cfg.Dialect.Name)
	fmt.Fprintf(w, "grid\t%d x %d\n", cfg.NRadial, cfg.NAzimuthal)
	fmt.Fprintf(w, "radius\t%g .. %g\n", cfg.RMin, cfg.RMax)
	fmt.Fprintf(w, "timesteps\t0 .. %d (Ntot %d)\n", cat.LastTimestep(), cfg.Ntot)
	fmt.Fprintf(w, "planets\t%d\n", cat.NumPlanets()-1)
	if cfg.PlanetConfig != "" {
		fmt.Fprintf(w, "planet config\t%s\n", cfg.PlanetConfig)
	}
	fmt.Fprintf(w, "star radius\t%g\n", cfg.StarRadius)
	if cat.HasParticles() {
		fmt.Fprintf(w, "particles\t%d\n", cat.NumParticles())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stats := analysis.FieldStats(cat.Quantity())
	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s at timestep %d", cat.ActiveQuantity(), t)))
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "min\t%g\n", cat.MinValue())
	fmt.Fprintf(w, "max\t%g\n", cat.MaxValue())
	fmt.Fprintf(w, "mean\t%g\n", stats.Mean)
	fmt.Fprintf(w, "stddev\t%g\n", stats.StdDev)
	return w.Flush()
}

func runPlanets(cmd *cobra.Command, args []string) error {
	cat, err := openRun(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IDX\tMASS\tRADIUS\tX\tY\tVX\tVY\tECC\tA\tPERI\tAPO")
	for i := 0; i < cat.NumPlanets(); i++ {
		pos, vel := cat.PlanetPosition(i), cat.PlanetVelocity(i)
		fmt.Fprintf(w, "%d\t%g\t%g\t%.5f\t%.5f\t%.5f\t%.5f",
			i, cat.PlanetMass(i), cat.PlanetRadius(i), pos[0], pos[1], vel[0], vel[1])
		if i == 0 {
			fmt.Fprintln(w, "\t-\t-\t-\t-")
			continue
		}
		el := orbit.FromPlanet(cat.Planet(i))
		if !el.Bound() {
			fmt.Fprintf(w, "\t%.5f\tunbound\t-\t-\n", el.Eccentricity)
			continue
		}
		fmt.Fprintf(w, "\t%.5f\t%.5f\t%.5f\t%.5f\n",
			el.Eccentricity, el.SemiMajorAxis, el.Periapsis(), el.Apoapsis())
	}
	return w.Flush()
}

func runRoche(cmd *cobra.Command, args []string) error {
	cat, err := openRun(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	star := cat.PlanetMass(0)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IDX\tQ\tDIST\tL1\tL1 DIST\tITER")
	type lobe struct {
		idx int
		pts [][2]float64
	}
	var lobes []lobe
	for i := 1; i < cat.NumPlanets(); i++ {
		pos := cat.PlanetPosition(i)
		q := cat.PlanetMass(i) / star
		d := math.Hypot(pos[0], pos[1])

		l1, err := roche.L1Point(q)
		if err != nil {
			return fmt.Errorf("planet %d: %w", i, err)
		}
		fmt.Fprintf(w, "%d\t%g\t%.5f\t%.5f\t%.5f\t%d\n", i, q, d, l1.Root, d*l1.Root, l1.Iterations)

		if lobePoints > 0 {
			pts, err := roche.Lobe(q, pos[0], pos[1], lobePoints)
			if err != nil {
				return fmt.Errorf("planet %d: %w", i, err)
			}
			lobes = append(lobes, lobe{i, pts})
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, l := range lobes {
		fmt.Fprintf(out, "\n# planet %d lobe\n", l.idx)
		for _, p := range l.pts {
			fmt.Fprintf(out, "%.6f %.6f\n", p[0], p[1])
		}
	}
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	cat, err := openRun(args[0])
	if err != nil {
		return err
	}
	t, _ := cat.CurrentTimestep()

	profile := analysis.RadialProfile(cat.Quantity(), cat.NAzimuthal())
	caption := fmt.Sprintf("%s radial profile, t=%d, r %g..%g", cat.ActiveQuantity(), t, cat.RMin(), cat.RMax())
	if contrast {
		profile = analysis.Contrast(profile)
		caption = fmt.Sprintf("%s contrast, t=%d", cat.ActiveQuantity(), t)
	}
	if len(profile) == 0 {
		return fmt.Errorf("no data to plot")
	}

	graph := asciigraph.Plot(profile,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Fprintln(cmd.OutOrStdout(), graph)
	return nil
}

func runModes(cmd *cobra.Command, args []string) error {
	cat, err := openRun(args[0])
	if err != nil {
		return err
	}
	rings := len(cat.Quantity()) / cat.NAzimuthal()
	ring := ringIndex
	if ring < 0 {
		ring = rings / 2
	}
	if ring >= rings {
		return fmt.Errorf("ring %d out of range, run has %d rings", ring, rings)
	}

	values := analysis.Ring(cat.Quantity(), cat.NAzimuthal(), ring)
	modes, err := analysis.AzimuthalModes(values, maxMode)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s ring %d, r=%g", cat.ActiveQuantity(), ring, cat.Radii()[ring])))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "M\tAMPLITUDE\tRELATIVE\tPHASE")
	for _, m := range modes {
		rel := math.NaN()
		if modes[0].Amplitude != 0 {
			rel = m.Amplitude / math.Abs(modes[0].Amplitude)
		}
		fmt.Fprintf(w, "%d\t%.6g\t%.6g\t%.4f\n", m.M, m.Amplitude, rel, m.Phase)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	// radial structure of the strongest non-axisymmetric mode
	strongest := 0
	for _, m := range modes[1:] {
		if strongest == 0 || m.Amplitude > modes[strongest].Amplitude {
			strongest = m.M
		}
	}
	if strongest == 0 || modes[strongest].Amplitude == 0 {
		return nil
	}
	profile, err := analysis.ModeProfile(cat.Quantity(), cat.NAzimuthal(), strongest)
	if err != nil {
		return err
	}
	for i, v := range profile {
		if math.IsNaN(v) {
			profile[i] = 0
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, asciigraph.Plot(profile,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("m=%d relative amplitude by ring", strongest)),
	))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cat, err := openRun(args[0])
	if err != nil {
		return err
	}

	st := storage.New(args[1])
	if err := st.Init(); err != nil {
		return err
	}
	exportID, err := st.Save(cat)
	if err != nil {
		return err
	}
	dir := filepath.Join(args[1], exportID)

	th := viz.GetTheme(settings.View.Theme)
	renderer := viz.NewRenderer(settings.View)
	svg := renderer.Render(cat).SVG(th, svgScale)
	if err := os.WriteFile(filepath.Join(dir, "disk.svg"), []byte(svg), 0644); err != nil {
		return err
	}

	if gifTo >= 0 {
		if err := exportGIF(cat, renderer, th, filepath.Join(dir, "disk.gif")); err != nil {
			return err
		}
	}

	logger.Info("snapshot exported", "id", exportID, "dir", dir)
	fmt.Fprintf(cmd.OutOrStdout(), "export id: %s\n", exportID)
	return nil
}

// exportGIF renders every timestep from the current one up to --gif-to,
// advancing by the configured skip.
func exportGIF(cat interface {
	viz.Source
	CurrentTimestep() (int, bool)
	LoadTimestep(int) error
}, renderer *viz.Renderer, th viz.Theme, path string) error {
	start, _ := cat.CurrentTimestep()
	end := gifTo
	var frames []*viz.Frame
	for t := start; t <= end; t += settings.FrameSkip() {
		if err := cat.LoadTimestep(t); err != nil {
			return err
		}
		frames = append(frames, renderer.Render(cat))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	delay := max(int(100/settings.Playback.FPS), 1)
	if err := viz.WriteGIF(f, frames, th, delay); err != nil {
		return err
	}
	return f.Close()
}

func runList(cmd *cobra.Command, args []string) error {
	st := storage.New(args[0])
	exports, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(exports) == 0 {
		fmt.Fprintln(out, "no exports found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tTIMESTEP\tQUANTITY\tGRID\tMIN\tMAX")
	for _, e := range exports {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%dx%d\t%g\t%g\n",
			e.ID,
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Timestep,
			e.Quantity,
			e.NRadial, e.NAzimuthal,
			e.Stats.Min,
			e.Stats.Max,
		)
	}
	return w.Flush()
}

func runView(cmd *cobra.Command, args []string) error {
	cat, err := openRun(args[0])
	if err != nil {
		return err
	}
	return viz.Run(cat, settings, logger)
}
