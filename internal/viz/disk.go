package viz

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/diskview/internal/config"
	"github.com/san-kum/diskview/internal/fargo"
	"github.com/san-kum/diskview/internal/orbit"
	"github.com/san-kum/diskview/internal/roche"
)

const (
	orbitVertices = 180
	lobeVertices  = 90
)

// Source is the part of the catalog accessor surface the rasterizer reads.
type Source interface {
	Quantity() []float64
	Radii() []float64
	NAzimuthal() int
	RMax() float64
	MinValue() float64
	MaxValue() float64
	Planets() []fargo.Planet
	Particles() []fargo.Particle
}

// Layers selects the overlays drawn on top of the field.
type Layers struct {
	Planets   bool
	Particles bool
	Orbits    bool
	Roche     bool
}

// Renderer rasterizes the polar field of a snapshot onto a grid of terminal
// cells, seen face-on with the star at the center.
type Renderer struct {
	Width, Height int
	LogScale      bool
	Layers        Layers
}

func NewRenderer(v config.ViewConfig) *Renderer {
	return &Renderer{
		Width:    v.Width,
		Height:   v.Height,
		LogScale: v.LogScale,
		Layers: Layers{
			Planets:   v.ShowPlanets,
			Particles: v.ShowParticles,
			Orbits:    v.ShowOrbits,
			Roche:     v.ShowRoche,
		},
	}
}

// Frame is one rasterized snapshot.
type Frame struct {
	Width, Height int

	// Values holds the normalized sample of every cell, row major, in
	// [0, 1]. Cells outside the disk are NaN.
	Values []float64

	Overlay *Canvas

	// Min and Max are the field range the values were normalized against.
	Min, Max float64
	Log      bool
}

// Value returns the normalized sample of cell (col, row).
func (f *Frame) Value(col, row int) float64 {
	return f.Values[row*f.Width+col]
}

// extent is the world half-width shown by the frame.
func extent(src Source) float64 {
	r := src.RMax()
	if radii := src.Radii(); len(radii) > 0 {
		r = math.Max(r, radii[len(radii)-1])
	}
	if r <= 0 {
		r = 1
	}
	return r
}

func (r *Renderer) Render(src Source) *Frame {
	f := &Frame{
		Width:   r.Width,
		Height:  r.Height,
		Values:  make([]float64, r.Width*r.Height),
		Overlay: NewCanvas(r.Width, r.Height),
	}

	field := src.Quantity()
	radii := src.Radii()
	nAz := src.NAzimuthal()
	R := extent(src)

	norm := r.scaler(src, f)
	for row := 0; row < r.Height; row++ {
		for col := 0; col < r.Width; col++ {
			x := (float64(col)+0.5)/float64(r.Width)*2*R - R
			y := R - (float64(row)+0.5)/float64(r.Height)*2*R
			v, ok := Sample(field, radii, nAz, x, y)
			if !ok {
				f.Values[row*r.Width+col] = math.NaN()
				continue
			}
			f.Values[row*r.Width+col] = norm(v)
		}
	}

	r.drawOverlays(src, f.Overlay, R)
	return f
}

// Sample returns the field value of the vertex nearest to (x, y). ok is
// false outside the radial range of the grid.
func Sample(field, radii []float64, nAz int, x, y float64) (float64, bool) {
	n := len(radii)
	if n == 0 || nAz <= 0 {
		return 0, false
	}
	d := math.Hypot(x, y)
	if d < radii[0] || d > radii[n-1] {
		return 0, false
	}

	ring := sort.SearchFloat64s(radii, d)
	if ring == n || (ring > 0 && d-radii[ring-1] < radii[ring]-d) {
		ring--
	}

	phi := math.Atan2(y, x)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	sector := int(math.Round(phi/(2*math.Pi)*float64(nAz))) % nAz

	i := ring*nAz + sector
	if i >= len(field) {
		return 0, false
	}
	return field[i], true
}

// scaler maps field values to [0, 1] and records the range on f. Log scale
// falls back to linear when the field has no positive values.
func (r *Renderer) scaler(src Source, f *Frame) func(float64) float64 {
	lo, hi := src.MinValue(), src.MaxValue()
	if len(src.Quantity()) == 0 {
		lo, hi = 0, 1
	}

	if r.LogScale {
		minPos := math.Inf(1)
		for _, v := range src.Quantity() {
			if v > 0 && v < minPos {
				minPos = v
			}
		}
		if hi > 0 && !math.IsInf(minPos, 1) {
			f.Min, f.Max, f.Log = minPos, hi, true
			llo, lhi := math.Log10(minPos), math.Log10(hi)
			return func(v float64) float64 {
				if v <= 0 {
					return 0
				}
				return unit(math.Log10(v), llo, lhi)
			}
		}
	}

	f.Min, f.Max = lo, hi
	return func(v float64) float64 { return unit(v, lo, hi) }
}

func unit(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	t := (v - lo) / (hi - lo)
	return math.Max(0, math.Min(1, t))
}

func (r *Renderer) drawOverlays(src Source, c *Canvas, R float64) {
	w, h := float64(r.Width*2), float64(r.Height*4)
	project := func(x, y float64) (int, int) {
		return int(math.Floor((x + R) / (2 * R) * w)), int(math.Floor((R - y) / (2 * R) * h))
	}
	projectAll := func(pts [][2]float64) [][2]int {
		out := make([][2]int, len(pts))
		for i, p := range pts {
			out[i][0], out[i][1] = project(p[0], p[1])
		}
		return out
	}

	planets := src.Planets()
	if r.Layers.Particles {
		for _, p := range src.Particles() {
			c.Set(project(p.Position[0], p.Position[1]))
		}
	}

	for i, p := range planets {
		if i == 0 {
			continue
		}
		if r.Layers.Orbits {
			if path := orbit.Path(orbit.FromPlanet(p), orbitVertices); path != nil {
				c.Polyline(projectAll(path), true)
			}
		}
		if r.Layers.Roche && planets[0].Mass > 0 {
			lobe, err := roche.Lobe(p.Mass/planets[0].Mass, p.Position[0], p.Position[1], lobeVertices)
			if err == nil {
				c.Polyline(projectAll(lobe), true)
			}
		}
	}

	if r.Layers.Planets {
		for i, p := range planets {
			x, y := project(p.Position[0], p.Position[1])
			if i == 0 {
				c.Dot(x, y, 2)
				continue
			}
			c.Dot(x, y, 1)
		}
	}
}

// Render draws the frame with the theme's palette behind the overlay.
func (f *Frame) Render(theme Theme) string {
	overlay := lipgloss.NewStyle().Foreground(theme.Accent)

	var b strings.Builder
	for row := 0; row < f.Height; row++ {
		var run strings.Builder
		var runBg lipgloss.Color
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(overlay.Background(runBg).Render(run.String()))
			run.Reset()
		}

		for col := 0; col < f.Width; col++ {
			bg := theme.Background
			if v := f.Value(col, row); !math.IsNaN(v) {
				bg = theme.Palette.At(v)
			}
			if bg != runBg {
				flush()
				runBg = bg
			}
			if f.Overlay.Empty(col, row) {
				run.WriteByte(' ')
			} else {
				run.WriteRune(f.Overlay.Grid[row][col])
			}
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

// Plain draws the frame with a character ramp and no color.
func (f *Frame) Plain() string {
	const ramp = " .:-=+*#%@"

	var b strings.Builder
	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			if !f.Overlay.Empty(col, row) {
				b.WriteRune(f.Overlay.Grid[row][col])
				continue
			}
			v := f.Value(col, row)
			if math.IsNaN(v) {
				b.WriteByte(' ')
				continue
			}
			i := 1 + int(v*float64(len(ramp)-2)+0.5)
			b.WriteByte(ramp[min(i, len(ramp)-1)])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
