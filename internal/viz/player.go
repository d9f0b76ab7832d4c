package viz

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/diskview/internal/analysis"
	"github.com/san-kum/diskview/internal/config"
	"github.com/san-kum/diskview/internal/fargo"
)

const (
	minFPS = 1.0
	maxFPS = 60.0
)

// TickMsg advances playback. Ticks from an earlier play session carry a
// stale id and are dropped.
type TickMsg struct {
	ID   int
	Time time.Time
}

// view is refreshed by the catalog's data-updated notification. It is
// shared by every copy of the Player value.
type view struct {
	renderer *Renderer
	maxMode  int

	frame   *Frame
	profile []float64
	modes   []float64
	updates int
}

func (v *view) OnDataUpdated(c *fargo.Catalog) {
	v.frame = v.renderer.Render(c)
	v.profile = analysis.RadialProfile(c.Quantity(), c.NAzimuthal())

	v.modes = v.modes[:0]
	if nAz := c.NAzimuthal(); nAz > 0 && len(v.profile) > 0 {
		ring := analysis.Ring(c.Quantity(), nAz, len(v.profile)/2)
		if modes, err := analysis.AzimuthalModes(ring, v.maxMode); err == nil {
			for _, m := range modes[1:] {
				v.modes = append(v.modes, m.Amplitude)
			}
		}
	}
	v.updates++
}

// Player is the bubbletea model of the timeline player.
type Player struct {
	catalog *fargo.Catalog
	log     *slog.Logger
	view    *view

	theme   Theme
	fps     float64
	skip    int
	jump    int
	loop    bool
	playing bool
	tickID  int

	recording bool
	frames    []*Frame
	gifPath   string

	status   string
	err      error
	showHelp bool
}

// NewPlayer builds a player over a catalog that already has a run loaded.
func NewPlayer(cat *fargo.Catalog, cfg *config.Config, logger *slog.Logger) Player {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := &view{
		renderer: NewRenderer(cfg.View),
		maxMode:  cfg.Analysis.MaxMode,
	}
	cat.AddObserver(v)
	if cat.Snapshot() != nil {
		v.OnDataUpdated(cat)
	}

	return Player{
		catalog: cat,
		log:     logger,
		view:    v,
		theme:   GetTheme(cfg.View.Theme),
		fps:     cfg.Playback.FPS,
		skip:    cfg.FrameSkip(),
		jump:    max(cfg.Playback.Jump, 1),
		loop:    cfg.Playback.Loop,
		gifPath: "diskview.gif",
	}
}

func (m Player) Init() tea.Cmd { return nil }

func (m Player) tick() tea.Cmd {
	id := m.tickID
	return tea.Tick(time.Duration(float64(time.Second)/m.fps), func(t time.Time) tea.Msg {
		return TickMsg{ID: id, Time: t}
	})
}

func (m Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if !m.playing || msg.ID != m.tickID {
			return m, nil
		}
		m.advance()
		if !m.playing {
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Player) handleKey(msg tea.KeyMsg) (Player, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.recording {
			m.saveGIF()
		}
		return m, tea.Quit
	case " ":
		m.playing = !m.playing
		if m.playing {
			m.tickID++
			return m, m.tick()
		}
	case "right", "l":
		m.seek(m.current() + 1)
	case "left", "h":
		m.seek(m.current() - 1)
	case "up", "k":
		m.seek(m.current() + m.jump)
	case "down", "j":
		m.seek(m.current() - m.jump)
	case "home", "0":
		m.seek(0)
	case "end", "$":
		m.seek(m.catalog.LastTimestep())
	case "+", "=":
		m.fps = min(m.fps+1, maxFPS)
	case "-", "_":
		m.fps = max(m.fps-1, minFPS)
	case "]":
		m.skip++
	case "[":
		m.skip = max(m.skip-1, 1)
	case "c":
		m.cycleQuantity()
	case "R":
		m.setErr(m.catalog.Reload())
	case "t":
		m.theme = NextTheme(m.theme.Name)
	case "L":
		m.view.renderer.LogScale = !m.view.renderer.LogScale
		m.redraw()
	case "o":
		m.view.renderer.Layers.Orbits = !m.view.renderer.Layers.Orbits
		m.redraw()
	case "r":
		m.view.renderer.Layers.Roche = !m.view.renderer.Layers.Roche
		m.redraw()
	case "p":
		m.view.renderer.Layers.Particles = !m.view.renderer.Layers.Particles
		m.redraw()
	case "P":
		m.view.renderer.Layers.Planets = !m.view.renderer.Layers.Planets
		m.redraw()
	case "G":
		if m.recording {
			m.saveGIF()
			m.recording = false
			m.frames = nil
		} else {
			m.recording = true
			m.frames = m.frames[:0]
			m.capture()
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Player) current() int {
	t, _ := m.catalog.CurrentTimestep()
	return t
}

// seek loads timestep t, clamped to the run. Failed loads stop playback and
// leave the current snapshot on screen.
func (m *Player) seek(t int) {
	t = max(0, min(t, m.catalog.LastTimestep()))
	if t == m.current() && m.catalog.Snapshot() != nil {
		return
	}
	if err := m.catalog.LoadTimestep(t); err != nil {
		m.setErr(err)
		m.playing = false
		return
	}
	m.err = nil
	m.capture()
}

func (m *Player) advance() {
	next := m.current() + m.skip
	if next > m.catalog.LastTimestep() {
		if !m.loop {
			m.playing = false
			return
		}
		next = 0
	}
	m.seek(next)
}

func (m *Player) cycleQuantity() {
	qs := fargo.Quantities()
	cur := m.catalog.ActiveQuantity()
	for i, q := range qs {
		if q == cur {
			m.setErr(m.catalog.SetQuantity(qs[(i+1)%len(qs)]))
			return
		}
	}
}

func (m *Player) setErr(err error) {
	m.err = err
	if err != nil {
		m.log.Warn("player load failed", "error", err)
	}
}

func (m *Player) redraw() {
	if m.catalog.Snapshot() != nil {
		m.view.OnDataUpdated(m.catalog)
	}
}

func (m *Player) capture() {
	if m.recording && m.view.frame != nil {
		m.frames = append(m.frames, m.view.frame)
	}
}

func (m *Player) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		m.setErr(err)
		return
	}
	defer f.Close()

	delay := max(int(100/m.fps), 1)
	if err := WriteGIF(f, m.frames, m.theme, delay); err != nil {
		m.setErr(err)
		return
	}
	m.status = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.gifPath)
	m.log.Info("recording saved", "path", m.gifPath, "frames", len(m.frames))
}

func (m Player) View() string {
	if m.view.frame == nil {
		return "no snapshot loaded\n"
	}

	canvasView := canvasStyle.Render(m.view.frame.Render(m.theme))

	var s strings.Builder
	s.WriteString(GradientText("DISKVIEW", m.theme.Primary, m.theme.Secondary) + "\n\n")

	status := StatusPaused.Render("PAUSED")
	if m.playing {
		status = StatusRunning.Render("PLAYING")
	}
	if m.recording {
		status += " " + StatusRecording.Render(fmt.Sprintf("REC %d", len(m.frames)))
	}
	s.WriteString(status + "\n\n")

	t, last := m.current(), m.catalog.LastTimestep()
	progress := 0.0
	if last > 0 {
		progress = float64(t) / float64(last)
	}
	s.WriteString(ProgressBar(progress, 30) + "\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Timestep", fmt.Sprintf("%d / %d", t, last))
	row("Quantity", m.catalog.ActiveQuantity().String())
	scale := "linear"
	if m.view.frame.Log {
		scale = "log"
	}
	row("Range", fmt.Sprintf("%.3g .. %.3g (%s)", m.view.frame.Min, m.view.frame.Max, scale))
	row("Playback", fmt.Sprintf("%.0f fps, skip %d", m.fps, m.skip))
	row("Planets", fmt.Sprintf("%d", m.catalog.NumPlanets()-1))
	if m.catalog.HasParticles() {
		row("Particles", fmt.Sprintf("%d", m.catalog.NumParticles()))
	}

	if st := analysis.FieldStats(m.view.profile); st.Count > 1 && st.Max > st.Min {
		chart := asciigraph.Plot(m.view.profile,
			asciigraph.Height(6),
			asciigraph.Width(30),
			asciigraph.Caption("radial profile"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.view.modes) > 0 {
		s.WriteString(labelStyle.Render("Modes") + SparklineChart(m.view.modes, len(m.view.modes)) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Error).Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}

	s.WriteString(helpStyle.Render(Separator(30) + "\nSP:Play ←→:Step ↑↓:Jump Q:Quit\nC:Quantity T:Theme ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))

	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Play/Pause               ║
║  ← →      - Previous/next timestep   ║
║  ↑ ↓      - Jump forward/back        ║
║  Home/End - First/last timestep      ║
║  + -      - Playback speed           ║
║  [ ]      - Timesteps per frame      ║
║  c        - Cycle quantity           ║
║  Shift+R  - Reload from disk         ║
║  Shift+L  - Toggle log scale         ║
║  o r p    - Orbits, Roche, particles ║
║  Shift+P  - Planets                  ║
║  t        - Cycle themes             ║
║  Shift+G  - Toggle GIF recording     ║
║  q        - Quit                     ║
╚══════════════════════════════════════╝
`

// Run starts the player full screen and blocks until it quits.
func Run(cat *fargo.Catalog, cfg *config.Config, logger *slog.Logger) error {
	_, err := tea.NewProgram(NewPlayer(cat, cfg, logger), tea.WithAltScreen()).Run()
	return err
}
