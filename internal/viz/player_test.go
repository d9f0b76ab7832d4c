package viz

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/diskview/internal/config"
	"github.com/san-kum/diskview/internal/fargo"
	"github.com/san-kum/diskview/internal/logging"
)

const (
	testRings   = 4
	testSectors = 8
	testSteps   = 3
)

// writeRun lays out an original-dialect run with one planet and timesteps
// 0..testSteps. Every field is constant: density t+1, temperature 100*(t+1).
func writeRun(t *testing.T) (par, out string) {
	t.Helper()
	root := t.TempDir()
	out = filepath.Join(root, "out")
	require.NoError(t, os.Mkdir(out, 0o755))

	par = filepath.Join(root, "run.par")
	writeFile(t, par, fmt.Sprintf(
		"Rmin 1.0\nRmax 2.0\nNtot %d\nNrad %d\nNsec %d\nOutputDir out\nPlanetConfig planets.cfg\n",
		testSteps, testRings, testSectors))
	writeFile(t, filepath.Join(root, "planets.cfg"), "Jupiter 1.5 0.001 0.0 YES YES 0.0\n")

	var radii strings.Builder
	for i := 0; i <= testRings; i++ {
		fmt.Fprintf(&radii, "%g\n", 1+0.25*float64(i))
	}
	writeFile(t, filepath.Join(out, fargo.RadiiFileName), radii.String())

	var traj strings.Builder
	for ts := 0; ts <= testSteps; ts++ {
		fmt.Fprintf(&traj, "%d 1.5 0 0 0.8 0.001 0 0 0\n", ts)
	}
	writeFile(t, filepath.Join(out, fargo.Original.PlanetFileName(1)), traj.String())

	for ts := 0; ts <= testSteps; ts++ {
		base := float64(ts + 1)
		writeGrid(t, filepath.Join(out, fargo.Density.FileName(ts)), base)
		writeGrid(t, filepath.Join(out, fargo.Temperature.FileName(ts)), 100*base)
		writeGrid(t, filepath.Join(out, fargo.RadialVelocity.FileName(ts)), 10*base)
		writeGrid(t, filepath.Join(out, fargo.AzimuthalVelocity.FileName(ts)), 10*base)
	}
	return par, out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeGrid(t *testing.T, path string, v float64) {
	t.Helper()
	vals := make([]float64, testRings*testSectors)
	for i := range vals {
		vals[i] = v
	}
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, vals))
	writeFile(t, path, buf.String())
}

func newTestPlayer(t *testing.T) (Player, *fargo.Catalog, string) {
	t.Helper()
	m, cat, out, _ := newLoggedPlayer(t)
	return m, cat, out
}

// newLoggedPlayer also returns the buffer the player logs to.
func newLoggedPlayer(t *testing.T) (Player, *fargo.Catalog, string, *bytes.Buffer) {
	t.Helper()
	par, out := writeRun(t)

	cat := fargo.New(fargo.WithDialect(fargo.Original))
	_, err := cat.LoadFromFile(par)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.View.Width, cfg.View.Height = 24, 12
	var logs bytes.Buffer
	return NewPlayer(cat, cfg, logging.NewForTest(&logs)), cat, out, &logs
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Player, keys ...string) (Player, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Player)
	}
	return m, cmd
}

func timestep(t *testing.T, cat *fargo.Catalog) int {
	t.Helper()
	ts, ok := cat.CurrentTimestep()
	require.True(t, ok)
	return ts
}

func TestPlayerStepping(t *testing.T) {
	m, cat, _ := newTestPlayer(t)
	require.NotNil(t, m.view.frame, "player renders the loaded snapshot")
	before := m.view.updates

	m, _ = press(t, m, "right")
	assert.Equal(t, 1, timestep(t, cat))
	assert.Equal(t, before+1, m.view.updates, "observer refreshes the view")

	m, _ = press(t, m, "l", "l")
	assert.Equal(t, 3, timestep(t, cat))

	m, _ = press(t, m, "right")
	assert.Equal(t, 3, timestep(t, cat), "stepping stops at the last timestep")

	m, _ = press(t, m, "down")
	assert.Equal(t, 0, timestep(t, cat), "jump back clamps at zero")

	m, _ = press(t, m, "end")
	assert.Equal(t, testSteps, timestep(t, cat))

	m, _ = press(t, m, "home")
	assert.Equal(t, 0, timestep(t, cat))

	_, _ = press(t, m, "left")
	assert.Equal(t, 0, timestep(t, cat))
}

func TestPlayerPlayback(t *testing.T) {
	m, cat, _ := newTestPlayer(t)

	m, cmd := press(t, m, " ")
	require.True(t, m.playing)
	require.NotNil(t, cmd)

	next, cmd := m.Update(TickMsg{ID: m.tickID})
	m = next.(Player)
	assert.Equal(t, 1, timestep(t, cat))
	assert.NotNil(t, cmd)

	next, _ = m.Update(TickMsg{ID: m.tickID - 1})
	m = next.(Player)
	assert.Equal(t, 1, timestep(t, cat), "stale ticks are dropped")

	m, _ = press(t, m, "]")
	assert.Equal(t, 2, m.skip)

	next, _ = m.Update(TickMsg{ID: m.tickID})
	m = next.(Player)
	assert.Equal(t, 3, timestep(t, cat))

	next, cmd = m.Update(TickMsg{ID: m.tickID})
	m = next.(Player)
	assert.False(t, m.playing, "playback stops after the last timestep")
	assert.Nil(t, cmd)
	assert.Equal(t, 3, timestep(t, cat))
}

func TestPlayerLoops(t *testing.T) {
	m, cat, _ := newTestPlayer(t)
	m.loop = true

	m, _ = press(t, m, "end", " ")
	next, _ := m.Update(TickMsg{ID: m.tickID})
	m = next.(Player)
	assert.True(t, m.playing)
	assert.Equal(t, 0, timestep(t, cat))
}

func TestPlayerSpeed(t *testing.T) {
	m, _, _ := newTestPlayer(t)
	m.fps = 2

	m, _ = press(t, m, "-", "-", "-")
	assert.Equal(t, minFPS, m.fps)
	m, _ = press(t, m, "+")
	assert.Equal(t, 2.0, m.fps)
	m, _ = press(t, m, "[", "[")
	assert.Equal(t, 1, m.skip)
}

func TestPlayerCycleQuantity(t *testing.T) {
	m, cat, _ := newTestPlayer(t)
	assert.Equal(t, 1.0, m.view.frame.Max)

	m, _ = press(t, m, "c")
	assert.Equal(t, fargo.Temperature, cat.ActiveQuantity())
	assert.Equal(t, 100.0, m.view.frame.Max)
	assert.NoError(t, m.err)

	m, _ = press(t, m, "c", "c", "c")
	assert.Equal(t, fargo.Density, cat.ActiveQuantity())
}

func TestPlayerLoadFailureKeepsSnapshot(t *testing.T) {
	m, cat, out, logs := newLoggedPlayer(t)
	require.NoError(t, os.Remove(filepath.Join(out, fargo.Density.FileName(1))))

	m, _ = press(t, m, " ")
	next, cmd := m.Update(TickMsg{ID: m.tickID})
	m = next.(Player)

	assert.Error(t, m.err)
	assert.False(t, m.playing, "a failed load stops playback")
	assert.Nil(t, cmd)
	assert.Equal(t, 0, timestep(t, cat))
	assert.Contains(t, m.View(), "read grid")
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "player load failed")

	m, _ = press(t, m, "up")
	assert.Equal(t, testSteps, timestep(t, cat))
	assert.NoError(t, m.err)
}

func TestPlayerToggles(t *testing.T) {
	m, _, _ := newTestPlayer(t)
	r := m.view.renderer

	m, _ = press(t, m, "L", "o", "r", "p", "P", "t")
	assert.True(t, r.LogScale)
	assert.False(t, r.Layers.Orbits)
	assert.True(t, r.Layers.Roche)
	assert.True(t, r.Layers.Particles)
	assert.False(t, r.Layers.Planets)
	assert.Equal(t, "ocean", m.theme.Name)
	assert.True(t, m.view.frame.Log)
}

func TestPlayerRecording(t *testing.T) {
	m, _, _ := newTestPlayer(t)
	m.gifPath = filepath.Join(t.TempDir(), "rec.gif")

	m, _ = press(t, m, "G", "right", "right")
	assert.True(t, m.recording)
	assert.Len(t, m.frames, 3)

	m, _ = press(t, m, "G")
	assert.False(t, m.recording)
	assert.FileExists(t, m.gifPath)
	assert.Contains(t, m.status, "saved 3 frames")
}

func TestPlayerQuit(t *testing.T) {
	m, _, _ := newTestPlayer(t)
	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestPlayerView(t *testing.T) {
	m, _, _ := newTestPlayer(t)
	out := m.View()
	assert.Contains(t, out, "Timestep")
	assert.Contains(t, out, "0 / 3")
	assert.Contains(t, out, "density")
	assert.NotContains(t, out, "KEYBOARD SHORTCUTS")

	m, _ = press(t, m, "?")
	assert.Contains(t, m.View(), "KEYBOARD SHORTCUTS")
}
