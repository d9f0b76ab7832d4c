package config

import "sort"

// Presets are named playback setups selectable with --preset.
var Presets = map[string]*Config{
	"quick": {
		Playback: PlaybackConfig{FPS: 25, Skip: 5, Jump: 100},
		View:     ViewConfig{Theme: "default", Width: 60, Height: 30, ShowPlanets: true},
	},
	"detailed": {
		Playback: PlaybackConfig{FPS: 4, Skip: 1, Jump: 10},
		View: ViewConfig{
			Theme: "default", Width: 120, Height: 60,
			ShowPlanets: true, ShowOrbits: true, ShowRoche: true,
		},
	},
	"particles": {
		Playback: PlaybackConfig{FPS: 10, Skip: 1, Jump: 100},
		View: ViewConfig{
			Theme: "ocean", Width: 72, Height: 36,
			ShowPlanets: true, ShowParticles: true,
		},
	},
	"density-log": {
		Playback: PlaybackConfig{FPS: 10, Skip: 1, Jump: 100},
		View: ViewConfig{
			Theme: "inferno", Width: 72, Height: 36, LogScale: true,
			ShowPlanets: true, ShowOrbits: true,
		},
	},
}

// GetPreset returns a copy of the default configuration with the preset's
// playback and view sections applied.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Playback = p.Playback
	cfg.View = p.View
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
