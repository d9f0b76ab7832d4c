package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme of the player and the palette used to shade
// field values. Palette stops run from the lowest to the highest value.
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Palette    Palette
}

var (
	ThemeDefault = Theme{
		Name:       "default",
		Primary:    lipgloss.Color("#00ffff"),
		Secondary:  lipgloss.Color("#ff00ff"),
		Accent:     lipgloss.Color("#ffffff"), // overlays
		Background: lipgloss.Color("#0a0a0a"),
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#666688"),
		Warning:    lipgloss.Color("#ff8800"),
		Error:      lipgloss.Color("#ff4444"),
		Palette:    Palette{"#000004", "#3b0f70", "#8c2981", "#de4968", "#fe9f6d", "#fcfdbf"},
	}

	ThemeOcean = Theme{
		Name:       "ocean",
		Primary:    lipgloss.Color("#0077be"),
		Secondary:  lipgloss.Color("#00a8cc"),
		Accent:     lipgloss.Color("#ffd700"),
		Background: lipgloss.Color("#001a33"),
		Text:       lipgloss.Color("#e0f0ff"),
		Muted:      lipgloss.Color("#4488aa"),
		Warning:    lipgloss.Color("#ffcc00"),
		Error:      lipgloss.Color("#ff4444"),
		Palette:    Palette{"#001a33", "#003f7f", "#0077be", "#00a8cc", "#7fdbff", "#e0f0ff"},
	}

	ThemeInferno = Theme{
		Name:       "inferno",
		Primary:    lipgloss.Color("#fca50a"),
		Secondary:  lipgloss.Color("#dd513a"),
		Accent:     lipgloss.Color("#00ffff"),
		Background: lipgloss.Color("#000004"),
		Text:       lipgloss.Color("#fcffa4"),
		Muted:      lipgloss.Color("#6a5d5d"),
		Warning:    lipgloss.Color("#fca50a"),
		Error:      lipgloss.Color("#ff0000"),
		Palette:    Palette{"#000004", "#420a68", "#932667", "#dd513a", "#fca50a", "#fcffa4"},
	}

	ThemeRetroGreen = Theme{
		Name:       "retro",
		Primary:    lipgloss.Color("#00ff00"),
		Secondary:  lipgloss.Color("#00cc00"),
		Accent:     lipgloss.Color("#ffff00"),
		Background: lipgloss.Color("#001100"),
		Text:       lipgloss.Color("#00ff00"),
		Muted:      lipgloss.Color("#005500"),
		Warning:    lipgloss.Color("#ffff00"),
		Error:      lipgloss.Color("#ff0000"),
		Palette:    Palette{"#001100", "#004400", "#00aa00", "#88ff88"},
	}

	// All available themes
	Themes = []Theme{
		ThemeDefault,
		ThemeOcean,
		ThemeInferno,
		ThemeRetroGreen,
	}
)

// GetTheme returns a theme by name, or ThemeDefault for unknown names.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDefault
}

// NextTheme returns the theme after the named one, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeDefault
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
