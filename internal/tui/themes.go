package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the board. Knob styles override the track
// and indicator colors per knob.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
}

var (
	ThemeDefault = Theme{
		Name:      "default",
		Primary:   lipgloss.Color("#00ffff"),
		Secondary: lipgloss.Color("#ff00ff"),
		Accent:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#555566"),
		Border:    lipgloss.Color("#444466"),
	}

	ThemeDracula = Theme{
		Name:      "dracula",
		Primary:   lipgloss.Color("#bd93f9"),
		Secondary: lipgloss.Color("#ff79c6"),
		Accent:    lipgloss.Color("#50fa7b"),
		Text:      lipgloss.Color("#f8f8f2"),
		Muted:     lipgloss.Color("#6272a4"),
		Border:    lipgloss.Color("#44475a"),
	}

	ThemeNord = Theme{
		Name:      "nord",
		Primary:   lipgloss.Color("#88c0d0"),
		Secondary: lipgloss.Color("#81a1c1"),
		Accent:    lipgloss.Color("#ebcb8b"),
		Text:      lipgloss.Color("#eceff4"),
		Muted:     lipgloss.Color("#4c566a"),
		Border:    lipgloss.Color("#3b4252"),
	}

	ThemeRetro = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Border:    lipgloss.Color("#003300"),
	}

	Themes = []Theme{ThemeDefault, ThemeDracula, ThemeNord, ThemeRetro}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDefault
}

// NextTheme returns the theme after t in Themes.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
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
