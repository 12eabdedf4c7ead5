package tui

import "github.com/charmbracelet/lipgloss"

// Theme colours the player. Bar, Comparing and Swapped paint the bars; the
// rest style the chrome around them.
type Theme struct {
	Name      string
	Bar       lipgloss.Color
	Comparing lipgloss.Color
	Swapped   lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Playing   lipgloss.Color
	Paused    lipgloss.Color
}

var (
	ThemeDefault = Theme{
		Name:      "default",
		Bar:       lipgloss.Color("#0099ff"),
		Comparing: lipgloss.Color("#eab308"),
		Swapped:   lipgloss.Color("#ef4444"),
		Accent:    lipgloss.Color("86"),
		Text:      lipgloss.Color("255"),
		Muted:     lipgloss.Color("242"),
		Playing:   lipgloss.Color("82"),
		Paused:    lipgloss.Color("220"),
	}

	ThemeRetro = Theme{
		Name:      "retro",
		Bar:       lipgloss.Color("#00cc00"),
		Comparing: lipgloss.Color("#ffff00"),
		Swapped:   lipgloss.Color("#ff0000"),
		Accent:    lipgloss.Color("#00ff00"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Playing:   lipgloss.Color("#88ff88"),
		Paused:    lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Bar:       lipgloss.Color("#cccccc"),
		Comparing: lipgloss.Color("#0088ff"),
		Swapped:   lipgloss.Color("#ffffff"),
		Accent:    lipgloss.Color("#ffffff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Playing:   lipgloss.Color("#ffffff"),
		Paused:    lipgloss.Color("#888888"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Bar:       lipgloss.Color("#0077be"),
		Comparing: lipgloss.Color("#ffd700"),
		Swapped:   lipgloss.Color("#ff4444"),
		Accent:    lipgloss.Color("#00a8cc"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Playing:   lipgloss.Color("#00ff88"),
		Paused:    lipgloss.Color("#ffcc00"),
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Bar:       lipgloss.Color("#ff9ff3"),
		Comparing: lipgloss.Color("#feca57"),
		Swapped:   lipgloss.Color("#ff4757"),
		Accent:    lipgloss.Color("#ff6b6b"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Playing:   lipgloss.Color("#5fd068"),
		Paused:    lipgloss.Color("#ffc048"),
	}

	Themes = []Theme{ThemeDefault, ThemeRetro, ThemeMinimal, ThemeOcean, ThemeSunset}
)

// GetTheme returns the named theme, or the default one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
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

func nextTheme(t Theme) Theme {
	for i, x := range Themes {
		if x.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeDefault
}
