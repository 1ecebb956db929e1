package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme represents the current color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type palette struct {
	Bg, Surface, Border, Text, TextDim lipgloss.Color
	Accent, Green, Yellow, Red         lipgloss.Color
}

// Tokyo Night
var darkColors = palette{
	Bg:      lipgloss.Color("#1a1b26"),
	Surface: lipgloss.Color("#24283b"),
	Border:  lipgloss.Color("#414868"),
	Text:    lipgloss.Color("#c0caf5"),
	TextDim: lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Green:   lipgloss.Color("#9ece6a"),
	Yellow:  lipgloss.Color("#e0af68"),
	Red:     lipgloss.Color("#f7768e"),
}

// Tokyo Night Light variant
var lightColors = palette{
	Bg:      lipgloss.Color("#d5d6db"),
	Surface: lipgloss.Color("#e9e9ec"),
	Border:  lipgloss.Color("#9699a3"),
	Text:    lipgloss.Color("#343b58"),
	TextDim: lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Green:   lipgloss.Color("#485e30"),
	Yellow:  lipgloss.Color("#8f5e15"),
	Red:     lipgloss.Color("#8c4351"),
}

var (
	currentTheme = ThemeDark
	colors       = darkColors

	TitleStyle        lipgloss.Style
	ItemStyle         lipgloss.Style
	ItemSelectedStyle lipgloss.Style
	StatusRunning     lipgloss.Style
	StatusExited      lipgloss.Style
	StatusErrored     lipgloss.Style
	DimStyle          lipgloss.Style
	ErrorStyle        lipgloss.Style
	InputBoxStyle     lipgloss.Style
	HelpStyle         lipgloss.Style
)

// InitTheme sets the active color palette based on theme name.
// Must be called before any UI rendering.
func InitTheme(theme string) {
	if theme == "light" {
		currentTheme = ThemeLight
		colors = lightColors
	} else {
		currentTheme = ThemeDark
		colors = darkColors
	}

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Accent).
		Padding(0, 1)

	ItemStyle = lipgloss.NewStyle().
		Foreground(colors.Text).
		Padding(0, 2)

	ItemSelectedStyle = lipgloss.NewStyle().
		Foreground(colors.Bg).
		Background(colors.Accent).
		Padding(0, 2)

	StatusRunning = lipgloss.NewStyle().Foreground(colors.Green)
	StatusExited = lipgloss.NewStyle().Foreground(colors.TextDim)
	StatusErrored = lipgloss.NewStyle().Foreground(colors.Red)

	DimStyle = lipgloss.NewStyle().Foreground(colors.TextDim)
	ErrorStyle = lipgloss.NewStyle().Foreground(colors.Red)

	InputBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.Accent).
		Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
		Foreground(colors.TextDim).
		Padding(0, 1)
}

// CurrentTheme returns the active theme name.
func CurrentTheme() Theme {
	return currentTheme
}

func init() {
	InitTheme("dark")
}
