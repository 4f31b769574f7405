package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ColorRole identifies a semantic color in the theme.
type ColorRole int

const (
	RoleSuccess ColorRole = iota
	RoleError
	RoleWarn
	RoleHint
	RoleAccent
	RoleHeading
	RoleMuted
)

// Theme maps color roles to lipgloss styles.
type Theme struct {
	Name   string
	Styles map[ColorRole]lipgloss.Style
}

func fg(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

var themes = map[string]*Theme{
	"default": {
		Name: "default",
		Styles: map[ColorRole]lipgloss.Style{
			RoleSuccess: fg("#2D8C5A"),
			RoleError:   fg("#C43030"),
			RoleWarn:    fg("#D4940A"),
			RoleHint:    fg("6"),
			RoleAccent:  fg("99").Bold(true),
			RoleHeading: lipgloss.NewStyle().Bold(true),
			RoleMuted:   fg("#8C8C8C"),
		},
	},
	"dark": {
		Name: "dark",
		Styles: map[ColorRole]lipgloss.Style{
			RoleSuccess: fg("#50DC78"),
			RoleError:   fg("#FF5050"),
			RoleWarn:    fg("#FFC83C"),
			RoleHint:    fg("#64B4DC"),
			RoleAccent:  fg("#FF7850").Bold(true),
			RoleHeading: fg("15").Bold(true),
			RoleMuted:   fg("#787878"),
		},
	},
	"light": {
		Name: "light",
		Styles: map[ColorRole]lipgloss.Style{
			RoleSuccess: fg("#1E643C"),
			RoleError:   fg("#A01E1E"),
			RoleWarn:    fg("#A06E00"),
			RoleHint:    fg("#3C3C3C"),
			RoleAccent:  fg("#C84628").Bold(true),
			RoleHeading: fg("0").Bold(true),
			RoleMuted:   fg("#8C8C8C"),
		},
	},
	"minimal": {
		Name: "minimal",
		Styles: map[ColorRole]lipgloss.Style{
			RoleSuccess: lipgloss.NewStyle(),
			RoleError:   lipgloss.NewStyle(),
			RoleWarn:    lipgloss.NewStyle(),
			RoleHint:    lipgloss.NewStyle(),
			RoleAccent:  lipgloss.NewStyle(),
			RoleHeading: lipgloss.NewStyle(),
			RoleMuted:   lipgloss.NewStyle(),
		},
	},
}

// currentTheme is the active theme.
var currentTheme = themes["default"]

// SetTheme changes the active theme. Returns an error if the name is unknown.
func SetTheme(name string) error {
	t, ok := themes[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown theme %q, available: %s", name, strings.Join(ThemeNames(), ", "))
	}
	currentTheme = t
	return nil
}

// CurrentThemeName returns the name of the active theme.
func CurrentThemeName() string {
	return currentTheme.Name
}

// ThemeNames returns the list of available theme names in display order.
func ThemeNames() []string {
	return []string{"default", "dark", "light", "minimal"}
}

// GetTheme returns the theme with the given name, or nil if not found.
func GetTheme(name string) *Theme {
	return themes[strings.ToLower(name)]
}

// Colorize renders msg with the current theme's style for the given role.
func Colorize(role ColorRole, msg string) string {
	if !ColorEnabled {
		return msg
	}
	style, ok := currentTheme.Styles[role]
	if !ok {
		return msg
	}
	return style.Render(msg)
}

// Accent formats text in the theme's accent color.
func Accent(msg string) string {
	return Colorize(RoleAccent, msg)
}

// Heading formats text in the theme's heading style.
func Heading(msg string) string {
	return Colorize(RoleHeading, msg)
}

// Muted formats text in the theme's muted color.
func Muted(msg string) string {
	return Colorize(RoleMuted, msg)
}
