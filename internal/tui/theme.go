package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/jask/webastocard/internal/card"
)

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext1 lipgloss.Color = "#bac2de"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface2 lipgloss.Color = "#585b70"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorBase     lipgloss.Color = "#1e1e2e"
	colorMantle   lipgloss.Color = "#181825"
	colorCrust    lipgloss.Color = "#11111b"
)

const (
	colorBrand   = colorPeach
	colorAccent  = colorMauve
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)

	headerMessageStyle = lipgloss.NewStyle().Foreground(colorSubtext1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Background(colorSurface0).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorOverlay1).
				Padding(0, 1)

	sectionTitleStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	labelStyle = lipgloss.NewStyle().Foreground(colorSubtext0)

	cursorStyle = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)

	pendingStyle = lipgloss.NewStyle().Foreground(colorWarning)

	sliderFillStyle  = lipgloss.NewStyle().Foreground(colorBlue)
	sliderTrackStyle = lipgloss.NewStyle().Foreground(colorSurface2)

	trendStyle = lipgloss.NewStyle().Foreground(colorPeach)

	statusStyle = lipgloss.NewStyle().Foreground(colorSubtext0)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError)

	disabledButtonStyle = lipgloss.NewStyle().
				Foreground(colorOverlay0).
				Background(colorSurface0).
				Padding(0, 1)
)

// buttonStyles maps the button colour roles.
var buttonStyles = map[card.ButtonStyle]lipgloss.Style{
	card.ButtonPrimary: lipgloss.NewStyle().Foreground(colorCrust).Background(colorBlue).Bold(true).Padding(0, 1),
	card.ButtonDark:    lipgloss.NewStyle().Foreground(colorText).Background(colorSurface1).Padding(0, 1),
	card.ButtonDanger:  lipgloss.NewStyle().Foreground(colorCrust).Background(colorRed).Bold(true).Padding(0, 1),
}

func buttonStyle(s card.ButtonStyle, enabled bool) lipgloss.Style {
	if !enabled {
		return disabledButtonStyle
	}
	if st, ok := buttonStyles[s]; ok {
		return st
	}
	return buttonStyles[card.ButtonDark]
}

func toneStyle(t card.Tone) lipgloss.Style {
	switch t {
	case card.TonePositive:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	case card.ToneNegative:
		return lipgloss.NewStyle().Foreground(colorError)
	default:
		return lipgloss.NewStyle().Foreground(colorText)
	}
}

// background blends the configured card colour over the terminal base by
// its opacity. Unparseable colours fall back to the card default.
func background(s card.Style) lipgloss.Color {
	base, _ := colorful.Hex(string(colorBase))
	c, err := colorful.Hex(s.BackgroundColor)
	if err != nil {
		c, _ = colorful.Hex(card.DefaultBackgroundColor)
	}
	opacity := min(max(s.BackgroundOpacity, 0), 1)
	return lipgloss.Color(base.BlendRgb(c, opacity).Clamped().Hex())
}
