package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	MarqueeGold = lipgloss.Color("#E5A00D")
	SlateDark   = lipgloss.Color("#1F2937")
	SlateLight  = lipgloss.Color("#374151")
	DimGray     = lipgloss.Color("#6B7280")
	LightGray   = lipgloss.Color("#9CA3AF")
	White       = lipgloss.Color("#F9FAFB")
	Green       = lipgloss.Color("#10B981")
	Red         = lipgloss.Color("#EF4444")
	Blue        = lipgloss.Color("#3B82F6")
)

// Borders
var (
	ActiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MarqueeGold)

	InactiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(MarqueeGold)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)
)

// Rail styles
var (
	RailTitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	RailTitleFocusedStyle = lipgloss.NewStyle().
				Foreground(MarqueeGold).
				Bold(true)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(0, 1)

	CardSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(MarqueeGold).
				Padding(0, 1)

	ScoreStyle = lipgloss.NewStyle().
			Foreground(MarqueeGold)
)

// Banner styles
var (
	BannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(DimGray).
			Padding(0, 2)

	BannerFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(MarqueeGold).
				Padding(0, 2)

	BannerTitleStyle = lipgloss.NewStyle().
				Foreground(MarqueeGold).
				Bold(true)
)

// PosterPlaceholder marks a movie whose poster did not load
const PosterPlaceholder = "▒▒ no poster ▒▒"

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MarqueeGold).
			Padding(1, 2).
			Background(SlateDark)

	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true).
			MarginBottom(1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(MarqueeGold)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Badge styles
var (
	BadgeStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(MarqueeGold).
			Padding(0, 1)

	DimBadgeStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateLight).
			Padding(0, 1)
)

// SpinnerStyle colors the loading spinner
var SpinnerStyle = lipgloss.NewStyle().Foreground(MarqueeGold)

// Filter styles
var (
	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(MarqueeGold).
				Bold(true)

	MatchHighlightStyle = lipgloss.NewStyle().
				Foreground(MarqueeGold).
				Bold(true)

	MatchHighlightSelectedStyle = lipgloss.NewStyle().
					Foreground(MarqueeGold).
					Background(SlateLight).
					Bold(true)
)

// Helper functions

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// Pad pads a string to the given width
func Pad(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// HighlightMatches renders s with the runes starting at the matched byte
// offsets emphasised
func HighlightMatches(s string, matched []int, selected bool) string {
	if len(matched) == 0 {
		return s
	}
	hl := MatchHighlightStyle
	if selected {
		hl = MatchHighlightSelectedStyle
	}
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	var b strings.Builder
	for i, r := range s {
		if set[i] {
			b.WriteString(hl.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
