package theme

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Event       lipgloss.Color
	Next        lipgloss.Color
	Overflow    lipgloss.Color
	Warning     lipgloss.Color

	Axis       lipgloss.Color // axis line, between Bg and FgMuted
	SelectedBg lipgloss.Color // expanded entry, a tint of Accent

	TextOnAccent   lipgloss.Color
	TextOnSelected lipgloss.Color
	TextOnWarning  lipgloss.Color
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	isLight := isLightTheme(t.Bg)
	selectedHex := selectionBg(t.Accent, t.Bg, isLight)

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Event:       lipgloss.Color(t.Event),
		Next:        lipgloss.Color(t.Next),
		Overflow:    lipgloss.Color(t.Overflow),
		Warning:     lipgloss.Color(t.Warning),

		Axis:       lipgloss.Color(blendColors(t.FgMuted, t.Bg, 0.45)),
		SelectedBg: lipgloss.Color(selectedHex),

		TextOnAccent:   lipgloss.Color(chooseTextColor(t.Accent, t.Bg, t.Fg)),
		TextOnSelected: lipgloss.Color(chooseTextColor(selectedHex, t.Bg, t.Fg)),
		TextOnWarning:  lipgloss.Color(chooseTextColor(t.Warning, t.Bg, t.Fg)),
	}
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

func selectionBg(accent, bg string, isLight bool) string {
	if isLight {
		return blendColors(accent, bg, 0.75)
	}
	return darkenColor(accent)
}

// darkenColor creates a darker version of a hex color for backgrounds.
// It reduces the brightness by blending towards black, with a minimum floor
// to ensure visibility on dark themes.
func darkenColor(hex string) string {
	if !isHex(hex) {
		return hex
	}

	r, g, b := parseRGB(hex)
	floor := func(v int) int { return max(int(float64(v)*0.50), 40) }
	return formatHexColor(floor(r), floor(g), floor(b))
}

// parseRGB splits a validated #rrggbb string into channels.
func parseRGB(hex string) (r, g, b int) {
	v, _ := strconv.ParseUint(hex[1:], 16, 32)
	return int(v>>16&0xff), int(v>>8&0xff), int(v&0xff)
}

func formatHexColor(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func chooseTextColor(bg, lightText, darkText string) string {
	if contrastRatio(bg, lightText) >= contrastRatio(bg, darkText) {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1 := relativeLuminance(a)
	l2 := relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	if !isHex(hex) {
		return 0
	}
	r, g, b := parseRGB(hex)
	return 0.2126*srgbToLinear(r) + 0.7152*srgbToLinear(g) + 0.0722*srgbToLinear(b)
}

func srgbToLinear(c int) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// blendColors mixes a toward b; ratio 0 is a, 1 is b.
func blendColors(a, b string, ratio float64) string {
	if !isHex(a) || !isHex(b) {
		return a
	}
	ratio = min(max(ratio, 0), 1)

	ar, ag, ab := parseRGB(a)
	br, bg, bb := parseRGB(b)
	mix := func(x, y int) int { return int(float64(x)*(1-ratio) + float64(y)*ratio) }
	return formatHexColor(mix(ar, br), mix(ag, bg), mix(ab, bb))
}
