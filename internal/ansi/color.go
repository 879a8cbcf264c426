package ansi

import "fmt"

// ColorKind identifies which variant a Color holds.
type ColorKind uint8

const (
	ColorReset    ColorKind = iota // terminal default, renders no tag
	ColorConsole                   // 3-bit console color, codes 30-37 and 40-47
	ColorExpanded                  // 8-bit xterm color, 38;5;n and 48;5;n
	ColorTrue                      // 24-bit color, 38;2;r;g;b and 48;2;r;g;b
)

// consoleNames are the stylesheet variable suffixes for the 3-bit colors.
// The consuming page must define --color-{name} for each of them.
var consoleNames = [8]string{
	"black", "red", "green", "yellow", "blue", "purple", "cyan", "gray",
}

// Color is a foreground or background color. The zero value is ColorReset.
type Color struct {
	Kind    ColorKind
	Index   uint8 // console or expanded palette index
	R, G, B uint8
}

// Console returns a 3-bit console color. Only 0 through 7 render.
func Console(n uint8) Color {
	return Color{Kind: ColorConsole, Index: n}
}

// Expanded returns an 8-bit xterm palette color.
func Expanded(n uint8) Color {
	return Color{Kind: ColorExpanded, Index: n}
}

// TrueColor returns a 24-bit color.
func TrueColor(r, g, b uint8) Color {
	return Color{Kind: ColorTrue, R: r, G: g, B: b}
}

// IsReset reports whether c is the terminal default.
func (c Color) IsReset() bool {
	return c.Kind == ColorReset
}

// CSS returns the CSS color value for c, or "" when c has nothing to render.
func (c Color) CSS() string {
	switch c.Kind {
	case ColorConsole:
		if int(c.Index) >= len(consoleNames) {
			return ""
		}
		return "var(--color-" + consoleNames[c.Index] + ")"
	case ColorExpanded:
		return fmt.Sprintf("var(--terminal-color-%d)", c.Index)
	case ColorTrue:
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	default:
		return ""
	}
}

// String returns a short debug form of c.
func (c Color) String() string {
	switch c.Kind {
	case ColorConsole:
		return fmt.Sprintf("console(%d)", c.Index)
	case ColorExpanded:
		return fmt.Sprintf("expanded(%d)", c.Index)
	case ColorTrue:
		return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
	default:
		return "reset"
	}
}
