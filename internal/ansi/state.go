package ansi

// SGR parameter values understood by the scanner. Everything else is
// skipped one element at a time.
const (
	Reset         = 0
	Bold          = 1
	Italic        = 3
	Underline     = 4
	Strikethrough = 9
	FG1st         = 30
	FGEnd         = 37
	SetFG         = 38
	DefaultFG     = 39
	BG1st         = 40
	BGEnd         = 47
	SetBG         = 48
	DefaultBG     = 49

	modeExpanded = 5
	modeTrue     = 2
)

// GraphicsModeState is the style applied to the next block of text.
// The zero value is the default style.
type GraphicsModeState struct {
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool

	Color      Color
	Background Color
}

// IsDefault reports whether s carries no styling at all.
func (s GraphicsModeState) IsDefault() bool {
	return s == GraphicsModeState{}
}

// Scan folds the parameters of one SetGraphicsMode escape into a copy of s.
//
// Multi-element forms (38;5;n, 48;5;n, 38;2;r;g;b, 48;2;r;g;b) are matched
// against the head of the remaining parameters before single elements. A
// form that runs out of parameters does not match, so a truncated sequence
// degrades to skipping its elements one by one. A 0 anywhere resets the
// whole state and the parameters after it apply on top of the default.
func (s GraphicsModeState) Scan(params []uint8) GraphicsModeState {
	for i := 0; i < len(params); {
		i += s.step(params, i)
	}
	return s
}

// step applies the rule matching params at cursor i and returns how many
// elements it consumed. It always consumes at least one.
func (s *GraphicsModeState) step(params []uint8, i int) int {
	rest := len(params) - i
	p := params[i]

	if (p == SetFG || p == SetBG) && rest >= 2 {
		switch {
		case params[i+1] == modeTrue && rest >= 5:
			c := TrueColor(params[i+2], params[i+3], params[i+4])
			s.setChannel(p == SetFG, c)
			return 5
		case params[i+1] == modeExpanded && rest >= 3:
			s.setChannel(p == SetFG, Expanded(params[i+2]))
			return 3
		}
	}

	switch {
	case p == Reset:
		*s = GraphicsModeState{}
	case p == Bold:
		s.Bold = true
	case p == Italic:
		s.Italic = true
	case p == Underline:
		s.Underline = true
	case p == Strikethrough:
		s.Strikethrough = true
	case FG1st <= p && p <= FGEnd:
		s.Color = Console(p - FG1st)
	case BG1st <= p && p <= BGEnd:
		s.Background = Console(p - BG1st)
	case p == DefaultFG:
		s.Color = Color{}
	case p == DefaultBG:
		s.Background = Color{}
	}
	return 1
}

func (s *GraphicsModeState) setChannel(foreground bool, c Color) {
	if foreground {
		s.Color = c
		return
	}
	s.Background = c
}
