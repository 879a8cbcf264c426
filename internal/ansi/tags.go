package ansi

import "strings"

// Tags returns the opening and closing markup for text styled with s.
//
// Opening tags are ordered bold, italic, underline, strikethrough,
// foreground, background; the closing string is the exact reverse so that
// open + text + close is always well nested. The default state returns two
// empty strings without building anything.
func (s GraphicsModeState) Tags() (string, string) {
	if s.IsDefault() {
		return "", ""
	}

	opening := make([]string, 0, 6)
	closing := make([]string, 0, 6)
	push := func(open, close string) {
		opening = append(opening, open)
		closing = append(closing, close)
	}

	if s.Bold {
		push("<strong>", "</strong>")
	}
	if s.Italic {
		push("<em>", "</em>")
	}
	if s.Underline {
		push("<u>", "</u>")
	}
	if s.Strikethrough {
		push("<s>", "</s>")
	}
	if css := s.Color.CSS(); css != "" {
		push(`<span style="color: `+css+`">`, "</span>")
	}
	if css := s.Background.CSS(); css != "" {
		push(`<span style="background-color: `+css+`">`, "</span>")
	}

	var b strings.Builder
	for i := len(closing) - 1; i >= 0; i-- {
		b.WriteString(closing[i])
	}
	return strings.Join(opening, ""), b.String()
}
