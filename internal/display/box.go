// Package display renders the terminal summaries printed by the CLI.
package display

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Kind selects the colour and marker of a box
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindWarning
	KindError
)

const defaultWidth = 80

var kinds = map[Kind]struct {
	marker string
	style  lipgloss.Style
}{
	KindInfo:    {"ℹ", lipgloss.NewStyle().Foreground(lipgloss.Color("86"))},
	KindSuccess: {"✓", lipgloss.NewStyle().Foreground(lipgloss.Color("42"))},
	KindWarning: {"⚠", lipgloss.NewStyle().Foreground(lipgloss.Color("178"))},
	KindError:   {"✗", lipgloss.NewStyle().Foreground(lipgloss.Color("196"))},
}

// Box collects a title and lines and renders them inside a rounded border
type Box struct {
	kind   Kind
	title  string
	lines  []string
	fields [][2]string
	width  int
}

// NewBox creates a box sized to the terminal
func NewBox(kind Kind, title string) *Box {
	return &Box{kind: kind, title: title, width: terminalWidth()}
}

// WithWidth fixes the total width, mostly for tests
func (b *Box) WithWidth(width int) *Box {
	b.width = width
	return b
}

// AddLine adds free text
func (b *Box) AddLine(text string) *Box {
	b.flushFields()
	b.lines = append(b.lines, text)
	return b
}

// AddField adds "key: value"; consecutive fields share one key column
func (b *Box) AddField(key string, value interface{}) *Box {
	b.fields = append(b.fields, [2]string{key, fmt.Sprint(value)})
	return b
}

func (b *Box) flushFields() {
	if len(b.fields) == 0 {
		return
	}
	keyWidth := 0
	for _, f := range b.fields {
		if n := utf8.RuneCountInString(f[0]); n > keyWidth {
			keyWidth = n
		}
	}
	for _, f := range b.fields {
		pad := strings.Repeat(" ", keyWidth-utf8.RuneCountInString(f[0]))
		b.lines = append(b.lines, fmt.Sprintf("%s:%s %s", f[0], pad, f[1]))
	}
	b.fields = nil
}

// Render returns the box as a string
func (b *Box) Render() string {
	b.flushFields()
	k := kinds[b.kind]

	inner := b.width - 8
	if inner < 20 {
		inner = 20
	}

	var body []string
	for _, line := range b.lines {
		body = append(body, wrap(line, inner)...)
	}
	title := wrap(k.marker+" "+b.title, inner)

	width := 0
	for _, line := range append(append([]string{}, title...), body...) {
		if n := utf8.RuneCountInString(line); n > width {
			width = n
		}
	}

	var sb strings.Builder
	edge := strings.Repeat("─", width+2)
	sb.WriteString(k.style.Render("╭"+edge+"╮") + "\n")
	row := func(text string, style lipgloss.Style) {
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(text))
		sb.WriteString(k.style.Render("│") + " " + style.Render(text) + pad + " " + k.style.Render("│") + "\n")
	}
	for _, line := range title {
		row(line, k.style.Bold(true))
	}
	for _, line := range body {
		row(line, lipgloss.NewStyle())
	}
	sb.WriteString(k.style.Render("╰" + edge + "╯"))
	return sb.String()
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

// wrap splits text on word boundaries so no line exceeds max runes. Words
// longer than max are kept whole.
func wrap(text string, max int) []string {
	if utf8.RuneCountInString(text) <= max {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) > max {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}
