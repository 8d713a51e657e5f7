package board

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Markdown renders free notes with glamour. Renderers are cached per wrap
// width and output per (text, width), since the render loop redraws the
// same notes many times a second.
type Markdown struct {
	style string

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
	output    map[string]string
}

// maxCachedOutputs bounds the output cache; it is cleared when full
const maxCachedOutputs = 256

// NewMarkdown creates a renderer for a glamour standard style
// ("dark", "light", "notty", ...)
func NewMarkdown(style string) *Markdown {
	if style == "" {
		style = "dark"
	}
	return &Markdown{
		style:     style,
		renderers: map[int]*glamour.TermRenderer{},
		output:    map[string]string{},
	}
}

// Render renders text wrapped to width. On failure the text is returned
// unchanged.
func (m *Markdown) Render(text string, width int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	key := strconv.Itoa(width) + "\x00" + text

	m.mu.Lock()
	defer m.mu.Unlock()

	if out, ok := m.output[key]; ok {
		return out
	}

	r := m.renderers[width]
	if r == nil {
		var err error
		// WithAutoStyle would query the terminal, which the UI owns
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		m.renderers[width] = r
	}

	out, err := r.Render(text)
	if err != nil {
		return text
	}
	out = strings.Trim(out, "\n")

	if len(m.output) >= maxCachedOutputs {
		clear(m.output)
	}
	m.output[key] = out
	return out
}
