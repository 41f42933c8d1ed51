package scanner

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// literal is markup written as is. Only constants convert to it implicitly,
// so dynamic values have to go through text or attr.
type literal string

type attr struct {
	name  literal
	value string
}

// markup buffers HTML for the default views. Every value is escaped on the
// way in.
type markup struct {
	b strings.Builder
}

func (m *markup) raw(s literal) { m.b.WriteString(string(s)) }

func (m *markup) text(s string) { m.b.WriteString(templ.EscapeString(s)) }

func (m *markup) open(tag literal, attrs ...attr) {
	m.b.WriteString("<")
	m.b.WriteString(string(tag))
	for _, a := range attrs {
		m.b.WriteString(" ")
		m.b.WriteString(string(a.name))
		m.b.WriteString(`="`)
		m.b.WriteString(templ.EscapeString(a.value))
		m.b.WriteString(`"`)
	}
	m.b.WriteString(">")
}

func (m *markup) close(tag literal) {
	m.b.WriteString("</")
	m.b.WriteString(string(tag))
	m.b.WriteString(">")
}

// elem writes a whole element with escaped text content.
func (m *markup) elem(tag literal, text string, attrs ...attr) {
	m.open(tag, attrs...)
	m.text(text)
	m.close(tag)
}

// actionForm posts to url, through DataStar when it is loaded.
func (m *markup) actionForm(url, label string) {
	m.open("form",
		attr{"method", "post"},
		attr{"action", url},
		attr{"data-on-submit__prevent", "@post(" + jsString(url) + ")"})
	m.elem("button", label, attr{"type", "submit"})
	m.close("form")
}

// flush writes the buffered markup to w and resets the buffer.
func (m *markup) flush(w io.Writer) error {
	_, err := io.WriteString(w, m.b.String())
	m.b.Reset()
	return err
}

// jsString quotes s for use inside a DataStar expression. The result still
// needs attribute escaping.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
