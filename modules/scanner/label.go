package scanner

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/scanstation/pkg/decoder"
)

var acronyms = map[string]bool{"qr": true, "ean": true, "upc": true, "itf": true}

// FormatLabel turns a symbol format into display text, e.g. "QR Code".
func FormatLabel(f decoder.Format) string {
	if f == "" {
		return ""
	}
	title := cases.Title(language.English)
	upper := cases.Upper(language.English)

	words := strings.Split(string(f), "_")
	for i, w := range words {
		if acronyms[w] || len(w) == 1 {
			words[i] = upper.String(w)
			continue
		}
		words[i] = title.String(w)
	}
	return strings.Join(words, " ")
}
