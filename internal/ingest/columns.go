package ingest

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// namer normalizes header text. A cases.Caser keeps state, so each
// normalization pass owns its own namer.
type namer struct {
	title cases.Caser
}

func newNamer() *namer {
	return &namer{title: cases.Title(language.Und)}
}

func (n *namer) normalize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return n.title.String(s)
}

// headers turns a raw header row into unique column names. Blank headers
// become "Unnamed: i"; repeated names get ".1", ".2" suffixes.
func (n *namer) headers(raw []string, width int) []string {
	if width < len(raw) {
		width = len(raw)
	}
	out := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(raw) {
			name = n.normalize(raw[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if c, ok := seen[name]; ok {
			for {
				c++
				cand := fmt.Sprintf("%s.%d", name, c)
				if _, taken := seen[cand]; !taken {
					seen[name] = c
					name = cand
					break
				}
			}
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}
