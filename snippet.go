package tradekg

import (
	"sort"
	"strings"

	"github.com/brunobiangulo/tradekg/recognize"
)

// Highlight renders post text with every mention wrapped as
// "[TYPE surface]" for inline display. Mention offsets are half-open
// rune positions; mentions that overlap an earlier one or fall outside
// the text are skipped.
func Highlight(text string, mentions []recognize.Mention) string {
	if len(mentions) == 0 {
		return text
	}

	sorted := make([]recognize.Mention, len(mentions))
	copy(sorted, mentions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text) + len(sorted)*16)

	pos := 0
	for _, m := range sorted {
		if m.Start < pos || m.Start >= m.End || m.End > len(runes) {
			continue
		}
		b.WriteString(string(runes[pos:m.Start]))
		b.WriteByte('[')
		b.WriteString(m.Type)
		b.WriteByte(' ')
		b.WriteString(string(runes[m.Start:m.End]))
		b.WriteByte(']')
		pos = m.End
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}
