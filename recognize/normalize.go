package recognize

import (
	"strings"
	"unicode"

	"github.com/brunobiangulo/tradekg/lexicon"
)

// Normalize maps a mention surface to its canonical form, the identity used
// for graph nodes. The function is idempotent: Normalize(Normalize(s)) ==
// Normalize(s) for every surface and type.
//
// Steps, in order: collapse runs of whitespace, fold known aliases onto
// their canonical form ("United States" becomes "USA"), pass numeric and
// date surfaces through unchanged, keep acronyms fully upper-cased, and
// title-case everything else.
func Normalize(lex *lexicon.Lexicon, entityType, surface string) string {
	s := strings.Join(strings.Fields(surface), " ")
	if s == "" {
		return s
	}
	if canon, ok := lex.Aliases[strings.ToLower(s)]; ok {
		return canon
	}
	switch entityType {
	case lexicon.EntityMoney, lexicon.EntityPercent, lexicon.EntityDate, lexicon.EntityTariff:
		return s
	}
	upper := strings.ToUpper(s)
	for _, a := range lex.Acronyms {
		if upper == a {
			return a
		}
	}
	return titleCase(s)
}

// titleCase upper-cases the first rune of each space-separated word and
// lower-cases the rest.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
