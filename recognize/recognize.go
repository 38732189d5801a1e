// Package recognize finds entity mentions in post text by matching a
// lexicon's phrase dictionaries and structured-entity expressions, then
// resolving overlaps so the surviving mentions never intersect. Offsets are
// half-open rune offsets into the post text.
package recognize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/brunobiangulo/tradekg/lexicon"
)

// Mention is one recognized entity occurrence in a post.
type Mention struct {
	Type    string `json:"type"`
	Surface string `json:"surface"`
	Norm    string `json:"norm"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	PostID  string `json:"post_id,omitempty"`
}

// Candidate sources, in tie-break priority order.
const (
	sourceDictionary = iota
	sourcePattern
)

type candidate struct {
	typ    string
	start  int
	end    int
	source int
}

type compiledDictionary struct {
	typ     string
	phrases [][]rune
}

type compiledPattern struct {
	typ   string
	re    *regexp.Regexp
	group int
}

// Recognizer matches one lexicon against post text. It is immutable after
// construction and safe for concurrent use.
type Recognizer struct {
	lex      *lexicon.Lexicon
	dicts    []compiledDictionary
	patterns []compiledPattern
}

// New compiles the lexicon's rule tables into a Recognizer.
func New(lex *lexicon.Lexicon) (*Recognizer, error) {
	r := &Recognizer{lex: lex}
	for _, d := range lex.Dictionaries {
		cd := compiledDictionary{typ: d.Type}
		for _, p := range d.Phrases {
			cd.phrases = append(cd.phrases, []rune(strings.Map(unicode.ToLower, p)))
		}
		r.dicts = append(r.dicts, cd)
	}
	for _, p := range lex.Patterns {
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, fmt.Errorf("recognize: compiling pattern %s: %w", p.Type, err)
		}
		if p.Group < 0 || p.Group > re.NumSubexp() {
			return nil, fmt.Errorf("recognize: pattern %s: group %d out of range", p.Type, p.Group)
		}
		r.patterns = append(r.patterns, compiledPattern{typ: p.Type, re: re, group: p.Group})
	}
	return r, nil
}

// Recognize returns the non-overlapping mentions found in text, ordered by
// start offset. Empty or whitespace-only text yields no mentions.
func (r *Recognizer) Recognize(text string) []Mention {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	orig := []rune(text)
	// unicode.ToLower maps runes one-to-one, so rune offsets in the lowered
	// text line up with the original.
	lower := []rune(strings.Map(unicode.ToLower, text))

	cands := r.dictionaryCandidates(lower)
	cands = append(cands, r.patternCandidates(text)...)
	kept := resolveOverlaps(cands)

	mentions := make([]Mention, 0, len(kept))
	for _, c := range kept {
		surface := string(orig[c.start:c.end])
		mentions = append(mentions, Mention{
			Type:    c.typ,
			Surface: surface,
			Norm:    Normalize(r.lex, c.typ, surface),
			Start:   c.start,
			End:     c.end,
		})
	}
	return mentions
}

// dictionaryCandidates scans the lowered text for every dictionary phrase.
// A phrase only counts when both sides sit on a token boundary, so "us"
// never fires inside "business". Occurrences of one phrase do not overlap
// each other; the scan resumes past each match.
func (r *Recognizer) dictionaryCandidates(lower []rune) []candidate {
	var cands []candidate
	for _, d := range r.dicts {
		for _, phrase := range d.phrases {
			n := len(phrase)
			if n == 0 || n > len(lower) {
				continue
			}
			for i := 0; i+n <= len(lower); {
				if !runesEqual(lower[i:i+n], phrase) {
					i++
					continue
				}
				if !tokenBoundary(lower, i, i+n) {
					i++
					continue
				}
				cands = append(cands, candidate{typ: d.typ, start: i, end: i + n, source: sourceDictionary})
				i += n
			}
		}
	}
	return cands
}

// patternCandidates runs every structured-entity expression over the
// original text. Match byte offsets are converted to rune offsets; when the
// pattern names a capture group, the span narrows to that group.
func (r *Recognizer) patternCandidates(text string) []candidate {
	var cands []candidate
	for _, p := range r.patterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			lo, hi := m[2*p.group], m[2*p.group+1]
			if lo < 0 || hi <= lo {
				continue
			}
			cands = append(cands, candidate{
				typ:    p.typ,
				start:  runeOffset(text, lo),
				end:    runeOffset(text, hi),
				source: sourcePattern,
			})
		}
	}
	return cands
}

// resolveOverlaps keeps a maximal set of non-intersecting candidates under a
// total order: earlier start first, then longer span, then dictionary before
// pattern. The stable sort preserves configuration order for exact ties, so
// resolution is reproducible for any input.
func resolveOverlaps(cands []candidate) []candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if al, bl := a.end-a.start, b.end-b.start; al != bl {
			return al > bl
		}
		return a.source < b.source
	})
	// Kept spans have strictly increasing ends, so comparing against the
	// last kept end is enough to reject every intersection.
	var kept []candidate
	lastEnd := 0
	for _, c := range cands {
		if len(kept) == 0 || c.start >= lastEnd {
			kept = append(kept, c)
			lastEnd = c.end
		}
	}
	return kept
}

func runesEqual(a, b []rune) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func tokenBoundary(text []rune, start, end int) bool {
	if start > 0 && isWordRune(text[start-1]) {
		return false
	}
	if end < len(text) && isWordRune(text[end]) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func runeOffset(text string, byteOffset int) int {
	return utf8.RuneCountInString(text[:byteOffset])
}
