// Package relate turns a post's recognized mentions into subject-predicate-
// object triples. Extraction runs in two tiers: connector patterns matched
// against the text between a mention pair, and — only when no pattern fired
// anywhere in the post — type-pair fallback inference over co-occurring
// mentions.
package relate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/brunobiangulo/tradekg/lexicon"
	"github.com/brunobiangulo/tradekg/recognize"
)

// Extraction methods recorded on each triple.
const (
	MethodPattern   = "pattern"
	MethodInference = "inference"
)

// Triple is one extracted assertion. Subject and Object are canonical forms
// as produced by recognize.Normalize.
type Triple struct {
	Subject     string `json:"subject"`
	SubjectType string `json:"subject_type"`
	Predicate   string `json:"predicate"`
	Object      string `json:"object"`
	ObjectType  string `json:"object_type"`
	PostID      string `json:"post_id"`
	Method      string `json:"method"`
}

type compiledRelation struct {
	subjectTypes map[string]bool
	objectTypes  map[string]bool
	predicate    string
	connectors   []*regexp.Regexp
}

func (r *compiledRelation) connects(window string) bool {
	for _, re := range r.connectors {
		if re.MatchString(window) {
			return true
		}
	}
	return false
}

// Extractor applies one lexicon's relation rules. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	lex       *lexicon.Lexicon
	relations []compiledRelation
}

// New compiles the lexicon's relation patterns into an Extractor.
func New(lex *lexicon.Lexicon) (*Extractor, error) {
	e := &Extractor{lex: lex}
	for _, r := range lex.Relations {
		cr := compiledRelation{
			subjectTypes: typeSet(r.SubjectTypes),
			objectTypes:  typeSet(r.ObjectTypes),
			predicate:    r.Predicate,
		}
		for _, c := range r.Connectors {
			re, err := regexp.Compile("(?i)" + c)
			if err != nil {
				return nil, fmt.Errorf("relate: compiling connector %q for %s: %w", c, r.Predicate, err)
			}
			cr.connectors = append(cr.connectors, re)
		}
		e.relations = append(e.relations, cr)
	}
	return e, nil
}

// Extract returns the triples asserted by one post. Mentions must be the
// non-overlapping, start-ordered output of recognition for the same text.
// Fewer than two mentions can assert nothing. The fallback tier runs only
// when the pattern tier produced zero triples for the whole post.
func (e *Extractor) Extract(postID, text string, mentions []recognize.Mention) []Triple {
	if len(mentions) < 2 {
		return nil
	}
	triples := e.patternTier(postID, []rune(text), mentions)
	if len(triples) == 0 {
		triples = e.fallbackTier(postID, mentions)
	}
	return triples
}

// patternTier checks every ordered mention pair against every relation
// pattern, in configuration order. A triple is emitted when the subject and
// object types fit and any connector matches the text between the two
// mentions. Duplicate assertions within one post collapse to the first.
func (e *Extractor) patternTier(postID string, runes []rune, mentions []recognize.Mention) []Triple {
	var out []Triple
	seen := make(map[[3]string]bool)
	for i := range mentions {
		for j := range mentions {
			if i == j {
				continue
			}
			subj, obj := mentions[i], mentions[j]
			if subj.Start >= obj.Start || subj.End > obj.Start {
				continue
			}
			window := string(runes[subj.End:obj.Start])
			for k := range e.relations {
				rel := &e.relations[k]
				if !rel.subjectTypes[subj.Type] || !rel.objectTypes[obj.Type] {
					continue
				}
				if !rel.connects(window) {
					continue
				}
				key := [3]string{strings.ToLower(subj.Norm), rel.predicate, strings.ToLower(obj.Norm)}
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, Triple{
					Subject:     subj.Norm,
					SubjectType: subj.Type,
					Predicate:   rel.predicate,
					Object:      obj.Norm,
					ObjectType:  obj.Type,
					PostID:      postID,
					Method:      MethodPattern,
				})
			}
		}
	}
	return out
}

// fallbackTier infers one triple per distinct co-occurring pair, in mention
// order, using the type-pair fallback table. Pairs repeat within a post
// only once regardless of predicate.
func (e *Extractor) fallbackTier(postID string, mentions []recognize.Mention) []Triple {
	var out []Triple
	seen := make(map[[2]string]bool)
	for i := 0; i < len(mentions); i++ {
		for j := i + 1; j < len(mentions); j++ {
			subj, obj := mentions[i], mentions[j]
			key := [2]string{strings.ToLower(subj.Norm), strings.ToLower(obj.Norm)}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Triple{
				Subject:     subj.Norm,
				SubjectType: subj.Type,
				Predicate:   e.lex.FallbackFor(subj.Type, obj.Type),
				Object:      obj.Norm,
				ObjectType:  obj.Type,
				PostID:      postID,
				Method:      MethodInference,
			})
		}
	}
	return out
}

func typeSet(types []string) map[string]bool {
	s := make(map[string]bool, len(types))
	for _, t := range types {
		s[t] = true
	}
	return s
}
