// Package lexicon defines the rule tables driving entity recognition and
// relation extraction: entity dictionaries, structured-entity regular
// expressions, connector-based relation patterns, and the type-pair fallback
// table. A Lexicon is plain data — built once via Default or Load, validated,
// and never mutated afterwards.
package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Entity type constants used across recognition, extraction and the graph.
const (
	EntityPerson   = "PERSON"
	EntityLocation = "LOCATION"
	EntityOrg      = "ORGANIZATION"
	EntityPolicy   = "POLICY"
	EntitySector   = "ECONOMIC_SECTOR"
	EntityMoney    = "MONEY"
	EntityPercent  = "PERCENTAGE"
	EntityDate     = "DATE"
	EntityTariff   = "TARIFF_RATE"
	EntityProduct  = "PRODUCT"
)

// Relation predicate constants emitted by the pattern tier.
const (
	RelAnnounces  = "ANNOUNCES"
	RelIncreases  = "INCREASES"
	RelDecreases  = "DECREASES"
	RelReports    = "REPORTS"
	RelTradesWith = "TRADES_WITH"
	RelImpacts    = "IMPACTS"
	RelSupports   = "SUPPORTS"
	RelOpposes    = "OPPOSES"
	RelNegotiates = "NEGOTIATES"
	RelTargets    = "TARGETS"
	RelLeads      = "LEADS"
	RelExports    = "EXPORTS"
	RelImports    = "IMPORTS"
)

// Relation predicate constants emitted by fallback inference.
const (
	RelAssociatedWith = "ASSOCIATED_WITH"
	RelRelatedTo      = "RELATED_TO"
	RelHasSector      = "HAS_SECTOR"
	RelProduces       = "PRODUCES"
	RelOperatesIn     = "OPERATES_IN"
	RelAffects        = "AFFECTS"
	RelAppliesTo      = "APPLIES_TO"
	RelMentionedWith  = "MENTIONED_WITH"
)

// Dictionary holds the phrase list for one entity type. Phrases are matched
// case-insensitively with token-boundary checks on both sides.
type Dictionary struct {
	Type    string   `json:"type"`
	Phrases []string `json:"phrases"`
}

// EntityPattern is a structured-entity regular expression. When Group is
// non-zero the mention span is that capture group rather than the whole
// match (used where the original rule needs trailing context).
type EntityPattern struct {
	Type  string `json:"type"`
	Expr  string `json:"expr"`
	Group int    `json:"group,omitempty"`
}

// RelationPattern is one connector-driven relation rule. A candidate entity
// pair matches when the subject type is in SubjectTypes, the object type is
// in ObjectTypes, and any connector expression matches the text between the
// two mentions. Connectors are compiled case-insensitively.
type RelationPattern struct {
	SubjectTypes []string `json:"subject_types"`
	Predicate    string   `json:"predicate"`
	ObjectTypes  []string `json:"object_types"`
	Connectors   []string `json:"connectors"`
}

// FallbackRule maps an ordered entity type pair to the predicate inferred
// for a co-occurring pair when no relation pattern matched anywhere in the
// post.
type FallbackRule struct {
	SubjectType string `json:"subject_type"`
	ObjectType  string `json:"object_type"`
	Predicate   string `json:"predicate"`
}

// Lexicon is the complete rule configuration. All slices are in
// configuration order; recognition and extraction iterate them in order so
// results are reproducible.
type Lexicon struct {
	Dictionaries []Dictionary      `json:"dictionaries"`
	Patterns     []EntityPattern   `json:"patterns"`
	Relations    []RelationPattern `json:"relations"`
	Fallbacks    []FallbackRule    `json:"fallbacks"`

	// DefaultPredicate is emitted for co-occurring pairs with no fallback
	// rule. Must be non-empty.
	DefaultPredicate string `json:"default_predicate"`

	// Aliases folds alternate surface forms onto one canonical form,
	// keyed by the lowercased, whitespace-collapsed surface.
	Aliases map[string]string `json:"aliases"`

	// Acronyms are kept fully upper-cased during normalization instead of
	// title-cased.
	Acronyms []string `json:"acronyms"`
}

// Load reads a Lexicon from a JSON file and validates it.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: reading %s: %w", path, err)
	}
	var lex Lexicon
	if err := json.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("lexicon: parsing %s: %w", path, err)
	}
	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return &lex, nil
}

// Validate checks the configuration rules that are fatal at load time:
// every dictionary has a type and at least one non-empty phrase, every
// regular expression compiles, every relation pattern names a predicate and
// at least one connector, and the fallback table is well-formed.
func (l *Lexicon) Validate() error {
	if len(l.Dictionaries) == 0 {
		return fmt.Errorf("lexicon: no entity dictionaries")
	}
	for i, d := range l.Dictionaries {
		if d.Type == "" {
			return fmt.Errorf("lexicon: dictionary %d has no type", i)
		}
		if len(d.Phrases) == 0 {
			return fmt.Errorf("lexicon: dictionary %s has no phrases", d.Type)
		}
		for _, p := range d.Phrases {
			if p == "" {
				return fmt.Errorf("lexicon: dictionary %s contains an empty phrase", d.Type)
			}
		}
	}
	for i, p := range l.Patterns {
		if p.Type == "" {
			return fmt.Errorf("lexicon: pattern %d has no type", i)
		}
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return fmt.Errorf("lexicon: pattern %s: %w", p.Type, err)
		}
		if p.Group < 0 || p.Group > re.NumSubexp() {
			return fmt.Errorf("lexicon: pattern %s: group %d out of range", p.Type, p.Group)
		}
	}
	for i, r := range l.Relations {
		if r.Predicate == "" {
			return fmt.Errorf("lexicon: relation pattern %d has no predicate", i)
		}
		if len(r.SubjectTypes) == 0 || len(r.ObjectTypes) == 0 {
			return fmt.Errorf("lexicon: relation pattern %s has empty type sets", r.Predicate)
		}
		if len(r.Connectors) == 0 {
			return fmt.Errorf("lexicon: relation pattern %s has no connectors", r.Predicate)
		}
		for _, c := range r.Connectors {
			if _, err := regexp.Compile("(?i)" + c); err != nil {
				return fmt.Errorf("lexicon: relation pattern %s connector %q: %w", r.Predicate, c, err)
			}
		}
	}
	for i, f := range l.Fallbacks {
		if f.SubjectType == "" || f.ObjectType == "" || f.Predicate == "" {
			return fmt.Errorf("lexicon: fallback rule %d is incomplete", i)
		}
	}
	if l.DefaultPredicate == "" {
		return fmt.Errorf("lexicon: no default predicate")
	}
	return nil
}

// FallbackFor returns the inferred predicate for an ordered type pair,
// falling back to DefaultPredicate when no rule matches.
func (l *Lexicon) FallbackFor(subjectType, objectType string) string {
	for _, f := range l.Fallbacks {
		if f.SubjectType == subjectType && f.ObjectType == objectType {
			return f.Predicate
		}
	}
	return l.DefaultPredicate
}
