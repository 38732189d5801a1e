// Package eval scores extracted triples against a hand-labelled gold set.
//
// Matching is set-based and case-insensitive: duplicate triples on either
// side count once. Scores are reported for exact (subject, predicate,
// object) matches, for predicate-agnostic entity pairs, and per predicate,
// so rule and lexicon changes can be judged on precision as well as recall.
package eval

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/brunobiangulo/tradekg/relate"
)

// Gold is one expected triple from a labelled dataset.
type Gold struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// Scores holds set-based counts and the derived ratios for one view of
// the comparison.
type Scores struct {
	TP        int     `json:"tp"`
	FP        int     `json:"fp"`
	FN        int     `json:"fn"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Report is the full comparison of an extraction run against a gold set.
type Report struct {
	Gold      int `json:"gold"`      // distinct gold triples
	Extracted int `json:"extracted"` // distinct extracted triples

	// Exact scores triples on (subject, predicate, object).
	Exact Scores `json:"exact"`
	// Pairs ignores the predicate and scores (subject, object) only,
	// which separates entity-linking errors from relation-labelling
	// errors.
	Pairs Scores `json:"pairs"`
	// PerPredicate breaks the exact comparison down by predicate.
	PerPredicate map[string]Scores `json:"per_predicate"`
}

// Predicates returns the keys of PerPredicate in sorted order.
func (r Report) Predicates() []string {
	keys := make([]string, 0, len(r.PerPredicate))
	for k := range r.PerPredicate {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Evaluate compares extracted triples against the gold set.
func Evaluate(got []relate.Triple, gold []Gold) Report {
	gotExact := make(map[string]struct{})
	gotPairs := make(map[string]struct{})
	gotByPred := make(map[string]map[string]struct{})
	for _, t := range got {
		pred := canon(t.Predicate)
		key := tripleKey(t.Subject, t.Predicate, t.Object)
		gotExact[key] = struct{}{}
		gotPairs[pairKey(t.Subject, t.Object)] = struct{}{}
		if gotByPred[pred] == nil {
			gotByPred[pred] = make(map[string]struct{})
		}
		gotByPred[pred][key] = struct{}{}
	}

	goldExact := make(map[string]struct{})
	goldPairs := make(map[string]struct{})
	goldByPred := make(map[string]map[string]struct{})
	for _, g := range gold {
		pred := canon(g.Predicate)
		key := tripleKey(g.Subject, g.Predicate, g.Object)
		goldExact[key] = struct{}{}
		goldPairs[pairKey(g.Subject, g.Object)] = struct{}{}
		if goldByPred[pred] == nil {
			goldByPred[pred] = make(map[string]struct{})
		}
		goldByPred[pred][key] = struct{}{}
	}

	rep := Report{
		Gold:         len(goldExact),
		Extracted:    len(gotExact),
		Exact:        scoreSets(gotExact, goldExact),
		Pairs:        scoreSets(gotPairs, goldPairs),
		PerPredicate: make(map[string]Scores),
	}

	preds := make(map[string]struct{})
	for p := range gotByPred {
		preds[p] = struct{}{}
	}
	for p := range goldByPred {
		preds[p] = struct{}{}
	}
	for p := range preds {
		rep.PerPredicate[p] = scoreSets(gotByPred[p], goldByPred[p])
	}
	return rep
}

// LoadGold reads a gold set from a CSV file with subject, predicate and
// object columns. Header names are matched case-insensitively and rows
// with an empty subject or object are skipped.
func LoadGold(path string) ([]Gold, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("eval: opening gold set: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("eval: reading gold set: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range []string{"subject", "predicate", "object"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("eval: missing required column %q", name)
		}
	}

	var gold []Gold
	for _, row := range rows[1:] {
		g := Gold{
			Subject:   field(row, cols, "subject"),
			Predicate: field(row, cols, "predicate"),
			Object:    field(row, cols, "object"),
		}
		if g.Subject == "" || g.Object == "" {
			continue
		}
		gold = append(gold, g)
	}
	return gold, nil
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func canon(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func tripleKey(subject, predicate, object string) string {
	return strings.ToLower(strings.TrimSpace(subject)) + "\x00" +
		canon(predicate) + "\x00" +
		strings.ToLower(strings.TrimSpace(object))
}

func pairKey(subject, object string) string {
	return strings.ToLower(strings.TrimSpace(subject)) + "\x00" +
		strings.ToLower(strings.TrimSpace(object))
}

// scoreSets computes counts and ratios for one got/gold set pair.
func scoreSets(got, gold map[string]struct{}) Scores {
	var s Scores
	for k := range got {
		if _, ok := gold[k]; ok {
			s.TP++
		} else {
			s.FP++
		}
	}
	for k := range gold {
		if _, ok := got[k]; !ok {
			s.FN++
		}
	}
	if s.TP+s.FP > 0 {
		s.Precision = float64(s.TP) / float64(s.TP+s.FP)
	}
	if s.TP+s.FN > 0 {
		s.Recall = float64(s.TP) / float64(s.TP+s.FN)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}
