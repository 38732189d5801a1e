package relate

import (
	"testing"

	"github.com/brunobiangulo/tradekg/lexicon"
	"github.com/brunobiangulo/tradekg/recognize"
)

func newTestExtractor(t *testing.T) (*recognize.Recognizer, *Extractor) {
	t.Helper()
	lex := lexicon.Default()
	rec, err := recognize.New(lex)
	if err != nil {
		t.Fatalf("recognize.New: %v", err)
	}
	ext, err := New(lex)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return rec, ext
}

func extract(t *testing.T, rec *recognize.Recognizer, ext *Extractor, text string) []Triple {
	t.Helper()
	return ext.Extract("post_1", text, rec.Recognize(text))
}

func TestExtractPatternTriple(t *testing.T) {
	rec, ext := newTestExtractor(t)
	got := extract(t, rec, ext, "Trump announces 25% tariff on China.")

	if len(got) != 1 {
		t.Fatalf("got %d triples, want 1: %+v", len(got), got)
	}
	want := Triple{
		Subject:     "Trump",
		SubjectType: lexicon.EntityPerson,
		Predicate:   lexicon.RelAnnounces,
		Object:      "25% tariff",
		ObjectType:  lexicon.EntityTariff,
		PostID:      "post_1",
		Method:      MethodPattern,
	}
	if got[0] != want {
		t.Errorf("got %+v, want %+v", got[0], want)
	}
}

func TestExtractFallbackTriple(t *testing.T) {
	rec, ext := newTestExtractor(t)

	// No connector between the two mentions, so the pattern tier stays
	// empty and the type-pair table infers the predicate.
	got := extract(t, rec, ext, "Biden India trade talks.")
	if len(got) != 1 {
		t.Fatalf("got %d triples, want 1: %+v", len(got), got)
	}
	tr := got[0]
	if tr.Subject != "Biden" || tr.Predicate != lexicon.RelAssociatedWith || tr.Object != "India" {
		t.Errorf("got (%s, %s, %s), want (Biden, %s, India)", tr.Subject, tr.Predicate, tr.Object, lexicon.RelAssociatedWith)
	}
	if tr.Method != MethodInference {
		t.Errorf("got method %q, want %q", tr.Method, MethodInference)
	}
}

func TestFallbackSuppressedByPatternTriple(t *testing.T) {
	rec, ext := newTestExtractor(t)

	// One pattern triple anywhere in the post keeps the fallback tier off
	// even for pairs the pattern tier said nothing about.
	got := extract(t, rec, ext, "Trump announces 25% tariff on China.")
	for _, tr := range got {
		if tr.Method == MethodInference {
			t.Errorf("fallback triple %+v emitted despite a pattern match", tr)
		}
	}
}

func TestFallbackDefaultPredicate(t *testing.T) {
	rec, ext := newTestExtractor(t)

	// Pairs are ordered left to right, so the tariff rate is the subject,
	// and (TARIFF_RATE, PERSON) has no fallback rule.
	got := extract(t, rec, ext, "25% tariff praised by Trump")
	if len(got) != 1 {
		t.Fatalf("got %d triples, want 1: %+v", len(got), got)
	}
	tr := got[0]
	if tr.Subject != "25% tariff" || tr.Predicate != lexicon.RelMentionedWith || tr.Object != "Trump" {
		t.Errorf("got (%s, %s, %s), want (25%% tariff, %s, Trump)", tr.Subject, tr.Predicate, tr.Object, lexicon.RelMentionedWith)
	}
}

func TestExtractFewerThanTwoMentions(t *testing.T) {
	rec, ext := newTestExtractor(t)
	for _, text := range []string{"", "Trump spoke today", "nothing to see"} {
		if got := extract(t, rec, ext, text); len(got) != 0 {
			t.Errorf("Extract(%q) = %+v, want none", text, got)
		}
	}
}

func TestExtractDedupesRepeatedAssertions(t *testing.T) {
	rec, ext := newTestExtractor(t)

	// Both Trump mentions pair with both tariff mentions through an
	// "announces" window; the four candidates collapse to one triple.
	got := extract(t, rec, ext, "Trump announces steel tariff while Trump announces steel tariff")
	if len(got) != 1 {
		t.Fatalf("got %d triples, want 1: %+v", len(got), got)
	}
	if got[0].Predicate != lexicon.RelAnnounces {
		t.Errorf("got predicate %q, want %q", got[0].Predicate, lexicon.RelAnnounces)
	}
}

func TestExtractMultiplePredicatesPerPair(t *testing.T) {
	rec, ext := newTestExtractor(t)

	// One pair can satisfy several relation patterns; they emit in
	// configuration order.
	got := extract(t, rec, ext, "CNN reports and endorses Trump")
	if len(got) != 2 {
		t.Fatalf("got %d triples, want 2: %+v", len(got), got)
	}
	if got[0].Predicate != lexicon.RelReports || got[1].Predicate != lexicon.RelSupports {
		t.Errorf("got predicates (%s, %s), want (%s, %s)",
			got[0].Predicate, got[1].Predicate, lexicon.RelReports, lexicon.RelSupports)
	}
	for _, tr := range got {
		if tr.Subject != "CNN" || tr.Object != "Trump" {
			t.Errorf("unexpected endpoints: %+v", tr)
		}
	}
}

func TestExtractUsesCanonicalForms(t *testing.T) {
	rec, ext := newTestExtractor(t)

	got := extract(t, rec, ext, "United States trades with China")
	if len(got) != 1 {
		t.Fatalf("got %d triples, want 1: %+v", len(got), got)
	}
	tr := got[0]
	if tr.Subject != "USA" {
		t.Errorf("got subject %q, want alias-folded %q", tr.Subject, "USA")
	}
	if tr.Predicate != lexicon.RelTradesWith || tr.Object != "China" {
		t.Errorf("got (%s, %s), want (%s, China)", tr.Predicate, tr.Object, lexicon.RelTradesWith)
	}
}

func TestExtractSubjectTypeGate(t *testing.T) {
	rec, ext := newTestExtractor(t)

	// REPORTS requires an organization subject; a person saying something
	// does not report it.
	got := extract(t, rec, ext, "Trump says China cheats")
	for _, tr := range got {
		if tr.Predicate == lexicon.RelReports {
			t.Errorf("REPORTS emitted for a person subject: %+v", tr)
		}
	}

	got = extract(t, rec, ext, "Reuters says China cheats")
	found := false
	for _, tr := range got {
		if tr.Predicate == lexicon.RelReports && tr.Subject == "Reuters" && tr.Object == "China" {
			found = true
		}
	}
	if !found {
		t.Errorf("no REPORTS triple in %+v", got)
	}
}

func TestFallbackPairDedupe(t *testing.T) {
	rec, ext := newTestExtractor(t)

	// Four mentions (China, Steel, China, Steel) form six ordered pairs,
	// but repeated surface pairs are inferred once, leaving four.
	got := extract(t, rec, ext, "China steel, China steel")
	if len(got) != 4 {
		t.Fatalf("got %d triples, want 4: %+v", len(got), got)
	}
	hasSector := 0
	for _, tr := range got {
		if tr.Method != MethodInference {
			t.Errorf("got method %q, want %q: %+v", tr.Method, MethodInference, tr)
		}
		if tr.Subject == "China" && tr.Predicate == lexicon.RelHasSector && tr.Object == "Steel" {
			hasSector++
		}
	}
	if hasSector != 1 {
		t.Errorf("got %d (China, HAS_SECTOR, Steel) triples, want exactly 1", hasSector)
	}
}
