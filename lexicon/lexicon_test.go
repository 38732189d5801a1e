package lexicon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	lex := Default()
	if err := lex.Validate(); err != nil {
		t.Fatalf("Default() should validate: %v", err)
	}
	if len(lex.Dictionaries) != 5 {
		t.Errorf("got %d dictionaries, want 5", len(lex.Dictionaries))
	}
	if len(lex.Relations) != 13 {
		t.Errorf("got %d relation patterns, want 13", len(lex.Relations))
	}
	if lex.DefaultPredicate != RelMentionedWith {
		t.Errorf("got default predicate %q, want %q", lex.DefaultPredicate, RelMentionedWith)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Lexicon)
	}{
		{"no dictionaries", func(l *Lexicon) { l.Dictionaries = nil }},
		{"dictionary without type", func(l *Lexicon) { l.Dictionaries[0].Type = "" }},
		{"dictionary without phrases", func(l *Lexicon) { l.Dictionaries[0].Phrases = nil }},
		{"empty phrase", func(l *Lexicon) { l.Dictionaries[0].Phrases[0] = "" }},
		{"pattern without type", func(l *Lexicon) { l.Patterns[0].Type = "" }},
		{"bad pattern regexp", func(l *Lexicon) { l.Patterns[0].Expr = `[unclosed` }},
		{"pattern group out of range", func(l *Lexicon) { l.Patterns[0].Group = 7 }},
		{"relation without predicate", func(l *Lexicon) { l.Relations[0].Predicate = "" }},
		{"relation without subject types", func(l *Lexicon) { l.Relations[0].SubjectTypes = nil }},
		{"relation without connectors", func(l *Lexicon) { l.Relations[0].Connectors = nil }},
		{"bad connector regexp", func(l *Lexicon) { l.Relations[0].Connectors[0] = `(?P<`}},
		{"incomplete fallback rule", func(l *Lexicon) { l.Fallbacks[0].Predicate = "" }},
		{"no default predicate", func(l *Lexicon) { l.DefaultPredicate = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := Default()
			tt.mutate(lex)
			if err := lex.Validate(); err == nil {
				t.Fatal("expected a validation error, got nil")
			}
		})
	}
}

func TestFallbackFor(t *testing.T) {
	lex := Default()
	tests := []struct {
		subjectType string
		objectType  string
		want        string
	}{
		{EntityPerson, EntityPolicy, RelAssociatedWith},
		{EntityPerson, EntityLocation, RelAssociatedWith},
		{EntityLocation, EntityLocation, RelRelatedTo},
		{EntityLocation, EntitySector, RelHasSector},
		{EntityLocation, EntityProduct, RelProduces},
		{EntityOrg, EntityLocation, RelOperatesIn},
		{EntityTariff, EntityProduct, RelAppliesTo},
		{EntityMoney, EntityLocation, RelRelatedTo},
		// No rule for the reversed pair: default predicate applies.
		{EntityPolicy, EntityPerson, RelMentionedWith},
		{EntityDate, EntityDate, RelMentionedWith},
	}
	for _, tt := range tests {
		if got := lex.FallbackFor(tt.subjectType, tt.objectType); got != tt.want {
			t.Errorf("FallbackFor(%s, %s) = %q, want %q", tt.subjectType, tt.objectType, got, tt.want)
		}
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.json")
	data := `{
		"dictionaries": [
			{"type": "PERSON", "phrases": ["trump", "biden"]},
			{"type": "LOCATION", "phrases": ["china"]}
		],
		"patterns": [
			{"type": "PERCENTAGE", "expr": "\\d+%"}
		],
		"relations": [
			{
				"subject_types": ["PERSON"],
				"predicate": "ANNOUNCES",
				"object_types": ["PERCENTAGE"],
				"connectors": ["announce[sd]?"]
			}
		],
		"fallbacks": [
			{"subject_type": "PERSON", "object_type": "LOCATION", "predicate": "ASSOCIATED_WITH"}
		],
		"default_predicate": "MENTIONED_WITH",
		"aliases": {"united states": "USA"},
		"acronyms": ["USA"]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	lex, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(lex.Dictionaries) != 2 || lex.Dictionaries[0].Type != EntityPerson {
		t.Errorf("unexpected dictionaries: %+v", lex.Dictionaries)
	}
	if got := lex.FallbackFor(EntityPerson, EntityLocation); got != RelAssociatedWith {
		t.Errorf("FallbackFor = %q, want %q", got, RelAssociatedWith)
	}
	if lex.Aliases["united states"] != "USA" {
		t.Errorf("alias not loaded: %+v", lex.Aliases)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed JSON")
	}

	// Parses but fails validation.
	path = filepath.Join(t.TempDir(), "invalid.json")
	if err := os.WriteFile(path, []byte(`{"dictionaries": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected a validation error")
	}
}
