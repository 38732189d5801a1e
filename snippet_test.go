package tradekg

import (
	"testing"

	"github.com/brunobiangulo/tradekg/recognize"
)

func TestHighlight(t *testing.T) {
	text := "Trump announces 25% tariff on China."
	mentions := []recognize.Mention{
		{Type: "PERSON", Surface: "Trump", Start: 0, End: 5},
		{Type: "TARIFF_RATE", Surface: "25% tariff", Start: 16, End: 26},
		{Type: "LOCATION", Surface: "China", Start: 30, End: 35},
	}

	got := Highlight(text, mentions)
	want := "[PERSON Trump] announces [TARIFF_RATE 25% tariff] on [LOCATION China]."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHighlightNoMentions(t *testing.T) {
	text := "Nothing recognizable here."
	if got := Highlight(text, nil); got != text {
		t.Errorf("got %q, want unchanged text", got)
	}
}

func TestHighlightUnsortedInput(t *testing.T) {
	text := "China and Trump"
	mentions := []recognize.Mention{
		{Type: "PERSON", Surface: "Trump", Start: 10, End: 15},
		{Type: "LOCATION", Surface: "China", Start: 0, End: 5},
	}

	got := Highlight(text, mentions)
	want := "[LOCATION China] and [PERSON Trump]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHighlightSkipsOverlapAndOutOfRange(t *testing.T) {
	text := "Trump announces"
	mentions := []recognize.Mention{
		{Type: "PERSON", Surface: "Trump", Start: 0, End: 5},
		{Type: "PERSON", Surface: "ump ann", Start: 2, End: 9}, // overlaps
		{Type: "PERSON", Surface: "x", Start: 40, End: 45},     // out of range
		{Type: "PERSON", Surface: "", Start: 7, End: 7},        // empty span
	}

	got := Highlight(text, mentions)
	want := "[PERSON Trump] announces"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHighlightMultibyteText(t *testing.T) {
	text := "EU–China trade"
	mentions := []recognize.Mention{
		{Type: "LOCATION", Surface: "EU", Start: 0, End: 2},
		{Type: "LOCATION", Surface: "China", Start: 3, End: 8},
	}

	got := Highlight(text, mentions)
	want := "[LOCATION EU]–[LOCATION China] trade"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
