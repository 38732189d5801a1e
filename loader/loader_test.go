package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// Registry tests
// ---------------------------------------------------------------------------

func TestRegistryBuiltInLoaders(t *testing.T) {
	reg := NewRegistry()

	formats := []string{"csv", "jsonl", "ndjson", "xlsx", "xls", "pdf", "txt"}
	for _, format := range formats {
		t.Run(format, func(t *testing.T) {
			l, err := reg.Get(format)
			if err != nil {
				t.Fatalf("Get(%q) returned error: %v", format, err)
			}
			if l == nil {
				t.Fatalf("Get(%q) returned nil loader", format)
			}
			found := false
			for _, f := range l.SupportedFormats() {
				if f == format {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("loader for %q does not list %q in SupportedFormats(): %v",
					format, format, l.SupportedFormats())
			}
		})
	}
}

func TestRegistryUnknown(t *testing.T) {
	reg := NewRegistry()

	for _, format := range []string{"docx", "json", "html", ""} {
		t.Run("format_"+format, func(t *testing.T) {
			l, err := reg.Get(format)
			if err == nil {
				t.Errorf("Get(%q) expected error for unknown format, got loader: %v", format, l)
			}
			if l != nil {
				t.Errorf("Get(%q) expected nil loader for unknown format", format)
			}
		})
	}
}

func TestRegistryCustomLoader(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Get("custom")
	if err == nil {
		t.Fatal("expected error for unregistered format")
	}

	reg.Register("custom", &TextLoader{})
	l, err := reg.Get("custom")
	if err != nil {
		t.Fatalf("Get(\"custom\") after Register returned error: %v", err)
	}
	if l == nil {
		t.Fatal("Get(\"custom\") returned nil after Register")
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/reddit_posts.csv", "csv"},
		{"archive.XLSX", "xlsx"},
		{"posts.jsonl", "jsonl"},
		{"dir.with.dots/report.pdf", "pdf"},
		{"noext", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatForPath(tt.path); got != tt.want {
				t.Errorf("FormatForPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// CSV tests
// ---------------------------------------------------------------------------

func TestCSVLoader(t *testing.T) {
	path := writeFile(t, "posts.csv",
		"datetime_utc,username,post_link,text_content,relevance_score,upvotes,comments_count\n"+
			"2024-03-01 10:00:00,trade_policy_wonk,https://reddit.com/r/Tariffs/comments/post0,Trump announces 25% tariff on China.,0.95,120,14\n"+
			"2024-03-02 11:30:00,economic_observer,,China retaliates with tariffs on American soybeans,0.8,45,7\n")

	posts, err := (&CSVLoader{}).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}

	first := posts[0]
	if first.ID != "https://reddit.com/r/Tariffs/comments/post0" {
		t.Errorf("posts[0].ID = %q, want the post_link", first.ID)
	}
	if first.Text != "Trump announces 25% tariff on China." {
		t.Errorf("posts[0].Text = %q", first.Text)
	}
	if first.Author != "trade_policy_wonk" {
		t.Errorf("posts[0].Author = %q, want %q", first.Author, "trade_policy_wonk")
	}
	if first.CreatedAt != "2024-03-01 10:00:00" {
		t.Errorf("posts[0].CreatedAt = %q", first.CreatedAt)
	}
	if first.Relevance != 0.95 {
		t.Errorf("posts[0].Relevance = %v, want 0.95", first.Relevance)
	}
	if first.Upvotes != 120 || first.Comments != 14 {
		t.Errorf("posts[0] upvotes/comments = %d/%d, want 120/14", first.Upvotes, first.Comments)
	}

	// No post_link on the second row, so the ID falls back to the ordinal.
	if posts[1].ID != "post_2" {
		t.Errorf("posts[1].ID = %q, want %q", posts[1].ID, "post_2")
	}
}

func TestCSVLoaderSkipsEmptyText(t *testing.T) {
	path := writeFile(t, "posts.csv",
		"text_content,upvotes\n"+
			"First post about tariffs,10\n"+
			",5\n"+
			"Third post about trade,3\n")

	posts, err := (&CSVLoader{}).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	// Skipped rows still advance the ordinal.
	if posts[0].ID != "post_1" || posts[1].ID != "post_3" {
		t.Errorf("IDs = %q, %q, want post_1, post_3", posts[0].ID, posts[1].ID)
	}
	if posts[1].Upvotes != 3 {
		t.Errorf("posts[1].Upvotes = %d, want 3", posts[1].Upvotes)
	}
}

func TestCSVLoaderMissingTextColumn(t *testing.T) {
	path := writeFile(t, "posts.csv",
		"datetime_utc,username\n"+
			"2024-01-01 00:00:00,alice\n")

	_, err := (&CSVLoader{}).Load(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for missing text_content column")
	}
	if !strings.Contains(err.Error(), "text_content") {
		t.Errorf("error %q does not name the missing column", err)
	}
}

func TestCSVLoaderMissingFile(t *testing.T) {
	_, err := (&CSVLoader{}).Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

// ---------------------------------------------------------------------------
// JSONL tests
// ---------------------------------------------------------------------------

func TestJSONLLoader(t *testing.T) {
	path := writeFile(t, "posts.jsonl",
		`{"id":"abc","text":"Trump announces tariffs","author":"wonk"}`+"\n"+
			"\n"+
			`{"text":"China exports steel"}`+"\n")

	posts, err := (&JSONLLoader{}).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].ID != "abc" || posts[0].Author != "wonk" {
		t.Errorf("posts[0] = %+v, want id abc author wonk", posts[0])
	}
	// Missing id falls back to the line number, counting blank lines.
	if posts[1].ID != "post_3" {
		t.Errorf("posts[1].ID = %q, want %q", posts[1].ID, "post_3")
	}
}

func TestJSONLLoaderMalformedLine(t *testing.T) {
	path := writeFile(t, "posts.jsonl",
		`{"text":"fine"}`+"\n"+
			"not json\n")

	_, err := (&JSONLLoader{}).Load(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q does not name the offending line", err)
	}
}

// ---------------------------------------------------------------------------
// XLSX tests
// ---------------------------------------------------------------------------

func TestXLSXLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.xlsx")

	f := excelize.NewFile()
	header := []interface{}{"datetime_utc", "username", "post_link", "text_content", "relevance_score", "upvotes", "comments_count"}
	row := []interface{}{"2024-03-01 10:00:00", "tariff_analyst", "", "Biden negotiates with India over trade disputes", "0.7", "33", "4"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("SetSheetRow header: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatalf("SetSheetRow row: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	posts, err := (&XLSXLoader{}).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	p := posts[0]
	if p.ID != "post_1" {
		t.Errorf("ID = %q, want post_1", p.ID)
	}
	if p.Text != "Biden negotiates with India over trade disputes" {
		t.Errorf("Text = %q", p.Text)
	}
	if p.Author != "tariff_analyst" || p.Relevance != 0.7 || p.Upvotes != 33 || p.Comments != 4 {
		t.Errorf("unexpected fields: %+v", p)
	}
}

func TestXLSXLoaderMissingFile(t *testing.T) {
	_, err := (&XLSXLoader{}).Load(context.Background(), filepath.Join(t.TempDir(), "absent.xlsx"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

// ---------------------------------------------------------------------------
// Text tests
// ---------------------------------------------------------------------------

func TestTextLoader(t *testing.T) {
	path := writeFile(t, "posts.txt",
		"Trump announces 25% tariff on China.\n"+
			"\n"+
			"  USA imports steel from Canada  \n")

	posts, err := (&TextLoader{}).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].ID != "post_1" || posts[0].Text != "Trump announces 25% tariff on China." {
		t.Errorf("posts[0] = %+v", posts[0])
	}
	// Lines are trimmed and blank lines still advance the ordinal.
	if posts[1].ID != "post_3" || posts[1].Text != "USA imports steel from Canada" {
		t.Errorf("posts[1] = %+v", posts[1])
	}
}
