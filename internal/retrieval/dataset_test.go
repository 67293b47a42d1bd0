package retrieval

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/narrative/internal/logging"
	"github.com/cognicore/narrative/pkg/narrative/internalerr"
	"github.com/cognicore/narrative/pkg/narrative/mention"
)

func TestReadJSONLSkipsMalformed(t *testing.T) {
	in := `{"text":"Acme is great","source":"twitter","likes":"3"}

{not json}
{"text":"Zenith slow","source":"news","mentioned_brands":["Zenith"]}
`
	ms, err := ReadJSONL(strings.NewReader(in), logging.Discard())
	if err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("got %d mentions, want 2", len(ms))
	}
	if ms[0].Likes.Or(0) != 3 {
		t.Errorf("likes = %d", ms[0].Likes.Or(0))
	}
}

func TestReadJSONLNoValidLines(t *testing.T) {
	_, err := ReadJSONL(strings.NewReader("garbage\n\n"), logging.Discard())
	if !errors.Is(err, internalerr.ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestWriteThenLoadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentions.jsonl")
	ms := []*mention.Mention{
		{Text: "Acme rocks", Source: "x", Reach: mention.CountOf(10), Sentiment: mention.Some(mention.Positive)},
		nil,
		{Text: "Zenith", Source: "punch"},
	}
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, ms); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Errorf("expected two lines, got %q", buf.String())
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	back, err := LoadJSONL(path, logging.Discard())
	if err != nil {
		t.Fatalf("LoadJSONL: %v", err)
	}
	if len(back) != 2 || back[0].Reach.Or(0) != 10 {
		t.Errorf("loaded %+v", back)
	}
	if s, _ := back[0].SentimentLabel(); s != mention.Positive {
		t.Errorf("sentiment = %q", s)
	}
}

func TestLoadJSONLMissingFile(t *testing.T) {
	if _, err := LoadJSONL(filepath.Join(t.TempDir(), "nope.jsonl"), nil); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestReadCSV(t *testing.T) {
	in := "Text,Source,date,reach,likes,sentiment,mentioned_brands,extra\n" +
		"\"Acme, again\",twitter,2024-03-01T10:00:00Z,100,many,negative,Acme; Zenith ;,x\n" +
		"Zenith quiet,punch,,,,,,\n"
	ms, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("got %d rows", len(ms))
	}

	a := ms[0]
	if a.Text != "Acme, again" || a.Source != "twitter" || a.Reach.Or(0) != 100 {
		t.Errorf("row 0 = %+v", a)
	}
	if _, ok := a.Likes.Int(); ok {
		t.Error("non-numeric likes should be invalid")
	}
	if s, _ := a.SentimentLabel(); s != mention.Negative {
		t.Errorf("sentiment = %q", s)
	}
	if brands, _ := a.Brands(); len(brands) != 2 || brands[1] != "Zenith" {
		t.Errorf("brands = %v", brands)
	}
	if _, ok := a.Date.Time(); !ok {
		t.Error("date should parse")
	}

	b := ms[1]
	if b.Sentiment.IsSet() || b.MentionedBrands.IsSet() || !b.Date.IsZero() || !b.Reach.IsMissing() {
		t.Errorf("blank cells should stay absent: %+v", b)
	}
}

func TestReadCSVErrors(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); !errors.Is(err, internalerr.ErrNoData) {
		t.Errorf("empty input: %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("source,reach\nx,1\n")); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("missing text column: %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("text\n")); !errors.Is(err, internalerr.ErrNoData) {
		t.Errorf("header only: %v", err)
	}
}
