package keywords

import (
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/narrative/pkg/narrative/stoplist"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("Acme's top-tier app -- crashed_again! 2024 Q1")
	want := []string{"acme's", "top-tier", "app", "crashed_again", "2024", "q1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestExtractExcludesBrandNames(t *testing.T) {
	corpus := strings.Repeat("Acme Zenith Acme loans rising ", 20)
	got := Extract(corpus, "Acme", []string{"Zenith"})
	for _, kw := range got {
		if kw.Phrase == "acme" || kw.Phrase == "zenith" || strings.Contains(kw.Phrase, "acme") {
			t.Errorf("brand name leaked into keywords: %+v", kw)
		}
	}
	if len(got) == 0 || got[0].Phrase != "loans" {
		t.Errorf("expected 'loans' first, got %+v", got)
	}
}

func TestExtractBigrams(t *testing.T) {
	corpus := "mobile app outage. mobile app outage again. single mention of mobile"
	got := Extract(corpus, "Acme", nil)

	counts := make(map[string]int64)
	for _, kw := range got {
		counts[kw.Phrase] = kw.Count
	}
	if counts["mobile"] != 3 {
		t.Errorf("mobile = %d, want 3", counts["mobile"])
	}
	if counts["mobile app"] != 2 {
		t.Errorf("mobile app = %d, want 2", counts["mobile app"])
	}
	if counts["app outage"] != 2 {
		t.Errorf("app outage = %d, want 2", counts["app outage"])
	}
	if _, ok := counts["outage again"]; ok {
		t.Error("bigram seen once should be dropped")
	}
}

func TestExtractStableTies(t *testing.T) {
	got := Extract("zebra yak xylophone", "", nil)
	want := []Keyword{{"zebra", 1}, {"yak", 1}, {"xylophone", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractFilters(t *testing.T) {
	got := Extract("the bank plc is ok at 24/7 with r2d2 customers", "", nil)
	if len(got) != 0 {
		t.Errorf("expected only filtered tokens, got %v", got)
	}
}

func TestExtractLimit(t *testing.T) {
	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet", "kilo", "lima"}
	got := Extract(strings.Join(words, " "), "", nil)
	if len(got) != DefaultLimit {
		t.Fatalf("got %d keywords, want %d", len(got), DefaultLimit)
	}
	if got[0].Phrase != "alpha" || got[9].Phrase != "juliet" {
		t.Errorf("unexpected order %v", got)
	}
}

func TestExtractDoesNotMutateBase(t *testing.T) {
	base := stoplist.NewManager([]string{"the"})
	ex := NewExtractor(base)
	ex.Extract("acme acme", "Acme", nil)
	if base.IsStop("acme") {
		t.Error("brand name leaked into the base stoplist")
	}
	if got := ex.Extract("acme acme", "", nil); len(got) == 0 || got[0].Phrase != "acme" {
		t.Errorf("brand from a previous call should not persist, got %v", got)
	}
}

func TestCorpus(t *testing.T) {
	if got := Corpus([]string{"a", "b"}); got != "a b" {
		t.Errorf("Corpus = %q", got)
	}
}
