package window

import (
	"testing"
	"time"

	"github.com/cognicore/narrative/pkg/narrative/mention"
)

func TestFilterAt(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	recent := &mention.Mention{Text: "recent", Date: mention.DateTime(now.Add(-2 * time.Hour))}
	old := &mention.Mention{Text: "old", Date: mention.DateTime(now.Add(-48 * time.Hour))}
	garbled := &mention.Mention{Text: "garbled", Date: mention.DateString("sometime last week-ish")}
	undated := &mention.Mention{Text: "undated"}
	textual := &mention.Mention{Text: "textual", Date: mention.DateString("2024-05-10 06:30:00")}

	got := FilterAt([]*mention.Mention{recent, old, garbled, undated, textual, nil}, 24, now)

	want := []string{"recent", "garbled", "undated", "textual"}
	if len(got) != len(want) {
		t.Fatalf("got %d mentions, want %d", len(got), len(want))
	}
	for i, m := range got {
		if m.Text != want[i] {
			t.Errorf("position %d = %q, want %q", i, m.Text, want[i])
		}
	}
}

func TestFilterAtBoundaryInclusive(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	edge := &mention.Mention{Date: mention.DateTime(now.Add(-24 * time.Hour))}
	if got := FilterAt([]*mention.Mention{edge}, 24, now); len(got) != 1 {
		t.Errorf("mention exactly at the cutoff should be kept")
	}
}

func TestFilterDisabled(t *testing.T) {
	old := &mention.Mention{Date: mention.DateString("2001-01-01")}
	in := []*mention.Mention{old}
	for _, hours := range []int{0, -5} {
		if got := Filter(in, hours); len(got) != 1 {
			t.Errorf("hours=%d should not filter, got %d", hours, len(got))
		}
	}
}

func TestFilterUsesZoneOffsets(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	// 13:00 at +02:00 is 11:00 UTC, one hour ago.
	m := &mention.Mention{Date: mention.DateString("2024-05-10T13:00:00+02:00")}
	if got := FilterAt([]*mention.Mention{m}, 2, now); len(got) != 1 {
		t.Error("offset timestamp inside the window should be kept")
	}
	if got := FilterAt([]*mention.Mention{m}, 0, now); len(got) != 1 {
		t.Error("disabled filter should keep everything")
	}
}
