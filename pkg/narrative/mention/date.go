package mention

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Date is a publication time as delivered by a source: either raw text in
// any common format or an already-structured timestamp.
type Date struct {
	raw        string
	at         time.Time
	structured bool
}

// DateString wraps raw date text.
func DateString(s string) Date {
	return Date{raw: s}
}

// DateTime wraps a structured timestamp.
func DateTime(t time.Time) Date {
	return Date{at: t, structured: true}
}

// IsZero reports whether no date was supplied.
func (d Date) IsZero() bool {
	return !d.structured && d.raw == ""
}

// Raw returns the textual form of the date.
func (d Date) Raw() string {
	if d.structured {
		return d.at.Format(time.RFC3339)
	}
	return d.raw
}

// Time resolves the date to an absolute instant. Structured timestamps are
// returned verbatim; text without a zone is read as UTC.
func (d Date) Time() (time.Time, bool) {
	if d.structured {
		return d.at, true
	}
	s := strings.TrimSpace(d.raw)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d Date) marshalRaw() json.RawMessage {
	if d.IsZero() {
		return nil
	}
	b, _ := json.Marshal(d.Raw())
	return b
}

func dateFromRaw(raw json.RawMessage) Date {
	if len(raw) == 0 {
		return Date{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return DateString(s)
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return Date{}
	}
	// Numbers and anything else keep their literal text; parsing decides later.
	return DateString(trimmed)
}
