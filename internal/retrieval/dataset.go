package retrieval

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cognicore/narrative/internal/logging"
	"github.com/cognicore/narrative/pkg/narrative/internalerr"
	"github.com/cognicore/narrative/pkg/narrative/mention"
)

// LoadJSONL loads mentions from a JSONL file, one record per line.
func LoadJSONL(path string, logger *log.Logger) ([]*mention.Mention, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ms, err := ReadJSONL(f, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ms, nil
}

// ReadJSONL reads JSONL mentions. Malformed lines are skipped with a
// warning; finding no valid line at all is an error.
func ReadJSONL(r io.Reader, logger *log.Logger) ([]*mention.Mention, error) {
	logger = logging.OrDefault(logger)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)

	var out []*mention.Mention
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var m mention.Mention
		if err := json.Unmarshal([]byte(text), &m); err != nil {
			logger.Warn("skipping malformed line", "line", line, "err", err)
			continue
		}
		out = append(out, &m)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no valid mentions: %w", internalerr.ErrNoData)
	}
	return out, nil
}

// WriteJSONL writes one JSON record per mention.
func WriteJSONL(w io.Writer, ms []*mention.Mention) error {
	enc := json.NewEncoder(w)
	for _, m := range ms {
		if m == nil {
			continue
		}
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("write jsonl: %w", err)
		}
	}
	return nil
}

// LoadCSV loads the static fallback dataset.
func LoadCSV(path string) ([]*mention.Mention, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ms, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ms, nil
}

// ReadCSV reads mentions from CSV with a header row. Recognized columns are
// text, source, date, link, authority, reach, likes, comments, sentiment,
// theme and mentioned_brands (names separated by ";"). Other columns are
// ignored. Blank cells leave the field absent.
func ReadCSV(r io.Reader) ([]*mention.Mention, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty csv: %w", internalerr.ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols["text"]; !ok {
		return nil, fmt.Errorf("csv has no text column: %w", internalerr.ErrInvalidInput)
	}

	var out []*mention.Mention
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		out = append(out, fromRecord(rec, cols))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no rows: %w", internalerr.ErrNoData)
	}
	return out, nil
}

func fromRecord(rec []string, cols map[string]int) *mention.Mention {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	m := &mention.Mention{
		Text:      cell("text"),
		Source:    cell("source"),
		Link:      cell("link"),
		Authority: mention.ParseCount(cell("authority")),
		Reach:     mention.ParseCount(cell("reach")),
		Likes:     mention.ParseCount(cell("likes")),
		Comments:  mention.ParseCount(cell("comments")),
	}
	if d := cell("date"); d != "" {
		m.Date = mention.DateString(d)
	}
	if s := cell("sentiment"); s != "" {
		m.Sentiment = mention.Some(mention.Sentiment(s))
	}
	if t := cell("theme"); t != "" {
		m.Theme = mention.Some(mention.Theme(t))
	}
	if b := cell("mentioned_brands"); b != "" {
		var names []string
		for _, n := range strings.Split(b, ";") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		m.MentionedBrands = mention.Some(names)
	}
	return m
}
