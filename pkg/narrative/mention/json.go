package mention

import (
	"encoding/json"
	"strings"
)

// wireMention is the JSON shape shared with retrieval datasets and reports.
type wireMention struct {
	Text            string          `json:"text"`
	Source          string          `json:"source,omitempty"`
	Date            json.RawMessage `json:"date,omitempty"`
	Link            string          `json:"link,omitempty"`
	Authority       json.RawMessage `json:"authority,omitempty"`
	Reach           json.RawMessage `json:"reach,omitempty"`
	Likes           json.RawMessage `json:"likes,omitempty"`
	Comments        json.RawMessage `json:"comments,omitempty"`
	Sentiment       *string         `json:"sentiment,omitempty"`
	Theme           *string         `json:"theme,omitempty"`
	MentionedBrands json.RawMessage `json:"mentioned_brands,omitempty"`
}

// MarshalJSON emits present fields only.
func (m Mention) MarshalJSON() ([]byte, error) {
	w := wireMention{
		Text:      m.Text,
		Source:    m.Source,
		Date:      m.Date.marshalRaw(),
		Link:      m.Link,
		Authority: m.Authority.marshalRaw(),
		Reach:     m.Reach.marshalRaw(),
		Likes:     m.Likes.marshalRaw(),
		Comments:  m.Comments.marshalRaw(),
	}
	if s, ok := m.SentimentLabel(); ok {
		v := string(s)
		w.Sentiment = &v
	}
	if t, ok := m.ThemeLabel(); ok {
		v := string(t)
		w.Theme = &v
	}
	if brands, ok := m.Brands(); ok {
		if brands == nil {
			brands = []string{}
		}
		b, err := json.Marshal(brands)
		if err != nil {
			return nil, err
		}
		w.MentionedBrands = b
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a loosely-typed record. Malformed individual fields
// degrade to absent or invalid values instead of failing the whole record.
func (m *Mention) UnmarshalJSON(data []byte) error {
	var w wireMention
	if err := json.Unmarshal(data, &w); err != nil {
		var loose map[string]json.RawMessage
		if lerr := json.Unmarshal(data, &loose); lerr != nil {
			return err
		}
		w = wireFromLoose(loose)
	}

	*m = Mention{
		Text:      w.Text,
		Source:    w.Source,
		Date:      dateFromRaw(w.Date),
		Link:      w.Link,
		Authority: countFromRaw(w.Authority),
		Reach:     countFromRaw(w.Reach),
		Likes:     countFromRaw(w.Likes),
		Comments:  countFromRaw(w.Comments),
	}
	if w.Sentiment != nil && strings.TrimSpace(*w.Sentiment) != "" {
		m.Sentiment = Some(Sentiment(*w.Sentiment))
	}
	if w.Theme != nil && strings.TrimSpace(*w.Theme) != "" {
		m.Theme = Some(Theme(*w.Theme))
	}
	if brands, ok := brandsFromRaw(w.MentionedBrands); ok {
		m.MentionedBrands = Some(brands)
	}
	return nil
}

// wireFromLoose recovers what it can when string fields carry other JSON
// types (e.g. a numeric text or a null source).
func wireFromLoose(loose map[string]json.RawMessage) wireMention {
	str := func(key string) string {
		var s string
		if err := json.Unmarshal(loose[key], &s); err == nil {
			return s
		}
		return ""
	}
	optStr := func(key string) *string {
		var s string
		if err := json.Unmarshal(loose[key], &s); err == nil {
			return &s
		}
		return nil
	}
	return wireMention{
		Text:            str("text"),
		Source:          str("source"),
		Date:            loose["date"],
		Link:            str("link"),
		Authority:       loose["authority"],
		Reach:           loose["reach"],
		Likes:           loose["likes"],
		Comments:        loose["comments"],
		Sentiment:       optStr("sentiment"),
		Theme:           optStr("theme"),
		MentionedBrands: loose["mentioned_brands"],
	}
}

func brandsFromRaw(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return nil, false
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, true
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}
