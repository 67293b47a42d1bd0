package mention

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type countState uint8

const (
	countMissing countState = iota
	countValid
	countInvalid
)

// Count is an integer field coerced from heterogeneous source data.
// It distinguishes a missing value from one that was present but could not
// be read as an integer, because aggregations treat the two differently.
type Count struct {
	n     int64
	raw   string
	state countState
}

// CountOf returns a valid count.
func CountOf(n int64) Count {
	return Count{n: n, state: countValid}
}

// InvalidCount records a value that could not be coerced.
func InvalidCount(raw string) Count {
	return Count{raw: raw, state: countInvalid}
}

// ParseCount coerces textual input. Blank text is missing; anything that is
// not a base-10 integer is invalid.
func ParseCount(s string) Count {
	s = strings.TrimSpace(s)
	if s == "" {
		return Count{}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return InvalidCount(s)
	}
	return CountOf(n)
}

// FloatCount coerces a numeric value, truncating toward zero.
// NaN and infinities are invalid.
func FloatCount(f float64) Count {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return InvalidCount(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return CountOf(int64(f))
}

// IsSet reports whether the count holds a valid integer.
func (c Count) IsSet() bool { return c.state == countValid }

// IsMissing reports whether no value was supplied.
func (c Count) IsMissing() bool { return c.state == countMissing }

// Int returns the value with missing treated as zero. ok is false only when
// a value was present but not coercible.
func (c Count) Int() (n int64, ok bool) {
	switch c.state {
	case countValid:
		return c.n, true
	case countMissing:
		return 0, true
	default:
		return 0, false
	}
}

// Or returns the value when valid, otherwise def.
func (c Count) Or(def int64) int64 {
	if c.state == countValid {
		return c.n
	}
	return def
}

func (c Count) marshalRaw() json.RawMessage {
	switch c.state {
	case countValid:
		return json.RawMessage(strconv.FormatInt(c.n, 10))
	case countInvalid:
		b, _ := json.Marshal(c.raw)
		return b
	default:
		return nil
	}
}

func countFromRaw(raw json.RawMessage) Count {
	if len(raw) == 0 {
		return Count{}
	}
	var v any
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return InvalidCount(string(raw))
	}
	switch t := v.(type) {
	case nil:
		return Count{}
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return CountOf(n)
		}
		f, err := t.Float64()
		if err != nil {
			return InvalidCount(t.String())
		}
		return FloatCount(f)
	case string:
		return ParseCount(t)
	case bool:
		if t {
			return CountOf(1)
		}
		return CountOf(0)
	default:
		return InvalidCount(string(raw))
	}
}
