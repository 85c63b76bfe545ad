package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// now is swapped in tests that need a fixed "today" for repaired dates.
var now = time.Now

// newID is swapped in tests that need deterministic generated ids.
var newID = uuid.NewString

// object is a decoded JSON object whose values are still raw.
type object map[string]json.RawMessage

// kind returns the first significant byte of a JSON value: '{', '[', '"', 'n', 't', 'f' or a digit/'-'.
func kind(raw []byte) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func parseObject(data []byte) (object, error) {
	if kind(data) != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}
	var o object
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	return o, nil
}

func parseArray(data []byte) ([]json.RawMessage, error) {
	if kind(data) != '[' {
		return nil, fmt.Errorf("expected a JSON array")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// coercer applies field-level repairs and records every one of them.
type coercer struct {
	notes []string
}

func (c *coercer) notef(format string, args ...interface{}) {
	c.notes = append(c.notes, fmt.Sprintf(format, args...))
}

// array returns the elements of an array-valued field. Absent or non-array values become empty.
func (c *coercer) array(o object, field, path string) []json.RawMessage {
	raw, ok := o[field]
	if !ok {
		c.notef("%s%s: missing, defaulted to []", path, field)
		return nil
	}
	items, err := parseArray(raw)
	if err != nil {
		c.notef("%s%s: not an array, defaulted to []", path, field)
		return nil
	}
	return items
}

// decimal accepts JSON numbers and numeric strings. Anything else becomes zero.
func (c *coercer) decimal(o object, field, path string) decimal.Decimal {
	raw, ok := o[field]
	if !ok || kind(raw) == 'n' {
		return decimal.Zero
	}
	d, err := parseDecimal(raw)
	if err != nil {
		c.notef("%s%s: %s is not a number, defaulted to 0", path, field, truncate(raw))
		return decimal.Zero
	}
	return d
}

func parseDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	s := string(bytes.TrimSpace(raw))
	if kind(raw) == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, err
		}
		s = strings.TrimSpace(s)
	}
	return decimal.NewFromString(s)
}

func (c *coercer) str(o object, field, path string) string {
	raw, ok := o[field]
	if !ok || kind(raw) == 'n' {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		if d, derr := parseDecimal(raw); derr == nil {
			c.notef("%s%s: number converted to string", path, field)
			return d.String()
		}
		c.notef("%s%s: not a string, defaulted to empty", path, field)
		return ""
	}
	return s
}

func (c *coercer) integer(o object, field, path string) int {
	raw, ok := o[field]
	if !ok || kind(raw) == 'n' {
		return 0
	}
	d, err := parseDecimal(raw)
	if err != nil {
		c.notef("%s%s: %s is not a number, defaulted to 0", path, field, truncate(raw))
		return 0
	}
	if !d.IsInteger() {
		c.notef("%s%s: %s truncated to an integer", path, field, d.String())
	}
	f, _ := d.Truncate(0).Float64()
	if f > math.MaxInt32 || f < math.MinInt32 {
		c.notef("%s%s: out of range, defaulted to 0", path, field)
		return 0
	}
	return int(f)
}

func (c *coercer) boolean(o object, field string) bool {
	raw, ok := o[field]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}

// day accepts YYYY-MM-DD or an RFC3339 timestamp. ok is false when absent or unparseable.
func (c *coercer) day(o object, field, path string) (civil.Date, bool) {
	raw, ok := o[field]
	if !ok || kind(raw) == 'n' {
		return civil.Date{}, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		c.notef("%s%s: not a date string", path, field)
		return civil.Date{}, false
	}
	d, err := ParseDay(s)
	if err != nil {
		c.notef("%s%s: %q is not a date", path, field, s)
		return civil.Date{}, false
	}
	return d, true
}

// dayOrToday is day with a fallback to the current date.
func (c *coercer) dayOrToday(o object, field, path string) civil.Date {
	if d, ok := c.day(o, field, path); ok {
		return d
	}
	c.notef("%s%s: defaulted to today", path, field)
	return civil.DateOf(now())
}

// id returns the entity id, generating one when missing so deletion by id keeps working.
func (c *coercer) id(o object, path string) string {
	raw, ok := o["id"]
	if ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		// Older records used numeric ids.
		if d, err := parseDecimal(raw); err == nil {
			return d.String()
		}
	}
	id := newID()
	c.notef("%sid: missing, generated %s", path, id)
	return id
}

// ParseDay parses a calendar day from YYYY-MM-DD or an RFC3339 timestamp.
func ParseDay(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return civil.DateOf(t), nil
	}
	if len(s) > 10 {
		if d, err := civil.ParseDate(s[:10]); err == nil {
			return d, nil
		}
	}
	return civil.Date{}, fmt.Errorf("ParseDay: %q is not a calendar day", s)
}

func truncate(raw json.RawMessage) string {
	s := string(raw)
	if len(s) > 32 {
		return s[:32] + "…"
	}
	return s
}
