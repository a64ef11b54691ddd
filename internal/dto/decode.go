package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Number is a numeric field that may arrive as a JSON number or as a numeric
// string. Parsing is deferred so callers can decide how absent or malformed
// values are handled.
type Number struct {
	Raw string
	Set bool
}

func Num(raw string) Number { return Number{Raw: raw, Set: true} }

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = Number{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			*n = Number{}
			return nil
		}
	}
	*n = Number{Raw: s, Set: true}
	return nil
}

func (n Number) Float() (float64, error) {
	f, err := strconv.ParseFloat(n.Raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a number", n.Raw)
	}
	return f, nil
}

// Int accepts integral values only; "12" and "12.0" are fine, "12.5" is not.
func (n Number) Int() (int, error) {
	f, err := n.Float()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%q is not an integer", n.Raw)
	}
	return int(f), nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date is a timestamp field. Besides RFC3339 it accepts the formats an HTML
// date or datetime-local input produces; zone-less values are read as UTC.
type Date struct {
	Raw string
	Set bool
}

func DateOf(raw string) Date { return Date{Raw: raw, Set: true} }

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string")
	}
	s = strings.TrimSpace(s)
	*d = Date{Raw: s, Set: s != ""}
	return nil
}

func (d Date) Time() (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, d.Raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a valid date", d.Raw)
}

// Interests holds the incoming interests value. A JSON array replaces the
// stored list; a delimited string is merged into it.
type Interests struct {
	List  []string
	Merge bool
	Set   bool
}

func (in *Interests) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*in = Interests{}
		return nil
	case bytes.HasPrefix(trimmed, []byte(`"`)):
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*in = Interests{List: SplitInterests(s), Merge: true, Set: true}
		return nil
	}
	var list []string
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return fmt.Errorf("intereses must be a list or a comma separated string")
	}
	*in = Interests{List: cleanList(list), Set: true}
	return nil
}

// SplitInterests splits a comma separated string, trims every token and drops
// empty ones.
func SplitInterests(s string) []string {
	return cleanList(strings.Split(s, ","))
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
