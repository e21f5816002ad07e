// Package features turns an ordered submission sequence into the feature
// columns used for abandonment prediction. Every extractor is stateful
// and consumes submissions strictly in log order.
package features

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueKind discriminates the payload of a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindNumber
	KindBool
	KindString
)

// Value is one cell of a feature column. Null marks a cell the extractor
// could not compute; it survives all the way into the output as a
// missing value, never as a zero.
type Value struct {
	kind ValueKind
	num  float64
	b    bool
	str  string
}

// Null returns the missing value.
func Null() Value { return Value{} }

// Number wraps a float.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String wraps a label string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Kind reports the payload kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the cell is missing.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric payload; ok is false for every other kind.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Format renders the cell for data output. Missing cells render as "?",
// booleans as True/False, numbers in their shortest exact form.
func (v Value) Format() string {
	switch v.kind {
	case KindNull:
		return "?"
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	default:
		return v.str
	}
}

// MarshalJSON keeps nulls as JSON null so columns survive a round trip
// through activity payloads.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.str)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Null()
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*v = Number(num)
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = Bool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = String(s)
		return nil
	}
	return fmt.Errorf("cannot decode feature value %s", data)
}

func mean(data []float64) float64 {
	sum := 0.0
	for _, d := range data {
		sum += d
	}
	return sum / float64(len(data))
}

// sampleStdev is the n-1 standard deviation; callers guarantee at least
// two samples.
func sampleStdev(data []float64) float64 {
	m := mean(data)
	sum := 0.0
	for _, d := range data {
		diff := d - m
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(data)-1))
}
