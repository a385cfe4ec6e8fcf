package graph

import (
	"math"
	"strconv"
	"strings"
)

// EmptyValue is the marker spreadsheets use for a deliberately blank cell.
const EmptyValue = "EmptyValue"

// Kind identifies the variant held by a Value
type Kind byte

const (
	KindAbsent Kind = iota
	KindText
	KindNumber
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Value is a cell-derived candidate for one position of a triple.
// The zero Value is Absent.
type Value struct {
	kind  Kind
	text  string
	num   float64
	items []Value
}

// Absent returns the value that stands for missing data
func Absent() Value {
	return Value{}
}

// Text wraps a string
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number wraps a float
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Sequence wraps an ordered list of values
func Sequence(items ...Value) Value {
	return Value{kind: KindSequence, items: items}
}

// Kind returns the variant of v
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent reports whether v carries no usable data.
func (v Value) IsAbsent() bool {
	switch v.kind {
	case KindText:
		return IsSentinel(v.text)
	case KindNumber:
		return math.IsNaN(v.num)
	case KindSequence:
		return len(v.items) == 0
	default:
		return true
	}
}

// String renders the value as cell text. Integral numbers have no
// fractional part, sequences are comma joined.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return strings.TrimSpace(v.text)
	case KindNumber:
		if math.IsNaN(v.num) {
			return ""
		}
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindSequence:
		parts := make([]string, 0, len(v.items))
		for _, item := range v.items {
			if !item.IsAbsent() {
				parts = append(parts, item.String())
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// Items returns the members of a sequence, or v itself for a scalar
func (v Value) Items() []Value {
	switch v.kind {
	case KindSequence:
		return v.items
	case KindAbsent:
		return nil
	default:
		return []Value{v}
	}
}

// Int returns the value as an integer. Text such as "3" or "3.0" is
// accepted; fractional values are not.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.Trunc(v.num) != v.num {
			return 0, false
		}
		return int64(v.num), true
	case KindText:
		s := strings.TrimSpace(v.text)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

// Float returns the value as a float
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, !math.IsNaN(v.num)
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// IsSentinel reports whether s is one of the strings that stand for
// missing data: empty or blank, the EmptyValue marker, or any casing of
// "nan".
func IsSentinel(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == EmptyValue || strings.EqualFold(s, "nan")
}
