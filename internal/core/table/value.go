// Package table defines the cell, row, and schema types shared by the loader,
// the windowed store, and the search engine.
package table

import (
	"errors"
	"math"
	"strconv"
)

// Kind classifies a parsed field.
type Kind uint8

const (
	KindMissing Kind = iota
	KindText
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Value is a single parsed field. Raw always holds the field as it appeared in
// the source.
type Value struct {
	Kind     Kind
	Raw      string
	Num      float64
	Integral bool // number written as an integer literal
}

// Missing returns a missing value with the given source text.
func Missing(raw string) Value { return Value{Kind: KindMissing, Raw: raw} }

// Text returns a text value.
func Text(s string) Value { return Value{Kind: KindText, Raw: s} }

// IsMissing reports whether the field holds no value.
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// Format renders the value for display: missing values are empty, integers
// render in canonical form, fractional numbers carry six decimal places, and
// text renders as written.
func (v Value) Format() string {
	switch v.Kind {
	case KindMissing:
		return ""
	case KindNumber:
		if v.Integral {
			if i, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
				return strconv.FormatInt(i, 10)
			}
			return v.Raw
		}
		switch {
		case math.IsInf(v.Num, 1):
			return "inf"
		case math.IsInf(v.Num, -1):
			return "-inf"
		}
		return strconv.FormatFloat(v.Num, 'f', 6, 64)
	default:
		return v.Raw
	}
}

// Natural is the text form a search predicate matches against. It is the
// field as written, not the display form.
func (v Value) Natural() string {
	if v.Kind == KindMissing {
		return ""
	}
	return v.Raw
}

// NullSet holds the field texts treated as missing.
type NullSet map[string]struct{}

// NewNullSet builds a NullSet from a list of markers.
func NewNullSet(markers []string) NullSet {
	set := make(NullSet, len(markers))
	for _, m := range markers {
		set[m] = struct{}{}
	}
	return set
}

// Contains reports whether s is a null marker.
func (n NullSet) Contains(s string) bool {
	_, ok := n[s]
	return ok
}

// ParseValue types a raw field on a best-effort basis. Null markers become
// missing, integer and float literals become numbers, anything else is text.
// A NaN literal that is not a null marker is still missing.
func ParseValue(field string, nulls NullSet) Value {
	if nulls.Contains(field) {
		return Missing(field)
	}

	if i, err := strconv.ParseInt(field, 10, 64); err == nil {
		return Value{Kind: KindNumber, Raw: field, Num: float64(i), Integral: true}
	}

	// Out-of-range literals still yield ±Inf or 0 and stay numeric.
	f, err := strconv.ParseFloat(field, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Text(field)
	}
	if math.IsNaN(f) {
		return Missing(field)
	}
	return Value{Kind: KindNumber, Raw: field, Num: f}
}
