// Package jsonstream implements the streaming, event-driven parser that
// turns a page file's records array into one in-memory record tree at a
// time, without ever holding more than one record in memory.
package jsonstream

import (
	"sort"
	"strconv"
)

// Kind identifies the JSON type carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Member is one key/value pair of a JSON object, kept in a slice rather
// than a map so callers control iteration and reordering.
type Member struct {
	Key   string
	Value Value
}

// Value is a parsed JSON value. Number literals are kept as their
// original source text (Num) so integer-valued numbers don't round-trip
// through float64 and lose precision, and so reserialization can echo
// the canonical numeric form back verbatim.
type Value struct {
	Kind Kind
	Bool bool
	Num  string
	Str  string
	Arr  []Value
	Obj  []Member
}

// Get returns the member value for key and whether it was present.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.Obj {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// IsNull reports whether v is the JSON null value.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Canonical returns a copy of v with object members reordered so that a
// member named "id" sorts first and all others sort lexicographically by
// key. Nested objects/arrays are left in their original member order;
// only the top-level shape matters for the "data" column's stability
// (spec's canonical record form applies to the record's own members).
func (v Value) Canonical() Value {
	if v.Kind != KindObject {
		return v
	}
	ordered := make([]Member, len(v.Obj))
	copy(ordered, v.Obj)
	sort.SliceStable(ordered, func(i, j int) bool {
		ki, kj := ordered[i].Key, ordered[j].Key
		if ki == kj {
			return false
		}
		if ki == "id" {
			return true
		}
		if kj == "id" {
			return false
		}
		return ki < kj
	})
	return Value{Kind: KindObject, Obj: ordered}
}

// IntegerValue reports whether Num parses as a 64-bit integer literal
// (no fractional part, no exponent, within int64 range).
func (v Value) IntegerValue() (int64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	n, err := strconv.ParseInt(v.Num, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float64Value parses Num as a float64, regardless of whether it was
// integer- or floating-valued in the source.
func (v Value) Float64Value() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.Num, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
