package repository

import (
	"reflect"
	"time"

	"github.com/mamadbah2/fleetbook/internal/parse"
)

type operator int

const (
	opEq operator = iota
	opNe
	opRange
)

// Condition constrains a single field.
type Condition struct {
	op    operator
	value any
	gte   any
	lte   any
}

// Filter maps field names to the condition each must satisfy. An empty
// filter matches every document.
type Filter map[string]Condition

// Eq matches documents whose field equals v.
func Eq(v any) Condition { return Condition{op: opEq, value: v} }

// Ne matches documents whose field is absent or differs from v.
func Ne(v any) Condition { return Condition{op: opNe, value: v} }

// Between matches documents whose field lies in [from, to]. A nil bound is
// open.
func Between(from, to any) Condition { return Condition{op: opRange, gte: from, lte: to} }

// IsEq reports whether the condition is an equality match.
func (c Condition) IsEq() bool { return c.op == opEq }

// IsNe reports whether the condition is a negated equality match.
func (c Condition) IsNe() bool { return c.op == opNe }

// Value returns the operand of an Eq or Ne condition.
func (c Condition) Value() any { return c.value }

// Bounds returns the lower and upper bound of a range condition.
func (c Condition) Bounds() (gte, lte any) { return c.gte, c.lte }

// Matches evaluates the condition against a field value. present is false
// when the field is missing from the document.
func (c Condition) Matches(v any, present bool) bool {
	switch c.op {
	case opEq:
		return present && equalValues(v, c.value)
	case opNe:
		return !present || !equalValues(v, c.value)
	case opRange:
		if !present {
			return false
		}
		if c.gte != nil {
			cmp, ok := compareValues(v, c.gte)
			if !ok || cmp < 0 {
				return false
			}
		}
		if c.lte != nil {
			cmp, ok := compareValues(v, c.lte)
			if !ok || cmp > 0 {
				return false
			}
		}
		return true
	}
	return false
}

// Match reports whether doc satisfies every condition in f.
func (f Filter) Match(doc Document) bool {
	for field, cond := range f {
		v, present := doc[field]
		if !cond.Matches(v, present) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	a, b = normalizeValue(a), normalizeValue(b)
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if isNumeric(a) && isNumeric(b) {
		return parse.Float(a).Value == parse.Float(b).Value
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders values of the same kind. Values of different kinds
// never compare, mirroring how the document database brackets types.
func compareValues(a, b any) (int, bool) {
	a, b = normalizeValue(a), normalizeValue(b)
	switch ta := a.(type) {
	case time.Time:
		tb, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		switch {
		case ta.Before(tb):
			return -1, true
		case ta.After(tb):
			return 1, true
		}
		return 0, true
	case string:
		tb, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case ta < tb:
			return -1, true
		case ta > tb:
			return 1, true
		}
		return 0, true
	}
	if isNumeric(a) && isNumeric(b) {
		fa, fb := parse.Float(a).Value, parse.Float(b).Value
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64, uint, uint32, uint64:
		return true
	}
	return false
}
