// Package typeinfer implements the per-column sticky finite-state machine
// that narrows a candidate type as values arrive (spec.md §4.4).
package typeinfer

import (
	"strconv"
	"strings"
	"time"

	"dataprofile/domain/profile"
	"dataprofile/domain/values"
)

var dateOnlyFormats = []string{"2006-01-02"}

var dateTimeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FSM is one column's type-inference state machine. Construct it with New,
// which starts it at Empty; the zero value's state is "", not Empty.
type FSM struct {
	state profile.InferredType
	mixed bool // true once a genuinely cross-branch incompatibility is hit; sticky
	noted bool // true once widening crossed a conflict worth a "mixed types" note
}

// New returns an FSM in the Empty state.
func New() *FSM {
	return &FSM{state: profile.TypeEmpty}
}

// State returns the current lattice node.
func (f *FSM) State() profile.InferredType {
	return f.state
}

// HasMixedNote reports whether this column's widening crossed a conflict
// worth surfacing as a "mixed types" note, even when the final state
// settled on String rather than Mixed (spec.md §8 E3: Integer/Numeric
// meeting String is a superset step along the lattice chain, not a
// cross-branch conflict, but it's still worth flagging).
func (f *FSM) HasMixedNote() bool {
	return f.noted
}

// Observe feeds one non-null value and returns the (possibly unchanged)
// resulting state. Null observations are handled by ObserveNull.
func (f *FSM) Observe(v values.RawField) profile.InferredType {
	if f.mixed {
		return profile.TypeMixed
	}

	kind := classify(v)
	f.widen(kind)
	return f.state
}

// ObserveNull transitions Empty to Null on first sighting; otherwise the
// state is unaffected (nulls never widen a decided column).
func (f *FSM) ObserveNull() profile.InferredType {
	if f.state == profile.TypeEmpty {
		f.state = profile.TypeNull
	}
	return f.state
}

// classify determines the most specific type a single raw value parses as,
// trying Boolean -> Integer -> Numeric -> Date -> DateTime -> String in the
// fixed order spec.md §4.4 mandates.
func classify(v values.RawField) profile.InferredType {
	switch v.Kind() {
	case values.KindBool:
		return profile.TypeBoolean
	case values.KindInt64:
		return profile.TypeInteger
	case values.KindFloat64:
		return profile.TypeNumeric
	}

	s, ok := v.StringValue()
	if !ok {
		return profile.TypeMixed
	}
	return classifyString(s)
}

func classifyString(s string) profile.InferredType {
	if _, ok := parseBool(s); ok {
		return profile.TypeBoolean
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return profile.TypeInteger
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return profile.TypeNumeric
	}
	for _, layout := range dateOnlyFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return profile.TypeDate
		}
	}
	for _, layout := range dateTimeFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return profile.TypeDateTime
		}
	}
	return profile.TypeString
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// widen applies the lattice's least-upper-bound rule for one observed kind
// against the FSM's current state.
func (f *FSM) widen(observed profile.InferredType) {
	switch f.state {
	case profile.TypeEmpty, profile.TypeNull:
		f.state = observed
		return
	case observed:
		return
	}

	switch {
	case f.state == profile.TypeInteger && observed == profile.TypeNumeric:
		f.state = profile.TypeNumeric
	case f.state == profile.TypeNumeric && observed == profile.TypeInteger:
		// Numeric is already a superset of Integer.
	case f.state == profile.TypeDate && observed == profile.TypeDateTime:
		f.state = profile.TypeDateTime
	case f.state == profile.TypeDateTime && observed == profile.TypeDate:
		// DateTime is already a superset of Date.
	case isNumericLike(f.state) && isNumericLike(observed):
		f.state = profile.TypeNumeric
	case isNumericLike(f.state) && observed == profile.TypeString:
		// Integer/Numeric -> String is a superset step along the lattice
		// chain (spec.md §4.4: Integer -> Numeric -> String -> Mixed), not
		// a cross-branch conflict, but still worth flagging (spec.md §8 E3).
		f.state = profile.TypeString
		f.noted = true
	case f.state == profile.TypeString && isNumericLike(observed):
		// String is already a superset of Integer/Numeric.
		f.noted = true
	default:
		f.state = profile.TypeMixed
		f.mixed = true
		f.noted = true
	}
}

func isNumericLike(t profile.InferredType) bool {
	return t == profile.TypeInteger || t == profile.TypeNumeric
}
