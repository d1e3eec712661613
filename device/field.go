package device

import "fmt"

// Field is a value that may be absent. The zero Field is absent, which keeps
// a legitimate zero value (e.g. LMP version 0) distinct from "not reported".
type Field[T comparable] struct {
	Value T
	Set   bool
}

func Some[T comparable](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// NonEmpty returns an absent field for the empty string.
func NonEmpty(s string) Field[string] {
	if s == "" {
		return Field[string]{}
	}

	return Some(s)
}

func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set
}

// Differs reports whether f carries a value that cur does not already hold.
// An absent f never differs.
func (f Field[T]) Differs(cur Field[T]) bool {
	return f.Set && (!cur.Set || cur.Value != f.Value)
}

func (f Field[T]) String() string {
	if !f.Set {
		return "-"
	}

	return fmt.Sprint(f.Value)
}
