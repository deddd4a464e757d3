package enums

import (
	"fmt"
	"slices"
)

// valueSet is the ordered list of values an enum accepts.
type valueSet[T ~string] []T

func (v valueSet[T]) contains(value T) bool {
	return slices.Contains(v, value)
}

// rank is the 1-based position of value, or 0 when unknown.
func (v valueSet[T]) rank(value T) int {
	return slices.Index(v, value) + 1
}

func (v valueSet[T]) parse(kind, raw string) (T, error) {
	if value := T(raw); v.contains(value) {
		return value, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, raw)
}
