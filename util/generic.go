// util/generic.go
// Copyright(c) 2026 modeling-simulation contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"golang.org/x/exp/constraints"
)

func Select[T any](sel bool, a, b T) T {
	if sel {
		return a
	} else {
		return b
	}
}

// MapSlice returns the slice that is the result of applying the provided
// xform function to all of the elements of the given slice.
func MapSlice[F, T any](from []F, xform func(F) T) []T {
	to := make([]T, len(from))
	for i := range from {
		to[i] = xform(from[i])
	}
	return to
}

// FilterSlice applies the given filter function pred to the given slice,
// returning a new slice that only contains elements where pred returned true.
func FilterSlice[V any](s []V, pred func(V) bool) []V {
	var filtered []V
	for i := range s {
		if pred(s[i]) {
			filtered = append(filtered, s[i])
		}
	}
	return filtered
}

// SumSlice returns the sum of the elements of the given slice.
func SumSlice[T constraints.Integer](s []T) T {
	var sum T
	for _, v := range s {
		sum += v
	}
	return sum
}

// MinOver returns the minimum value of f evaluated over the integers
// [0,n); n must be positive.
func MinOver[T constraints.Ordered](n int, f func(int) T) T {
	m := f(0)
	for i := 1; i < n; i++ {
		if v := f(i); v < m {
			m = v
		}
	}
	return m
}
