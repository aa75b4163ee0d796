// Package collect holds the traversal combinator used by bulk passes:
// keep every present result, silently drop the absent ones.
package collect

// All applies fn to each element and keeps the results reported as present.
// Order follows the input.
func All[T, R any](items []T, fn func(*T) (R, bool)) []R {
	var out []R
	for i := range items {
		if r, ok := fn(&items[i]); ok {
			out = append(out, r)
		}
	}
	return out
}

// Each calls fn for every element and counts how many were accepted.
// It is the side-effecting variant of All for passes that fill several
// indexes at once.
func Each[T any](items []T, fn func(*T) bool) int {
	n := 0
	for i := range items {
		if fn(&items[i]) {
			n++
		}
	}
	return n
}
