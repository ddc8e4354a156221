package syncstate

import "fmt"

// Move removes the element at from and inserts it at to, returning a new
// slice. The input is left untouched.
func Move[T any](items []T, from, to int) ([]T, error) {
	n := len(items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("move %d -> %d out of range for %d items", from, to, n)
	}

	out := append(make([]T, 0, n), items...)
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out, nil
}
