package munch

import (
	"github.com/samber/lo"
)

// Process defines a basic function which update a line and return the updated line.
type Process[T any] func(T) T

// Link merges several Process into one, applied in order.
func Link[T any](procs ...Process[T]) Process[T] {
	return func(t T) T {
		return lo.Reduce(procs, func(val T, proc Process[T], _ int) T { return proc(val) }, t)
	}
}

// ReplaceSpaces turns every ' ' into '*'.
func ReplaceSpaces(line string) string {
	return mapBytes(line, func(c byte) byte {
		if c == ' ' {
			return '*'
		}
		return c
	})
}

// ToUpper turns ASCII lower case letters into upper case ones. Other bytes are untouched.
func ToUpper(line string) string {
	return mapBytes(line, func(c byte) byte {
		if 'a' <= c && c <= 'z' {
			return c - 'a' + 'A'
		}
		return c
	})
}

func mapBytes(line string, f func(byte) byte) string {
	b := []byte(line)
	for i, c := range b {
		b[i] = f(c)
	}
	return string(b)
}
