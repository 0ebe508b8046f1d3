package munch_test

import (
	"strings"
	"testing"

	"github.com/fogfactory/munch"
	"github.com/maxatome/go-testdeep/td"
)

// identity defines a simple helper function, which just return the input and do nothing
func identity[T any](t T) T {
	return t
}

func TestProcesses(t *testing.T) {
	t.Run("replace_spaces", func(t *testing.T) {
		td.Cmp(t, munch.ReplaceSpaces("ab cd"), "ab*cd")
		td.Cmp(t, munch.ReplaceSpaces("  a  "), "**a**")
		td.Cmp(t, munch.ReplaceSpaces("a\tb"), "a\tb", "only spaces are replaced")
		td.Cmp(t, munch.ReplaceSpaces(""), "")
	})

	t.Run("to_upper", func(t *testing.T) {
		td.Cmp(t, munch.ToUpper("hello World"), "HELLO WORLD")
		td.Cmp(t, munch.ToUpper("a1-z_"), "A1-Z_")
		td.Cmp(t, munch.ToUpper("été"), "éTé", "non ASCII bytes are untouched")
		td.Cmp(t, munch.ToUpper(""), "")
	})

	t.Run("input_untouched", func(t *testing.T) {
		// Arrange
		in := strings.Repeat("a b", 3)

		// Act
		_ = munch.ToUpper(munch.ReplaceSpaces(in))

		// Assert
		td.Cmp(t, in, "a ba ba b")
	})

	t.Run("link_no_process", func(t *testing.T) {
		td.Cmp(t, munch.Link[string]()("ab cd"), "ab cd")
	})

	t.Run("link_in_order", func(t *testing.T) {
		// Arrange
		proc := munch.Link(
			munch.ReplaceSpaces,
			identity[string],
			func(s string) string { return s + " !" }, // added after ReplaceSpaces, so kept
			munch.ToUpper,
		)

		// Act
		out := proc("ab cd")

		// Assert
		td.Cmp(t, out, "AB*CD !")
	})
}
