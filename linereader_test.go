package munch_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/fogfactory/munch"
	"github.com/maxatome/go-testdeep/td"
)

// readAll calls Next until the stream ends, and returns every result.
func readAll(t *testing.T, lr *munch.LineReader) []munch.LineResult {
	t.Helper()
	var results []munch.LineResult
	for {
		res, err := lr.Next()
		td.Require(t).CmpNoError(err)
		results = append(results, res)
		if res.Outcome.Ends() {
			return results
		}
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestLineReader(t *testing.T) {
	normal := func(line string) munch.LineResult { return munch.LineResult{Outcome: munch.Normal, Line: line} }

	for _, tc := range []struct {
		name     string
		input    string
		max      int
		expected []munch.LineResult
	}{
		{
			name:     "empty_input",
			input:    "",
			max:      5,
			expected: []munch.LineResult{{Outcome: munch.EndNoData}},
		},
		{
			name:     "single_newline",
			input:    "\n",
			max:      5,
			expected: []munch.LineResult{normal(""), {Outcome: munch.EndNoData}},
		},
		{
			name:     "terminated_lines",
			input:    "ab cd\nef\n",
			max:      5,
			expected: []munch.LineResult{normal("ab cd"), normal("ef"), {Outcome: munch.EndNoData}},
		},
		{
			name:     "end_mid_line",
			input:    "ab\ncd",
			max:      5,
			expected: []munch.LineResult{normal("ab"), {Outcome: munch.EndWithData, Line: "cd"}},
		},
		{
			name:     "exactly_max_length",
			input:    "abcde\nabcde",
			max:      5,
			expected: []munch.LineResult{normal("abcde"), {Outcome: munch.EndWithData, Line: "abcde"}},
		},
		{
			name:     "overflow_then_recover",
			input:    "abcdef\nok\n",
			max:      5,
			expected: []munch.LineResult{{Outcome: munch.Overflow}, normal("ok"), {Outcome: munch.EndNoData}},
		},
		{
			name:     "overflow_much_longer_than_buffer",
			input:    strings.Repeat("x", 20000) + "\nok",
			max:      5,
			expected: []munch.LineResult{{Outcome: munch.Overflow}, {Outcome: munch.EndWithData, Line: "ok"}},
		},
		{
			name:     "overflow_at_end",
			input:    "ok\nabcdef",
			max:      5,
			expected: []munch.LineResult{normal("ok"), {Outcome: munch.EndAfterOverflow}},
		},
		{
			name:     "carriage_return_kept",
			input:    "a b\r\n",
			max:      5,
			expected: []munch.LineResult{normal("a b\r"), {Outcome: munch.EndNoData}},
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			lr := munch.NewLineReader(strings.NewReader(tc.input), tc.max)

			// Act
			results := readAll(t, lr)

			// Assert
			td.Cmp(t, results, tc.expected)
		})
	}

	t.Run("lines_count", func(t *testing.T) {
		// Arrange
		lr := munch.NewLineReader(strings.NewReader("a\nbbbbbbbb\nc"), 3)

		// Act
		_ = readAll(t, lr)

		// Assert
		td.Cmp(t, lr.Lines(), 3)
	})

	t.Run("default_max_length", func(t *testing.T) {
		// Arrange
		fits := strings.Repeat("a", munch.DefaultMaxLineLength)
		lr := munch.NewLineReader(strings.NewReader(fits+"\n"+fits+"a\n"), munch.DefaultMaxLineLength)

		// Act
		results := readAll(t, lr)

		// Assert
		td.Cmp(t, results, []munch.LineResult{normal(fits), {Outcome: munch.Overflow}, {Outcome: munch.EndNoData}})
	})

	t.Run("read_error", func(t *testing.T) {
		// Arrange
		lr := munch.NewLineReader(io.MultiReader(strings.NewReader("ab"), brokenReader{}), 5)

		// Act
		_, err := lr.Next()

		// Assert
		td.CmpError(t, err)
		td.CmpContains(t, err.Error(), "Read failed in LineReader:input: broken pipe")
	})
}

func TestOutcome(t *testing.T) {
	td.CmpTrue(t, munch.Normal.HasLine())
	td.CmpTrue(t, munch.EndWithData.HasLine())
	td.CmpFalse(t, munch.Overflow.HasLine())
	td.CmpFalse(t, munch.EndAfterOverflow.HasLine())
	td.CmpFalse(t, munch.EndNoData.HasLine())

	td.CmpFalse(t, munch.Normal.Ends())
	td.CmpFalse(t, munch.Overflow.Ends())
	td.CmpTrue(t, munch.EndNoData.Ends())
	td.CmpTrue(t, munch.EndWithData.Ends())
	td.CmpTrue(t, munch.EndAfterOverflow.Ends())

	td.Cmp(t, munch.EndAfterOverflow.String(), "EndAfterOverflow")
}
