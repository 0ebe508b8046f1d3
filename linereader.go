package munch

import (
	"bufio"
	"errors"
	"io"
)

// DefaultMaxLineLength is the longest line content, terminator excluded, that a
// LineReader accepts.
const DefaultMaxLineLength = 50959

// Outcome classifies the result of LineReader.Next.
type Outcome int

const (
	// Normal: a complete line was read.
	Normal Outcome = iota
	// EndNoData: the stream ended with nothing pending.
	EndNoData
	// EndWithData: the stream ended in the middle of a line, which is returned.
	EndWithData
	// Overflow: a line was too long and has been skipped up to its terminator.
	Overflow
	// EndAfterOverflow: the stream ended while skipping a line that was too long.
	EndAfterOverflow
)

func (o Outcome) String() string {
	switch o {
	case Normal:
		return "Normal"
	case EndNoData:
		return "EndNoData"
	case EndWithData:
		return "EndWithData"
	case Overflow:
		return "Overflow"
	case EndAfterOverflow:
		return "EndAfterOverflow"
	default:
		return "Outcome(?)"
	}
}

// HasLine reports whether the outcome carries a line to emit.
func (o Outcome) HasLine() bool {
	return o == Normal || o == EndWithData
}

// Ends reports whether the stream is exhausted after this outcome.
func (o Outcome) Ends() bool {
	return o == EndNoData || o == EndWithData || o == EndAfterOverflow
}

// LineResult is what a single call to LineReader.Next produced.
type LineResult struct {
	Outcome Outcome
	Line    string
}

// LineReader splits a byte stream into '\n' terminated lines of bounded length.
type LineReader struct {
	r     *bufio.Reader
	max   int
	buf   []byte
	lines int
}

// NewLineReader reads lines from r. Lines whose content is longer than maxLen bytes are
// reported as Overflow and never returned.
func NewLineReader(r io.Reader, maxLen int) *LineReader {
	return &LineReader{r: bufio.NewReader(r), max: maxLen}
}

// Lines returns how many lines, overflowed ones included, have been consumed so far.
func (lr *LineReader) Lines() int { return lr.lines }

// Next consumes the next line and strips its terminator. A read error other than io.EOF
// is returned wrapped in an *Error and leaves the reader unusable.
func (lr *LineReader) Next() (LineResult, error) {
	lr.buf = lr.buf[:0]
	for {
		c, err := lr.r.ReadByte()
		switch {
		case errors.Is(err, io.EOF):
			if len(lr.buf) == 0 {
				return LineResult{Outcome: EndNoData}, nil
			}
			lr.lines++
			return LineResult{Outcome: EndWithData, Line: string(lr.buf)}, nil
		case err != nil:
			return LineResult{}, newError("LineReader", "input", "Read", err)
		case c == '\n':
			lr.lines++
			return LineResult{Outcome: Normal, Line: string(lr.buf)}, nil
		case len(lr.buf) == lr.max:
			lr.lines++
			return lr.discard()
		}
		lr.buf = append(lr.buf, c)
	}
}

// discard drops everything up to and including the next terminator.
func (lr *LineReader) discard() (LineResult, error) {
	for {
		_, err := lr.r.ReadSlice('\n')
		switch {
		case err == nil:
			return LineResult{Outcome: Overflow}, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			return LineResult{Outcome: EndAfterOverflow}, nil
		default:
			return LineResult{}, newError("LineReader", "input", "Read", err)
		}
	}
}
