package munch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"go.uber.org/zap"
)

// Stage is one concurrently running unit of a pipeline. Run returns once the stage has
// seen, and forwarded when it has an output, the end of its input.
type Stage interface {
	Name() string
	Run(ctx context.Context) error
}

// StageOption configures a stage.
type StageOption func(*stageBase)

// WithLogger makes the stage log through l, named after the stage.
func WithLogger(l *zap.Logger) StageOption {
	return func(b *stageBase) { b.log = l }
}

// WithStageMetrics makes the stage count dropped and written lines in m.
func WithStageMetrics(m *Metrics) StageOption {
	return func(b *stageBase) { b.metrics = m }
}

type stageBase struct {
	name    string
	log     *zap.Logger
	metrics *Metrics
}

func newStageBase(name string, opts []StageOption) stageBase {
	b := stageBase{name: name, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&b)
	}
	b.log = b.log.Named(name)
	return b
}

func (b *stageBase) Name() string { return b.name }

// Reader feeds the lines of an input stream into its output queue.
type Reader struct {
	stageBase
	lines   *LineReader
	out     *Queue[Item]
	dropped atomic.Int64
}

// NewReader creates a reader stage pulling lines from lines.
func NewReader(name string, lines *LineReader, out *Queue[Item], opts ...StageOption) *Reader {
	return &Reader{stageBase: newStageBase(name, opts), lines: lines, out: out}
}

// Dropped returns how many lines were too long and skipped so far.
func (r *Reader) Dropped() int { return int(r.dropped.Load()) }

// readResult is one LineReader.Next call, with the line number it ended on.
type readResult struct {
	LineResult
	lineNo int
	err    error
}

// Run returns as soon as ctx is done, even while the input blocks in Read. The pending
// read is then abandoned and its goroutine exits once the input yields.
func (r *Reader) Run(ctx context.Context) error {
	r.log.Debug("stage started")
	defer r.log.Debug("stage stopped")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	results := make(chan readResult)
	go r.read(ctx, results)

	for {
		var res readResult
		select {
		case <-ctx.Done():
			return newError("Reader", r.name, "Read", ctx.Err())
		case res = <-results:
		}
		if res.err != nil {
			return res.err
		}

		if res.Outcome == Overflow || res.Outcome == EndAfterOverflow {
			r.dropped.Add(1)
			r.metrics.lineDropped()
			r.log.Warn("line exceeds maximum length, dropped",
				zap.Int("line", res.lineNo),
				zap.Int("limit", r.lines.max))
		}
		if res.Outcome.HasLine() {
			if err := r.out.Enqueue(ctx, Data(res.Line)); err != nil {
				return err
			}
		}
		if res.Outcome.Ends() {
			return r.out.Enqueue(ctx, EndOfStream)
		}
	}
}

// read hands lines over one at a time and stops once Run is gone.
func (r *Reader) read(ctx context.Context, results chan<- readResult) {
	for {
		res, err := r.lines.Next()
		select {
		case results <- readResult{LineResult: res, lineNo: r.lines.Lines(), err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil || res.Outcome.Ends() {
			return
		}
	}
}

// Transform applies a Process to every line between two queues.
type Transform struct {
	stageBase
	in, out *Queue[Item]
	proc    Process[string]
}

// NewTransform creates a stage applying proc to each line from in and pushing the result
// to out.
func NewTransform(name string, in, out *Queue[Item], proc Process[string], opts ...StageOption) *Transform {
	return &Transform{stageBase: newStageBase(name, opts), in: in, out: out, proc: proc}
}

func (t *Transform) Run(ctx context.Context) error {
	t.log.Debug("stage started")
	defer t.log.Debug("stage stopped")

	for {
		item, err := t.in.Dequeue(ctx)
		if err != nil {
			return err
		}
		line, ok := item.Line()
		if !ok {
			return t.out.Enqueue(ctx, EndOfStream)
		}
		if err := t.out.Enqueue(ctx, Data(t.proc(line))); err != nil {
			return err
		}
	}
}

// Writer prints every line of its input queue, then how many it printed.
type Writer struct {
	stageBase
	in    *Queue[Item]
	w     *bufio.Writer
	count atomic.Int64
}

// NewWriter creates a stage writing the lines of in to w, one per line.
func NewWriter(name string, in *Queue[Item], w io.Writer, opts ...StageOption) *Writer {
	return &Writer{stageBase: newStageBase(name, opts), in: in, w: bufio.NewWriter(w)}
}

// Count returns how many lines were handed to the output so far. Lines are flushed
// whenever the input queue runs dry, so a failing output may have lost the last ones.
func (w *Writer) Count() int { return int(w.count.Load()) }

func (w *Writer) Run(ctx context.Context) error {
	w.log.Debug("stage started")
	defer w.log.Debug("stage stopped")

	for {
		item, err := w.in.Dequeue(ctx)
		if err != nil {
			return err
		}
		line, ok := item.Line()
		if !ok {
			return w.finish()
		}
		if _, err := w.w.WriteString(line); err != nil {
			return newError("Writer", w.name, "Write", err)
		}
		if err := w.w.WriteByte('\n'); err != nil {
			return newError("Writer", w.name, "Write", err)
		}
		w.count.Add(1)
		w.metrics.lineWritten()

		if w.in.Len() == 0 {
			if err := w.w.Flush(); err != nil {
				return newError("Writer", w.name, "Flush", err)
			}
		}
	}
}

func (w *Writer) finish() error {
	if _, err := fmt.Fprintf(w.w, "Writer processed %d strings!\n", w.Count()); err != nil {
		return newError("Writer", w.name, "Write", err)
	}
	if err := w.w.Flush(); err != nil {
		return newError("Writer", w.name, "Flush", err)
	}
	return nil
}
