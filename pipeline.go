package munch

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Stage and queue names of the standard pipeline.
const (
	ReaderName = "Reader"
	Munch1Name = "Munch1"
	Munch2Name = "Munch2"
	WriterName = "Writer"
)

// DefaultQueueCapacity is the capacity of each queue between two stages.
const DefaultQueueCapacity = 10

// Config tunes a Pipeline.
type Config struct {
	// QueueCapacity is the capacity of every queue between two stages.
	QueueCapacity int
	// MaxLineLength is the longest accepted line content, terminator excluded.
	MaxLineLength int
	// QueueTimeout bounds each single wait on a queue. Zero waits forever.
	QueueTimeout time.Duration
	// Logger receives diagnostics. Nil discards them.
	Logger *zap.Logger
	// Metrics, when set, mirrors queue statistics and line counters.
	Metrics *Metrics
	// PoolOptions are handed to the ants pool running the stages.
	PoolOptions []ants.Option
}

// DefaultConfig returns the configuration of the standard pipeline.
func DefaultConfig() Config {
	return Config{
		QueueCapacity: DefaultQueueCapacity,
		MaxLineLength: DefaultMaxLineLength,
	}
}

// Validate checks that c can build a pipeline.
func (c Config) Validate() error {
	switch {
	case c.QueueCapacity <= 0:
		return fmt.Errorf("%w: queue capacity must be positive, got %d", ErrInvalidConfig, c.QueueCapacity)
	case c.MaxLineLength <= 0:
		return fmt.Errorf("%w: max line length must be positive, got %d", ErrInvalidConfig, c.MaxLineLength)
	case c.QueueTimeout < 0:
		return fmt.Errorf("%w: queue timeout must not be negative, got %s", ErrInvalidConfig, c.QueueTimeout)
	}
	return nil
}

// Result summarizes a pipeline run.
type Result struct {
	// Written is the number of lines the writer handed to the output.
	Written int
	// Dropped is the number of input lines skipped for being too long.
	Dropped int
}

// Pipeline reads lines, replaces their spaces with asterisks, upper cases them and writes
// them, each step in its own stage linked to the next by a bounded queue:
//
//	in -> Reader -> Munch1 -> Munch2 -> Writer -> out
type Pipeline struct {
	cfg    Config
	log    *zap.Logger
	queues []*Queue[Item]
	reader *Reader
	writer *Writer
	stages []Stage
	ran    atomic.Bool
}

// New wires the queues and stages of a pipeline reading in and writing out. Nothing runs
// until Run is called.
func New(in io.Reader, out io.Writer, cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	queueOpts := []QueueOption{WithTimeout(cfg.QueueTimeout), WithMetrics(cfg.Metrics)}
	stageOpts := []StageOption{WithLogger(cfg.Logger), WithStageMetrics(cfg.Metrics)}

	names := [][2]string{{ReaderName, Munch1Name}, {Munch1Name, Munch2Name}, {Munch2Name, WriterName}}
	queues := make([]*Queue[Item], 0, len(names))
	for _, n := range names {
		q, err := NewQueue[Item](cfg.QueueCapacity, n[0]+"-"+n[1], queueOpts...)
		if err != nil {
			return nil, err
		}
		queues = append(queues, q)
	}

	reader := NewReader(ReaderName, NewLineReader(in, cfg.MaxLineLength), queues[0], stageOpts...)
	writer := NewWriter(WriterName, queues[2], out, stageOpts...)

	return &Pipeline{
		cfg:    cfg,
		log:    cfg.Logger,
		queues: queues,
		reader: reader,
		writer: writer,
		stages: []Stage{
			reader,
			NewTransform(Munch1Name, queues[0], queues[1], ReplaceSpaces, stageOpts...),
			NewTransform(Munch2Name, queues[1], queues[2], ToUpper, stageOpts...),
			writer,
		},
	}, nil
}

// Queues returns the queues in pipeline order.
func (p *Pipeline) Queues() []*Queue[Item] { return p.queues }

// Run starts every stage and waits for all of them to return. A Pipeline runs only once.
//
// The first stage failure cancels the others, and is what Run returns. Result is filled
// even on failure with whatever was processed.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if !p.ran.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyRun
	}

	start := time.Now()
	err := runStages(ctx, p.stages, p.log, p.cfg.PoolOptions...)

	res := Result{Written: p.writer.Count(), Dropped: p.reader.Dropped()}
	p.log.Debug("pipeline finished",
		zap.Int("written", res.Written),
		zap.Int("dropped", res.Dropped),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
	return res, err
}

// RenderStats writes the statistics of every queue, in pipeline order.
func (p *Pipeline) RenderStats(w io.Writer) error {
	var err error
	for _, q := range p.queues {
		err = multierr.Append(err, q.RenderStats(w))
	}
	return err
}

// WriteMetrics writes the Prometheus metrics in text format. It does nothing when the
// pipeline has no metrics.
func (p *Pipeline) WriteMetrics(w io.Writer) error {
	return p.cfg.Metrics.WriteText(w)
}
