package munch

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// workers runs stages on an ants pool, one pooled goroutine per stage, and collects what
// they return. The first failure cancels the run so that the other stages unblock.
type workers struct {
	pool   *ants.Pool
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	errs error
}

// antsLogger routes the pool's own messages to zap.
type antsLogger struct {
	log *zap.SugaredLogger
}

func (l antsLogger) Printf(format string, args ...any) {
	l.log.Warnf(format, args...)
}

// newWorkers builds a pool able to run size stages at once. cancel is called on the first
// stage failure.
func newWorkers(size int, cancel context.CancelFunc, log *zap.Logger, opts ...ants.Option) (*workers, error) {
	if size < 1 {
		size = 1
	}
	opts = append([]ants.Option{ants.WithLogger(antsLogger{log: log.Named("pool").Sugar()})}, opts...)
	pool, err := ants.NewPool(size, opts...)
	if err != nil {
		return nil, newError("Pool", "stages", "Create", err)
	}
	return &workers{pool: pool, cancel: cancel}, nil
}

// Go starts s in its own goroutine. A panicking stage is reported as a failure of that
// stage instead of crashing the process.
func (w *workers) Go(ctx context.Context, s Stage) error {
	w.wg.Add(1)
	err := w.pool.Submit(func() {
		defer w.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				w.fail(newError("Stage", s.Name(), "Run", fmt.Errorf("panic: %v", p)))
			}
		}()
		if err := s.Run(ctx); err != nil {
			w.fail(err)
		}
	})
	if err != nil {
		w.wg.Done()
		return newError("Pool", s.Name(), "Submit", err)
	}
	return nil
}

func (w *workers) fail(err error) {
	w.mu.Lock()
	w.errs = multierr.Append(w.errs, err)
	w.mu.Unlock()
	w.cancel()
}

// Wait blocks until every started stage returned. Errors that merely report the
// cancellation caused by another failure are left out, unless nothing else is left.
func (w *workers) Wait() error {
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	errs := multierr.Errors(w.errs)
	if causes := lo.Reject(errs, func(err error, _ int) bool { return isCancellation(err) }); len(causes) > 0 {
		return multierr.Combine(causes...)
	}
	return multierr.Combine(errs...)
}

// runStages runs every stage on its own pooled goroutine and waits for all of them.
func runStages(ctx context.Context, stages []Stage, log *zap.Logger, opts ...ants.Option) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := newWorkers(len(stages), cancel, log, opts...)
	if err != nil {
		return err
	}
	defer w.Release()

	for _, s := range stages {
		if err := w.Go(ctx, s); err != nil {
			w.fail(err)
			break
		}
	}
	return w.Wait()
}

// Release releases the underlying pool.
func (w *workers) Release() {
	w.pool.Release()
}
