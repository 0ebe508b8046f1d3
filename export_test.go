package munch

// Cursors returns the read and write cursors of the queue.
func (q *Queue[T]) Cursors() (head, tail uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.head, q.tail
}

// WithLock runs f while holding the queue lock.
func (q *Queue[T]) WithLock(f func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	f()
}

// Stages returns the stages of the pipeline, in order.
func (p *Pipeline) Stages() []Stage {
	return p.stages
}

// RunStages runs stages the way Pipeline.Run does.
var RunStages = runStages
