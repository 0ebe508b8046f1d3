/*
munch streams text lines through a fixed chain of concurrent stages linked by bounded blocking queues.

The standard pipeline has four stages, each one running in its own goroutine:

- Reader reads lines from an input stream. Lines longer than the maximum length are dropped and logged.
- Munch1 replaces every space with an asterisk.
- Munch2 turns lower case letters into upper case ones.
- Writer writes each line to the output stream, then how many lines it wrote.

Two adjacent stages only share a Queue. A Queue has a fixed capacity: once it is full its producer blocks until the
consumer catches up, so memory stays bounded whatever the size of the input.

The end of the input travels down the chain as an EndOfStream item. Each stage forwards it once, as the last item of its
output queue, then returns. When the Writer receives it, the whole pipeline is done.

Every queue records how many items went through it and how long producers and consumers waited on it. Those statistics
can be rendered once the pipeline has run, and mirrored into Prometheus collectors through Metrics.

Failures are returned as *Error values naming the failing component and operation. The first one cancels the run, so no
stage stays blocked on a queue whose other end is gone.
*/

package munch
