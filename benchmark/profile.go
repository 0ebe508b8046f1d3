package benchmark

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/fogfactory/munch"
	"github.com/samber/lo"
)

// Profile generates a CPU profile of the standard pipeline. It will be outputted as munch_{date}_l{lines}_c{capacity}.prof.
//
// - lines Number of synthetic input lines.
// - lineLength Length of each line.
// - capacity Queue capacity between stages.
//
// use pprof to read the file (go install github.com/google/pprof@latest).
func Profile(lines, lineLength, capacity int) {
	// Profile file
	f, err := os.Create(fmt.Sprintf("munch_%s_l%d_c%d.prof",
		strings.ReplaceAll(time.Now().Truncate(time.Second).Format(time.DateTime), " ", "-"),
		lines,
		capacity))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer f.Close()

	// Synthetic input: words of 4 letters separated by spaces
	line := strings.Repeat("abc ", lineLength/4+1)[:lineLength]
	input := strings.Join(lo.Times(lines, func(_ int) string { return line }), "\n")

	cfg := munch.DefaultConfig()
	cfg.QueueCapacity = capacity
	p, err := munch.New(strings.NewReader(input), io.Discard, cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// Start profiling
	func() {
		_ = pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()

		start := time.Now()
		res, err := p.Run(context.Background())
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("(pipeline: %d lines in %s)\n", res.Written, time.Since(start))
	}()

	// Sequential equivalent, without queues
	start := time.Now()
	proc := munch.Link(munch.ReplaceSpaces, munch.ToUpper)
	for i := 0; i < lines; i++ {
		_ = proc(line)
	}
	fmt.Printf("(seq: %s)\n", time.Since(start))

	_ = p.RenderStats(os.Stdout)
	fmt.Printf("profile:%s\n", f.Name())

	// Call pprof on a file
	// pprof -http=:8080 $file
}
