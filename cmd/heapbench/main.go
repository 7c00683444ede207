// Command heapbench drives a synthetic allocation trace against the
// allocator and reports throughput and space utilization, the two
// headline numbers the allocator is designed around.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"
	"unsafe"

	"github.com/orizon-lang/heapcore/internal/allocator"
	"github.com/orizon-lang/heapcore/internal/allocator/sbrk"
)

func main() {
	var (
		ops          = flag.Int("ops", 200000, "number of allocate/free/resize operations to issue")
		maxLive      = flag.Int("max-live", 4000, "maximum number of simultaneously live allocations")
		maxSize      = flag.Int("max-size", 2048, "maximum payload size in bytes")
		capacity     = flag.Uint64("capacity", 256<<20, "bytes reserved from the heap primitive up front")
		audit        = flag.Bool("audit", false, "run the invariant auditor after every operation (slow)")
		tunablesFile = flag.String("tunables", "", "path to a hot-reloadable JSON tunables file")
		seed         = flag.Int64("seed", 1, "PRNG seed for the synthetic trace")
	)
	flag.Parse()

	provider, err := sbrk.NewStaticProvider(uintptr(*capacity))
	if err != nil {
		log.Fatalf("heapbench: %v", err)
	}

	opts := []allocator.Option{allocator.WithAudit(*audit)}
	if *tunablesFile != "" {
		opts = append(opts, allocator.WithTunablesFile(*tunablesFile))
	}

	heap, err := allocator.New(provider, opts...)
	if err != nil {
		log.Fatalf("heapbench: %v", err)
	}
	defer heap.Close()

	rng := rand.New(rand.NewSource(*seed))
	live := make([]unsafe.Pointer, 0, *maxLive)
	liveBytes := make([]uintptr, 0, *maxLive)

	var requested uintptr

	start := time.Now()

opsLoop:
	for i := 0; i < *ops; i++ {
		switch {
		case len(live) == 0 || (len(live) < *maxLive && rng.Intn(3) != 0):
			n := uintptr(rng.Intn(*maxSize) + 1)

			p := heap.Allocate(n)
			if p == nil {
				break opsLoop
			}

			live = append(live, p)
			liveBytes = append(liveBytes, n)
			requested += n

		case rng.Intn(2) == 0:
			idx := rng.Intn(len(live))
			n := uintptr(rng.Intn(*maxSize) + 1)

			newP := heap.Resize(live[idx], n)
			if newP != nil {
				requested = requested - liveBytes[idx] + n
				live[idx] = newP
				liveBytes[idx] = n
			}

		default:
			idx := rng.Intn(len(live))
			heap.Release(live[idx])
			requested -= liveBytes[idx]
			live[idx] = live[len(live)-1]
			liveBytes[idx] = liveBytes[len(liveBytes)-1]
			live = live[:len(live)-1]
			liveBytes = liveBytes[:len(liveBytes)-1]
		}
	}

	elapsed := time.Since(start)
	stats := heap.Stats()

	opsPerSec := float64(*ops) / elapsed.Seconds()

	var utilization float64
	if stats.HeapBytes > 0 {
		utilization = float64(requested) / float64(stats.HeapBytes) * 100
	}

	fmt.Printf("ops:          %d in %s (%.0f ops/sec)\n", *ops, elapsed, opsPerSec)
	fmt.Printf("allocations:  %d\n", stats.Allocations)
	fmt.Printf("frees:        %d\n", stats.Frees)
	fmt.Printf("resizes:      %d\n", stats.Resizes)
	fmt.Printf("heap bytes:   %d (%d extensions)\n", stats.HeapBytes, stats.HeapExtensions)
	fmt.Printf("live bytes:   %d\n", requested)
	fmt.Printf("utilization:  %.1f%%\n", utilization)

	if err := allocator.CheckABI(">=1.0.0, <2.0.0"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
