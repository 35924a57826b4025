package main

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavanmanishd/blockalloc"
)

// countingSection guards the allocator with a mutex and counts hook calls.
type countingSection struct {
	mu     sync.Mutex
	enters atomic.Int64
	exits  atomic.Int64
}

func (s *countingSection) Enter(*blockalloc.Allocator) {
	s.enters.Add(1)
	s.mu.Lock()
}

func (s *countingSection) Exit(*blockalloc.Allocator) {
	s.exits.Add(1)
	s.mu.Unlock()
}

type stressReport struct {
	Workers         int           `json:"workers"`
	OpsPerWorker    int           `json:"ops_per_worker"`
	Allocations     int64         `json:"allocations"`
	Exhausted       int64         `json:"exhausted"`
	PeakInUse       int64         `json:"peak_in_use"`
	AlignmentErrors int64         `json:"alignment_errors"`
	FailedFrees     int64         `json:"failed_frees"`
	Enters          int64         `json:"enters"`
	Exits           int64         `json:"exits"`
	FinalSize       int           `json:"final_size"`
	Elapsed         time.Duration `json:"elapsed_ns"`
}

func (r stressReport) check() error {
	switch {
	case r.Enters != r.Exits:
		return fmt.Errorf("unbalanced critical section: %d enters, %d exits", r.Enters, r.Exits)
	case r.FinalSize != 0:
		return fmt.Errorf("%d blocks still allocated after drain", r.FinalSize)
	case r.AlignmentErrors != 0:
		return fmt.Errorf("%d misaligned blocks", r.AlignmentErrors)
	case r.FailedFrees != 0:
		return fmt.Errorf("%d deallocations failed", r.FailedFrees)
	}
	return nil
}

func newStressCmd(opts *options) *cobra.Command {
	var workers, ops int
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run concurrent allocate/deallocate workers against one pool",
		Long: `The stress command starts --workers goroutines that each perform --ops
allocations against a shared pool guarded by a mutex critical section. Half
of the blocks are freed immediately, the rest are kept and drained at the end.
The run fails if enter/exit hook counts differ, any block is misaligned, any
deallocation fails, or the pool is not empty after draining.

Example:
  balloc stress --workers 8 --ops 1000
  balloc stress --block-count 16 --mapped --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers <= 0 || ops <= 0 {
				return fmt.Errorf("--workers and --ops must be positive")
			}
			report, err := runStress(cmd, opts, workers, ops)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printStress(cmd, report)
			}
			return report.check()
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent goroutines")
	cmd.Flags().IntVar(&ops, "ops", 1000, "Allocations per goroutine")
	return cmd
}

func runStress(cmd *cobra.Command, opts *options, workers, ops int) (stressReport, error) {
	cs := &countingSection{}
	a, err := opts.newAllocator(cmd, cs)
	if err != nil {
		return stressReport{}, err
	}
	defer a.Close()

	report := stressReport{Workers: workers, OpsPerWorker: ops}
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		kept []blockalloc.Handle
	)
	align := uintptr(a.Alignment())
	start := time.Now()

	for w := range workers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range ops {
				h, ok := a.Allocate()
				if !ok {
					atomic.AddInt64(&report.Exhausted, 1)
					continue
				}
				atomic.AddInt64(&report.Allocations, 1)
				if uintptr(a.Pointer(h))%align != 0 {
					atomic.AddInt64(&report.AlignmentErrors, 1)
				}
				raisePeak(&report.PeakInUse, int64(a.Size()))
				runtime.Gosched()

				if (id+j)%2 == 0 {
					if !a.Deallocate(h) {
						atomic.AddInt64(&report.FailedFrees, 1)
					}
					continue
				}
				mu.Lock()
				kept = append(kept, h)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	for _, h := range kept {
		if !a.Deallocate(h) {
			report.FailedFrees++
		}
	}
	report.Elapsed = time.Since(start)
	report.FinalSize = a.Size()
	report.Enters = cs.enters.Load()
	report.Exits = cs.exits.Load()
	return report, nil
}

func raisePeak(peak *int64, n int64) {
	for {
		cur := atomic.LoadInt64(peak)
		if n <= cur || atomic.CompareAndSwapInt64(peak, cur, n) {
			return
		}
	}
}

func printStress(cmd *cobra.Command, r stressReport) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Workers:          %d x %d ops\n", r.Workers, r.OpsPerWorker)
	fmt.Fprintf(w, "Allocations:      %d\n", r.Allocations)
	fmt.Fprintf(w, "Exhausted:        %d\n", r.Exhausted)
	fmt.Fprintf(w, "Peak in use:      %d\n", r.PeakInUse)
	fmt.Fprintf(w, "Enter/exit hooks: %d/%d\n", r.Enters, r.Exits)
	fmt.Fprintf(w, "Final size:       %d\n", r.FinalSize)
	fmt.Fprintf(w, "Elapsed:          %s\n", r.Elapsed)
}
