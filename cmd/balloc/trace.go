package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pavanmanishd/blockalloc"
)

type traceResult struct {
	Handles   []int `json:"handles"`
	Exhausted bool  `json:"exhausted"`
	Freed     int   `json:"freed"`
	Reused    int   `json:"reused"`
	SameBlock bool  `json:"same_block"`
	FinalSize int   `json:"final_size"`
}

func newTraceCmd(opts *options) *cobra.Command {
	var reuse int
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Fill the pool, overflow it, then free and reuse one block",
		Long: `The trace command allocates every block in order, shows that one more
allocation fails, frees the block at --reuse (0-based allocation order) and
allocates again, which must return the same block.

Example:
  balloc trace --block-size 64 --block-count 128 --reuse 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, opts, reuse)
		},
	}
	cmd.Flags().IntVar(&reuse, "reuse", 4, "Allocation index to free and reallocate")
	return cmd
}

func runTrace(cmd *cobra.Command, opts *options, reuse int) error {
	a, err := opts.newAllocator(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if reuse < 0 || reuse >= a.Capacity() {
		return fmt.Errorf("--reuse %d outside [0, %d)", reuse, a.Capacity())
	}

	res := traceResult{Handles: make([]int, 0, a.Capacity())}
	for {
		h, ok := a.Allocate()
		if !ok {
			break
		}
		res.Handles = append(res.Handles, h.Offset())
	}
	_, overflow := a.Allocate()
	res.Exhausted = !overflow && len(res.Handles) == a.Capacity()

	freed := blockalloc.Handle(res.Handles[reuse])
	if !a.Deallocate(freed) {
		return fmt.Errorf("deallocate handle %d failed", freed)
	}
	again, ok := a.Allocate()
	if !ok {
		return fmt.Errorf("reallocation after free failed")
	}
	res.Freed = freed.Offset()
	res.Reused = again.Offset()
	res.SameBlock = again == freed
	res.FinalSize = a.Size()

	if opts.jsonOut {
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for i, off := range res.Handles {
			fmt.Fprintf(w, "alloc %4d -> offset %d\n", i, off)
		}
		fmt.Fprintf(w, "alloc %4d -> exhausted=%v\n", len(res.Handles), res.Exhausted)
		fmt.Fprintf(w, "free offset %d, realloc -> offset %d (same=%v)\n", res.Freed, res.Reused, res.SameBlock)
		fmt.Fprintf(w, "size %d of %d\n", res.FinalSize, a.Capacity())
	}

	if !res.Exhausted || !res.SameBlock {
		return fmt.Errorf("trace violated allocation order: exhausted=%v same=%v", res.Exhausted, res.SameBlock)
	}
	return nil
}
