package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type poolInfo struct {
	BlockSize   int    `json:"block_size"`
	BlockCount  int    `json:"block_count"`
	Alignment   int    `json:"alignment"`
	PoolBytes   int    `json:"pool_bytes"`
	BitmapBytes int    `json:"bitmap_bytes"`
	Backing     string `json:"backing"`
}

func newInfoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show pool geometry",
		Long: `The info command builds the allocator and prints its layout:
block size, block count, alignment, pool and bitmap sizes.

Example:
  balloc info
  balloc info --block-size 32 --block-count 1000 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, opts)
		},
	}
}

func runInfo(cmd *cobra.Command, opts *options) error {
	a, err := opts.newAllocator(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	info := poolInfo{
		BlockSize:   a.BlockSize(),
		BlockCount:  a.Capacity(),
		Alignment:   a.Alignment(),
		PoolBytes:   a.PoolBytes(),
		BitmapBytes: a.BitmapBytes(),
		Backing:     a.Backing().String(),
	}
	if opts.jsonOut {
		return printJSON(cmd.OutOrStdout(), info)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Block size:   %d bytes\n", info.BlockSize)
	fmt.Fprintf(w, "Block count:  %d\n", info.BlockCount)
	fmt.Fprintf(w, "Alignment:    %d\n", info.Alignment)
	fmt.Fprintf(w, "Pool size:    %d bytes\n", info.PoolBytes)
	fmt.Fprintf(w, "Bitmap size:  %d bytes\n", info.BitmapBytes)
	fmt.Fprintf(w, "Backing:      %s\n", info.Backing)
	return nil
}
