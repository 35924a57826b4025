package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pavanmanishd/blockalloc"
)

// options holds the global flags shared by every subcommand.
type options struct {
	blockSize  int
	blockCount int
	align      int
	mapped     bool
	verbose    bool
	jsonOut    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "balloc",
		Short: "Inspect and exercise a fixed-size block allocator",
		Long: `balloc builds a block allocator from the given geometry and runs
diagnostics against it: pool layout, a sequential allocation trace, and a
concurrent stress run with a counting mutex critical section.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.IntVar(&opts.blockSize, "block-size", blockalloc.DefaultBlockSize, "Bytes per block")
	flags.IntVar(&opts.blockCount, "block-count", blockalloc.DefaultBlockCount, "Number of blocks in the pool")
	flags.IntVar(&opts.align, "align", blockalloc.DefaultAlignment, "Pool alignment (power of two)")
	flags.BoolVar(&opts.mapped, "mapped", false, "Back the pool with an anonymous memory mapping")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")
	flags.BoolVar(&opts.jsonOut, "json", false, "Output in JSON format")

	cmd.AddCommand(newInfoCmd(opts), newTraceCmd(opts), newStressCmd(opts))
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// logger writes text records to stderr; debug records only with --verbose.
func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// config maps the global flags onto an allocator Config.
func (o *options) config(cmd *cobra.Command, section blockalloc.CriticalSection) blockalloc.Config {
	backing := blockalloc.HeapBacking
	if o.mapped {
		backing = blockalloc.MappedBacking
	}
	return blockalloc.Config{
		BlockSize:  o.blockSize,
		BlockCount: o.blockCount,
		Alignment:  o.align,
		Backing:    backing,
		Section:    section,
		Logger:     o.logger(cmd.ErrOrStderr()),
	}
}

func (o *options) newAllocator(cmd *cobra.Command, section blockalloc.CriticalSection) (*blockalloc.Allocator, error) {
	a, err := blockalloc.New(o.config(cmd, section))
	if err != nil {
		return nil, fmt.Errorf("create allocator: %w", err)
	}
	return a, nil
}

// printJSON outputs data as indented JSON
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
