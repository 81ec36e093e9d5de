package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tuff/internal/version"
)

// errUnitsFailed is returned when diagnostics were already printed; main
// only turns it into the exit status.
var errUnitsFailed = errors.New("one or more units failed")

// cli owns per-invocation state: the cleanups registered by the persistent
// pre-run (tracer, profilers) that must run even when a command fails.
type cli struct {
	cleanups []func()
}

func (c *cli) onClose(fn func()) { c.cleanups = append(c.cleanups, fn) }

func (c *cli) close() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.cleanups[i]()
	}
	c.cleanups = nil
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tuffcheck",
		Short: "Refinement and ownership checker for Tuff programs",
		Long: `tuffcheck verifies resolver trees of Tuff programs: interval and refinement
safety proofs first, then the ownership and borrow rules.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	root.AddCommand(checkCmd())
	root.AddCommand(dumpCmd())
	root.AddCommand(cacheCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("timings", false, "show timing information")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept in memory by the ring tracer")
	pf.Duration("trace-heartbeat", 0, "heartbeat interval for long runs (0 disables)")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	c.onClose(cleanup)

	cleanup, err = setupProfiling(cmd)
	if err != nil {
		return err
	}
	c.onClose(cleanup)
	return nil
}

// run executes one invocation; main and the tests share it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	c := &cli{}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	defer c.close()
	defer func() {
		if r := recover(); r != nil {
			dumpTrace(root, "panic")
			panic(r)
		}
	}()

	err = root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errUnitsFailed) {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли writer терминалом
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
