package main

import (
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"tuff/internal/diag"
	"tuff/internal/diagfmt"
	"tuff/internal/driver"
)

func dumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <unit.json>",
		Short: "Print the decoded tree of a unit",
		Args:  cobra.ExactArgs(1),
		RunE:  runDump,
	}
	cmd.Flags().Bool("raw", false, "also dump the declaration tables")
	return cmd
}

func runDump(cmd *cobra.Command, args []string) error {
	raw, err := cmd.Flags().GetBool("raw")
	if err != nil {
		return fmt.Errorf("failed to get raw flag: %w", err)
	}

	dec, err := driver.DecodeUnit(args[0])
	var d *diag.Diagnostic
	if errors.As(err, &d) {
		bag := diag.NewBag(1)
		bag.Add(d)
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, dec.FileSet, diagfmt.PrettyOpts{PathMode: diagfmt.PathModeRelative})
		return errUnitsFailed
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := diagfmt.FormatTree(out, dec.Builder, dec.File, dec.FileSet); err != nil {
		return err
	}
	if raw {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		fmt.Fprintln(out)
		cfg.Fdump(out, dec.Tables)
	}
	return nil
}
