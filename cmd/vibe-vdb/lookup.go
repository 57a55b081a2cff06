package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-vdb/internal/duckdb"
)

func newLookupCmd() *cobra.Command {
	var (
		dbPath   string
		listRuns bool
	)

	cmd := &cobra.Command{
		Use:   "lookup --db <file> <chrom> <pos>",
		Short: "Look up stored known variants and their nearby discoveries",
		Long: `Query a DuckDB database written by "count --db" for the known variants at a
1-based position and the read-derived variants reported near them.`,
		Example: `  vibe-vdb lookup --db vdb.duckdb 12 25245351
  vibe-vdb lookup --db vdb.duckdb --runs`,
		Args: func(cmd *cobra.Command, args []string) error {
			if listRuns {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return usageError{fmt.Errorf("--db is required")}
			}
			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			store, err := duckdb.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if listRuns {
				return printRuns(cmd.OutOrStdout(), store)
			}

			pos, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || pos < 1 {
				return usageError{fmt.Errorf("invalid position %q", args[1])}
			}
			return printLookup(cmd.OutOrStdout(), store, args[0], pos)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database written by count")
	cmd.Flags().BoolVar(&listRuns, "runs", false, "List stored runs instead")

	return cmd
}

func printLookup(w io.Writer, store *duckdb.Store, chrom string, pos int64) error {
	known, err := store.LookupKnown(chrom, pos)
	if err != nil {
		return err
	}
	if len(known) == 0 {
		fmt.Fprintf(w, "# no known variants at %s:%d\n", chrom, pos)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCHROM\tPOS\tID\tREF\tALT\tTYPE\tSUPPORT\tCOVERAGE")
	for _, k := range known {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\t%d\t%d\n",
			k.RunID, k.Chrom, k.Pos, k.ID, k.Ref, k.Alt, k.Type, k.Support, k.Coverage)

		nearby, err := store.NearbyFor(k.Chrom, k.Pos, k.Ref, k.Alt)
		if err != nil {
			return err
		}
		for _, n := range nearby {
			if n.RunID != k.RunID {
				continue
			}
			fmt.Fprintf(tw, "\t%s\t%d\t.\t%s\t%s\t%s\t%d\t\n",
				n.Chrom, n.Pos, n.Ref, n.Alt, n.Type, n.Support)
		}
	}
	return tw.Flush()
}

func printRuns(w io.Writer, store *duckdb.Store) error {
	runs, err := store.Runs()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tCHROM\tWINDOW\tREFERENCE\tCATALOG\tREADS\tCURRENT")
	for _, r := range runs {
		current := "yes"
		if !r.Reference.Matches() || !r.Catalog.Matches() || !r.Reads.Matches() {
			current = "no"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Chrom, r.Window,
			r.Reference.Path, r.Catalog.Path, r.Reads.Path, current)
	}
	return tw.Flush()
}
