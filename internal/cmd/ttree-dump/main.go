// Binary ttree-dump prints branches and evaluates formulas of tree
// described by manifest.
package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/go-faster/ttree"
	"github.com/go-faster/ttree/internal/cmd/app"
	"github.com/go-faster/ttree/internal/manifest"
	"github.com/go-faster/ttree/internal/version"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger) error {
		return newRoot(lg).ExecuteContext(ctx)
	})
}

type loader struct {
	manifest string
	lg       *zap.Logger
}

func (l loader) source(ctx context.Context) (*ttree.MemorySource, error) {
	m, err := manifest.Open(l.manifest)
	if err != nil {
		return nil, errors.Wrap(err, "manifest")
	}
	src, err := m.Source(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "source")
	}
	return src, nil
}

func (l loader) tree(ctx context.Context, jobs int) (*ttree.Tree, error) {
	src, err := l.source(ctx)
	if err != nil {
		return nil, err
	}
	return ttree.New(src, ttree.Options{Logger: l.lg, Jobs: jobs})
}

func newRoot(lg *zap.Logger) *cobra.Command {
	l := &loader{lg: lg}
	root := &cobra.Command{
		Use:           "ttree-dump",
		Short:         "Inspect tree described by manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&l.manifest, "manifest", "m", "tree.yml", "path to tree manifest")
	root.AddCommand(
		newBranches(l),
		newEval(l),
		newVersion(),
	)
	return root
}

func newBranches(l *loader) *cobra.Command {
	return &cobra.Command{
		Use:   "branches",
		Short: "List branches with interpretations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := l.source(ctx)
			if err != nil {
				return err
			}
			return printBranches(ctx, cmd.OutOrStdout(), src)
		},
	}
}

func printBranches(ctx context.Context, out io.Writer, src ttree.Source) error {
	names := src.Names()
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%d entries\n", src.Entries())
	fmt.Fprintln(w, "NAME\tPATH\tINTERPRETATION\tTYPE\tSIZE")
	for _, name := range names {
		b, _ := src.Branch(name)
		in, err := src.Input(ctx, name)
		if err != nil {
			return errors.Wrapf(err, "branch %q", name)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			b.Name, b.Path, b.Interpretation, b.Interpretation.Type(),
			humanize.Bytes(uint64(len(in.Data))),
		)
	}
	return w.Flush()
}

func newEval(l *loader) *cobra.Command {
	var (
		library string
		rows    int
		jobs    int
	)
	cmd := &cobra.Command{
		Use:   "eval expr...",
		Short: "Evaluate branches and formulas",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ttree.ParseLibrary(library)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			t, err := l.tree(ctx, jobs)
			if err != nil {
				return err
			}
			cols, err := t.Arrays(ctx, args, ttree.ReadOptions{Library: lib})
			defer cols.Release()

			printColumns(cmd.OutOrStdout(), cols, rows)
			if n := len(multierr.Errors(err)); n > 0 {
				return errors.Wrapf(err, "%d of %d failed", n, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&library, "library", "go", "output library (go, arrow)")
	cmd.Flags().IntVarP(&rows, "rows", "n", 5, "entries to print per column, all if negative")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "columns to decode in parallel")
	return cmd
}

func printColumns(out io.Writer, cols ttree.Columns, rows int) {
	for _, v := range cols.Values {
		n := v.Data.Rows()
		if rows >= 0 && rows < n {
			n = rows
		}
		fmt.Fprintf(out, "%s: %s (%d entries)\n", v.Name, v.Data.Type(), v.Data.Rows())
		if v.Arrow != nil {
			fmt.Fprintf(out, "  arrow: %s\n", v.Arrow.DataType())
		}
		for i := 0; i < n; i++ {
			fmt.Fprintf(out, "  [%d] %v\n", i, v.Data.Row(i))
		}
	}
	names := make([]string, 0, len(cols.Errors))
	for name := range cols.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s: error: %v\n", name, cols.Errors[name])
	}
}

func newVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.UserAgent())
		},
	}
}
