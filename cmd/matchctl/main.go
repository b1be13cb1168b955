// cmd/matchctl/main.go
//
// Offline companion to the server.
// Commands:
//   - check <equation>            → is the equation true? prints the stick count
//   - solve <equation> --moves N  → every true equation reachable in N moves
//   - catalog [--random]          → list the built-in puzzles
//
// Nothing here touches the network or the database.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robalobadob/matchstick/internal/board"
	"github.com/robalobadob/matchstick/internal/catalog"
	"github.com/robalobadob/matchstick/internal/solver"
)

var errNotTrue = errors.New("equation is not true")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "matchctl",
		Short:        "Check, solve and list matchstick puzzles",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.AddCommand(newCheckCmd(), newSolveCmd(), newCatalogCmd())
	return root
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <equation>",
		Short: "Report whether an equation is true",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := board.New(args[0])
			if err != nil {
				return err
			}
			eq, err := b.Verify()
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: not true (%d sticks)\n", b.Original(), b.Baseline())
				return fmt.Errorf("%w: %w", errNotTrue, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: true (%d sticks)\n", eq, b.Baseline())
			return nil
		},
	}
}

func newSolveCmd() *cobra.Command {
	var moves int
	cmd := &cobra.Command{
		Use:   "solve <equation>",
		Short: "List the true equations reachable by moving sticks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sols, err := solver.Solve(cmd.Context(), args[0], moves)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(sols) == 0 {
				fmt.Fprintf(w, "no solution within %d move(s)\n", moves)
				return nil
			}
			for _, s := range sols {
				fmt.Fprintf(w, "%s (%d)%s\n", s.Equation, s.Moves, formatSteps(s.Steps))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&moves, "moves", "m", 1, fmt.Sprintf("maximum sticks to move (0..%d)", solver.MaxMoves))
	return cmd
}

func formatSteps(steps []solver.Move) string {
	if len(steps) == 0 {
		return ""
	}
	parts := make([]string, len(steps))
	for i, m := range steps {
		parts[i] = fmt.Sprintf("%d.%d->%d.%d", m.From.Cell, m.From.Stick, m.To.Cell, m.To.Stick)
	}
	return ": " + strings.Join(parts, " ")
}

func newCatalogCmd() *cobra.Command {
	var random bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the built-in puzzles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := catalog.Init(); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if random {
				pz := catalog.Random()
				fmt.Fprintf(w, "%s\t%d\t%s\n", pz.Equation, pz.TargetMoves, pz.Hint)
				return nil
			}
			for i, pz := range catalog.All() {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", i, pz.Equation, pz.TargetMoves, pz.Hint)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&random, "random", false, "print one random puzzle")
	return cmd
}
