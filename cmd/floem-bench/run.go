package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/woodworthkyle/floem/pkg/reactive"
	"github.com/woodworthkyle/floem/pkg/reconcile"
	"github.com/woodworthkyle/floem/pkg/view"
)

func runCmd() *cobra.Command {
	var (
		items       int
		generations int
		churn       float64
		seed        int64
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a synthetic reconciliation workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkload(items, generations, churn, seed, verbose)
		},
	}

	cmd.Flags().IntVar(&items, "items", 100, "collection size")
	cmd.Flags().IntVar(&generations, "generations", 1000, "number of generations to reconcile")
	cmd.Flags().Float64Var(&churn, "churn", 0.1, "fraction of rows replaced per generation")
	cmd.Flags().Int64Var(&seed, "seed", 1, "workload RNG seed")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	return cmd
}

func runWorkload(items, generations int, churn float64, seed int64, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	reg := prometheus.NewRegistry()
	metrics := reconcile.NewMetrics(reconcile.WithRegistry(reg))

	root := reactive.NewScope(nil)
	defer root.Dispose()

	w := newWorkload(seed, items)
	rows := reactive.NewSignal(w.rows)
	queue := view.NewUpdateQueue()

	var stack *reconcile.Stack[row, int64]
	reactive.WithScope(root, func() {
		stack = reconcile.NewStack(
			func() []row { return rows.Get() },
			func(r row) int64 { return r.ID },
			newRowView,
			reconcile.WithQueue(queue),
			reconcile.WithMetrics(metrics),
			reconcile.WithLogger(logger),
			reconcile.WithDebugName("bench"),
		)
	})
	stack.Drain()

	start := time.Now()
	for g := 0; g < generations; g++ {
		rows.Set(w.next(churn))
		stack.Tick()
	}
	elapsed := time.Since(start)

	logger.Info("workload complete",
		"generations", generations,
		"children", stack.Len(),
		"elapsed", elapsed,
		"per_generation", elapsed/time.Duration(generations))

	return printCounters(reg)
}

// printCounters dumps the engine's counter metrics to stdout.
func printCounters(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	for _, family := range families {
		if family.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, metric := range family.GetMetric() {
			name := family.GetName()
			for _, label := range metric.GetLabel() {
				name += fmt.Sprintf("{%s=%s}", label.GetName(), label.GetValue())
			}
			fmt.Printf("%-50s %.0f\n", name, metric.GetCounter().GetValue())
		}
	}
	return nil
}
