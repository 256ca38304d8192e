// Command dynroute computes multi-stop routes over a weighted graph
// described by a YAML scenario file: topology, dynamic effects
// (congestion, blockages, timed signals), an optional clock advance,
// and a route request with optional waypoint-order optimization.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dynroute/dynroute/engine"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "dynroute",
	Short: "Dynamic weighted-graph routing engine",
	Long: `dynroute computes shortest multi-stop routes over a weighted graph
whose edge costs change at runtime: congestion zones add penalties,
blockages make edges impassable, and timed traffic signals contribute
a penalty that decays as their phase elapses.

Examples:
  dynroute route scenario.yaml            # compute the scenario's route
  dynroute route -v scenario.yaml         # with debug logging`,
}

var routeCmd = &cobra.Command{
	Use:   "route <scenario.yaml>",
	Short: "Compute the route described by a scenario file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(args[0])
		if err != nil {
			return err
		}

		log := zap.NewNop()
		if verbose {
			if log, err = zap.NewDevelopment(); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync() //nolint:errcheck
		}

		e := engine.New(engine.WithLogger(log))
		if err := sc.apply(e); err != nil {
			return err
		}

		route, err := e.ComputeRoute(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "route: %s\n", strings.Join(route.Nodes, " -> "))
		fmt.Fprintf(cmd.OutOrStdout(), "cost:  %.3f\n", route.Cost)
		if route.Optimized {
			fmt.Fprintf(cmd.OutOrStdout(), "order: %s (%s)\n",
				strings.Join(route.Order, ", "), route.Mode)
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	rootCmd.AddCommand(routeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
