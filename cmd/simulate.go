package cmd

import (
	"time"

	"github.com/chrisdamba/foodpredict/internal/simulator"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	simulateStart string
	simulateDays  int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay generated order traffic through every predictive service",
	Long: `simulate seeds an order history, then replays --days further days of
orders on a simulated clock. Each day refreshes behavior profiles and
patterns, forecasts demand, sends auto-order suggestions, plans delivery
routes, negotiates weekly reports and records actuals at close.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		if simulateStart != "" {
			var err error
			if start, err = current.parseDate(simulateStart); err != nil {
				return err
			}
		}
		sim, err := simulator.NewSimulator(current.cfg, current.repos, current.publisher, current.log)
		if err != nil {
			return err
		}
		bar := progressbar.Default(int64(simulateDays), "simulating days")
		summary, err := sim.Run(cmd.Context(), start, simulateDays, bar)
		if err != nil {
			return err
		}
		_ = bar.Finish()
		return printJSON(summary)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateStart, "start", "", "first simulated day, YYYY-MM-DD (default today)")
	simulateCmd.Flags().IntVar(&simulateDays, "days", 7, "days to simulate")
	rootCmd.AddCommand(simulateCmd)
}
