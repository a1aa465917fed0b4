package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/chrisdamba/foodpredict/internal/predictive"
	"github.com/spf13/cobra"
)

var (
	scheduleDate   string
	scheduleTo     string
	scheduleSlot   string
	scheduleActual int
	routesFile     string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Half-hourly delivery volume and driver capacity",
}

var schedulePredictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict order volume per half-hour slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.ensureData(cmd.Context()); err != nil {
			return err
		}
		date, err := current.parseDate(scheduleDate)
		if err != nil {
			return err
		}
		schedule, err := current.scheduler.PredictDeliverySchedule(cmd.Context(), date)
		if err != nil {
			return err
		}
		return printJSON(schedule)
	},
}

var scheduleShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a stored day schedule, or only its peak slots with --peak",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := current.parseDate(scheduleDate)
		if err != nil {
			return err
		}
		var schedule []models.DeliverySchedule
		if peakOnly, _ := cmd.Flags().GetBool("peak"); peakOnly {
			schedule, err = current.scheduler.GetPeakTimes(cmd.Context(), date)
		} else {
			schedule, err = current.scheduler.GetDaySchedule(cmd.Context(), date)
		}
		if err != nil {
			return err
		}
		return printJSON(schedule)
	},
}

var scheduleCapacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Driver staffing plan for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.ensureData(cmd.Context()); err != nil {
			return err
		}
		date, err := current.parseDate(scheduleDate)
		if err != nil {
			return err
		}
		rec, err := current.scheduler.GetCapacityRecommendations(cmd.Context(), date)
		if err != nil {
			return err
		}
		return printJSON(rec)
	},
}

var scheduleActualCmd = &cobra.Command{
	Use:   "actual",
	Short: "Record the orders actually delivered in a slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := current.parseDate(scheduleDate)
		if err != nil {
			return err
		}
		return current.scheduler.UpdateActualOrders(cmd.Context(), date, scheduleSlot, scheduleActual)
	},
}

var scheduleAccuracyCmd = &cobra.Command{
	Use:   "accuracy",
	Short: "Backtest schedules from --date to --to inclusive",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := current.parseDate(scheduleDate)
		if err != nil {
			return err
		}
		end := start
		if scheduleTo != "" {
			if end, err = current.parseDate(scheduleTo); err != nil {
				return err
			}
		}
		report, err := current.scheduler.EvaluateAccuracy(cmd.Context(), start, end)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Cluster deliveries into routes",
	Long: `routes clusters the orders in --file, a JSON array of orders, or today's
confirmed and preparing orders from the store when no file is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if routesFile == "" {
			if err := current.ensureData(cmd.Context()); err != nil {
				return err
			}
			routes, err := current.scheduler.OptimizeOpenDeliveries(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(routes)
		}
		raw, err := os.ReadFile(routesFile)
		if err != nil {
			return err
		}
		var orders []models.Order
		if err := json.Unmarshal(raw, &orders); err != nil {
			return fmt.Errorf("error decoding orders: %w", err)
		}
		radius, _ := cmd.Flags().GetFloat64("radius")
		if radius <= 0 {
			return printJSON(current.scheduler.OptimizeRoutes(orders))
		}
		return printJSON(predictive.ClusterRoutes(orders, radius, current.cfg.Predictive.MinutesPerStop))
	},
}

func init() {
	for _, c := range []*cobra.Command{schedulePredictCmd, scheduleShowCmd, scheduleCapacityCmd, scheduleActualCmd, scheduleAccuracyCmd} {
		c.Flags().StringVar(&scheduleDate, "date", "", "date, YYYY-MM-DD (default today)")
	}
	scheduleShowCmd.Flags().Bool("peak", false, "only peak slots")
	scheduleActualCmd.Flags().StringVar(&scheduleSlot, "slot", "", "half-hour slot, HH:MM")
	scheduleActualCmd.Flags().IntVar(&scheduleActual, "orders", 0, "orders delivered")
	_ = scheduleActualCmd.MarkFlagRequired("slot")
	_ = scheduleActualCmd.MarkFlagRequired("orders")
	scheduleAccuracyCmd.Flags().StringVar(&scheduleTo, "to", "", "last date, inclusive (default --date)")

	routesCmd.Flags().StringVar(&routesFile, "file", "", "JSON file of orders to cluster")
	routesCmd.Flags().Float64("radius", 0, "cluster radius in km (default from config)")

	scheduleCmd.AddCommand(schedulePredictCmd, scheduleShowCmd, scheduleCapacityCmd, scheduleActualCmd, scheduleAccuracyCmd)
	rootCmd.AddCommand(scheduleCmd, routesCmd)
}
