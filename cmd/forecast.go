package cmd

import (
	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/spf13/cobra"
)

var (
	forecastRestaurant string
	forecastItem       string
	forecastDate       string
	forecastTo         string
	forecastQty        int
	forecastDays       int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Per-item quantity forecasts for restaurants",
}

var forecastRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Forecast item quantities for one restaurant, or all when --restaurant is empty",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := current.ensureData(ctx); err != nil {
			return err
		}
		target, err := current.parseDate(forecastDate)
		if err != nil {
			return err
		}
		ids := []string{forecastRestaurant}
		if forecastRestaurant == "" {
			all, err := current.repos.Restaurants.GetAll(ctx)
			if err != nil {
				return err
			}
			ids = ids[:0]
			for id := range all {
				ids = append(ids, id)
			}
		}
		out := make(map[string][]models.QuantityForecast, len(ids))
		for _, id := range ids {
			forecasts, err := current.forecaster.ForecastForRestaurant(ctx, id, target)
			if err != nil {
				return err
			}
			out[id] = forecasts
		}
		return printJSON(out)
	},
}

var forecastListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored forecasts dated from --date up to --to",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := current.parseDate(forecastDate)
		if err != nil {
			return err
		}
		to := from.AddDate(0, 0, 1)
		if forecastTo != "" {
			if to, err = current.parseDate(forecastTo); err != nil {
				return err
			}
		}
		forecasts, err := current.forecaster.GetRestaurantForecasts(cmd.Context(), forecastRestaurant, from, to)
		if err != nil {
			return err
		}
		return printJSON(forecasts)
	},
}

var forecastActualCmd = &cobra.Command{
	Use:   "actual",
	Short: "Record the quantity actually sold",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := current.parseDate(forecastDate)
		if err != nil {
			return err
		}
		return current.forecaster.UpdateActualQuantity(cmd.Context(), forecastRestaurant, forecastItem, date, forecastQty)
	},
}

var forecastAccuracyCmd = &cobra.Command{
	Use:   "accuracy",
	Short: "Backtest recent forecasts against recorded actuals",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := current.forecaster.EvaluateForecastAccuracy(cmd.Context(), forecastRestaurant, forecastDays)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

func init() {
	forecastRunCmd.Flags().StringVar(&forecastRestaurant, "restaurant", "", "restaurant id")
	forecastRunCmd.Flags().StringVar(&forecastDate, "date", "", "target date, YYYY-MM-DD (default today)")

	forecastListCmd.Flags().StringVar(&forecastRestaurant, "restaurant", "", "restaurant id")
	forecastListCmd.Flags().StringVar(&forecastDate, "date", "", "first date, YYYY-MM-DD (default today)")
	forecastListCmd.Flags().StringVar(&forecastTo, "to", "", "exclusive end date (default the day after --date)")
	_ = forecastListCmd.MarkFlagRequired("restaurant")

	forecastActualCmd.Flags().StringVar(&forecastRestaurant, "restaurant", "", "restaurant id")
	forecastActualCmd.Flags().StringVar(&forecastItem, "item", "", "menu item id")
	forecastActualCmd.Flags().StringVar(&forecastDate, "date", "", "forecast date, YYYY-MM-DD (default today)")
	forecastActualCmd.Flags().IntVar(&forecastQty, "qty", 0, "quantity sold")
	for _, f := range []string{"restaurant", "item", "qty"} {
		_ = forecastActualCmd.MarkFlagRequired(f)
	}

	forecastAccuracyCmd.Flags().StringVar(&forecastRestaurant, "restaurant", "", "restaurant id")
	forecastAccuracyCmd.Flags().IntVar(&forecastDays, "days", 7, "days to look back")
	_ = forecastAccuracyCmd.MarkFlagRequired("restaurant")

	forecastCmd.AddCommand(forecastRunCmd, forecastListCmd, forecastActualCmd, forecastAccuracyCmd)
	rootCmd.AddCommand(forecastCmd)
}
