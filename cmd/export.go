package cmd

import (
	"fmt"
	"time"

	"github.com/chrisdamba/foodpredict/internal/export"
	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/spf13/cobra"
)

var (
	exportRestaurant string
	exportFrom       string
	exportTo         string
	exportName       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored forecasts or schedules as parquet, locally or to S3",
}

// exportWindow resolves --from and --to, defaulting to the single day --from.
func exportWindow() (from, to time.Time, err error) {
	if from, err = current.parseDate(exportFrom); err != nil {
		return
	}
	to = from.AddDate(0, 0, 1)
	if exportTo != "" {
		to, err = current.parseDate(exportTo)
	}
	return
}

func exportFileName(kind string, from, to time.Time) string {
	if exportName != "" {
		return exportName
	}
	return fmt.Sprintf("%s_%s_%s", kind, from.Format(models.DateLayout), to.Format(models.DateLayout))
}

var exportForecastsCmd = &cobra.Command{
	Use:   "forecasts",
	Short: "Export quantity forecasts dated in [--from, --to)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		start, end, err := exportWindow()
		if err != nil {
			return err
		}

		ids := []string{exportRestaurant}
		if exportRestaurant == "" {
			all, err := current.repos.Restaurants.GetAll(ctx)
			if err != nil {
				return err
			}
			ids = ids[:0]
			for id := range all {
				ids = append(ids, id)
			}
		}
		var forecasts []models.QuantityForecast
		for _, id := range ids {
			batch, err := current.forecaster.GetRestaurantForecasts(ctx, id, start, end)
			if err != nil {
				return err
			}
			forecasts = append(forecasts, batch...)
		}

		exporter, err := export.NewExporter(ctx, current.cfg.Export)
		if err != nil {
			return err
		}
		location, err := exporter.ExportForecasts(ctx, exportFileName("forecasts", start, end), forecasts)
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{"location": location, "rows": len(forecasts)})
	},
}

var exportScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Export delivery schedules dated in [--from, --to)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		start, end, err := exportWindow()
		if err != nil {
			return err
		}

		schedules, err := current.repos.Schedules.Range(ctx, start, end)
		if err != nil {
			return err
		}
		exporter, err := export.NewExporter(ctx, current.cfg.Export)
		if err != nil {
			return err
		}
		location, err := exporter.ExportSchedules(ctx, exportFileName("schedule", start, end), schedules)
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{"location": location, "rows": len(schedules)})
	},
}

func init() {
	for _, c := range []*cobra.Command{exportForecastsCmd, exportScheduleCmd} {
		c.Flags().StringVar(&exportFrom, "from", "", "first date, YYYY-MM-DD (default today)")
		c.Flags().StringVar(&exportTo, "to", "", "exclusive end date (default the day after --from)")
		c.Flags().StringVar(&exportName, "name", "", "file name without extension")
	}
	exportForecastsCmd.Flags().StringVar(&exportRestaurant, "restaurant", "", "restaurant id (default all)")

	exportCmd.AddCommand(exportForecastsCmd, exportScheduleCmd)
	rootCmd.AddCommand(exportCmd)
}
