package cmd

import (
	"fmt"
	"strings"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/spf13/cobra"
)

var (
	reportRestaurant string
	reportID         string
	reportPeriod     string
	reportStatus     string
	reportAccept     bool
	reportCounter    float64
	reportNotes      string
	reportSend       bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Demand forecast reports and discount negotiation",
}

var reportGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a demand report for a restaurant",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := current.ensureData(ctx); err != nil {
			return err
		}
		report, err := current.reporter.GenerateReport(ctx, reportRestaurant, models.ReportPeriod(strings.ToLower(reportPeriod)))
		if err != nil {
			return err
		}
		if reportSend {
			if report, err = current.reporter.SendReportToRestaurant(ctx, report.ID); err != nil {
				return err
			}
		}
		return printJSON(report)
	},
}

var reportSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Mark a report as sent to its restaurant",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := current.reporter.SendReportToRestaurant(cmd.Context(), reportID)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var reportRespondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Record the restaurant's answer to a sent report",
	RunE: func(cmd *cobra.Command, args []string) error {
		response := models.RestaurantResponse{Accepted: reportAccept, Notes: reportNotes}
		if cmd.Flags().Changed("counter") {
			response.CounterOffer = &reportCounter
		}
		report, err := current.reporter.RecordRestaurantResponse(cmd.Context(), reportID, response)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var reportCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a report's predictions with what was sold",
	RunE: func(cmd *cobra.Command, args []string) error {
		comparison, err := current.reporter.CompareActualVsPredicted(cmd.Context(), reportID)
		if err != nil {
			return err
		}
		return printJSON(comparison)
	},
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a restaurant's reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status *models.ReportStatus
		if reportStatus != "" {
			s := models.ReportStatus(strings.ToUpper(reportStatus))
			if !s.Valid() {
				return fmt.Errorf("unknown report status %q", reportStatus)
			}
			status = &s
		}
		reports, err := current.reporter.GetRestaurantReports(cmd.Context(), reportRestaurant, status)
		if err != nil {
			return err
		}
		return printJSON(reports)
	},
}

var reportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Negotiation outcomes across all reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := current.reporter.GetNegotiationsSummary(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

func init() {
	reportGenerateCmd.Flags().StringVar(&reportRestaurant, "restaurant", "", "restaurant id")
	reportGenerateCmd.Flags().StringVar(&reportPeriod, "period", string(models.PeriodWeekly), "weekly or monthly")
	reportGenerateCmd.Flags().BoolVar(&reportSend, "send", false, "send the report right away")
	_ = reportGenerateCmd.MarkFlagRequired("restaurant")

	for _, c := range []*cobra.Command{reportSendCmd, reportRespondCmd, reportCompareCmd} {
		c.Flags().StringVar(&reportID, "id", "", "report id")
		_ = c.MarkFlagRequired("id")
	}
	reportRespondCmd.Flags().BoolVar(&reportAccept, "accept", false, "accept the suggested discount")
	reportRespondCmd.Flags().Float64Var(&reportCounter, "counter", 0, "counter offer, discount percentage")
	reportRespondCmd.Flags().StringVar(&reportNotes, "notes", "", "free-text notes")

	reportListCmd.Flags().StringVar(&reportRestaurant, "restaurant", "", "restaurant id")
	reportListCmd.Flags().StringVar(&reportStatus, "status", "", "only reports in this status")
	_ = reportListCmd.MarkFlagRequired("restaurant")

	reportCmd.AddCommand(reportGenerateCmd, reportSendCmd, reportRespondCmd, reportCompareCmd, reportListCmd, reportSummaryCmd)
	rootCmd.AddCommand(reportCmd)
}
