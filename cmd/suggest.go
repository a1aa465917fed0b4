package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/spf13/cobra"
)

var (
	suggestUser   string
	suggestID     string
	suggestReason string
	suggestMods   string
	suggestStatus string
)

func parseModification(raw string) (*models.SuggestionModification, error) {
	if raw == "" {
		return nil, nil
	}
	var mods models.SuggestionModification
	if err := json.Unmarshal([]byte(raw), &mods); err != nil {
		return nil, fmt.Errorf("invalid --mods: %w", err)
	}
	return &mods, nil
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Auto-order suggestions",
}

var suggestGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Suggest an order for the user if one of their patterns applies now",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.ensureData(cmd.Context()); err != nil {
			return err
		}
		suggestion, err := current.engine.GenerateSuggestion(cmd.Context(), suggestUser)
		if err != nil {
			return err
		}
		return printJSON(suggestion)
	},
}

var suggestAcceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Accept a pending suggestion and place its order",
	RunE: func(cmd *cobra.Command, args []string) error {
		mods, err := parseModification(suggestMods)
		if err != nil {
			return err
		}
		order, err := current.engine.AcceptSuggestion(cmd.Context(), suggestID, mods)
		if err != nil {
			return err
		}
		return printJSON(order)
	},
}

var suggestRejectCmd = &cobra.Command{
	Use:   "reject",
	Short: "Reject a pending suggestion",
	RunE: func(cmd *cobra.Command, args []string) error {
		suggestion, err := current.engine.RejectSuggestion(cmd.Context(), suggestID, suggestReason)
		if err != nil {
			return err
		}
		return printJSON(suggestion)
	},
}

var suggestModifyCmd = &cobra.Command{
	Use:   "modify",
	Short: "Edit a pending suggestion's items without accepting it",
	RunE: func(cmd *cobra.Command, args []string) error {
		mods, err := parseModification(suggestMods)
		if err != nil {
			return err
		}
		if mods == nil {
			return fmt.Errorf("--mods is required")
		}
		suggestion, err := current.engine.ModifySuggestion(cmd.Context(), suggestID, *mods)
		if err != nil {
			return err
		}
		return printJSON(suggestion)
	},
}

var suggestCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Expire every pending suggestion past its deadline",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := current.engine.CleanupExpiredSuggestions(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(map[string]int{"expired": n})
	},
}

var suggestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's suggestions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status *models.SuggestionStatus
		if suggestStatus != "" {
			s := models.SuggestionStatus(strings.ToUpper(suggestStatus))
			status = &s
		}
		suggestions, err := current.engine.GetUserSuggestions(cmd.Context(), suggestUser, status)
		if err != nil {
			return err
		}
		return printJSON(suggestions)
	},
}

var suggestStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Suggestion counts by status and acceptance rate",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := current.engine.GetSuggestionStats(cmd.Context(), suggestUser)
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

func init() {
	for _, c := range []*cobra.Command{suggestGenerateCmd, suggestListCmd} {
		c.Flags().StringVar(&suggestUser, "user", "", "user id")
		_ = c.MarkFlagRequired("user")
	}
	suggestStatsCmd.Flags().StringVar(&suggestUser, "user", "", "user id (default all users)")
	suggestListCmd.Flags().StringVar(&suggestStatus, "status", "", "only suggestions in this status")

	for _, c := range []*cobra.Command{suggestAcceptCmd, suggestRejectCmd, suggestModifyCmd} {
		c.Flags().StringVar(&suggestID, "id", "", "suggestion id")
		_ = c.MarkFlagRequired("id")
	}
	suggestAcceptCmd.Flags().StringVar(&suggestMods, "mods", "", `JSON modification, e.g. {"remove":["item-id"]}`)
	suggestModifyCmd.Flags().StringVar(&suggestMods, "mods", "", "JSON modification")
	suggestRejectCmd.Flags().StringVar(&suggestReason, "reason", "", "why the user declined")

	suggestCmd.AddCommand(suggestGenerateCmd, suggestAcceptCmd, suggestRejectCmd, suggestModifyCmd,
		suggestCleanupCmd, suggestListCmd, suggestStatsCmd)
	rootCmd.AddCommand(suggestCmd)
}
