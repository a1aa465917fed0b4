package cmd

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	analyzeUser string
	analyzeAll  bool
	matchAt     string
	patternID   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build behavior profiles from order history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := current.ensureData(ctx); err != nil {
			return err
		}
		if analyzeAll {
			users, err := current.repos.Users.Count(ctx)
			if err != nil {
				return err
			}
			bar := progressbar.Default(int64(users), "analyzing users")
			summary, err := current.analyzer.AnalyzeAllUsers(ctx, current.cfg.AnalyzeWorkers, bar)
			if err != nil {
				return err
			}
			_ = bar.Finish()
			return printJSON(summary)
		}
		if analyzeUser == "" {
			return fmt.Errorf("either --user or --all is required")
		}
		analysis, err := current.analyzer.AnalyzeUser(ctx, analyzeUser)
		if err != nil {
			return err
		}
		return printJSON(analysis)
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show a user's stored behavior profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.ensureData(cmd.Context()); err != nil {
			return err
		}
		profiles, err := current.analyzer.GetUserBehavior(cmd.Context(), analyzeUser)
		if err != nil {
			return err
		}
		return printJSON(profiles)
	},
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Discover and inspect recurring order patterns",
}

var patternsDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Replace a user's active patterns with freshly mined ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.ensureData(cmd.Context()); err != nil {
			return err
		}
		patterns, err := current.recognizer.DiscoverPatterns(cmd.Context(), analyzeUser)
		if err != nil {
			return err
		}
		return printJSON(patterns)
	},
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's active patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.ensureData(cmd.Context()); err != nil {
			return err
		}
		patterns, err := current.recognizer.GetUserPatterns(cmd.Context(), analyzeUser)
		if err != nil {
			return err
		}
		return printJSON(patterns)
	},
}

var patternsMatchCmd = &cobra.Command{
	Use:   "match",
	Short: "List the user's patterns that apply now or at --at",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := current.ensureData(ctx); err != nil {
			return err
		}
		at := time.Now()
		if matchAt != "" {
			var err error
			if at, err = time.Parse(time.RFC3339, matchAt); err != nil {
				return fmt.Errorf("invalid --at: %w", err)
			}
		}
		patterns, err := current.recognizer.MatchPatterns(ctx, analyzeUser, at)
		if err != nil {
			return err
		}
		return printJSON(patterns)
	},
}

var patternsTriggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Mark a pattern as triggered now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return current.recognizer.TriggerPattern(cmd.Context(), patternID)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "user id")
	analyzeCmd.Flags().BoolVar(&analyzeAll, "all", false, "analyze every active user")
	profileCmd.Flags().StringVar(&analyzeUser, "user", "", "user id")
	_ = profileCmd.MarkFlagRequired("user")

	for _, c := range []*cobra.Command{patternsDiscoverCmd, patternsListCmd, patternsMatchCmd} {
		c.Flags().StringVar(&analyzeUser, "user", "", "user id")
		_ = c.MarkFlagRequired("user")
	}
	patternsMatchCmd.Flags().StringVar(&matchAt, "at", "", "RFC3339 instant to match (default now)")
	patternsTriggerCmd.Flags().StringVar(&patternID, "id", "", "pattern id")
	_ = patternsTriggerCmd.MarkFlagRequired("id")

	patternsCmd.AddCommand(patternsDiscoverCmd, patternsListCmd, patternsMatchCmd, patternsTriggerCmd)
	rootCmd.AddCommand(analyzeCmd, profileCmd, patternsCmd)
}
