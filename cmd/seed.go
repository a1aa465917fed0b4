package cmd

import (
	"fmt"
	"time"

	"github.com/chrisdamba/foodpredict/internal/factories"
	"github.com/chrisdamba/foodpredict/internal/repositories/postgres"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if current.pool == nil {
			return fmt.Errorf("migrate requires store: postgres")
		}
		if err := postgres.Migrate(cmd.Context(), current.pool); err != nil {
			return err
		}
		current.log.Info("schema migrated")
		return nil
	},
}

var (
	seedDishesFile string
	seedOpenOrders int
	seedBatchSize  int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate restaurants, menus, users and order history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if seedDishesFile != "" {
			if err := current.cfg.LoadMenuDishData(seedDishesFile); err != nil {
				return fmt.Errorf("error loading dishes: %w", err)
			}
		}
		ds, err := factories.NewGenerator(current.cfg.Seed).Generate(time.Now().In(current.loc), seedOpenOrders)
		if err != nil {
			return err
		}

		bar := progressbar.Default(int64(len(ds.Orders)), "seeding orders")
		if err := ds.Load(ctx, current.repos, seedBatchSize, bar); err != nil {
			return err
		}
		_ = bar.Finish()

		return printJSON(map[string]int{
			"restaurants": len(ds.Restaurants),
			"menu_items":  len(ds.MenuItems),
			"users":       len(ds.Users),
			"orders":      len(ds.Orders),
		})
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedDishesFile, "dishes", "", "CSV of (id, name, category) dish names")
	seedCmd.Flags().IntVar(&seedOpenOrders, "open-orders", 20, "orders placed today and not yet delivered")
	seedCmd.Flags().IntVar(&seedBatchSize, "batch-size", 500, "rows per insert batch")

	rootCmd.AddCommand(migrateCmd, seedCmd)
}
