package cmd

import (
	"context"
	"fmt"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Divide the token pool across current scores",
	Run: func(cmd *cobra.Command, args []string) {
		bindCommandFlags(cmd)
		cfg := config.NewConfig()
		ctx := context.Background()

		app, err := setupApp(cfg)
		if err != nil {
			panic(err)
		}

		result, err := app.DataService.DistributeTokens(ctx)
		if err != nil {
			app.Logger.Sugar().Fatalw("Distribution failed", zap.Error(err))
		}

		fmt.Printf("Participants: %d\nEligible: %d\nTotal points: %d\nTokens allocated: %d\n",
			result.Participants, result.EligibleCount, result.TotalPoints, result.TokensAllocated)
	},
}
