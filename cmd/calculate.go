package cmd

import (
	"context"
	"fmt"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Run one batch calculation over the cohort and re-divide the pool",
	Run: func(cmd *cobra.Command, args []string) {
		bindCommandFlags(cmd)
		cfg := config.NewConfig()
		ctx := context.Background()

		app, err := setupApp(cfg)
		if err != nil {
			panic(err)
		}
		l := app.Logger

		var bar *progressbar.ProgressBar
		app.Orchestrator.OnBatchComplete = func(processed int, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total), "calculating scores")
			}
			_ = bar.Set(processed)
		}

		result, err := app.DataService.RunBatchCalculation(ctx)
		if err != nil {
			l.Sugar().Fatalw("Batch calculation failed", zap.Error(err))
		}
		if bar != nil {
			_ = bar.Finish()
		}

		fmt.Printf("Processed: %d\nSuccessful: %d\nFailed: %d\nDuration: %s\n",
			result.Processed, result.Successful, result.Failed, result.Duration)
		for _, batchErr := range result.Errors {
			l.Sugar().Warnw("Participant failed",
				zap.Uint64("fid", batchErr.Fid),
				zap.String("message", batchErr.Message),
			)
		}
	},
}
