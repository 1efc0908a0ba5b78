package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var proofCmd = &cobra.Command{
	Use:   "proof",
	Short: "Generate a claim proof for a fid against the frozen snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		bindCommandFlags(cmd)
		cfg := config.NewConfig()
		ctx := context.Background()

		fid := viper.GetUint64("fid")
		if fid == 0 {
			fmt.Println("--fid is required")
			return
		}

		app, err := setupApp(cfg)
		if err != nil {
			panic(err)
		}

		proof, err := app.DataService.GenerateProof(ctx, fid, viper.GetUint64("snapshot_id"))
		if err != nil {
			app.Logger.Sugar().Fatalw("Proof generation failed",
				zap.Uint64("fid", fid),
				zap.Error(err),
			)
		}

		rendered, err := json.MarshalIndent(proof, "", "  ")
		if err != nil {
			app.Logger.Sugar().Fatalw("Failed to render proof", zap.Error(err))
		}
		fmt.Println(string(rendered))
	},
}
