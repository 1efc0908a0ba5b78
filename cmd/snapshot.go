package cmd

import (
	"context"
	"fmt"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Freeze current allocations into a Merkle-committed snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		bindCommandFlags(cmd)
		cfg := config.NewConfig()
		ctx := context.Background()

		app, err := setupApp(cfg)
		if err != nil {
			panic(err)
		}

		snap, err := app.DataService.GenerateSnapshot(ctx)
		if err != nil {
			app.Logger.Sugar().Fatalw("Snapshot generation failed", zap.Error(err))
		}

		fmt.Printf("Snapshot: %d\nMerkle root: %s\nParticipants: %d\nTotal tokens: %d\n",
			snap.Id, snap.MerkleRoot, snap.TotalParticipants, snap.TotalTokens)
	},
}
