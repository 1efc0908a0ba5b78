package cmd

import (
	"os"
	"strings"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "brnd-airdrop",
	Short: "Scores BRND voters, freezes Merkle snapshots and serves claim proofs",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)

	rootCmd.PersistentFlags().String(config.DatabaseHost, "localhost", `PostgreSQL host`)
	rootCmd.PersistentFlags().Int(config.DatabasePort, 5432, `PostgreSQL port`)
	rootCmd.PersistentFlags().String(config.DatabaseUser, "brnd", `PostgreSQL username`)
	rootCmd.PersistentFlags().String(config.DatabasePassword, "", `PostgreSQL password`)
	rootCmd.PersistentFlags().String(config.DatabaseDbName, "brnd", `PostgreSQL database name`)
	rootCmd.PersistentFlags().String(config.DatabaseSchemaName, "", `PostgreSQL schema name (default "public")`)
	rootCmd.PersistentFlags().String(config.DatabaseSSLMode, "disable", `PostgreSQL SSL mode`)

	rootCmd.PersistentFlags().String(config.EthereumRpcBaseUrl, "", `e.g. "https://mainnet.base.org"`)
	rootCmd.PersistentFlags().Duration(config.EthereumRpcRequestTimeout, 0, `Per-call timeout for contract reads`)
	rootCmd.PersistentFlags().String(config.EthereumTokenAddress, "", `BRND token contract address`)
	rootCmd.PersistentFlags().String(config.EthereumStakingAddress, "", `BRND staking contract address`)
	rootCmd.PersistentFlags().String(config.EthereumCollectibleAddress, "", `Collectible contract address`)

	rootCmd.PersistentFlags().String(config.SocialGraphBaseUrl, "https://api.neynar.com", `Social graph API base url`)
	rootCmd.PersistentFlags().String(config.SocialGraphApiKey, "", `Social graph API key`)
	rootCmd.PersistentFlags().Int(config.SocialGraphBulkUserLimit, 100, `Max fids per bulk profile request`)
	rootCmd.PersistentFlags().Duration(config.SocialGraphRequestTimeout, 0, `Per-request timeout for social graph calls`)
	rootCmd.PersistentFlags().String(config.SocialGraphChannelId, "brnd", `Channel id used for engagement checks`)

	rootCmd.PersistentFlags().Int(config.AirdropCohortSize, 5000, `Number of top participants refreshed by a batch run`)
	rootCmd.PersistentFlags().Int(config.AirdropSnapshotSize, 1111, `Number of top participants committed to a snapshot`)
	rootCmd.PersistentFlags().Int(config.AirdropBatchSize, 50, `Participants processed concurrently per batch`)
	rootCmd.PersistentFlags().Duration(config.AirdropBatchCooldown, 0, `Pause between batches`)
	rootCmd.PersistentFlags().Int64(config.AirdropTotalPool, 0, `Total whole tokens in the airdrop pool`)
	rootCmd.PersistentFlags().Duration(config.AirdropRecalcInterval, 0, `How often the run command refreshes the cohort`)
	rootCmd.PersistentFlags().Int(config.AirdropAmountDecimals, 0, `Decimals applied to leaf amounts before hashing`)
	rootCmd.PersistentFlags().String(config.AirdropExcludedFids, "", `Comma-separated fids excluded from the airdrop`)

	rootCmd.PersistentFlags().Duration(config.LeaderboardCacheTTL, 0, `Leaderboard cache TTL`)

	rootCmd.PersistentFlags().Bool(config.DataDogStatsdEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String(config.DataDogStatsdUrl, "", `e.g. "localhost:8125"`)
	rootCmd.PersistentFlags().Float64(config.DataDogStatsdSampleRate, 1.0, `The sample rate to use for statsd metrics`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, 2112, `The port to run the prometheus server on`)

	// setup sub commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(distributeCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(proofCmd)
	rootCmd.AddCommand(runVersionCmd)

	proofCmd.PersistentFlags().Uint64("fid", 0, "Fid to generate a claim proof for (required)")
	proofCmd.PersistentFlags().Uint64("snapshot-id", 0, "Snapshot to prove against (defaults to the active one)")

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}
