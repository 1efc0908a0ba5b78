package config

import (
	"math/big"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Prefix for all environment variables, e.g. BRND_DATABASE_HOST.
const ENV_PREFIX = "BRND"

const (
	Debug = "debug"

	DatabaseHost       = "database.host"
	DatabasePort       = "database.port"
	DatabaseUser       = "database.user"
	DatabasePassword   = "database.password"
	DatabaseDbName     = "database.db_name"
	DatabaseSchemaName = "database.schema_name"
	DatabaseSSLMode    = "database.ssl_mode"

	EthereumRpcBaseUrl         = "ethereum.rpc-url"
	EthereumRpcRequestTimeout  = "ethereum.request-timeout"
	EthereumTokenAddress       = "ethereum.token-address"
	EthereumStakingAddress     = "ethereum.staking-address"
	EthereumCollectibleAddress = "ethereum.collectible-address"

	SocialGraphBaseUrl        = "social-graph.base-url"
	SocialGraphApiKey         = "social-graph.api-key"
	SocialGraphBulkUserLimit  = "social-graph.bulk-user-limit"
	SocialGraphRequestTimeout = "social-graph.request-timeout"
	SocialGraphChannelId      = "social-graph.channel-id"

	AirdropCohortSize     = "airdrop.cohort-size"
	AirdropSnapshotSize   = "airdrop.snapshot-size"
	AirdropBatchSize      = "airdrop.batch-size"
	AirdropBatchCooldown  = "airdrop.batch-cooldown"
	AirdropTotalPool      = "airdrop.total-pool"
	AirdropRecalcInterval = "airdrop.recalculation-interval"
	AirdropAmountDecimals = "airdrop.amount-decimals"
	AirdropExcludedFids   = "airdrop.excluded-fids"

	LeaderboardCacheTTL = "leaderboard.cache-ttl"

	DataDogStatsdEnabled    = "datadog.statsd.enabled"
	DataDogStatsdUrl        = "datadog.statsd.url"
	DataDogStatsdSampleRate = "datadog.statsd.sample-rate"

	PrometheusEnabled = "prometheus.enabled"
	PrometheusPort    = "prometheus.port"
)

type Config struct {
	Debug             bool
	DatabaseConfig    DatabaseConfig
	EthereumRpcConfig EthereumRpcConfig
	SocialGraphConfig SocialGraphConfig
	AirdropConfig     AirdropConfig
	LeaderboardConfig LeaderboardConfig
	DataDogConfig     DataDogConfig
	PrometheusConfig  PrometheusConfig
}

type DatabaseConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	DbName     string
	SchemaName string
	SSLMode    string
}

type EthereumRpcConfig struct {
	BaseUrl            string
	RequestTimeout     time.Duration
	TokenAddress       string
	StakingAddress     string
	CollectibleAddress string
}

type SocialGraphConfig struct {
	BaseUrl        string
	ApiKey         string
	BulkUserLimit  int
	RequestTimeout time.Duration
	ChannelId      string
}

type AirdropConfig struct {
	// CohortSize is the number of top participants (by base points) refreshed
	// by a batch calculation run.
	CohortSize int
	// SnapshotSize is the number of top participants (by final score) that
	// receive a leaf in a generated snapshot.
	SnapshotSize int
	BatchSize    int
	// BatchCooldown is the pause between batches, respecting upstream rate limits.
	BatchCooldown time.Duration
	// TotalPool is the total number of whole tokens distributed across the cohort.
	TotalPool int64
	// RecalculationInterval is how often the long-running service refreshes
	// the cohort.
	RecalculationInterval time.Duration
	// AmountDecimals scales leaf amounts before hashing. The claim contract
	// consumes whole-token units, so this stays 0 unless the contract ABI
	// changes to expect base units.
	AmountDecimals int
	ExcludedFids   []uint64
}

type LeaderboardConfig struct {
	CacheTTL time.Duration
}

type DataDogConfig struct {
	StatsdConfig StatsdConfig
}

type StatsdConfig struct {
	Enabled    bool
	Url        string
	SampleRate float64
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

func KebabToSnakeCase(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "-", "_"), ".", "_")
}

func normalizeFlagName(s string) string {
	return KebabToSnakeCase(s)
}

func NewConfig() *Config {
	return &Config{
		Debug: viper.GetBool(normalizeFlagName(Debug)),

		DatabaseConfig: DatabaseConfig{
			Host:       viper.GetString(normalizeFlagName(DatabaseHost)),
			Port:       viper.GetInt(normalizeFlagName(DatabasePort)),
			User:       viper.GetString(normalizeFlagName(DatabaseUser)),
			Password:   viper.GetString(normalizeFlagName(DatabasePassword)),
			DbName:     viper.GetString(normalizeFlagName(DatabaseDbName)),
			SchemaName: viper.GetString(normalizeFlagName(DatabaseSchemaName)),
			SSLMode:    viper.GetString(normalizeFlagName(DatabaseSSLMode)),
		},

		EthereumRpcConfig: EthereumRpcConfig{
			BaseUrl:            viper.GetString(normalizeFlagName(EthereumRpcBaseUrl)),
			RequestTimeout:     viper.GetDuration(normalizeFlagName(EthereumRpcRequestTimeout)),
			TokenAddress:       viper.GetString(normalizeFlagName(EthereumTokenAddress)),
			StakingAddress:     viper.GetString(normalizeFlagName(EthereumStakingAddress)),
			CollectibleAddress: viper.GetString(normalizeFlagName(EthereumCollectibleAddress)),
		},

		SocialGraphConfig: SocialGraphConfig{
			BaseUrl:        viper.GetString(normalizeFlagName(SocialGraphBaseUrl)),
			ApiKey:         viper.GetString(normalizeFlagName(SocialGraphApiKey)),
			BulkUserLimit:  viper.GetInt(normalizeFlagName(SocialGraphBulkUserLimit)),
			RequestTimeout: viper.GetDuration(normalizeFlagName(SocialGraphRequestTimeout)),
			ChannelId:      viper.GetString(normalizeFlagName(SocialGraphChannelId)),
		},

		AirdropConfig: AirdropConfig{
			CohortSize:     viper.GetInt(normalizeFlagName(AirdropCohortSize)),
			SnapshotSize:   viper.GetInt(normalizeFlagName(AirdropSnapshotSize)),
			BatchSize:      viper.GetInt(normalizeFlagName(AirdropBatchSize)),
			BatchCooldown:  viper.GetDuration(normalizeFlagName(AirdropBatchCooldown)),
			TotalPool:             viper.GetInt64(normalizeFlagName(AirdropTotalPool)),
			RecalculationInterval: viper.GetDuration(normalizeFlagName(AirdropRecalcInterval)),
			AmountDecimals: viper.GetInt(normalizeFlagName(AirdropAmountDecimals)),
			ExcludedFids:   parseFidList(viper.GetString(normalizeFlagName(AirdropExcludedFids))),
		},

		LeaderboardConfig: LeaderboardConfig{
			CacheTTL: viper.GetDuration(normalizeFlagName(LeaderboardCacheTTL)),
		},

		DataDogConfig: DataDogConfig{
			StatsdConfig: StatsdConfig{
				Enabled:    viper.GetBool(normalizeFlagName(DataDogStatsdEnabled)),
				Url:        viper.GetString(normalizeFlagName(DataDogStatsdUrl)),
				SampleRate: viper.GetFloat64(normalizeFlagName(DataDogStatsdSampleRate)),
			},
		},

		PrometheusConfig: PrometheusConfig{
			Enabled: viper.GetBool(normalizeFlagName(PrometheusEnabled)),
			Port:    viper.GetInt(normalizeFlagName(PrometheusPort)),
		},
	}
}

func parseFidList(envVar string) []uint64 {
	if envVar == "" {
		return []uint64{}
	}
	parts := strings.Split(envVar, ",")
	fids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, ok := new(big.Int).SetString(p, 10)
		if !ok || !n.IsUint64() {
			continue
		}
		fids = append(fids, n.Uint64())
	}
	return fids
}

// AmountScale returns the multiplier applied to whole-token allocations before
// they are committed to a leaf (10^AmountDecimals).
func (a *AirdropConfig) AmountScale() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(a.AmountDecimals)), nil)
}
