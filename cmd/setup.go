package cmd

import (
	"fmt"
	"net/http"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/logger"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/metrics"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/activity"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/batch"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/clients/ledger"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/clients/socialgraph"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/distribution"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/leaderboard"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/postgres"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/proofs"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/scoring"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/service/airdropDataService"
	"github.com/jpfraneto/rebrnd-backend-sub000/pkg/snapshot"
	pgStorage "github.com/jpfraneto/rebrnd-backend-sub000/pkg/storage/postgres"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app holds everything a command needs after bootstrap.
type app struct {
	Logger       *zap.Logger
	Config       *config.Config
	MetricsSink  *metrics.MetricsSink
	Store        *pgStorage.PostgresAirdropStore
	Orchestrator *batch.Orchestrator
	DataService  *airdropDataService.AirdropDataService
}

// setupApp wires the full dependency graph against the configured database
// and upstream services. Commands call it after flags are bound.
func setupApp(cfg *config.Config) (*app, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	if err != nil {
		return nil, err
	}

	sinkClients, err := metrics.InitMetricsSinksFromConfig(cfg, l)
	if err != nil {
		return nil, err
	}
	sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, sinkClients)
	if err != nil {
		return nil, err
	}

	pgConfig := postgres.PostgresConfigFromDbConfig(&cfg.DatabaseConfig)
	pg, err := postgres.NewPostgres(pgConfig)
	if err != nil {
		l.Sugar().Errorw("Failed to setup postgres connection", zap.Error(err))
		return nil, err
	}
	grm, err := postgres.NewGormFromPostgresConnection(pg.Db)
	if err != nil {
		l.Sugar().Errorw("Failed to create gorm instance", zap.Error(err))
		return nil, err
	}

	store := pgStorage.NewPostgresAirdropStore(grm, l)
	if err := store.AutoMigrate(); err != nil {
		l.Sugar().Errorw("Failed to migrate airdrop tables", zap.Error(err))
		return nil, err
	}
	activityStore := activity.NewGormActivityStore(grm, l)

	socialGraph := socialgraph.NewClient(http.DefaultClient, l, &cfg.SocialGraphConfig)
	ledgerClient, err := ledger.NewClient(&cfg.EthereumRpcConfig, l)
	if err != nil {
		l.Sugar().Errorw("Failed to create ethereum client", zap.Error(err))
		return nil, err
	}

	calculator := scoring.NewCalculator(activityStore, socialGraph, ledgerClient, l, cfg)
	aggregator := scoring.NewAggregator(store, l)
	orchestrator := batch.NewOrchestrator(calculator, aggregator, activityStore, socialGraph, sink, l, cfg)
	engine := distribution.NewEngine(store, sink, l, cfg)
	builder := snapshot.NewBuilder(store, sink, l, cfg)
	proofService := proofs.NewProofService(store, sink, l, cfg)
	lb := leaderboard.NewService(store, l, cfg)

	ads := airdropDataService.NewAirdropDataService(
		calculator,
		aggregator,
		orchestrator,
		engine,
		builder,
		proofService,
		lb,
		l,
		cfg,
	)

	return &app{
		Logger:       l,
		Config:       cfg,
		MetricsSink:  sink,
		Store:        store,
		Orchestrator: orchestrator,
		DataService:  ads,
	}, nil
}

func bindCommandFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := viper.BindPFlag(config.KebabToSnakeCase(f.Name), f); err != nil {
			fmt.Printf("Failed to bind flag '%s' - %+v\n", f.Name, err)
		}
		if err := viper.BindEnv(f.Name); err != nil {
			fmt.Printf("Failed to bind env '%s' - %+v\n", f.Name, err)
		}
	})
}
