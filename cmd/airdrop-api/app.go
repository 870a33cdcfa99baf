package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/config"
	"github.com/cyphera/cyphera-airdrop/internal/events"
	"github.com/cyphera/cyphera-airdrop/internal/logger"
	"github.com/cyphera/cyphera-airdrop/internal/middleware"
	"github.com/cyphera/cyphera-airdrop/internal/server"
	"github.com/cyphera/cyphera-airdrop/internal/services"
	"github.com/cyphera/cyphera-airdrop/internal/token"
)

// application owns everything main has to shut down.
type application struct {
	cfg        *config.Config
	router     *gin.Engine
	dispatcher *events.Dispatcher
	limiter    *middleware.RateLimiter
	closers    []func()
}

// newApplication loads configuration, connects the configured event
// publishers, deploys the airdrop contracts and builds the router.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app := &application{cfg: cfg}
	if err := app.init(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *application) init(ctx context.Context) error {
	cfg := a.cfg
	awsCfg, err := config.LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return err
	}

	var secrets *config.SecretsManagerClient
	if cfg.Auth.JWTSecretARN != "" {
		secrets = config.NewSecretsManagerClient(awsCfg)
	}
	if err := cfg.ResolveSecrets(ctx, secrets); err != nil {
		return err
	}

	var publishers []events.Publisher
	var store events.Store

	if cfg.Postgres.DSN != "" {
		pool, err := events.OpenPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pool.Close)
		if cfg.Postgres.AutoMigrate {
			if err := events.Migrate(ctx, pool); err != nil {
				return err
			}
		}
		pg := events.NewPostgresStore(pool)
		publishers = append(publishers, pg)
		store = pg
	}

	if cfg.Events.QueueURL != "" {
		publishers = append(publishers, events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.Events.QueueURL, cfg.Events.BatchSize, events.RetryConfig{}))
	}

	if cfg.Redis.URL != "" {
		client, err := events.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		publishers = append(publishers, events.NewRedisStreamPublisher(client, cfg.Redis.Stream, cfg.Redis.MaxLen))
	}

	if cfg.Notify.Enabled() {
		publishers = append(publishers, events.NewEmailNotifier(
			events.NewResendEmails(cfg.Notify.ResendAPIKey),
			cfg.Notify.From,
			cfg.Notify.To,
			cfg.Notify.Events...,
		))
	}

	opts := []chain.Option{
		chain.WithLogger(logger.NewStructuredLogger(logger.ComponentChain).Zap()),
	}
	if !cfg.IsProduction() {
		opts = append(opts, chain.WithSink(events.NewLogSink(logger.Log)))
	}
	if len(publishers) > 0 {
		a.dispatcher = events.NewDispatcher(cfg.Chain.ChainID, cfg.Events.Workers, cfg.Events.Buffer, publishers...)
		a.dispatcher.SetMaxPending(cfg.Events.MaxPending)
		a.dispatcher.Start()
		opts = append(opts, chain.WithSink(a.dispatcher))
	}

	ledger := chain.New(big.NewInt(cfg.Chain.ChainID), chain.SystemClock{}, opts...)
	owner := common.HexToAddress(cfg.Chain.Owner)
	svc, err := services.Bootstrap(ctx, ledger, services.BootstrapParams{
		Owner: owner,
		Token: token.Config{
			Name:          cfg.Chain.TokenName,
			Symbol:        cfg.Chain.TokenSymbol,
			Minter:        owner,
			SigningDomain: cfg.Chain.SigningDomain,
		},
	}, store)
	if err != nil {
		return fmt.Errorf("failed to deploy airdrop: %w", err)
	}

	a.limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	a.router = server.NewRouter(server.Options{
		Service:      svc,
		Auth:         middleware.NewAuthenticator(cfg.Auth.JWTSecret, ""),
		Limiter:      a.limiter,
		AllowOrigins: cfg.HTTP.AllowOrigins,
		Swagger:      !cfg.IsProduction(),
	})

	logger.Info("Airdrop API initialized",
		zap.String("stage", cfg.Stage),
		zap.Int64("chain_id", cfg.Chain.ChainID),
		zap.String("factory", svc.Deployment().Factory.Hex()),
		zap.Int("event_publishers", len(publishers)),
	)
	return nil
}

// Close stops the dispatcher first so queued events still reach the store.
func (a *application) Close() {
	if a.dispatcher != nil {
		a.dispatcher.Stop()
	}
	if a.limiter != nil {
		a.limiter.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
