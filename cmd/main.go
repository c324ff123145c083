package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"liquidity-monitor/internal/allowance"
	"liquidity-monitor/internal/chain"
	"liquidity-monitor/internal/config"
	"liquidity-monitor/internal/database"
	"liquidity-monitor/internal/emitters"
	"liquidity-monitor/internal/health"
	"liquidity-monitor/internal/index"
	"liquidity-monitor/internal/interfaces"
	"liquidity-monitor/internal/lifecycle"
	"liquidity-monitor/internal/logger"
	"liquidity-monitor/internal/prefs"
	"liquidity-monitor/internal/presentation"
	"liquidity-monitor/internal/tracking"
	"liquidity-monitor/internal/wallet"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().Error().Interface("panic", r).Msg("Application panicked, recovering")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.GetLogger().Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel)
	log := logger.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.InitDB(cfg.Database); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.Database); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	var store interfaces.PreferenceStore
	redisStore, err := prefs.NewRedisStore(cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory preference store")
		store = prefs.NewMemoryStore()
	} else {
		defer redisStore.Close()
		store = redisStore
	}
	coordinator := presentation.NewCoordinator(store)

	kafkaEmitter := emitters.NewKafkaEmitter(cfg.Kafka)
	defer kafkaEmitter.Close()
	emitter := &emitters.PrintEmitter{WrappedEmitter: kafkaEmitter}

	indexClient := index.NewClient(cfg.Indexer.URL, cfg.Indexer.RateLimit, cfg.MaxRetries, cfg.RetryDelay, log)
	if err := indexClient.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to transfer indexer")
	}
	defer indexClient.Close()

	manager := tracking.NewManager(indexClient, log)
	defer manager.Close()

	chainClient, err := chain.Dial(ctx, cfg.Chain, cfg.HTTP.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to chain RPC")
	}
	defer chainClient.Close()

	signer, err := wallet.New(chainClient, cfg.SignerKeyHex, cfg.Chain.ChainID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize wallet")
	}

	controller := lifecycle.NewController(
		lifecycle.Config{
			Pool:            common.HexToAddress(cfg.Pool.Address),
			Token:           common.HexToAddress(cfg.Pool.TokenAddress),
			Spender:         common.HexToAddress(cfg.Pool.Address),
			NativeSymbol:    cfg.Chain.NativeSymbol,
			GasReserve:      cfg.Chain.GasReserveWei,
			ExplorerBaseURL: cfg.Chain.ExplorerBaseURL,
		},
		signer,
		allowance.NewChecker(chainClient, log),
		index.NewRefresher(indexClient),
		log,
	).WithEmitter(emitter).WithRecorder(database.Recorder{})

	if account, ok := signer.Account(); ok {
		if err := manager.SetAccount(account.Hex()); err != nil {
			log.Error().Err(err).Msg("Failed to start tracking session")
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", health.LivenessHandler)
	mux.HandleFunc("/readyz", health.ReadinessHandler)
	(&api{
		manager:     manager,
		controller:  controller,
		coordinator: coordinator,
		cfg:         cfg,
	}).register(mux)
	health.RegisterManager(ctx, manager)
	health.SetReady(true)

	server := &http.Server{Addr: cfg.HTTP.HealthAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Health server failed")
		}
	}()

	<-ctx.Done()
	health.SetReady(false)
	_ = server.Shutdown(context.Background())
	log.Info().Msg("Shutting down")
}
