package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fridge-recommender/internal/api"
	"fridge-recommender/internal/core/corpus"
	"fridge-recommender/internal/core/gap"
	"fridge-recommender/internal/core/generation"
	"fridge-recommender/internal/core/match"
	"fridge-recommender/internal/core/metrics"
	"fridge-recommender/internal/core/recommend"
	"fridge-recommender/internal/core/scale"
	"fridge-recommender/internal/infrastructure/config"
	"fridge-recommender/internal/pkg/common"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("Starting application",
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
		zap.String("generator", cfg.Generator.Provider),
		zap.String("api_key", config.MaskAPIKey(cfg.Generator.APIKey)),
		zap.String("corpus", cfg.Corpus.Path),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// 語料庫載入失敗時不啟動
	bounds := corpus.Bounds{
		MinServings:    cfg.Scale.MinServings,
		MaxServings:    cfg.Scale.MaxServings,
		MinServingSize: cfg.Scale.MinServingSize,
		MaxServingSize: cfg.Scale.MaxServingSize,
	}
	store := corpus.NewStore(cfg.Corpus.Path, bounds)
	store.OnReload(func(snap *corpus.Snapshot, err error) {
		if err != nil {
			m.ObserveCorpusLoad(0, time.Time{}, err)
			return
		}
		m.ObserveCorpusLoad(snap.Len(), snap.LoadedAt, nil)
	})
	if err := store.Load(); err != nil {
		common.LogFatal("Failed to load recipe corpus", zap.String("path", cfg.Corpus.Path), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Corpus.Watch {
		watcher, err := corpus.NewWatcher(store, cfg.Corpus.Debounce)
		if err != nil {
			common.LogFatal("Failed to watch recipe corpus", zap.Error(err))
		}
		defer watcher.Close()
		go watcher.Run(ctx)
	}

	generated, err := newGeneratedStore(ctx, cfg.Store)
	if err != nil {
		common.LogFatal("Failed to initialize generated recipe store", zap.Error(err))
	}
	defer generated.Close()

	adapter := generation.NewAdapter(newGenerator(cfg.Generator), cfg.Generator.Timeout)
	adapter.SetBounds(bounds)

	svc := recommend.NewService(store,
		match.NewMatcher(cfg.Match.MaxResults, cfg.Match.MinMatches),
		scale.NewScaler(scale.Limits{
			MinServings:    cfg.Scale.MinServings,
			MaxServings:    cfg.Scale.MaxServings,
			MinServingSize: cfg.Scale.MinServingSize,
			MaxServingSize: cfg.Scale.MaxServingSize,
		}),
		gap.NewAdvisor(gap.Options{
			MaxSuggestions:       cfg.Gap.MaxSuggestions,
			MaxRecipeSuggestions: cfg.Gap.MaxRecipeSuggestions,
			AlmostThreshold:      cfg.Gap.AlmostThreshold,
			MaxMissing:           cfg.Gap.MaxMissing,
		}),
		adapter,
		generated,
		m,
	)

	router := api.SetupRouter(cfg, api.Deps{Service: svc, Corpus: store, Metrics: m, Gatherer: reg})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}

// newGenerator 依設定選擇生成器
func newGenerator(cfg config.GeneratorConfig) generation.Generator {
	if cfg.Provider == config.ProviderOpenRouter {
		return generation.NewOpenRouterGenerator(cfg)
	}
	return generation.NewProceduralGenerator()
}

// newGeneratedStore 有 Redis 位址時使用 Redis，否則使用記憶體
func newGeneratedStore(ctx context.Context, cfg config.StoreConfig) (generation.Store, error) {
	if cfg.RedisAddr == "" {
		return generation.NewMemoryStore(cfg.TTL, cfg.MaxSize, cfg.CleanupInterval), nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return generation.NewRedisStore(pingCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TTL)
}
