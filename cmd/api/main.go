package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	_ "github.com/oneu-vn/voucher-search/docs"
	"github.com/oneu-vn/voucher-search/internal/api/routes"
	"github.com/oneu-vn/voucher-search/internal/config"
	"github.com/oneu-vn/voucher-search/internal/logging"
	"github.com/oneu-vn/voucher-search/internal/observability"
	"github.com/oneu-vn/voucher-search/internal/search"
	"github.com/oneu-vn/voucher-search/internal/search/adapter"
	"github.com/oneu-vn/voucher-search/internal/search/location"
)

// @title           Voucher Search API
// @version         1.0
// @description     API tìm kiếm voucher ngữ nghĩa tiếng Việt: truy hồi hybrid trên Elasticsearch, embedding và sinh câu trả lời qua Google Gemini

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

func main() {
	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	observability.InitTracer(cfg, logger)
	defer observability.ShutdownTracer(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := location.NewRegistry()
	if path := cfg.Search.LocationRegistryPath; path != "" {
		registry, err = location.LoadRegistry(path)
		if err != nil {
			logger.Fatal("không nạp được registry địa điểm", zap.Error(err))
		}
	}

	esClient, err := adapter.NewElasticClient(cfg.ESAddresses, cfg.ESUsername, cfg.ESPassword)
	if err != nil {
		logger.Fatal("không tạo được client Elasticsearch", zap.Error(err))
	}
	elastic := adapter.NewElasticAdapter(esClient, cfg.ESIndex)
	if err := elastic.EnsureIndex(ctx, cfg.Search.EmbeddingDimensions); err != nil {
		logger.Fatal("không chuẩn bị được index", zap.Error(err))
	}

	// Thiếu API key thì service vẫn lên, readiness sẽ báo not_ready
	var genaiClient *genai.Client
	if cfg.GeminiAPIKey != "" {
		genaiClient, err = genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.GeminiAPIKey})
		if err != nil {
			logger.Fatal("không tạo được client Gemini", zap.Error(err))
		}
	} else {
		logger.Warn("GEMINI_API_KEY chưa đặt, embedding và rag sẽ không hoạt động")
	}
	gemini := adapter.NewGeminiAdapter(genaiClient, adapter.GeminiConfig{
		EmbeddingModel:      cfg.GeminiEmbeddingModel,
		ChatModel:           cfg.GeminiChatModel,
		EmbeddingDimensions: cfg.Search.EmbeddingDimensions,
		MaxTextLength:       cfg.Search.MaxEmbeddingTextLength,
		CacheTTLMinutes:     cfg.Search.EmbeddingCacheTTLMinutes,
		CacheMaxSize:        cfg.Search.EmbeddingCacheMaxSize,
		Temperature:         float32(cfg.GeneratorTemperature),
	})

	engine := search.NewEngine(elastic, gemini, gemini, registry, search.EngineConfig{
		OverFetchMultiplier: cfg.Search.OverFetchMultiplier,
		HardCap:             cfg.Search.HardCap,
		LexicalSaturation:   cfg.Search.LexicalSaturation,
		MaxContextTokens:    cfg.RAG.MaxContextTokens,
		RAGConcurrency:      cfg.RAG.ConcurrencyLimit,
		RAGAcquireWait:      time.Duration(cfg.RAG.AcquireWaitMs) * time.Millisecond,
		EnableExpansion:     cfg.Search.EnableExpansion,
		SnippetLength:       cfg.Search.SnippetLength,
		CacheTTL:            time.Duration(cfg.Search.CacheTTLMinutes) * time.Minute,
		CacheSize:           cfg.Search.CacheMaxSize,
		IndexWeights:        cfg.Search.IndexTimeFieldWeights,
		AdaptiveDeltas:      cfg.Search.QueryTimeAdaptiveDeltas,
	}, logger)

	router := routes.SetupRouter(cfg, engine, elastic, gemini, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("server đang lắng nghe", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server dừng bất thường", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("nhận tín hiệu dừng, đang shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown không sạch", zap.Error(err))
	}
}
