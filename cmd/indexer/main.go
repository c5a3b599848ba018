// Indexer đọc file JSON chứa danh sách voucher, sinh embeddings qua
// Gemini rồi ghi vào Elasticsearch. Voucher thiếu id được cấp uuid mới.
//
// Cách dùng:
//
//	indexer -file vouchers.json -workers 4
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/oneu-vn/voucher-search/internal/config"
	"github.com/oneu-vn/voucher-search/internal/index"
	"github.com/oneu-vn/voucher-search/internal/logging"
	"github.com/oneu-vn/voucher-search/internal/models"
	"github.com/oneu-vn/voucher-search/internal/search/adapter"
)

func main() {
	var (
		file    = flag.String("file", "vouchers.json", "file JSON chứa mảng voucher")
		workers = flag.Int("workers", 4, "số worker ghi song song")
		dryRun  = flag.Bool("dry-run", false, "chỉ validate, không ghi vào index")
	)
	flag.Parse()

	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	vouchers, err := loadVouchers(*file)
	if err != nil {
		logger.Fatal("không đọc được file voucher", zap.String("file", *file), zap.Error(err))
	}
	logger.Info("đã nạp voucher", zap.Int("count", len(vouchers)))

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.GeminiAPIKey})
	if err != nil {
		logger.Fatal("không tạo được client Gemini", zap.Error(err))
	}
	gemini := adapter.NewGeminiAdapter(genaiClient, adapter.GeminiConfig{
		EmbeddingModel:      cfg.GeminiEmbeddingModel,
		EmbeddingDimensions: cfg.Search.EmbeddingDimensions,
		MaxTextLength:       cfg.Search.MaxEmbeddingTextLength,
		CacheTTLMinutes:     cfg.Search.EmbeddingCacheTTLMinutes,
		CacheMaxSize:        cfg.Search.EmbeddingCacheMaxSize,
	})

	esClient, err := adapter.NewElasticClient(cfg.ESAddresses, cfg.ESUsername, cfg.ESPassword)
	if err != nil {
		logger.Fatal("không tạo được client Elasticsearch", zap.Error(err))
	}
	elastic := adapter.NewElasticAdapter(esClient, cfg.ESIndex)
	if err := elastic.EnsureIndex(ctx, cfg.Search.EmbeddingDimensions); err != nil {
		logger.Fatal("không chuẩn bị được index", zap.Error(err))
	}

	builder := index.NewBuilderWithWeights(gemini, cfg.Search.EmbeddingDimensions, cfg.Search.IndexTimeFieldWeights)

	var indexed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)

	for i := range vouchers {
		v := &vouchers[i]
		g.Go(func() error {
			if v.ID == "" {
				v.ID = uuid.NewString()
			}

			if err := builder.Build(gctx, v); err != nil {
				failed.Add(1)
				logger.Error("build document thất bại",
					zap.String("voucher_id", v.ID),
					zap.String("name", v.Name),
					zap.Error(err),
				)
				// voucher hỏng không chặn cả batch
				return nil
			}

			if *dryRun {
				indexed.Add(1)
				return nil
			}

			if err := elastic.UpsertVoucher(gctx, v); err != nil {
				failed.Add(1)
				logger.Error("ghi voucher thất bại", zap.String("voucher_id", v.ID), zap.Error(err))
				return nil
			}

			indexed.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Fatal("batch dừng giữa chừng", zap.Error(err))
	}

	logger.Info("hoàn tất",
		zap.Int64("indexed", indexed.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Bool("dry_run", *dryRun),
	)
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

func loadVouchers(path string) ([]models.Voucher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var vouchers []models.Voucher
	if err := json.Unmarshal(data, &vouchers); err != nil {
		return nil, err
	}
	return vouchers, nil
}
