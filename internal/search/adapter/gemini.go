// Package adapter đóng gói các backend bên ngoài: Gemini cho embedding
// và sinh câu trả lời, Elasticsearch cho lưu trữ và truy hồi.
package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"google.golang.org/genai"

	"github.com/oneu-vn/voucher-search/internal/index"
	"github.com/oneu-vn/voucher-search/internal/models"
)

// GeminiConfig cấu hình cho adapter Gemini
type GeminiConfig struct {
	EmbeddingModel      string
	ChatModel           string
	EmbeddingDimensions int
	MaxTextLength       int
	CacheTTLMinutes     int
	CacheMaxSize        int
	Temperature         float32
	RequestTimeout      time.Duration
}

// DefaultGeminiConfig trả về cấu hình mặc định
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		EmbeddingModel:      "text-embedding-004",
		ChatModel:           "gemini-2.0-flash",
		EmbeddingDimensions: 768,
		MaxTextLength:       10000,
		CacheTTLMinutes:     30,
		CacheMaxSize:        1000,
		Temperature:         0.3,
		RequestTimeout:      15 * time.Second,
	}
}

// GeminiAdapter đóng gói các thao tác với Gemini API.
// Embedding được cache theo hash của text với TTL.
type GeminiAdapter struct {
	client *genai.Client
	config GeminiConfig
	cache  *expirable.LRU[string, []float32]
}

// NewGeminiAdapter tạo adapter mới cho Gemini
func NewGeminiAdapter(client *genai.Client, cfg GeminiConfig) *GeminiAdapter {
	def := DefaultGeminiConfig()
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = def.EmbeddingModel
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = def.ChatModel
	}
	if cfg.EmbeddingDimensions == 0 {
		cfg.EmbeddingDimensions = def.EmbeddingDimensions
	}
	if cfg.MaxTextLength == 0 {
		cfg.MaxTextLength = def.MaxTextLength
	}
	if cfg.CacheTTLMinutes == 0 {
		cfg.CacheTTLMinutes = def.CacheTTLMinutes
	}
	if cfg.CacheMaxSize == 0 {
		cfg.CacheMaxSize = def.CacheMaxSize
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = def.Temperature
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}

	return &GeminiAdapter{
		client: client,
		config: cfg,
		cache: expirable.NewLRU[string, []float32](
			cfg.CacheMaxSize, nil, time.Duration(cfg.CacheTTLMinutes)*time.Minute),
	}
}

// Embed sinh embedding unit-length cho một đoạn text
func (g *GeminiAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	if g.client == nil {
		return nil, models.ErrEmbeddingService.WithDetail("client Gemini chưa khởi tạo")
	}

	text = truncateRunes(text, g.config.MaxTextLength)

	cacheKey := hashKey(text)
	if cached, ok := g.cache.Get(cacheKey); ok {
		return cached, nil
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, g.config.RequestTimeout)
	defer cancel()

	content := genai.NewContentFromText(text, genai.RoleUser)
	outputDim := int32(g.config.EmbeddingDimensions)
	embedConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.config.EmbeddingModel, []*genai.Content{content}, embedConfig)
	if err != nil {
		// chỉ deadline của request tổng thể mới nổi lên thành 504; timeout
		// riêng của provider là lỗi dịch vụ embedding
		if parent.Err() != nil {
			return nil, models.ErrDeadlineExceeded.WithDetail("embedding không kịp deadline của request")
		}
		return nil, models.ErrEmbeddingService.WithDetail("%v", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, models.ErrEmbeddingService.WithDetail("API không trả về embedding nào")
	}

	embedding := resp.Embeddings[0].Values
	if len(embedding) != g.config.EmbeddingDimensions {
		return nil, models.ErrEmbeddingService.WithDetail(
			"embedding %d chiều (cần %d)", len(embedding), g.config.EmbeddingDimensions)
	}

	// API không đảm bảo unit-length khi truncate chiều
	unit := index.Normalize(embedding)
	if unit == nil {
		return nil, models.ErrEmbeddingService.WithDetail("API trả về vector zero")
	}

	g.cache.Add(cacheKey, unit)
	return unit, nil
}

// Generate sinh câu trả lời từ prompt với system instruction
func (g *GeminiAdapter) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if g.client == nil {
		return "", models.ErrGeneratorService.WithDetail("client Gemini chưa khởi tạo")
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, g.config.RequestTimeout)
	defer cancel()

	temperature := g.config.Temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if systemInstruction != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.config.ChatModel, contents, genConfig)
	if err != nil {
		if parent.Err() != nil {
			return "", models.ErrDeadlineExceeded.WithDetail("generation không kịp deadline của request")
		}
		return "", models.ErrGeneratorService.WithDetail("%v", err)
	}

	text := resp.Text()
	if text == "" {
		return "", models.ErrGeneratorService.WithDetail("model không trả về nội dung")
	}
	return text, nil
}

// IsAvailable kiểm tra client đã sẵn sàng chưa
func (g *GeminiAdapter) IsAvailable() bool {
	return g.client != nil
}

// Dimensions trả về số chiều embedding đã cấu hình
func (g *GeminiAdapter) Dimensions() int {
	return g.config.EmbeddingDimensions
}

func hashKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// truncateRunes cắt text về tối đa max rune. Cắt theo rune để không
// chặt đôi ký tự tiếng Việt nhiều byte.
func truncateRunes(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

var _ index.EmbeddingProvider = (*GeminiAdapter)(nil)
