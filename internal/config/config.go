// Package config nạp cấu hình ứng dụng từ biến môi trường.
//
// # Biến môi trường
//
// ## Elasticsearch
//   - ES_ADDRESSES: Danh sách địa chỉ node, phân tách bằng dấu phẩy (default: http://localhost:9200)
//   - ES_USERNAME: Username xác thực (default: rỗng)
//   - ES_PASSWORD: Password xác thực (default: rỗng)
//   - ES_INDEX: Tên index voucher (default: vouchers)
//
// ## Gemini
//   - GEMINI_API_KEY: API key của Google Gemini
//   - GEMINI_EMBEDDING_MODEL: Model sinh embedding (default: text-embedding-004)
//   - GEMINI_CHAT_MODEL: Model sinh câu trả lời rag (default: gemini-2.0-flash)
//   - GENERATOR_TEMPERATURE: Temperature khi sinh câu trả lời (default: 0.3)
//
// ## Search
//   - SEARCH_EMBEDDING_DIMENSIONS: Số chiều embedding (default: 768)
//   - SEARCH_MAX_EMBEDDING_TEXT_LENGTH: Độ dài text tối đa đưa vào embedding (default: 10000)
//   - SEARCH_EMBEDDING_CACHE_TTL_MINUTES: TTL cache embedding tính bằng phút (default: 30)
//   - SEARCH_EMBEDDING_CACHE_MAX_SIZE: Kích thước tối đa cache embedding (default: 1000)
//   - SEARCH_ENABLE_EXPANSION: Bật mở rộng từ đồng nghĩa cho mọi request (default: false)
//   - SEARCH_MAX_EXPANSION_TERMS: Số term tối đa khi mở rộng query (default: 5)
//   - SEARCH_LEXICAL_SATURATION: Ngưỡng bão hòa điểm lexical (default: 20)
//   - SEARCH_OVER_FETCH_MULTIPLIER: Hệ số lấy dư ứng viên trước re-rank (default: 3)
//   - SEARCH_HARD_CAP: Trần kích thước tập ứng viên (default: 50)
//   - SEARCH_CACHE_TTL_MINUTES: TTL cache kết quả tìm kiếm tính bằng phút (default: 2)
//   - SEARCH_CACHE_MAX_SIZE: Số response tối đa trong cache kết quả (default: 500)
//   - SEARCH_SNIPPET_LENGTH: Độ dài snippet hiển thị tính bằng ký tự (default: 200)
//   - INDEX_TIME_FIELD_WEIGHTS: JSON map trọng số tổng hợp vector combined lúc index, ví dụ {"content":0.4,"name":0.25,...} (default: trọng số nhúng sẵn)
//   - QUERY_TIME_ADAPTIVE_DELTAS: JSON map phần trọng số cộng thêm theo khía cạnh của query, ví dụ {"location":0.2,"service":0.15,"target":0.1} (default: nhúng sẵn)
//   - LOCATION_REGISTRY_PATH: File JSON ghi đè registry địa điểm (default: rỗng, dùng dữ liệu nhúng)
//
// ## RAG
//   - RAG_MAX_CONTEXT_TOKENS: Ngân sách token cho context của generator (default: 4000)
//   - RAG_CONCURRENCY_LIMIT: Số request rag chạy đồng thời tối đa (default: 8)
//   - RAG_ACQUIRE_WAIT_MS: Thời gian chờ suất rag trước khi hạ xuống hybrid (default: 200)
//
// ## Server
//   - SERVER_PORT: Port HTTP (default: 8080)
//   - LOG_LEVEL: Mức log debug/info/warn/error (default: info)
//   - TRACING_ENABLED: Bật OpenTelemetry tracing (default: false)
//   - TRACING_ENDPOINT: Endpoint OTLP gRPC (default: localhost:4317)
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ESAddresses []string
	ESUsername  string
	ESPassword  string
	ESIndex     string

	ServerPort string
	LogLevel   string

	GeminiAPIKey         string
	GeminiEmbeddingModel string
	GeminiChatModel      string
	GeneratorTemperature float64

	TracingEnabled  bool
	TracingEndpoint string

	Search SearchConfig
	RAG    RAGConfig
}

// SearchConfig gom các tham số của pipeline truy hồi và re-rank
type SearchConfig struct {
	EmbeddingDimensions      int
	MaxEmbeddingTextLength   int
	EmbeddingCacheTTLMinutes int
	EmbeddingCacheMaxSize    int

	EnableExpansion   bool
	MaxExpansionTerms int

	LexicalSaturation   float64
	OverFetchMultiplier int
	HardCap             int

	CacheTTLMinutes int
	CacheMaxSize    int
	SnippetLength   int

	// IndexTimeFieldWeights nil nghĩa là dùng trọng số nhúng sẵn
	IndexTimeFieldWeights map[string]float64
	// QueryTimeAdaptiveDeltas nil nghĩa là dùng delta nhúng sẵn
	QueryTimeAdaptiveDeltas map[string]float64

	// LocationRegistryPath rỗng nghĩa là dùng registry nhúng sẵn
	LocationRegistryPath string
}

// RAGConfig gom các tham số của tầng sinh câu trả lời
type RAGConfig struct {
	MaxContextTokens int
	ConcurrencyLimit int64
	AcquireWaitMs    int
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ESUsername: getEnv("ES_USERNAME", ""),
		ESPassword: getEnv("ES_PASSWORD", ""),
		ESIndex:    getEnv("ES_INDEX", "vouchers"),

		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiEmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		GeminiChatModel:      getEnv("GEMINI_CHAT_MODEL", "gemini-2.0-flash"),
		GeneratorTemperature: getEnvFloat("GENERATOR_TEMPERATURE", 0.3),

		TracingEnabled:  getEnv("TRACING_ENABLED", "false") == "true",
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4317"),

		Search: SearchConfig{
			EmbeddingDimensions:      getEnvInt("SEARCH_EMBEDDING_DIMENSIONS", 768),
			MaxEmbeddingTextLength:   getEnvInt("SEARCH_MAX_EMBEDDING_TEXT_LENGTH", 10000),
			EmbeddingCacheTTLMinutes: getEnvInt("SEARCH_EMBEDDING_CACHE_TTL_MINUTES", 30),
			EmbeddingCacheMaxSize:    getEnvInt("SEARCH_EMBEDDING_CACHE_MAX_SIZE", 1000),
			EnableExpansion:          getEnv("SEARCH_ENABLE_EXPANSION", "false") == "true",
			MaxExpansionTerms:        getEnvInt("SEARCH_MAX_EXPANSION_TERMS", 5),
			LexicalSaturation:        getEnvFloat("SEARCH_LEXICAL_SATURATION", 20),
			OverFetchMultiplier:      getEnvInt("SEARCH_OVER_FETCH_MULTIPLIER", 3),
			HardCap:                  getEnvInt("SEARCH_HARD_CAP", 50),
			CacheTTLMinutes:          getEnvInt("SEARCH_CACHE_TTL_MINUTES", 2),
			CacheMaxSize:             getEnvInt("SEARCH_CACHE_MAX_SIZE", 500),
			SnippetLength:            getEnvInt("SEARCH_SNIPPET_LENGTH", 200),
			IndexTimeFieldWeights:    getEnvFloatMap("INDEX_TIME_FIELD_WEIGHTS"),
			QueryTimeAdaptiveDeltas:  getEnvFloatMap("QUERY_TIME_ADAPTIVE_DELTAS"),
			LocationRegistryPath:     getEnv("LOCATION_REGISTRY_PATH", ""),
		},

		RAG: RAGConfig{
			MaxContextTokens: getEnvInt("RAG_MAX_CONTEXT_TOKENS", 4000),
			ConcurrencyLimit: int64(getEnvInt("RAG_CONCURRENCY_LIMIT", 8)),
			AcquireWaitMs:    getEnvInt("RAG_ACQUIRE_WAIT_MS", 200),
		},
	}

	addresses := getEnv("ES_ADDRESSES", "http://localhost:9200")
	cfg.ESAddresses = strings.Split(addresses, ",")
	for i := range cfg.ESAddresses {
		cfg.ESAddresses[i] = strings.TrimSpace(cfg.ESAddresses[i])
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvFloatMap parse một biến môi trường dạng JSON map string -> số.
// Không đặt hoặc parse lỗi trả về nil để downstream dùng mặc định.
func getEnvFloatMap(key string) map[string]float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return nil
	}
	var m map[string]float64
	if err := json.Unmarshal([]byte(value), &m); err != nil {
		return nil
	}
	return m
}
