package search

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/oneu-vn/voucher-search/internal/models"
)

// SearchCache giữ response trong bộ nhớ với TTL. Mode rag không cache
// vì câu trả lời sinh động.
type SearchCache struct {
	data    map[string]*cachedResponse
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int
}

type cachedResponse struct {
	response  *models.SearchResponse
	timestamp time.Time
}

// NewSearchCache tạo cache với TTL và kích thước tối đa
func NewSearchCache(ttl time.Duration, maxSize int) *SearchCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if maxSize <= 0 {
		maxSize = 500
	}
	return &SearchCache{
		data:    make(map[string]*cachedResponse),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get trả về response đã cache, nil nếu không có hoặc đã hết hạn
func (c *SearchCache) Get(key string) *models.SearchResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cached, ok := c.data[key]; ok {
		if time.Since(cached.timestamp) < c.ttl {
			return cached.response
		}
	}
	return nil
}

// Set lưu response vào cache
func (c *SearchCache) Set(key string, response *models.SearchResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.data) >= c.maxSize {
		c.cleanup()
	}

	c.data[key] = &cachedResponse{
		response:  response,
		timestamp: time.Now(),
	}
}

// GenerateKey sinh khóa cache từ mọi tham số ảnh hưởng kết quả
func (c *SearchCache) GenerateKey(req *models.SearchRequest) string {
	keyData := fmt.Sprintf(
		"%s|%s|%d|%s|%s|%s|%t|%.4f|%t",
		req.Query,
		req.Mode,
		req.TopK,
		req.Filters.Location,
		req.Filters.Service,
		req.Filters.PriceRange,
		req.StrictLocation,
		req.MinScore,
		req.GetExpand(),
	)

	hash := sha256.Sum256([]byte(keyData))
	return hex.EncodeToString(hash[:16])
}

// cleanup xóa entry hết hạn; vẫn đầy thì bỏ entry cũ nhất
func (c *SearchCache) cleanup() {
	now := time.Now()
	for key, cached := range c.data {
		if now.Sub(cached.timestamp) > c.ttl {
			delete(c.data, key)
		}
	}

	if len(c.data) >= c.maxSize {
		oldest := time.Now()
		oldestKey := ""
		for key, cached := range c.data {
			if cached.timestamp.Before(oldest) {
				oldest = cached.timestamp
				oldestKey = key
			}
		}
		if oldestKey != "" {
			delete(c.data, oldestKey)
		}
	}
}

// Clear xóa toàn bộ cache
func (c *SearchCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*cachedResponse)
}
