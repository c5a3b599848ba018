// Package index xây dựng và kiểm tra document voucher trước khi ghi
// vào index: sinh embedding theo từng field, tổng hợp vector combined
// và kiểm tra các invariant của document.
package index

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/oneu-vn/voucher-search/internal/models"
)

// Epsilon là sai số chấp nhận khi kiểm tra unit-norm
const Epsilon = 1e-6

// CombinedWeights là trọng số tổng hợp vector combined lúc index.
// Field thiếu không đóng góp; bước chuẩn hóa cuối tự tái phân bố.
var CombinedWeights = map[string]float64{
	models.FieldContent:  0.40,
	models.FieldName:     0.25,
	models.FieldLocation: 0.15,
	models.FieldService:  0.10,
	models.FieldTarget:   0.10,
}

// indexedFields là các field vector thực sự được lưu trong index.
// Vector name chỉ dùng để tổng hợp combined.
var indexedFields = []string{
	models.FieldContent,
	models.FieldLocation,
	models.FieldService,
	models.FieldTarget,
	models.FieldCombined,
}

// EmbeddingProvider sinh vector unit-length cho một đoạn text
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Builder sinh embeddings cho voucher trước khi index
type Builder struct {
	provider EmbeddingProvider
	dims     int
	weights  map[string]float64
}

// NewBuilder tạo builder với provider và số chiều embedding, dùng trọng
// số combined mặc định.
func NewBuilder(provider EmbeddingProvider, dims int) *Builder {
	return NewBuilderWithWeights(provider, dims, nil)
}

// NewBuilderWithWeights tạo builder với trọng số combined ghi đè từ cấu
// hình. Map rỗng hoặc nil dùng CombinedWeights.
func NewBuilderWithWeights(provider EmbeddingProvider, dims int, weights map[string]float64) *Builder {
	if len(weights) == 0 {
		weights = CombinedWeights
	}
	return &Builder{provider: provider, dims: dims, weights: weights}
}

// Build sinh embeddings cho mọi field có nội dung rồi tổng hợp vector
// combined. Voucher được điền price_range và timestamps nếu còn thiếu.
// Document trả về đã qua Validate.
func (b *Builder) Build(ctx context.Context, v *models.Voucher) error {
	if v.Price.PriceRange == "" {
		v.Price.PriceRange = models.PriceRangeFor(v.Price.Price)
	}
	now := time.Now().UTC()
	if v.CreatedAt == nil {
		v.CreatedAt = &now
	}
	v.UpdatedAt = &now

	texts := fieldTexts(v)
	if _, ok := texts[models.FieldContent]; !ok {
		return models.ErrInvalidDocument.WithDetail("voucher %s không có nội dung để embedding", v.ID)
	}

	v.Embeddings = make(map[string][]float32, len(texts)+1)
	for field, text := range texts {
		vec, err := b.provider.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embedding field %s: %w", field, err)
		}
		if unit := Normalize(vec); unit != nil {
			v.Embeddings[field] = unit
		}
	}

	combined := b.combine(v.Embeddings)
	if combined == nil {
		return models.ErrInvalidDocument.WithDetail("voucher %s không tổng hợp được vector combined", v.ID)
	}
	v.Embeddings[models.FieldCombined] = combined

	return b.Validate(v)
}

// combine tính tổng có trọng số của các vector field rồi chuẩn hóa
func (b *Builder) combine(embeddings map[string][]float32) []float32 {
	sum := make([]float64, b.dims)
	found := false
	for field, weight := range b.weights {
		vec, ok := embeddings[field]
		if !ok || len(vec) != b.dims {
			continue
		}
		found = true
		for i, x := range vec {
			sum[i] += weight * float64(x)
		}
	}
	if !found {
		return nil
	}
	out := make([]float32, b.dims)
	for i, x := range sum {
		out[i] = float32(x)
	}
	return Normalize(out)
}

// Validate kiểm tra các invariant của document trước khi ghi vào index.
// Mọi vi phạm trả về InvalidDocument kèm chi tiết.
func (b *Builder) Validate(v *models.Voucher) error {
	if v.ID == "" {
		return models.ErrInvalidDocument.WithDetail("thiếu voucher_id")
	}
	if v.Name == "" {
		return models.ErrInvalidDocument.WithDetail("voucher %s thiếu tên", v.ID)
	}
	if v.Content == "" {
		return models.ErrInvalidDocument.WithDetail("voucher %s thiếu nội dung", v.ID)
	}

	// content và combined là bắt buộc
	for _, field := range []string{models.FieldContent, models.FieldCombined} {
		if _, ok := v.Embeddings[field]; !ok {
			return models.ErrInvalidDocument.WithDetail("voucher %s thiếu embedding %s", v.ID, field)
		}
	}

	validFields := map[string]bool{
		models.FieldContent:  true,
		models.FieldName:     true,
		models.FieldLocation: true,
		models.FieldService:  true,
		models.FieldTarget:   true,
		models.FieldCombined: true,
	}
	for field, vec := range v.Embeddings {
		if !validFields[field] {
			return models.ErrInvalidDocument.WithDetail("voucher %s có embedding lạ: %s", v.ID, field)
		}
		if len(vec) != b.dims {
			return models.ErrInvalidDocument.WithDetail("voucher %s: embedding %s có %d chiều (cần %d)", v.ID, field, len(vec), b.dims)
		}
		if !IsUnitNorm(vec, Epsilon) {
			return models.ErrInvalidDocument.WithDetail("voucher %s: embedding %s không unit-norm (%.8f)", v.ID, field, L2Norm(vec))
		}
	}

	if want := models.PriceRangeFor(v.Price.Price); v.Price.PriceRange != want {
		return models.ErrInvalidDocument.WithDetail("voucher %s: price_range %q không khớp giá %d (cần %q)", v.ID, v.Price.PriceRange, v.Price.Price, want)
	}
	if v.DataQualityScore < 0 || v.DataQualityScore > 1 || math.IsNaN(v.DataQualityScore) {
		return models.ErrInvalidDocument.WithDetail("voucher %s: data_quality_score %.4f ngoài [0,1]", v.ID, v.DataQualityScore)
	}
	return nil
}

// IndexedEmbeddings lọc ra các vector thực sự được ghi vào index
func IndexedEmbeddings(v *models.Voucher) map[string][]float32 {
	out := make(map[string][]float32, len(indexedFields))
	for _, field := range indexedFields {
		if vec, ok := v.Embeddings[field]; ok {
			out[field] = vec
		}
	}
	return out
}
