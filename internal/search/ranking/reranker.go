package ranking

import (
	"fmt"

	"github.com/oneu-vn/voucher-search/internal/models"
	"github.com/oneu-vn/voucher-search/internal/search/location"
)

// Hệ số boost địa lý, nhân vào similarity rồi chặn về [0,1]
const (
	BoostExactLocation  = 1.60
	BoostContentMention = 1.30
	BoostNeighbor       = 1.15
	BoostRegion         = 1.05
)

// Reranker điều chỉnh thứ hạng theo quan hệ địa lý giữa query và
// voucher: trùng địa điểm, nhắc đến trong nội dung, lân cận, cùng vùng.
type Reranker struct {
	registry *location.Registry
}

// NewReranker tạo reranker với registry địa điểm
func NewReranker(registry *location.Registry) *Reranker {
	return &Reranker{registry: registry}
}

// Rerank áp boost địa lý cho từng kết quả rồi gán ranking_factor.
// Query không có địa điểm thì mọi kết quả giữ nguyên score với factor
// semantic_match. Score sau boost luôn trong [0,1].
//
// strict chỉ giữ kết quả trùng địa điểm hoặc lân cận trước khi sắp xếp.
func (r *Reranker) Rerank(results []models.SearchResult, queryLocation string, strict bool) []models.SearchResult {
	out := make([]models.SearchResult, 0, len(results))
	for _, res := range results {
		res.RawScore = res.SimilarityScore
		boost, factor := r.classify(&res, queryLocation)
		res.SimilarityScore = clamp01(res.SimilarityScore * boost)
		res.RankingFactor = factor

		if strict && queryLocation != "" &&
			factor != models.RankingExactLocation && factor != models.RankingNearbyLocation {
			continue
		}
		out = append(out, res)
	}
	return out
}

// classify xác định quan hệ địa lý và hệ số boost tương ứng. Voucher
// không rõ địa điểm không nhận boost theo metadata, nhưng vẫn được xét
// theo nội dung.
func (r *Reranker) classify(res *models.SearchResult, queryLocation string) (float64, string) {
	if queryLocation == "" {
		return 1.0, models.RankingSemantic
	}

	voucherLoc := r.registry.Resolve(res.Location.Name)

	if voucherLoc != "" && voucherLoc == queryLocation {
		return BoostExactLocation, models.RankingExactLocation
	}
	if r.registry.ContainsSurface(res.Content, queryLocation) ||
		r.registry.ContainsSurface(res.ContentSnippet, queryLocation) {
		// nhắc đến trong nội dung chỉ nâng score, không lên hạng factor
		return BoostContentMention, models.RankingSemantic
	}
	if voucherLoc != "" && r.registry.IsNeighbor(queryLocation, voucherLoc) {
		return BoostNeighbor, models.RankingNearbyLocation
	}
	if voucherLoc != "" && r.registry.RegionOf(voucherLoc) == r.registry.RegionOf(queryLocation) {
		return BoostRegion, models.RankingRegional
	}
	return 1.0, models.RankingSemantic
}

// FilterMinScore bỏ kết quả dưới ngưỡng score sau boost
func FilterMinScore(results []models.SearchResult, minScore float64) []models.SearchResult {
	if minScore <= 0 {
		return results
	}
	out := results[:0]
	for _, res := range results {
		if res.SimilarityScore >= minScore {
			out = append(out, res)
		}
	}
	return out
}

// Truncate cắt danh sách về tối đa topK phần tử
func Truncate(results []models.SearchResult, topK int) []models.SearchResult {
	if topK > 0 && len(results) > topK {
		return results[:topK]
	}
	return results
}

// ExplainGeographic sinh mô tả tiếng Việt cho bước re-rank địa lý
func ExplainGeographic(queryLocation string, results []models.SearchResult) string {
	if queryLocation == "" {
		return "Không phát hiện địa điểm trong query, giữ nguyên thứ hạng ngữ nghĩa"
	}
	counts := map[string]int{}
	for _, res := range results {
		counts[res.RankingFactor]++
	}
	return fmt.Sprintf(
		"Ưu tiên kết quả quanh %s: %d trùng địa điểm, %d lân cận, %d cùng vùng, %d theo ngữ nghĩa",
		queryLocation,
		counts[models.RankingExactLocation],
		counts[models.RankingNearbyLocation],
		counts[models.RankingRegional],
		counts[models.RankingSemantic],
	)
}
