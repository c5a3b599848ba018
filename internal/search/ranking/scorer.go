package ranking

import (
	"sort"

	"github.com/oneu-vn/voucher-search/internal/models"
)

// Scorer gộp score hai nhánh thành similarity trước boost
type Scorer struct {
	normalizer *Normalizer
}

// NewScorer tạo scorer dùng normalizer cho trước
func NewScorer(normalizer *Normalizer) *Scorer {
	return &Scorer{normalizer: normalizer}
}

// Score tính similarity trước boost: lấy max của dense và lexical sau
// chuẩn hóa. Document chỉ khớp một nhánh vẫn có score đầy đủ của nhánh
// đó thay vì bị kéo xuống bởi trung bình.
func (s *Scorer) Score(denseRaw, lexicalScore float64) float64 {
	dense := s.normalizer.NormalizeDense(denseRaw)
	lexical := s.normalizer.NormalizeLexical(lexicalScore)
	if dense >= lexical {
		return dense
	}
	return lexical
}

// Sort sắp kết quả ổn định: similarity giảm dần, hòa thì so dense thô
// giảm dần, rồi data_quality_score giảm dần, cuối cùng voucher_id tăng
// dần. Cùng input luôn cho cùng thứ tự.
func Sort(results []models.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.SimilarityScore != b.SimilarityScore {
			return a.SimilarityScore > b.SimilarityScore
		}
		if a.DenseScore != b.DenseScore {
			return a.DenseScore > b.DenseScore
		}
		if a.DataQuality != b.DataQuality {
			return a.DataQuality > b.DataQuality
		}
		return a.VoucherID < b.VoucherID
	})
}
