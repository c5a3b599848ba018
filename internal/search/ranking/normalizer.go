// Package ranking chuẩn hóa score, chấm điểm và re-rank kết quả theo
// địa lý.
package ranking

import "math"

// DefaultLexicalSaturation là mốc bão hòa của score BM25: score bằng
// hoặc vượt mốc này chuẩn hóa thành 1.0.
const DefaultLexicalSaturation = 20.0

// Normalizer đưa score hai nhánh về thang [0,1]
type Normalizer struct {
	lexicalSaturation float64
}

// NewNormalizer tạo normalizer, saturation <= 0 dùng mặc định
func NewNormalizer(lexicalSaturation float64) *Normalizer {
	if lexicalSaturation <= 0 {
		lexicalSaturation = DefaultLexicalSaturation
	}
	return &Normalizer{lexicalSaturation: lexicalSaturation}
}

// NormalizeDense chuyển score script (cosine + 1, trong [0,2]) về [0,1]
func (n *Normalizer) NormalizeDense(raw float64) float64 {
	return clamp01(raw / 2.0)
}

// NormalizeLexical chuẩn hóa score BM25 bằng bão hòa tuyến tính:
// min(1, score/saturation). BM25 không có cận trên nên cần mốc cắt.
func (n *Normalizer) NormalizeLexical(score float64) float64 {
	if score <= 0 {
		return 0
	}
	return math.Min(1.0, score/n.lexicalSaturation)
}

// DenseSimilarity đổi score script về cosine similarity gốc [-1,1]
func DenseSimilarity(raw float64) float64 {
	return raw - 1.0
}

func clamp01(x float64) float64 {
	return math.Max(0.0, math.Min(1.0, x))
}
