package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneu-vn/voucher-search/internal/models"
	"github.com/oneu-vn/voucher-search/internal/search/location"
)

func TestNormalizeDense(t *testing.T) {
	n := NewNormalizer(0)

	// score script = cosine + 1, nằm trong [0,2]
	assert.InDelta(t, 1.0, n.NormalizeDense(2.0), 1e-9)
	assert.InDelta(t, 0.5, n.NormalizeDense(1.0), 1e-9)
	assert.InDelta(t, 0.0, n.NormalizeDense(0.0), 1e-9)
	// giá trị ngoài khoảng bị chặn
	assert.InDelta(t, 1.0, n.NormalizeDense(2.5), 1e-9)
	assert.InDelta(t, 0.0, n.NormalizeDense(-0.5), 1e-9)
}

func TestNormalizeLexical(t *testing.T) {
	n := NewNormalizer(20)

	assert.InDelta(t, 0.5, n.NormalizeLexical(10), 1e-9)
	assert.InDelta(t, 1.0, n.NormalizeLexical(20), 1e-9)
	// bão hòa: vượt mốc vẫn là 1.0
	assert.InDelta(t, 1.0, n.NormalizeLexical(75), 1e-9)
	assert.Zero(t, n.NormalizeLexical(0))
	assert.Zero(t, n.NormalizeLexical(-3))
}

func TestScore(t *testing.T) {
	s := NewScorer(NewNormalizer(20))

	// lấy max của hai nhánh
	assert.InDelta(t, 0.9, s.Score(1.8, 10), 1e-9)  // dense 0.9 > lexical 0.5
	assert.InDelta(t, 1.0, s.Score(1.2, 40), 1e-9)  // lexical bão hòa thắng
	assert.InDelta(t, 0.6, s.Score(1.2, 0), 1e-9)   // chỉ khớp dense
	assert.InDelta(t, 0.25, s.Score(0, 5), 1e-9)    // chỉ khớp lexical
}

func TestSortDeterministic(t *testing.T) {
	results := []models.SearchResult{
		{VoucherID: "c", SimilarityScore: 0.8, DenseScore: 0.7, DataQuality: 0.5},
		{VoucherID: "b", SimilarityScore: 0.8, DenseScore: 0.7, DataQuality: 0.9},
		{VoucherID: "a", SimilarityScore: 0.8, DenseScore: 0.9, DataQuality: 0.1},
		{VoucherID: "d", SimilarityScore: 0.9, DenseScore: 0.1, DataQuality: 0.1},
		{VoucherID: "e", SimilarityScore: 0.8, DenseScore: 0.7, DataQuality: 0.5},
	}

	Sort(results)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.VoucherID
	}
	// score cao nhất trước; hòa thì dense thô, rồi quality, rồi id
	assert.Equal(t, []string{"d", "a", "b", "c", "e"}, ids)
}

func newTestReranker() *Reranker {
	return NewReranker(location.NewRegistry())
}

func makeResult(id, locName string, score float64) models.SearchResult {
	return models.SearchResult{
		VoucherID:       id,
		SimilarityScore: score,
		Location:        models.LocationInfo{Name: locName},
	}
}

func TestRerankBoosts(t *testing.T) {
	r := newTestReranker()

	results := []models.SearchResult{
		makeResult("exact", "Hải Phòng", 0.5),
		makeResult("neighbor", "Hà Nội", 0.5),
		makeResult("region", "Hải Phòng", 0.5),
		makeResult("other", "Hồ Chí Minh", 0.5),
		makeResult("unknown", "", 0.5),
	}
	results[2].Location.Name = "Quảng Ninh" // không resolve được -> semantic

	out := r.Rerank(results, "Hải Phòng", false)
	require.Len(t, out, 5)

	byID := map[string]models.SearchResult{}
	for _, res := range out {
		byID[res.VoucherID] = res
	}

	assert.InDelta(t, 0.5*1.60, byID["exact"].SimilarityScore, 1e-9)
	assert.Equal(t, models.RankingExactLocation, byID["exact"].RankingFactor)
	assert.InDelta(t, 0.5, byID["exact"].RawScore, 1e-9)

	assert.InDelta(t, 0.5*1.15, byID["neighbor"].SimilarityScore, 1e-9)
	assert.Equal(t, models.RankingNearbyLocation, byID["neighbor"].RankingFactor)

	// khác vùng, không lân cận
	assert.InDelta(t, 0.5, byID["other"].SimilarityScore, 1e-9)
	assert.Equal(t, models.RankingSemantic, byID["other"].RankingFactor)

	// không rõ địa điểm thì không boost
	assert.InDelta(t, 0.5, byID["unknown"].SimilarityScore, 1e-9)
	assert.Equal(t, models.RankingSemantic, byID["unknown"].RankingFactor)
}

func TestRerankRegionBoost(t *testing.T) {
	r := newTestReranker()

	results := []models.SearchResult{makeResult("hn", "Hà Nội", 0.5)}
	// Hà Nội không lân cận Cần Thơ và khác vùng -> semantic
	out := r.Rerank(results, "Cần Thơ", false)
	assert.Equal(t, models.RankingSemantic, out[0].RankingFactor)

	// Huế cùng Miền Trung với Nha Trang nhưng không lân cận -> regional
	results = []models.SearchResult{makeResult("hue", "Huế", 0.4)}
	out = r.Rerank(results, "Nha Trang", false)
	assert.Equal(t, models.RankingRegional, out[0].RankingFactor)
	assert.InDelta(t, 0.4*1.05, out[0].SimilarityScore, 1e-9)
}

func TestRerankContentMention(t *testing.T) {
	r := newTestReranker()

	res := makeResult("mention", "", 0.5)
	res.Content = "Áp dụng tại chi nhánh Hải Phòng và Hà Nội"

	// boost theo nội dung nhưng factor vẫn là semantic
	out := r.Rerank([]models.SearchResult{res}, "Hải Phòng", false)
	assert.InDelta(t, 0.5*1.30, out[0].SimilarityScore, 1e-9)
	assert.Equal(t, models.RankingSemantic, out[0].RankingFactor)

	// nội dung không dấu vẫn khớp
	res.Content = "Ap dung tai chi nhanh hai phong"
	out = r.Rerank([]models.SearchResult{res}, "Hải Phòng", false)
	assert.InDelta(t, 0.5*1.30, out[0].SimilarityScore, 1e-9)

	// dấu câu cạnh địa điểm không chặn boost
	res.Content = "Chi nhánh: Hải Phòng, Hà Nội"
	out = r.Rerank([]models.SearchResult{res}, "Hải Phòng", false)
	assert.InDelta(t, 0.5*1.30, out[0].SimilarityScore, 1e-9)
}

func TestRerankClamp(t *testing.T) {
	r := newTestReranker()

	out := r.Rerank([]models.SearchResult{makeResult("x", "Hải Phòng", 0.9)}, "Hải Phòng", false)
	// 0.9 * 1.60 = 1.44 bị chặn về 1.0
	assert.InDelta(t, 1.0, out[0].SimilarityScore, 1e-9)
	assert.InDelta(t, 0.9, out[0].RawScore, 1e-9)
}

func TestRerankStrict(t *testing.T) {
	r := newTestReranker()

	mention := makeResult("mention", "", 0.9)
	mention.Content = "Giao hàng tận nơi tại Hải Phòng"
	results := []models.SearchResult{
		makeResult("exact", "Hải Phòng", 0.5),
		makeResult("neighbor", "Hà Nội", 0.5),
		makeResult("far", "Hồ Chí Minh", 0.9),
		makeResult("unknown", "", 0.9),
		mention,
	}

	// chỉ trùng địa điểm hoặc lân cận sống sót, nhắc trong nội dung thì không
	out := r.Rerank(results, "Hải Phòng", true)
	require.Len(t, out, 2)
	assert.Equal(t, "exact", out[0].VoucherID)
	assert.Equal(t, "neighbor", out[1].VoucherID)

	// strict không có tác dụng khi query không có địa điểm
	out = r.Rerank(results, "", true)
	assert.Len(t, out, 5)
}

func TestRerankNoLocation(t *testing.T) {
	r := newTestReranker()

	out := r.Rerank([]models.SearchResult{makeResult("x", "Hà Nội", 0.7)}, "", false)
	assert.InDelta(t, 0.7, out[0].SimilarityScore, 1e-9)
	assert.Equal(t, models.RankingSemantic, out[0].RankingFactor)
}

func TestFilterMinScoreAndTruncate(t *testing.T) {
	results := []models.SearchResult{
		{VoucherID: "a", SimilarityScore: 0.9},
		{VoucherID: "b", SimilarityScore: 0.4},
		{VoucherID: "c", SimilarityScore: 0.6},
	}

	filtered := FilterMinScore(results, 0.5)
	require.Len(t, filtered, 2)
	assert.Equal(t, "a", filtered[0].VoucherID)
	assert.Equal(t, "c", filtered[1].VoucherID)

	truncated := Truncate(filtered, 1)
	assert.Len(t, truncated, 1)
	assert.Len(t, Truncate(nil, 5), 0)
}
