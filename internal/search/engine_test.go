package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneu-vn/voucher-search/internal/index"
	"github.com/oneu-vn/voucher-search/internal/models"
	"github.com/oneu-vn/voucher-search/internal/search/adapter"
	"github.com/oneu-vn/voucher-search/internal/search/location"
)

type fakeRetriever struct {
	mu          sync.Mutex
	hits        []adapter.Hit
	err         error
	lastParams  adapter.SearchParams
	hybridCalls int
	vectorCalls int
}

func (f *fakeRetriever) HybridSearch(_ context.Context, p adapter.SearchParams) ([]adapter.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastParams = p
	f.hybridCalls++
	return f.hits, f.err
}

func (f *fakeRetriever) VectorSearch(_ context.Context, p adapter.SearchParams) ([]adapter.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastParams = p
	f.vectorCalls++
	return f.hits, f.err
}

func (f *fakeRetriever) GetVoucher(_ context.Context, id string) (*models.Voucher, error) {
	for _, h := range f.hits {
		if h.Voucher.ID == id {
			v := h.Voucher
			return &v, nil
		}
	}
	return nil, models.ErrVoucherNotFound
}

func (f *fakeRetriever) DeleteVoucher(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, h := range f.hits {
		if h.Voucher.ID == id {
			f.hits = append(f.hits[:i], f.hits[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRetriever) Ping(context.Context) error { return f.err }

type fakeEmbedder struct {
	err         error
	unavailable bool
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) IsAvailable() bool { return !f.unavailable }
func (f *fakeEmbedder) Dimensions() int   { return 3 }

type fakeGenerator struct {
	mu     sync.Mutex
	answer string
	err    error
	delay  time.Duration
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", models.ErrDeadlineExceeded
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeGenerator) IsAvailable() bool { return true }

func makeHit(id, name, locName string, denseRaw, lexical, quality float64) adapter.Hit {
	return adapter.Hit{
		Voucher: models.Voucher{
			ID:               id,
			Name:             name,
			Content:          "Ưu đãi " + name,
			Location:         models.LocationInfo{Name: locName},
			Service:          models.ServiceInfo{Category: "restaurant"},
			Price:            models.PriceInfo{Price: 200_000, PriceRange: models.PriceRangeMidRange},
			DataQualityScore: quality,
		},
		DenseRaw:     denseRaw,
		LexicalScore: lexical,
	}
}

func newTestEngine(r *fakeRetriever, em *fakeEmbedder, gen *fakeGenerator, cfg EngineConfig) *Engine {
	return NewEngine(r, em, gen, location.NewRegistry(), cfg, nil)
}

func TestSearchHybrid(t *testing.T) {
	retriever := &fakeRetriever{hits: []adapter.Hit{
		makeHit("v1", "Buffet Phố Biển", "Hải Phòng", 1.8, 10, 0.9),
		makeHit("v2", "Lẩu Hà Thành", "Hà Nội", 1.6, 5, 0.8),
	}}
	e := newTestEngine(retriever, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})

	resp, err := e.Search(context.Background(), &models.SearchRequest{
		Query: "quán ăn tại hải phòng",
		Mode:  models.SearchModeHybrid,
		TopK:  10,
	})
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, models.MethodHybridMultiField, resp.Metadata.SearchMethod)
	assert.False(t, resp.Metadata.Degraded)
	assert.Equal(t, 3, resp.Metadata.EmbeddingDimension)

	// v1 trùng địa điểm: 0.9 * 1.6 chặn về 1.0
	assert.Equal(t, "v1", resp.Results[0].VoucherID)
	assert.InDelta(t, 1.0, resp.Results[0].SimilarityScore, 1e-9)
	assert.Equal(t, models.RankingExactLocation, resp.Results[0].RankingFactor)
	assert.InDelta(t, 0.9, resp.Results[0].RawScore, 1e-9)

	// v2 lân cận: max(0.8, 0.25) * 1.15
	assert.Equal(t, "v2", resp.Results[1].VoucherID)
	assert.InDelta(t, 0.8*1.15, resp.Results[1].SimilarityScore, 1e-9)
	assert.Equal(t, models.RankingNearbyLocation, resp.Results[1].RankingFactor)

	// over-fetch: k' = top_k * 3
	assert.Equal(t, 30, retriever.lastParams.Size)
	assert.Equal(t, models.FieldCombined, retriever.lastParams.Field)

	require.NotNil(t, resp.ParsedComponents)
	assert.Equal(t, "Hải Phòng", resp.ParsedComponents.Location)
	require.NotNil(t, resp.Explanations)
	assert.NotEmpty(t, resp.Explanations.QueryParsing)
	assert.NotEmpty(t, resp.Explanations.GeographicRanking)
}

// Boost địa lý có thể đảo thứ hạng: kết quả sim thấp hơn nhưng trùng
// địa điểm vượt kết quả sim cao hơn ở nơi khác.
func TestSearchGeoBoostReorders(t *testing.T) {
	retriever := &fakeRetriever{hits: []adapter.Hit{
		makeHit("far", "Nhà hàng Sài Gòn", "Hồ Chí Minh", 1.5, 0, 0.9), // sim 0.75
		makeHit("near", "Quán Hải Phòng", "Hải Phòng", 1.0, 0, 0.9),    // sim 0.50 -> 0.80
	}}
	e := newTestEngine(retriever, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})

	resp, err := e.Search(context.Background(), &models.SearchRequest{
		Query: "quán ăn ngon tại hải phòng",
		Mode:  models.SearchModeHybrid,
		TopK:  10,
	})
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "near", resp.Results[0].VoucherID)
	assert.InDelta(t, 0.80, resp.Results[0].SimilarityScore, 1e-9)
	assert.Equal(t, "far", resp.Results[1].VoucherID)
}

func TestSearchVectorSkipsGeoBoost(t *testing.T) {
	retriever := &fakeRetriever{hits: []adapter.Hit{
		makeHit("far", "Nhà hàng Sài Gòn", "Hồ Chí Minh", 1.5, 0, 0.9),
		makeHit("near", "Quán Hải Phòng", "Hải Phòng", 1.0, 0, 0.9),
	}}
	e := newTestEngine(retriever, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})

	resp, err := e.Search(context.Background(), &models.SearchRequest{
		Query: "quán ăn ngon tại hải phòng",
		Mode:  models.SearchModeVector,
		TopK:  10,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, retriever.vectorCalls)
	assert.Zero(t, retriever.hybridCalls)
	assert.Equal(t, models.MethodVectorCosine, resp.Metadata.SearchMethod)

	// thứ hạng cosine thuần, không boost
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "far", resp.Results[0].VoucherID)
	assert.InDelta(t, 0.75, resp.Results[0].SimilarityScore, 1e-9)
	assert.Equal(t, models.RankingSemantic, resp.Results[0].RankingFactor)
}

func TestSearchValidation(t *testing.T) {
	e := newTestEngine(&fakeRetriever{}, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})
	ctx := context.Background()

	tests := []struct {
		name string
		req  *models.SearchRequest
	}{
		{"query quá ngắn", &models.SearchRequest{Query: "a", TopK: 10}},
		{"query toàn ký tự lạ", &models.SearchRequest{Query: "@#$%", TopK: 10}},
		{"top_k quá lớn", &models.SearchRequest{Query: "quán ăn", TopK: 51}},
		{"top_k âm", &models.SearchRequest{Query: "quán ăn", TopK: -1}},
		{"mode lạ", &models.SearchRequest{Query: "quán ăn", Mode: "fuzzy", TopK: 10}},
		{"min_score ngoài khoảng", &models.SearchRequest{Query: "quán ăn", TopK: 10, MinScore: 1.5}},
		{"filter location lạ", &models.SearchRequest{Query: "quán ăn", TopK: 10,
			Filters: models.SearchFilters{Location: "atlantis"}}},
		{"filter service lạ", &models.SearchRequest{Query: "quán ăn", TopK: 10,
			Filters: models.SearchFilters{Service: "banking"}}},
		{"filter price lạ", &models.SearchRequest{Query: "quán ăn", TopK: 10,
			Filters: models.SearchFilters{PriceRange: "free"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Search(ctx, tt.req)
			se := models.AsSearchError(err)
			require.NotNil(t, se)
			assert.Equal(t, models.CodeBadRequest, se.Code)
		})
	}
}

func TestSearchDefaults(t *testing.T) {
	retriever := &fakeRetriever{}
	e := newTestEngine(retriever, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})

	resp, err := e.Search(context.Background(), &models.SearchRequest{Query: "quán ăn"})
	require.NoError(t, err)

	assert.Equal(t, models.SearchModeHybrid, resp.Mode)
	assert.Equal(t, 30, retriever.lastParams.Size) // top_k mặc định 10 nhân 3
	assert.NotNil(t, resp.Results)
	assert.Zero(t, resp.Metadata.TotalResults)
}

func TestSearchHardCap(t *testing.T) {
	retriever := &fakeRetriever{}
	e := newTestEngine(retriever, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})

	_, err := e.Search(context.Background(), &models.SearchRequest{Query: "quán ăn", TopK: 40})
	require.NoError(t, err)
	// 40*3 vượt trần 50
	assert.Equal(t, 50, retriever.lastParams.Size)
}

func TestSearchFieldSelection(t *testing.T) {
	retriever := &fakeRetriever{}
	e := newTestEngine(retriever, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})
	ctx := context.Background()

	// query chỉ có địa điểm -> field location
	_, err := e.Search(ctx, &models.SearchRequest{Query: "hải phòng"})
	require.NoError(t, err)
	assert.Equal(t, models.FieldLocation, retriever.lastParams.Field)

	// query có intent rõ -> combined
	_, err = e.Search(ctx, &models.SearchRequest{Query: "quán ăn tại hải phòng"})
	require.NoError(t, err)
	assert.Equal(t, models.FieldCombined, retriever.lastParams.Field)

	// query chỉ nói đến đối tượng -> target
	_, err = e.Search(ctx, &models.SearchRequest{Query: "ưu đãi đi với gia đình"})
	require.NoError(t, err)
	assert.Equal(t, models.FieldTarget, retriever.lastParams.Field)
}

func TestSearchFilters(t *testing.T) {
	retriever := &fakeRetriever{}
	e := newTestEngine(retriever, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})

	resp, err := e.Search(context.Background(), &models.SearchRequest{
		Query: "quán ăn ngon",
		Filters: models.SearchFilters{
			Location:   "sài gòn",
			Service:    "restaurant",
			PriceRange: models.PriceRangeBudget,
		},
	})
	require.NoError(t, err)

	// alias được resolve về canonical trước khi thành filter
	assert.Equal(t, "Hồ Chí Minh", retriever.lastParams.Filters["location.name"])
	assert.Equal(t, "restaurant", retriever.lastParams.Filters["service_info.category"])
	assert.Equal(t, models.PriceRangeBudget, retriever.lastParams.Filters["price_info.price_range"])
	assert.Equal(t, "Hồ Chí Minh", resp.SearchStrategy.Filters["location"])
}

// Trọng số thích ứng: khía cạnh xuất hiện trong query được cộng delta
// rồi chuẩn hóa lại về tổng 1.
func TestAdaptiveWeights(t *testing.T) {
	e := newTestEngine(&fakeRetriever{}, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})

	// chỉ có địa điểm: location 0.15 + 0.20, chia tổng 1.20
	w := e.adaptiveWeights(&models.QueryComponents{Location: "Hải Phòng"})
	assert.InDelta(t, 0.35/1.20, w[models.FieldLocation], 1e-9)
	assert.InDelta(t, 0.40/1.20, w[models.FieldContent], 1e-9)

	// đủ ba khía cạnh: tổng delta 0.45
	w = e.adaptiveWeights(&models.QueryComponents{
		Location:            "Hà Nội",
		ServiceRequirements: []string{"kids_area"},
		TargetAudience:      "family",
	})
	var sum float64
	for _, x := range w {
		sum += x
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 0.35/1.45, w[models.FieldLocation], 1e-9)
	assert.InDelta(t, 0.25/1.45, w[models.FieldService], 1e-9)
	assert.InDelta(t, 0.20/1.45, w[models.FieldTarget], 1e-9)

	// query trung tính giữ nguyên trọng số index-time
	w = e.adaptiveWeights(&models.QueryComponents{})
	for field, base := range index.CombinedWeights {
		assert.InDelta(t, base, w[field], 1e-9)
	}
}

func TestSearchStrategyReportsAdaptiveWeights(t *testing.T) {
	e := newTestEngine(&fakeRetriever{}, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})

	resp, err := e.Search(context.Background(), &models.SearchRequest{
		Query: "quán ăn tại hải phòng",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.SearchStrategy)
	w := resp.SearchStrategy.AdaptiveWeights
	require.NotEmpty(t, w)

	var sum float64
	for _, x := range w {
		sum += x
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	// query có địa điểm nên trọng số location vượt mức index-time
	assert.Greater(t, w[models.FieldLocation], index.CombinedWeights[models.FieldLocation])
}

// Delta cấu hình riêng thay delta mặc định
func TestAdaptiveWeightsCustomDeltas(t *testing.T) {
	e := newTestEngine(&fakeRetriever{}, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{
		AdaptiveDeltas: map[string]float64{models.FieldLocation: 0.45},
	})

	w := e.adaptiveWeights(&models.QueryComponents{Location: "Hải Phòng"})
	assert.InDelta(t, 0.60/1.45, w[models.FieldLocation], 1e-9)
}

func TestSearchMinScoreAndTopK(t *testing.T) {
	retriever := &fakeRetriever{hits: []adapter.Hit{
		makeHit("a", "A", "", 1.9, 0, 0.5),
		makeHit("b", "B", "", 1.4, 0, 0.5),
		makeHit("c", "C", "", 1.8, 0, 0.5),
	}}
	e := newTestEngine(retriever, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})

	resp, err := e.Search(context.Background(), &models.SearchRequest{
		Query:    "quán ăn ngon",
		TopK:     1,
		MinScore: 0.8,
	})
	require.NoError(t, err)

	// b (0.7) rớt ngưỡng, a (0.95) thắng c (0.9), top_k cắt còn 1
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "a", resp.Results[0].VoucherID)
}

func TestSearchEmbedderUnavailable(t *testing.T) {
	e := newTestEngine(&fakeRetriever{}, &fakeEmbedder{unavailable: true}, &fakeGenerator{}, EngineConfig{})

	_, err := e.Search(context.Background(), &models.SearchRequest{Query: "quán ăn"})
	se := models.AsSearchError(err)
	require.NotNil(t, se)
	assert.Equal(t, models.CodeEmbeddingUnavailable, se.Code)
}

func TestSearchIndexError(t *testing.T) {
	e := newTestEngine(&fakeRetriever{err: models.ErrIndexUnavailable}, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})

	_, err := e.Search(context.Background(), &models.SearchRequest{Query: "quán ăn"})
	se := models.AsSearchError(err)
	require.NotNil(t, se)
	assert.Equal(t, models.CodeIndexUnavailable, se.Code)
}

func TestSearchCaching(t *testing.T) {
	retriever := &fakeRetriever{hits: []adapter.Hit{makeHit("v1", "A", "", 1.5, 0, 0.5)}}
	e := newTestEngine(retriever, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})
	req := &models.SearchRequest{Query: "quán ăn ngon", TopK: 5}

	first, err := e.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := e.Search(context.Background(), req)
	require.NoError(t, err)

	// lần hai trả từ cache, không gọi lại index
	assert.Equal(t, 1, retriever.hybridCalls)

	// cache trả bản sao, caller sửa metadata không lọt vào cache
	require.NotSame(t, first, second)
	second.Metadata.TotalResults = 99

	third, err := e.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Metadata.TotalResults)
	assert.Equal(t, 1, retriever.hybridCalls)
}

func TestSearchRAG(t *testing.T) {
	retriever := &fakeRetriever{hits: []adapter.Hit{
		makeHit("v1", "Buffet Phố Biển", "Hải Phòng", 1.8, 10, 0.9),
		makeHit("v2", "Lẩu Hà Thành", "Hà Nội", 1.6, 5, 0.8),
		makeHit("v3", "Nướng Đồ Sơn", "Hải Phòng", 1.4, 3, 0.7),
	}}
	gen := &fakeGenerator{answer: "Bạn nên thử Buffet Phố Biển nhé."}
	e := newTestEngine(retriever, &fakeEmbedder{}, gen, EngineConfig{})

	resp, err := e.Search(context.Background(), &models.SearchRequest{
		Query: "quán ăn tại hải phòng cho gia đình",
		Mode:  models.SearchModeRAG,
		TopK:  5,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bạn nên thử Buffet Phố Biển nhé.", resp.Answer)
	require.NotNil(t, resp.Confidence)
	assert.Greater(t, *resp.Confidence, 0.0)
	assert.Equal(t, models.MethodAdvancedRAG, resp.Metadata.SearchMethod)
	assert.False(t, resp.Metadata.Degraded)
	for _, r := range resp.Results {
		assert.Equal(t, models.MethodAdvancedRAG, r.SearchMethod)
	}
}

func TestSearchRAGGeneratorFails(t *testing.T) {
	retriever := &fakeRetriever{hits: []adapter.Hit{
		makeHit("v1", "Buffet Phố Biển", "Hải Phòng", 1.8, 10, 0.9),
	}}
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	e := newTestEngine(retriever, &fakeEmbedder{}, gen, EngineConfig{})

	resp, err := e.Search(context.Background(), &models.SearchRequest{
		Query: "quán ăn tại hải phòng",
		Mode:  models.SearchModeRAG,
		TopK:  5,
	})
	require.NoError(t, err)

	// template fallback thay vì lỗi
	assert.Contains(t, resp.Answer, "Buffet Phố Biển")
	assert.Equal(t, models.MethodRAGFallback, resp.Metadata.SearchMethod)
	assert.True(t, resp.Metadata.Degraded)
	assert.Equal(t, "generator", resp.Metadata.FailedComponent)
}

func TestSearchRAGZeroResults(t *testing.T) {
	gen := &fakeGenerator{answer: "không được gọi"}
	e := newTestEngine(&fakeRetriever{}, &fakeEmbedder{}, gen, EngineConfig{})

	resp, err := e.Search(context.Background(), &models.SearchRequest{
		Query: "quán ăn trên sao hỏa",
		Mode:  models.SearchModeRAG,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Confidence)
	assert.Zero(t, *resp.Confidence)
	assert.Contains(t, resp.Answer, "chưa tìm thấy")
	assert.Zero(t, gen.calls)
}

func TestSearchRAGOverloadDowngrades(t *testing.T) {
	retriever := &fakeRetriever{hits: []adapter.Hit{
		makeHit("v1", "Buffet Phố Biển", "Hải Phòng", 1.8, 10, 0.9),
	}}
	gen := &fakeGenerator{answer: "ok", delay: 500 * time.Millisecond}
	e := newTestEngine(retriever, &fakeEmbedder{}, gen, EngineConfig{
		RAGConcurrency: 1,
		RAGAcquireWait: 20 * time.Millisecond,
	})

	// chiếm suất rag duy nhất bằng một request chạy nền
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.Search(context.Background(), &models.SearchRequest{
			Query: "quán ăn tại hà nội",
			Mode:  models.SearchModeRAG,
		})
	}()
	time.Sleep(100 * time.Millisecond)

	resp, err := e.Search(context.Background(), &models.SearchRequest{
		Query: "quán ăn tại hải phòng",
		Mode:  models.SearchModeRAG,
	})
	require.NoError(t, err)
	<-done

	// hạ xuống hybrid thay vì từ chối
	assert.Equal(t, models.MethodHybridMultiField, resp.Metadata.SearchMethod)
	assert.True(t, resp.Metadata.Degraded)
	assert.Equal(t, "rag", resp.Metadata.FailedComponent)
	assert.Empty(t, resp.Answer)
	assert.Nil(t, resp.Confidence)
}

func TestGetVoucher(t *testing.T) {
	retriever := &fakeRetriever{hits: []adapter.Hit{makeHit("v1", "A", "", 1.5, 0, 0.5)}}
	e := newTestEngine(retriever, &fakeEmbedder{}, &fakeGenerator{}, EngineConfig{})
	ctx := context.Background()

	v, err := e.GetVoucher(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "A", v.Name)

	_, err = e.GetVoucher(ctx, "missing")
	se := models.AsSearchError(err)
	require.NotNil(t, se)

	_, err = e.GetVoucher(ctx, "")
	assert.Error(t, err)

	require.NoError(t, e.DeleteVoucher(ctx, "v1"))
	_, err = e.GetVoucher(ctx, "v1")
	assert.Error(t, err)

	assert.Error(t, e.DeleteVoucher(ctx, ""))
}
