// Package search là façade thống nhất của ba chế độ tìm kiếm: vector,
// hybrid và rag. Engine điều phối parser, embedding, truy hồi, re-rank
// địa lý và sinh câu trả lời.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/oneu-vn/voucher-search/internal/constants"
	"github.com/oneu-vn/voucher-search/internal/index"
	"github.com/oneu-vn/voucher-search/internal/models"
	"github.com/oneu-vn/voucher-search/internal/search/adapter"
	"github.com/oneu-vn/voucher-search/internal/search/location"
	"github.com/oneu-vn/voucher-search/internal/search/query"
	"github.com/oneu-vn/voucher-search/internal/search/ranking"
	"github.com/oneu-vn/voucher-search/internal/search/rag"
	"github.com/oneu-vn/voucher-search/internal/utils"
)

// Retriever là mặt cắt của index engine mà façade cần
type Retriever interface {
	HybridSearch(ctx context.Context, p adapter.SearchParams) ([]adapter.Hit, error)
	VectorSearch(ctx context.Context, p adapter.SearchParams) ([]adapter.Hit, error)
	GetVoucher(ctx context.Context, id string) (*models.Voucher, error)
	DeleteVoucher(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Embedder sinh embedding cho query
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	IsAvailable() bool
	Dimensions() int
}

// EngineConfig gom các tham số vận hành của façade
type EngineConfig struct {
	// OverFetchMultiplier nhân với top_k để lấy dư ứng viên trước khi
	// re-rank; tập ứng viên không vượt HardCap
	OverFetchMultiplier int
	HardCap             int
	LexicalSaturation   float64
	MaxContextTokens    int
	// RAGConcurrency giới hạn số request rag chạy đồng thời
	RAGConcurrency int64
	RAGAcquireWait time.Duration
	// EnableExpansion bật mở rộng từ đồng nghĩa cho mọi request;
	// request vẫn tự bật được qua tham số expand
	EnableExpansion bool
	SnippetLength   int
	CacheTTL        time.Duration
	CacheSize       int
	// IndexWeights là trọng số tổng hợp vector combined lúc index, dùng
	// làm gốc khi báo cáo chiến lược. Nil dùng index.CombinedWeights.
	IndexWeights map[string]float64
	// AdaptiveDeltas là phần trọng số cộng thêm cho khía cạnh xuất hiện
	// trong query. Nil dùng DefaultAdaptiveDeltas.
	AdaptiveDeltas map[string]float64
}

// DefaultAdaptiveDeltas là phần trọng số cộng thêm khi query nhấn mạnh
// một khía cạnh. Chỉ mô tả chiến lược trong response; vector combined
// đã index không đổi theo query.
var DefaultAdaptiveDeltas = map[string]float64{
	models.FieldLocation: 0.20,
	models.FieldService:  0.15,
	models.FieldTarget:   0.10,
}

// DefaultEngineConfig trả về cấu hình mặc định
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		OverFetchMultiplier: 3,
		HardCap:             50,
		LexicalSaturation:   ranking.DefaultLexicalSaturation,
		MaxContextTokens:    rag.DefaultMaxContextTokens,
		RAGConcurrency:      8,
		RAGAcquireWait:      200 * time.Millisecond,
		SnippetLength:       200,
		CacheTTL:            2 * time.Minute,
		CacheSize:           500,
	}
}

// Engine là motor tìm kiếm voucher
type Engine struct {
	retriever Retriever
	embedder  Embedder
	composer  *rag.Composer
	parser    *query.Parser
	expander  *query.Expander
	registry  *location.Registry
	scorer    *ranking.Scorer
	reranker  *ranking.Reranker
	cache     *SearchCache
	ragSem    *semaphore.Weighted
	config    EngineConfig
	logger    *zap.Logger
}

// NewEngine tạo engine với các backend đã khởi tạo
func NewEngine(
	retriever Retriever,
	embedder Embedder,
	generator rag.Generator,
	registry *location.Registry,
	cfg EngineConfig,
	logger *zap.Logger,
) *Engine {
	def := DefaultEngineConfig()
	if cfg.OverFetchMultiplier <= 0 {
		cfg.OverFetchMultiplier = def.OverFetchMultiplier
	}
	if cfg.HardCap <= 0 {
		cfg.HardCap = def.HardCap
	}
	if cfg.MaxContextTokens <= 0 {
		cfg.MaxContextTokens = def.MaxContextTokens
	}
	if cfg.RAGConcurrency <= 0 {
		cfg.RAGConcurrency = def.RAGConcurrency
	}
	if cfg.RAGAcquireWait <= 0 {
		cfg.RAGAcquireWait = def.RAGAcquireWait
	}
	if cfg.SnippetLength <= 0 {
		cfg.SnippetLength = def.SnippetLength
	}
	if len(cfg.IndexWeights) == 0 {
		cfg.IndexWeights = index.CombinedWeights
	}
	if len(cfg.AdaptiveDeltas) == 0 {
		cfg.AdaptiveDeltas = DefaultAdaptiveDeltas
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	normalizer := ranking.NewNormalizer(cfg.LexicalSaturation)

	return &Engine{
		retriever: retriever,
		embedder:  embedder,
		composer:  rag.NewComposer(generator, cfg.MaxContextTokens),
		parser:    query.NewParser(registry),
		expander:  query.NewExpander(5),
		registry:  registry,
		scorer:    ranking.NewScorer(normalizer),
		reranker:  ranking.NewReranker(registry),
		cache:     NewSearchCache(cfg.CacheTTL, cfg.CacheSize),
		ragSem:    semaphore.NewWeighted(cfg.RAGConcurrency),
		config:    cfg,
		logger:    logger,
	}
}

// Search xử lý một request tìm kiếm từ đầu đến cuối
func (e *Engine) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	components := e.parser.Parse(req.Query)
	if len([]rune(components.Normalized)) < 2 {
		return nil, models.ErrQueryTooShort
	}

	esFilters, displayFilters, err := e.buildFilters(req)
	if err != nil {
		return nil, err
	}

	// rag không cache vì câu trả lời phụ thuộc generator
	var cacheKey string
	if req.Mode != models.SearchModeRAG {
		cacheKey = e.cache.GenerateKey(req)
		if cached := e.cache.Get(cacheKey); cached != nil {
			// bản sao nông để caller không sửa vào bản trong cache;
			// thời gian xử lý tính cho request hiện tại
			resp := *cached
			resp.Metadata.ProcessingTimeMs = float64(time.Since(start).Microseconds()) / 1000
			return &resp, nil
		}
	}

	mode := req.Mode
	degraded := false
	failedComponent := ""

	// Giới hạn số request rag đồng thời. Hết chỗ thì chờ có giới hạn,
	// vẫn hết chỗ thì hạ một bậc xuống hybrid thay vì từ chối.
	releaseRAG := func() {}
	if mode == models.SearchModeRAG {
		if acquired := e.tryAcquireRAG(ctx); acquired {
			releaseRAG = func() { e.ragSem.Release(1) }
		} else {
			e.logger.Warn("rag quá tải, hạ xuống hybrid", zap.String("query", req.Query))
			mode = models.SearchModeHybrid
			degraded = true
			failedComponent = "rag"
		}
	}
	defer releaseRAG()

	if !e.embedder.IsAvailable() {
		return nil, models.ErrEmbeddingService
	}

	// nhánh dense luôn embed query chuẩn hóa, không embed query mở rộng
	vector, err := e.embedder.Embed(ctx, components.Normalized)
	if err != nil {
		return nil, err
	}

	queryText := components.Normalized
	if req.GetExpand() || e.config.EnableExpansion {
		expanded := e.expander.Expand(components)
		queryText = expanded.QueryString
	}

	field := e.selectField(mode, components)
	fetchSize := req.TopK * e.config.OverFetchMultiplier
	if fetchSize > e.config.HardCap {
		fetchSize = e.config.HardCap
	}

	params := adapter.SearchParams{
		QueryText: queryText,
		Vector:    vector,
		Field:     field,
		Size:      fetchSize,
		Filters:   esFilters,
	}

	var hits []adapter.Hit
	if mode == models.SearchModeVector {
		hits, err = e.retriever.VectorSearch(ctx, params)
	} else {
		hits, err = e.retriever.HybridSearch(ctx, params)
	}
	if err != nil {
		return nil, err
	}

	method := methodFor(mode)
	results := e.transformHits(hits, mode, method)

	// mode vector trả thứ hạng cosine thuần, không điều chỉnh địa lý
	if mode != models.SearchModeVector {
		results = e.reranker.Rerank(results, components.Location, req.StrictLocation)
	}
	ranking.Sort(results)
	results = ranking.FilterMinScore(results, req.MinScore)
	results = ranking.Truncate(results, req.TopK)

	var answer string
	var confidence *float64
	if mode == models.SearchModeRAG {
		ans, composeErr := e.composer.Compose(ctx, components, results)
		if composeErr != nil {
			// generator quá deadline: trả kết quả truy hồi không kèm
			// câu trả lời thay vì lỗi toàn phần
			e.logger.Warn("generator quá deadline, trả kết quả không kèm câu trả lời",
				zap.String("query", req.Query))
			method = models.MethodRAGFallback
			degraded = true
			failedComponent = "generator"
		} else {
			answer = ans.Text
			conf := ans.Confidence
			confidence = &conf
			if ans.Fallback {
				method = models.MethodRAGFallback
				degraded = true
				failedComponent = "generator"
			}
		}
		for i := range results {
			results[i].SearchMethod = method
		}
	}

	response := &models.SearchResponse{
		Query:   req.Query,
		Mode:    req.Mode,
		Results: results,
		Metadata: models.ResponseMetadata{
			TotalResults:       len(results),
			ProcessingTimeMs:   float64(time.Since(start).Microseconds()) / 1000,
			SearchMethod:       method,
			EmbeddingDimension: e.embedder.Dimensions(),
			Degraded:           degraded,
			FailedComponent:    failedComponent,
		},
		Answer:     answer,
		Confidence: confidence,
	}

	// mode vector chỉ trả danh sách đã chấm điểm, không kèm phân tích
	if mode != models.SearchModeVector {
		response.ParsedComponents = components
		response.SearchStrategy = e.buildStrategy(field, displayFilters, components, req.StrictLocation)
		response.Explanations = e.buildExplanations(mode, components, results)
	}

	e.logger.Debug("search hoàn tất",
		zap.String("mode", string(req.Mode)),
		zap.String("field", field),
		zap.Int("results", len(results)),
		zap.Float64("ms", response.Metadata.ProcessingTimeMs),
	)

	// response hạ cấp không cache để request sau có cơ hội đầy đủ
	if cacheKey != "" && !degraded {
		e.cache.Set(cacheKey, response)
	}
	return response, nil
}

// tryAcquireRAG lấy một suất rag: thử ngay, trượt thì chờ có giới hạn
func (e *Engine) tryAcquireRAG(ctx context.Context) bool {
	if e.ragSem.TryAcquire(1) {
		return true
	}
	waitCtx, cancel := context.WithTimeout(ctx, e.config.RAGAcquireWait)
	defer cancel()
	return e.ragSem.Acquire(waitCtx, 1) == nil
}

// selectField chọn field dense để so khớp. Query có intent rõ dùng
// combined; query chỉ xoay quanh một khía cạnh dùng field chuyên biệt
// của khía cạnh đó.
func (e *Engine) selectField(mode models.SearchMode, c *models.QueryComponents) string {
	if mode == models.SearchModeVector {
		return models.FieldCombined
	}
	if c.Intent == models.IntentGeneral {
		switch {
		case c.Location != "" && len(c.Keywords) <= 1:
			return models.FieldLocation
		case c.Location == "" && c.TargetAudience != "":
			return models.FieldTarget
		case c.Location == "" && len(c.ServiceRequirements) > 0:
			return models.FieldService
		}
	}
	return models.FieldCombined
}

// transformHits đổi hit của index thành SearchResult với score [0,1]
func (e *Engine) transformHits(hits []adapter.Hit, mode models.SearchMode, method string) []models.SearchResult {
	results := make([]models.SearchResult, 0, len(hits))
	for _, h := range hits {
		var sim float64
		if mode == models.SearchModeVector {
			sim = e.scorer.Score(h.DenseRaw, 0)
		} else {
			sim = e.scorer.Score(h.DenseRaw, h.LexicalScore)
		}

		results = append(results, models.SearchResult{
			VoucherID:       h.Voucher.ID,
			VoucherName:     h.Voucher.Name,
			ContentSnippet:  utils.Snippet(h.Voucher.Content, e.config.SnippetLength),
			Location:        h.Voucher.Location,
			ServiceInfo:     h.Voucher.Service,
			PriceInfo:       h.Voucher.Price,
			TargetAudience:  h.Voucher.TargetAudience,
			SimilarityScore: sim,
			RawScore:        sim,
			RankingFactor:   models.RankingSemantic,
			SearchMethod:    method,
			DenseScore:      ranking.DenseSimilarity(h.DenseRaw),
			DataQuality:     h.Voucher.DataQualityScore,
			Content:         h.Voucher.Content,
		})
	}
	return results
}

// buildFilters kiểm tra giá trị filter và dựng map field cho index.
// Giá trị ngoài tập hỗ trợ trả về BadRequest.
func (e *Engine) buildFilters(req *models.SearchRequest) (map[string]string, map[string]string, error) {
	es := make(map[string]string)
	display := make(map[string]string)

	if v := req.Filters.Location; v != "" {
		canonical := e.registry.Resolve(v)
		if canonical == "" {
			return nil, nil, models.ErrUnknownFilterValue.WithDetail("location %q", v)
		}
		es["location.name"] = canonical
		display["location"] = canonical
	}
	if v := req.Filters.Service; v != "" {
		if !constants.IsValidServiceCategory(v) {
			return nil, nil, models.ErrUnknownFilterValue.WithDetail("service %q", v)
		}
		es["service_info.category"] = v
		display["service"] = v
	}
	if v := req.Filters.PriceRange; v != "" {
		if !constants.IsValidPriceRange(v) {
			return nil, nil, models.ErrUnknownFilterValue.WithDetail("price_range %q", v)
		}
		es["price_info.price_range"] = v
		display["price_range"] = v
	}
	return es, display, nil
}

func (e *Engine) buildStrategy(field string, filters map[string]string, c *models.QueryComponents, strict bool) *models.SearchStrategy {
	s := &models.SearchStrategy{
		EmbeddingField: field,
		StrictLocation: strict,
	}
	if len(filters) > 0 {
		s.Filters = filters
	}
	if field == models.FieldCombined {
		s.AdaptiveWeights = e.adaptiveWeights(c)
	}
	if c.Location != "" {
		s.BoostFactors = map[string]float64{
			"exact_location":  ranking.BoostExactLocation,
			"content_mention": ranking.BoostContentMention,
			"neighbor":        ranking.BoostNeighbor,
			"region":          ranking.BoostRegion,
		}
	}
	return s
}

// adaptiveWeights cộng delta vào trọng số index-time cho các khía cạnh
// query nhấn mạnh rồi chuẩn hóa về tổng 1. Chỉ dùng để báo cáo chiến
// lược, không đổi vector combined đã index.
func (e *Engine) adaptiveWeights(c *models.QueryComponents) map[string]float64 {
	out := make(map[string]float64, len(e.config.IndexWeights))
	for field, w := range e.config.IndexWeights {
		out[field] = w
	}
	if c.Location != "" {
		out[models.FieldLocation] += e.config.AdaptiveDeltas[models.FieldLocation]
	}
	if len(c.ServiceRequirements) > 0 {
		out[models.FieldService] += e.config.AdaptiveDeltas[models.FieldService]
	}
	if c.TargetAudience != "" {
		out[models.FieldTarget] += e.config.AdaptiveDeltas[models.FieldTarget]
	}

	var sum float64
	for _, w := range out {
		sum += w
	}
	if sum > 0 {
		for field := range out {
			out[field] /= sum
		}
	}
	return out
}

func (e *Engine) buildExplanations(mode models.SearchMode, c *models.QueryComponents, results []models.SearchResult) *models.Explanations {
	ex := &models.Explanations{
		QueryParsing: query.ExplainParsing(c),
	}
	if mode != models.SearchModeVector {
		ex.GeographicRanking = ranking.ExplainGeographic(c.Location, results)
	}
	return ex
}

func methodFor(mode models.SearchMode) string {
	switch mode {
	case models.SearchModeVector:
		return models.MethodVectorCosine
	case models.SearchModeRAG:
		return models.MethodAdvancedRAG
	default:
		return models.MethodHybridMultiField
	}
}

// GetVoucher đọc một voucher theo id qua index
func (e *Engine) GetVoucher(ctx context.Context, id string) (*models.Voucher, error) {
	if id == "" {
		return nil, models.ErrVoucherNotFound.WithDetail("id rỗng")
	}
	return e.retriever.GetVoucher(ctx, id)
}

// DeleteVoucher xóa một voucher khỏi index, idempotent với id không tồn tại
func (e *Engine) DeleteVoucher(ctx context.Context, id string) error {
	if id == "" {
		return models.ErrVoucherNotFound.WithDetail("id rỗng")
	}
	return e.retriever.DeleteVoucher(ctx, id)
}

// Healthy kiểm tra các backend còn sống không
func (e *Engine) Healthy(ctx context.Context) error {
	if !e.embedder.IsAvailable() {
		return models.ErrEmbeddingService
	}
	return e.retriever.Ping(ctx)
}
