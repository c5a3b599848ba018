package models

// QueryComponents là kết quả phân tích một query, sống trong phạm vi
// một request.
type QueryComponents struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
	Stripped   string `json:"stripped"`

	Intent              Intent   `json:"intent"`
	IntentScore         float64  `json:"-"`
	Location            string   `json:"location,omitempty"`
	LocationType        string   `json:"location_type,omitempty"`
	ServiceRequirements []string `json:"service_requirements,omitempty"`
	TargetAudience      string   `json:"target_audience,omitempty"`
	PricePreference     string   `json:"price_preference,omitempty"`
	TimeRequirements    []string `json:"time_requirements,omitempty"`
	Modifiers           []string `json:"modifiers,omitempty"`
	Keywords            []string `json:"keywords,omitempty"`

	Confidence float64 `json:"confidence"`
}

// SearchFilters là bộ lọc cứng áp lên metadata
type SearchFilters struct {
	Location   string `form:"location" json:"location,omitempty"`
	Service    string `form:"service" json:"service,omitempty"`
	PriceRange string `form:"price_range" json:"price_range,omitempty"`
}

// IsZero báo không có filter nào được đặt
func (f SearchFilters) IsZero() bool {
	return f.Location == "" && f.Service == "" && f.PriceRange == ""
}

// SearchRequest là request của façade.
// @Description Tham số tìm kiếm voucher.
type SearchRequest struct {
	// Query tiếng Việt tự nhiên (bắt buộc, >= 2 ký tự sau chuẩn hóa)
	Query string `form:"q" binding:"required" example:"quán ăn tại hải phòng có chỗ cho trẻ em chơi"`
	// Chế độ: vector, hybrid, rag (default: hybrid)
	Mode SearchMode `form:"mode" example:"hybrid" enums:"vector,hybrid,rag"`
	// Số kết quả (1..50, default: 10)
	TopK int `form:"top_k" example:"10" minimum:"1" maximum:"50"`

	Filters SearchFilters `form:"-" json:"filters"`

	// Chỉ giữ kết quả khớp địa điểm đã resolve (mức canonical hoặc neighbor)
	StrictLocation bool `form:"strict_location" example:"false"`
	// Score tối thiểu sau boost (0..1, default: 0)
	MinScore float64 `form:"min_score" example:"0" minimum:"0" maximum:"1"`
	// Mở rộng query bằng từ đồng nghĩa (default: false)
	Expand *bool `form:"expand" example:"false"`
}

// Validate áp defaults và kiểm tra tham số. Độ dài query sau chuẩn hóa
// do façade kiểm tra vì cần normalizer.
func (r *SearchRequest) Validate() error {
	if r.Mode == "" {
		r.Mode = SearchModeHybrid
	}
	if !r.Mode.IsValid() {
		return ErrInvalidMode
	}
	if r.TopK == 0 {
		r.TopK = 10
	}
	if r.TopK < 1 || r.TopK > 50 {
		return ErrInvalidTopK
	}
	if r.MinScore < 0 || r.MinScore > 1 {
		return ErrInvalidMinScore
	}
	return nil
}

// GetExpand trả về cờ mở rộng query, mặc định tắt
func (r *SearchRequest) GetExpand() bool {
	return r.Expand != nil && *r.Expand
}

// SearchResult là một voucher đã được chấm điểm và xếp hạng
type SearchResult struct {
	VoucherID      string       `json:"voucher_id"`
	VoucherName    string       `json:"voucher_name"`
	ContentSnippet string       `json:"content_snippet"`
	Location       LocationInfo `json:"location"`
	ServiceInfo    ServiceInfo  `json:"service_info"`
	PriceInfo      PriceInfo    `json:"price_info"`
	TargetAudience string       `json:"target_audience,omitempty"`

	// SimilarityScore là score cuối cùng trong [0,1] sau mọi re-ranking
	SimilarityScore float64 `json:"similarity_score"`
	// RawScore là score trước boost địa lý
	RawScore      float64 `json:"raw_score"`
	RankingFactor string  `json:"ranking_factor"`
	SearchMethod  string  `json:"search_method"`

	// Dùng nội bộ cho tie-break, không trả ra ngoài
	DenseScore  float64 `json:"-"`
	DataQuality float64 `json:"-"`
	Content     string  `json:"-"`
}

// SearchStrategy mô tả chiến lược đã áp dụng (field dense, boost, filter)
type SearchStrategy struct {
	EmbeddingField  string             `json:"embedding_field"`
	AdaptiveWeights map[string]float64 `json:"adaptive_weights,omitempty"`
	BoostFactors    map[string]float64 `json:"boost_factors,omitempty"`
	Filters         map[string]string  `json:"filters,omitempty"`
	StrictLocation  bool               `json:"strict_location,omitempty"`
}

// Explanations là tóm tắt sinh cơ học từ parser và re-ranker
type Explanations struct {
	QueryParsing      string `json:"query_parsing,omitempty"`
	GeographicRanking string `json:"geographic_ranking,omitempty"`
}

// ResponseMetadata luôn có mặt trong response, kể cả khi lỗi
type ResponseMetadata struct {
	TotalResults       int     `json:"total_results"`
	ProcessingTimeMs   float64 `json:"processing_time_ms"`
	SearchMethod       string  `json:"search_method"`
	EmbeddingDimension int     `json:"embedding_dimension"`
	Degraded           bool    `json:"degraded,omitempty"`
	FailedComponent    string  `json:"failed_component,omitempty"`
}

// SearchResponse là response thống nhất cho cả ba mode
type SearchResponse struct {
	Query            string           `json:"query"`
	Mode             SearchMode       `json:"mode"`
	ParsedComponents *QueryComponents `json:"parsed_components,omitempty"`
	SearchStrategy   *SearchStrategy  `json:"search_strategy,omitempty"`
	Results          []SearchResult   `json:"results"`
	Explanations     *Explanations    `json:"explanations,omitempty"`
	Metadata         ResponseMetadata `json:"metadata"`

	// Chỉ có ở mode rag
	Answer     string   `json:"answer,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}
