package models

// SearchMode định nghĩa các chế độ tìm kiếm
type SearchMode string

const (
	SearchModeVector SearchMode = "vector"
	SearchModeHybrid SearchMode = "hybrid"
	SearchModeRAG    SearchMode = "rag"
)

// IsValid kiểm tra mode có hợp lệ không
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchModeVector, SearchModeHybrid, SearchModeRAG:
		return true
	}
	return false
}

// Intent là ý định của người dùng, thuộc tập đóng
type Intent string

const (
	IntentFindRestaurant    Intent = "find_restaurant"
	IntentFindHotel         Intent = "find_hotel"
	IntentFindEntertainment Intent = "find_entertainment"
	IntentFindShopping      Intent = "find_shopping"
	IntentFindBeauty        Intent = "find_beauty"
	IntentFindTravel        Intent = "find_travel"
	IntentFindKids          Intent = "find_kids"
	IntentGeneral           Intent = "general"
)

// Khoảng giá theo ngưỡng VND
const (
	PriceRangeBudget   = "budget"
	PriceRangeMidRange = "mid-range"
	PriceRangePremium  = "premium"
	PriceRangeLuxury   = "luxury"
	PriceRangeUnknown  = "unknown"
)

// Ranking factors giải thích vì sao một kết quả được xếp hạng
const (
	RankingExactLocation  = "exact_location_match"
	RankingNearbyLocation = "nearby_location_match"
	RankingRegional       = "regional_match"
	RankingSemantic       = "semantic_match"
)

// Search methods ghi lại pipeline đã tạo ra kết quả
const (
	MethodVectorCosine     = "vector_cosine"
	MethodHybridMultiField = "hybrid_multi_field"
	MethodAdvancedRAG      = "advanced_rag"
	MethodRAGFallback      = "advanced_rag_fallback"
)

// Tên các field embedding trong index
const (
	FieldContent  = "content"
	FieldName     = "name"
	FieldLocation = "location"
	FieldService  = "service"
	FieldTarget   = "target"
	FieldCombined = "combined"
)
