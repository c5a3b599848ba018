package models

import "time"

// Voucher là entity được lưu trong index. Ingestion tạo voucher,
// core chỉ tiêu thụ. Update luôn thay cả document theo id.
type Voucher struct {
	ID      string `json:"voucher_id"`
	Name    string `json:"voucher_name"`
	Content string `json:"content"`

	Location       LocationInfo `json:"location"`
	Service        ServiceInfo  `json:"service_info"`
	Price          PriceInfo    `json:"price_info"`
	TargetAudience string       `json:"target_audience,omitempty"`
	Keywords       []string     `json:"keywords,omitempty"`

	// Embeddings theo field: content và combined là bắt buộc,
	// name/location/service/target tùy chọn. Mọi vector đều unit-length.
	Embeddings map[string][]float32 `json:"embeddings,omitempty"`

	DataQualityScore float64    `json:"data_quality_score"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// LocationInfo là metadata địa lý của voucher
type LocationInfo struct {
	Name     string `json:"name"`
	District string `json:"district,omitempty"`
	Region   string `json:"region,omitempty"`
}

// ServiceInfo mô tả loại dịch vụ
type ServiceInfo struct {
	Category       string   `json:"category"`
	Subcategory    string   `json:"subcategory,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	HasKidsArea    bool     `json:"has_kids_area"`
	RestaurantType string   `json:"restaurant_type,omitempty"`
}

// PriceInfo chứa giá và khoảng giá suy ra từ ngưỡng VND
type PriceInfo struct {
	Price      int64  `json:"price"`
	PriceRange string `json:"price_range"`
	Currency   string `json:"currency,omitempty"`
}

// PriceRangeFor phân loại giá VND theo ngưỡng cố định.
// Giá không xác định (<=0) trả về "unknown".
func PriceRangeFor(price int64) string {
	switch {
	case price <= 0:
		return PriceRangeUnknown
	case price < 100_000:
		return PriceRangeBudget
	case price < 500_000:
		return PriceRangeMidRange
	case price < 1_000_000:
		return PriceRangePremium
	default:
		return PriceRangeLuxury
	}
}
