// Package constants chứa các tập giá trị đóng dùng cho validation filter
// và phân loại voucher.
package constants

import "github.com/oneu-vn/voucher-search/internal/models"

// ServiceCategories là tập category dịch vụ được index hỗ trợ
var ServiceCategories = []string{
	"restaurant",
	"hotel",
	"entertainment",
	"shopping",
	"beauty",
	"travel",
	"kids",
	"general",
}

// TargetAudiences là tập đối tượng khách hàng
var TargetAudiences = []string{
	"family",
	"couple",
	"friends",
	"business",
	"solo",
	"kids",
	"general",
}

// PriceRanges là tập khoảng giá hợp lệ cho filter
var PriceRanges = []string{
	models.PriceRangeBudget,
	models.PriceRangeMidRange,
	models.PriceRangePremium,
	models.PriceRangeLuxury,
	models.PriceRangeUnknown,
}

// ServiceRequirementTags là tập tag yêu cầu dịch vụ mà parser có thể gán
var ServiceRequirementTags = []string{
	"kids_friendly",
	"romantic",
	"group_dining",
	"luxury",
	"budget",
	"outdoor",
	"indoor",
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// IsValidServiceCategory kiểm tra giá trị filter service
func IsValidServiceCategory(v string) bool { return contains(ServiceCategories, v) }

// IsValidTargetAudience kiểm tra giá trị target audience
func IsValidTargetAudience(v string) bool { return contains(TargetAudiences, v) }

// IsValidPriceRange kiểm tra giá trị filter price_range
func IsValidPriceRange(v string) bool { return contains(PriceRanges, v) }
