package index

import (
	"strings"

	"github.com/oneu-vn/voucher-search/internal/models"
)

// Các hàm build text cho từng field embedding. Text có label tiếng Việt
// để embedding phân biệt ngữ nghĩa giữa các field.

// ContentText gom nội dung chính của voucher: tên, mô tả và keywords
func ContentText(v *models.Voucher) string {
	var parts []string
	if v.Name != "" {
		parts = append(parts, v.Name)
	}
	if v.Content != "" {
		parts = append(parts, v.Content)
	}
	if len(v.Keywords) > 0 {
		parts = append(parts, "Từ khóa: "+strings.Join(v.Keywords, ", "))
	}
	return strings.Join(parts, "\n")
}

// NameText chỉ chứa tên voucher
func NameText(v *models.Voucher) string {
	return v.Name
}

// LocationText mô tả vị trí địa lý của voucher
func LocationText(v *models.Voucher) string {
	if v.Location.Name == "" {
		return ""
	}
	var parts []string
	parts = append(parts, "Địa điểm: "+v.Location.Name)
	if v.Location.District != "" {
		parts = append(parts, "Quận/Huyện: "+v.Location.District)
	}
	if v.Location.Region != "" {
		parts = append(parts, "Khu vực: "+v.Location.Region)
	}
	return strings.Join(parts, ", ")
}

// ServiceText mô tả loại hình dịch vụ và tiện ích
func ServiceText(v *models.Voucher) string {
	if v.Service.Category == "" {
		return ""
	}
	var parts []string
	parts = append(parts, "Dịch vụ: "+v.Service.Category)
	if v.Service.Subcategory != "" {
		parts = append(parts, "Phân loại: "+v.Service.Subcategory)
	}
	if v.Service.RestaurantType != "" {
		parts = append(parts, "Loại hình: "+v.Service.RestaurantType)
	}
	if len(v.Service.Tags) > 0 {
		parts = append(parts, "Tiện ích: "+strings.Join(v.Service.Tags, ", "))
	}
	if v.Service.HasKidsArea {
		parts = append(parts, "Có khu vui chơi trẻ em")
	}
	return strings.Join(parts, ", ")
}

// TargetText mô tả đối tượng khách hàng phù hợp
func TargetText(v *models.Voucher) string {
	if v.TargetAudience == "" {
		return ""
	}
	return "Phù hợp với: " + v.TargetAudience
}

// fieldTexts trả về text của mọi field có nội dung, theo tên field
func fieldTexts(v *models.Voucher) map[string]string {
	texts := map[string]string{
		models.FieldContent:  ContentText(v),
		models.FieldName:     NameText(v),
		models.FieldLocation: LocationText(v),
		models.FieldService:  ServiceText(v),
		models.FieldTarget:   TargetText(v),
	}
	for field, text := range texts {
		if strings.TrimSpace(text) == "" {
			delete(texts, field)
		}
	}
	return texts
}
