// Package synonyms chứa từ đồng nghĩa tiếng Việt cho domain voucher,
// dùng để mở rộng nhánh lexical của query.
package synonyms

import "strings"

// SynonymGroup là một nhóm từ đồng nghĩa quanh một từ gốc
type SynonymGroup struct {
	Root     string
	Synonyms []string
}

// DefaultSynonyms chứa từ đồng nghĩa cho các khái niệm voucher phổ biến
var DefaultSynonyms = []SynonymGroup{
	// Ăn uống
	{Root: "quán ăn", Synonyms: []string{"nhà hàng", "quán", "tiệm ăn", "quán xá"}},
	{Root: "nhà hàng", Synonyms: []string{"quán ăn", "restaurant"}},
	{Root: "buffet", Synonyms: []string{"tiệc tự chọn", "ăn thỏa thích"}},
	{Root: "lẩu", Synonyms: []string{"hotpot", "lẩu nướng"}},
	{Root: "cà phê", Synonyms: []string{"cafe", "coffee", "quán nước"}},

	// Lưu trú
	{Root: "khách sạn", Synonyms: []string{"hotel", "nơi ở", "chỗ nghỉ"}},
	{Root: "resort", Synonyms: []string{"khu nghỉ dưỡng", "nghỉ dưỡng"}},
	{Root: "homestay", Synonyms: []string{"nhà nghỉ", "căn hộ"}},

	// Vui chơi
	{Root: "vui chơi", Synonyms: []string{"giải trí", "chơi"}},
	{Root: "rạp phim", Synonyms: []string{"xem phim", "cinema", "chiếu phim"}},
	{Root: "công viên", Synonyms: []string{"khu vui chơi", "park"}},

	// Mua sắm
	{Root: "mua sắm", Synonyms: []string{"shopping", "mua đồ"}},
	{Root: "giảm giá", Synonyms: []string{"khuyến mãi", "ưu đãi", "sale", "voucher"}},
	{Root: "siêu thị", Synonyms: []string{"trung tâm thương mại", "mall"}},

	// Làm đẹp
	{Root: "spa", Synonyms: []string{"massage", "chăm sóc da", "thư giãn"}},
	{Root: "làm đẹp", Synonyms: []string{"thẩm mỹ", "salon"}},

	// Du lịch
	{Root: "du lịch", Synonyms: []string{"tour", "tham quan", "nghỉ mát"}},

	// Đối tượng
	{Root: "trẻ em", Synonyms: []string{"trẻ nhỏ", "em bé", "thiếu nhi", "con nít"}},
	{Root: "gia đình", Synonyms: []string{"cả nhà", "family"}},
	{Root: "cặp đôi", Synonyms: []string{"couple", "hai người"}},

	// Giá
	{Root: "giá rẻ", Synonyms: []string{"bình dân", "tiết kiệm", "rẻ"}},
	{Root: "cao cấp", Synonyms: []string{"sang trọng", "luxury", "5 sao"}},
}

// index map term (đã lowercase) về nhóm chứa nó, dựng một lần lúc init
var index = func() map[string][]string {
	m := make(map[string][]string)
	for _, g := range DefaultSynonyms {
		all := append([]string{g.Root}, g.Synonyms...)
		for _, term := range all {
			key := strings.ToLower(term)
			for _, other := range all {
				if !strings.EqualFold(other, term) {
					m[key] = append(m[key], other)
				}
			}
		}
	}
	return m
}()

// FindSynonyms trả về từ đồng nghĩa của một term, nil nếu không có
func FindSynonyms(term string) []string {
	return index[strings.ToLower(term)]
}
