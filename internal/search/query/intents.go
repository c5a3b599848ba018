package query

import "github.com/oneu-vn/voucher-search/internal/models"

// intentDef gom các cụm từ nhận diện một intent. Patterns so khớp theo
// ranh giới từ và cộng 0.30 mỗi cụm khớp; ExactKeywords so khớp chuỗi
// con nguyên văn và cộng 0.20 mỗi cụm. Điểm chặn trần ở 1.0.
type intentDef struct {
	Patterns      []string
	ExactKeywords []string
}

// intentDefs định nghĩa theo dạng có dấu; lúc so khớp thử cả dạng bỏ dấu
var intentDefs = map[models.Intent]intentDef{
	models.IntentFindRestaurant: {
		Patterns:      []string{"quán ăn", "nhà hàng", "quán", "ăn uống", "buffet", "món ngon", "đặc sản", "hải sản", "lẩu", "nướng"},
		ExactKeywords: []string{"quán ăn", "nhà hàng"},
	},
	models.IntentFindHotel: {
		Patterns:      []string{"khách sạn", "resort", "homestay", "nghỉ dưỡng", "phòng nghỉ", "villa", "đặt phòng"},
		ExactKeywords: []string{"khách sạn", "resort"},
	},
	models.IntentFindEntertainment: {
		Patterns:      []string{"vui chơi", "giải trí", "rạp phim", "karaoke", "công viên", "trò chơi", "xem phim"},
		ExactKeywords: []string{"vui chơi", "giải trí"},
	},
	models.IntentFindShopping: {
		Patterns:      []string{"mua sắm", "siêu thị", "trung tâm thương mại", "cửa hàng", "shop", "giảm giá", "khuyến mãi"},
		ExactKeywords: []string{"mua sắm"},
	},
	models.IntentFindBeauty: {
		Patterns:      []string{"spa", "làm đẹp", "massage", "salon", "nail", "thẩm mỹ", "chăm sóc da"},
		ExactKeywords: []string{"spa", "làm đẹp"},
	},
	models.IntentFindTravel: {
		Patterns:      []string{"du lịch", "tour", "tham quan", "vé máy bay", "phượt", "nghỉ mát", "khu du lịch"},
		ExactKeywords: []string{"du lịch", "tour"},
	},
	models.IntentFindKids: {
		Patterns:      []string{"trẻ em", "cho trẻ", "trẻ nhỏ", "em bé", "khu vui chơi", "thiếu nhi"},
		ExactKeywords: []string{"trẻ em", "khu vui chơi trẻ em"},
	},
}

// intentOrder là thứ tự duyệt cố định (theo tên intent) để tie-break
// có tính tái lập.
var intentOrder = []models.Intent{
	models.IntentFindBeauty,
	models.IntentFindEntertainment,
	models.IntentFindHotel,
	models.IntentFindKids,
	models.IntentFindRestaurant,
	models.IntentFindShopping,
	models.IntentFindTravel,
}

// serviceTagDefs map tag yêu cầu dịch vụ về các cụm từ kích hoạt
var serviceTagDefs = []struct {
	Tag     string
	Phrases []string
}{
	{"kids_friendly", []string{"trẻ em", "cho trẻ", "trẻ nhỏ", "em bé", "khu vui chơi"}},
	{"romantic", []string{"lãng mạn", "hẹn hò", "cặp đôi", "couple"}},
	{"group_dining", []string{"nhóm", "đông người", "liên hoan", "tụ tập", "tiệc"}},
	{"luxury", []string{"sang trọng", "cao cấp", "5 sao", "fine dining"}},
	{"budget", []string{"giá rẻ", "bình dân", "rẻ", "tiết kiệm"}},
	{"outdoor", []string{"ngoài trời", "sân vườn", "view biển", "rooftop"}},
	{"indoor", []string{"trong nhà", "máy lạnh", "điều hòa"}},
}

// targetDefs duyệt theo thứ tự, lấy audience đầu tiên khớp
var targetDefs = []struct {
	Audience string
	Phrases  []string
}{
	{"family", []string{"gia đình", "cả nhà", "bố mẹ", "ba mẹ"}},
	{"couple", []string{"cặp đôi", "người yêu", "hẹn hò", "hai người"}},
	{"friends", []string{"bạn bè", "nhóm bạn", "hội bạn"}},
	{"business", []string{"công ty", "đối tác", "tiếp khách"}},
	{"solo", []string{"một mình", "đi một mình"}},
}

// priceDefs duyệt theo thứ tự, lấy khoảng giá đầu tiên khớp
var priceDefs = []struct {
	Range   string
	Phrases []string
}{
	{models.PriceRangeBudget, []string{"giá rẻ", "bình dân", "rẻ", "tiết kiệm"}},
	{models.PriceRangeMidRange, []string{"tầm trung", "vừa phải", "giá vừa"}},
	{models.PriceRangePremium, []string{"cao cấp"}},
	{models.PriceRangeLuxury, []string{"sang trọng", "luxury", "đắt tiền", "5 sao"}},
}

// timeDefs nhận diện yêu cầu thời gian
var timeDefs = []struct {
	Tag     string
	Phrases []string
}{
	{"morning", []string{"buổi sáng", "sáng sớm"}},
	{"noon", []string{"buổi trưa"}},
	{"evening", []string{"buổi tối", "ban đêm", "tối nay"}},
	{"weekend", []string{"cuối tuần", "thứ 7", "chủ nhật"}},
	{"holiday", []string{"ngày lễ", "dịp lễ", "tết"}},
}

// modifierDefs nhận diện tính từ bổ nghĩa
var modifierDefs = []struct {
	Tag     string
	Phrases []string
}{
	{"delicious", []string{"ngon", "món ngon"}},
	{"famous", []string{"nổi tiếng", "hot"}},
	{"new", []string{"mới mở", "mới"}},
	{"scenic", []string{"view đẹp", "đẹp", "checkin", "check in"}},
	{"quiet", []string{"yên tĩnh", "riêng tư"}},
}

// stopwords tiếng Việt, loại khỏi keywords
var stopwords = map[string]bool{
	"tại": true, "ở": true, "có": true, "cho": true, "và": true,
	"hoặc": true, "là": true, "của": true, "với": true, "một": true,
	"những": true, "các": true, "này": true, "đó": true, "tôi": true,
	"mình": true, "cần": true, "muốn": true, "tìm": true, "giúp": true,
	"không": true, "được": true, "thì": true, "mà": true, "đi": true,
	"đến": true, "trong": true, "gần": true, "hay": true, "nào": true,
	"gì": true, "nha": true, "ạ": true, "nhé": true,
}
