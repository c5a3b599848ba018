package location

// Các vùng địa lý của Việt Nam
const (
	RegionNorth   = "Miền Bắc"
	RegionCentral = "Miền Trung"
	RegionSouth   = "Miền Nam"
)

// Entry là một địa điểm trong registry
type Entry struct {
	Canonical    string   `json:"canonical"`
	SurfaceForms []string `json:"surface_forms"`
	Region       string   `json:"region"`
	Neighbors    []string `json:"neighbors,omitempty"`
	Districts    []string `json:"districts,omitempty"`
}

// defaultEntries là registry tích hợp sẵn. Có thể thay bằng file JSON
// qua LOCATION_REGISTRY_PATH.
var defaultEntries = []Entry{
	{
		Canonical:    "Hà Nội",
		SurfaceForms: []string{"hà nội", "ha noi", "hanoi", "hn", "thủ đô"},
		Region:       RegionNorth,
		Neighbors:    []string{"Hải Phòng"},
		Districts:    []string{"Hoàn Kiếm", "Ba Đình", "Đống Đa", "Cầu Giấy", "Tây Hồ"},
	},
	{
		Canonical:    "Hải Phòng",
		SurfaceForms: []string{"hải phòng", "hai phong", "haiphong", "hp"},
		Region:       RegionNorth,
		Neighbors:    []string{"Hà Nội"},
		Districts:    []string{"Hồng Bàng", "Lê Chân", "Ngô Quyền", "Đồ Sơn"},
	},
	{
		Canonical:    "Đà Nẵng",
		SurfaceForms: []string{"đà nẵng", "da nang", "danang", "đn"},
		Region:       RegionCentral,
		Neighbors:    []string{"Huế"},
		Districts:    []string{"Hải Châu", "Sơn Trà", "Ngũ Hành Sơn", "Thanh Khê"},
	},
	{
		Canonical:    "Huế",
		SurfaceForms: []string{"huế", "hue", "thừa thiên huế", "thua thien hue"},
		Region:       RegionCentral,
		Neighbors:    []string{"Đà Nẵng"},
	},
	{
		Canonical:    "Nha Trang",
		SurfaceForms: []string{"nha trang", "nhatrang", "khánh hòa", "khanh hoa"},
		Region:       RegionCentral,
		Neighbors:    []string{"Đà Lạt"},
	},
	{
		Canonical:    "Đà Lạt",
		SurfaceForms: []string{"đà lạt", "da lat", "dalat", "lâm đồng"},
		Region:       RegionCentral,
		Neighbors:    []string{"Nha Trang"},
	},
	{
		Canonical:    "Hồ Chí Minh",
		SurfaceForms: []string{"hồ chí minh", "ho chi minh", "tp hcm", "tphcm", "hcm", "sài gòn", "sai gon", "saigon", "sg"},
		Region:       RegionSouth,
		Neighbors:    []string{"Vũng Tàu", "Cần Thơ"},
		Districts:    []string{"Quận 1", "Quận 3", "Quận 7", "Bình Thạnh", "Thủ Đức"},
	},
	{
		Canonical:    "Vũng Tàu",
		SurfaceForms: []string{"vũng tàu", "vung tau", "bà rịa", "ba ria"},
		Region:       RegionSouth,
		Neighbors:    []string{"Hồ Chí Minh"},
	},
	{
		Canonical:    "Cần Thơ",
		SurfaceForms: []string{"cần thơ", "can tho", "cantho"},
		Region:       RegionSouth,
		Neighbors:    []string{"Hồ Chí Minh"},
	},
}
