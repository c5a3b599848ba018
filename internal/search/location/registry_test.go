package location

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"có dấu", "Hải Phòng", "Hải Phòng"},
		{"không dấu", "hai phong", "Hải Phòng"},
		{"viết liền", "haiphong", "Hải Phòng"},
		{"alias sài gòn", "sài gòn", "Hồ Chí Minh"},
		{"alias saigon", "saigon", "Hồ Chí Minh"},
		{"alias hcm", "hcm", "Hồ Chí Minh"},
		{"alias tphcm", "tphcm", "Hồ Chí Minh"},
		{"hoa thường lẫn lộn", "DA NANG", "Đà Nẵng"},
		{"sai 1 ký tự", "ha nol", "Hà Nội"},
		{"không tồn tại", "paris", ""},
		{"rỗng", "", ""},
		{"chuỗi ngắn không fuzzy", "hcx", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.input))
		})
	}
}

func TestFindIn(t *testing.T) {
	r := NewRegistry()

	m := r.FindIn("quan an tai hai phong co cho cho tre em choi")
	require.NotNil(t, m)
	assert.Equal(t, "Hải Phòng", m.Canonical)

	// match sớm nhất thắng khi có nhiều địa điểm
	m = r.FindIn("tu ha noi den da nang")
	require.NotNil(t, m)
	assert.Equal(t, "Hà Nội", m.Canonical)

	// form dài hơn thắng tại cùng vị trí
	m = r.FindIn("an uong o ho chi minh")
	require.NotNil(t, m)
	assert.Equal(t, "Hồ Chí Minh", m.Canonical)

	// dấu câu cạnh địa điểm không chặn match
	m = r.FindIn("quan an o hai phong, gan bien")
	require.NotNil(t, m)
	assert.Equal(t, "Hải Phòng", m.Canonical)

	assert.Nil(t, r.FindIn("an gi cung duoc"))
}

func TestContainsSurface(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.ContainsSurface("Nhà hàng hải sản tại Hải Phòng, view biển", "Hải Phòng"))
	assert.True(t, r.ContainsSurface("chi nhánh Sài Gòn mở cửa từ 8h", "Hồ Chí Minh"))
	assert.True(t, r.ContainsSurface("ưu đãi (Đà Nẵng) cuối tuần", "Đà Nẵng"))
	assert.True(t, r.ContainsSurface("giao hàng Hà Nội.", "Hà Nội"))
	assert.False(t, r.ContainsSurface("ưu đãi toàn quốc", "Hà Nội"))
	// không match giữa từ
	assert.False(t, r.ContainsSurface("hueco corporation", "Huế"))
}

func TestRegionsAndNeighbors(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, RegionNorth, r.RegionOf("Hà Nội"))
	assert.Equal(t, RegionCentral, r.RegionOf("Đà Nẵng"))
	assert.Equal(t, RegionSouth, r.RegionOf("Cần Thơ"))
	assert.Empty(t, r.RegionOf("Tokyo"))

	assert.True(t, r.IsNeighbor("Hà Nội", "Hải Phòng"))
	assert.True(t, r.IsNeighbor("Hồ Chí Minh", "Vũng Tàu"))
	assert.True(t, r.IsNeighbor("Cần Thơ", "Hồ Chí Minh"))
	assert.True(t, r.IsNeighbor("Đà Nẵng", "Huế"))
	assert.False(t, r.IsNeighbor("Hà Nội", "Cần Thơ"))
}

func TestLoadRegistry(t *testing.T) {
	entries := []Entry{
		{
			Canonical:    "Quy Nhơn",
			SurfaceForms: []string{"quy nhơn", "quy nhon"},
			Region:       RegionCentral,
		},
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "locations.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "Quy Nhơn", r.Resolve("quy nhon"))
	assert.Empty(t, r.Resolve("hà nội"))

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
