// Package location cung cấp registry địa điểm Việt Nam: resolve surface
// form về tên canonical, tra vùng và danh sách lân cận.
package location

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/mozillazg/go-unidecode"
)

// Registry là bảng tra địa điểm, bất biến sau khi khởi tạo
type Registry struct {
	entries []Entry
	// byForm map từ surface form đã bỏ dấu về canonical
	byForm map[string]string
	// byCanonical map canonical về entry
	byCanonical map[string]*Entry
	// forms sắp xếp theo độ dài giảm dần để match dài nhất trước
	forms []string
}

// NewRegistry tạo registry từ danh sách tích hợp sẵn
func NewRegistry() *Registry {
	return newRegistry(defaultEntries)
}

// LoadRegistry đọc registry từ file JSON, dùng khi cần mở rộng danh sách
// địa điểm mà không build lại binary.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("đọc registry địa điểm: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse registry địa điểm: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("registry địa điểm rỗng: %s", path)
	}
	return newRegistry(entries), nil
}

func newRegistry(entries []Entry) *Registry {
	r := &Registry{
		entries:     entries,
		byForm:      make(map[string]string),
		byCanonical: make(map[string]*Entry),
	}
	for i := range entries {
		e := &entries[i]
		r.byCanonical[e.Canonical] = e
		for _, form := range e.SurfaceForms {
			key := normalizeForm(form)
			r.byForm[key] = e.Canonical
			r.forms = append(r.forms, key)
		}
		// canonical cũng là surface form của chính nó
		key := normalizeForm(e.Canonical)
		if _, ok := r.byForm[key]; !ok {
			r.byForm[key] = e.Canonical
			r.forms = append(r.forms, key)
		}
	}
	sort.Slice(r.forms, func(i, j int) bool {
		if len(r.forms[i]) != len(r.forms[j]) {
			return len(r.forms[i]) > len(r.forms[j])
		}
		return r.forms[i] < r.forms[j]
	})
	return r
}

func normalizeForm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(unidecode.Unidecode(s)), " ")
}

// foldPunct thay mỗi ký tự không phải chữ, số hay khoảng trắng bằng
// một khoảng trắng, giữ nguyên độ dài với input ASCII để offset của
// match không đổi.
func foldPunct(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
}

// Resolve đưa một chuỗi tự do về tên canonical. So khớp không phân biệt
// hoa thường và dấu; chuỗi từ 5 rune trở lên chấp nhận sai 1 ký tự.
// Trả về chuỗi rỗng nếu không resolve được.
func (r *Registry) Resolve(s string) string {
	key := normalizeForm(s)
	if key == "" {
		return ""
	}
	if canonical, ok := r.byForm[key]; ok {
		return canonical
	}
	if len([]rune(key)) < 5 {
		return ""
	}
	for _, form := range r.forms {
		if len([]rune(form)) < 5 {
			continue
		}
		if levenshtein.ComputeDistance(key, form) <= 1 {
			return r.byForm[form]
		}
	}
	return ""
}

// Match là một surface form tìm thấy trong text. Start là offset của
// form trong text gốc.
type Match struct {
	Canonical string
	Surface   string
	Start     int
}

// FindIn quét text đã bỏ dấu và trả về match sớm nhất; nếu nhiều form
// cùng bắt đầu tại một vị trí thì lấy form dài nhất. Trả về nil nếu
// không có địa điểm nào.
func (r *Registry) FindIn(strippedText string) *Match {
	text := " " + foldPunct(strippedText) + " "
	var best *Match
	for _, form := range r.forms {
		idx := strings.Index(text, " "+form+" ")
		if idx < 0 {
			continue
		}
		// forms đã sắp theo độ dài giảm dần nên match đầu tiên tại một
		// vị trí luôn là form dài nhất
		if best == nil || idx < best.Start {
			best = &Match{Canonical: r.byForm[form], Surface: form, Start: idx}
		}
	}
	return best
}

// ContainsSurface kiểm tra text (tự do, có dấu hay không đều được) có
// chứa một surface form nào của canonical không.
func (r *Registry) ContainsSurface(text, canonical string) bool {
	e, ok := r.byCanonical[canonical]
	if !ok {
		return false
	}
	stripped := " " + normalizeForm(foldPunct(text)) + " "
	for _, form := range e.SurfaceForms {
		if strings.Contains(stripped, " "+normalizeForm(form)+" ") {
			return true
		}
	}
	return strings.Contains(stripped, " "+normalizeForm(canonical)+" ")
}

// RegionOf trả về vùng của một canonical, rỗng nếu không biết
func (r *Registry) RegionOf(canonical string) string {
	if e, ok := r.byCanonical[canonical]; ok {
		return e.Region
	}
	return ""
}

// NeighborsOf trả về danh sách canonical lân cận
func (r *Registry) NeighborsOf(canonical string) []string {
	if e, ok := r.byCanonical[canonical]; ok {
		return e.Neighbors
	}
	return nil
}

// IsNeighbor kiểm tra b có nằm trong danh sách lân cận của a không
func (r *Registry) IsNeighbor(a, b string) bool {
	for _, n := range r.NeighborsOf(a) {
		if n == b {
			return true
		}
	}
	return false
}

// Canonicals liệt kê mọi tên canonical trong registry
func (r *Registry) Canonicals() []string {
	out := make([]string, 0, len(r.entries))
	for i := range r.entries {
		out = append(out, r.entries[i].Canonical)
	}
	return out
}
