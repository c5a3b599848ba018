package query

import (
	"strings"

	"github.com/oneu-vn/voucher-search/internal/models"
	"github.com/oneu-vn/voucher-search/internal/search/synonyms"
)

// ExpandedQuery là query sau khi mở rộng từ đồng nghĩa. Chỉ nhánh
// lexical dùng QueryString; nhánh dense luôn embed query gốc.
type ExpandedQuery struct {
	Original      string
	ExpandedTerms []string
	QueryString   string
}

// Expander mở rộng query bằng từ đồng nghĩa cục bộ
type Expander struct {
	maxExpansions int
}

// NewExpander tạo expander với giới hạn số term thêm vào
func NewExpander(maxExpansions int) *Expander {
	if maxExpansions <= 0 {
		maxExpansions = 5
	}
	return &Expander{maxExpansions: maxExpansions}
}

// Expand thêm từ đồng nghĩa của keywords vào query lexical, giữ nguyên
// query gốc ở đầu. Không bao giờ vượt quá maxExpansions term thêm.
func (e *Expander) Expand(c *models.QueryComponents) *ExpandedQuery {
	result := &ExpandedQuery{
		Original:    c.Normalized,
		QueryString: c.Normalized,
	}

	seen := make(map[string]bool)
	for _, tok := range Tokenize(c.Normalized) {
		seen[tok] = true
	}

	added := 0
	expanded := []string{c.Normalized}
	for _, kw := range c.Keywords {
		if added >= e.maxExpansions {
			break
		}
		for _, syn := range synonyms.FindSynonyms(kw) {
			key := strings.ToLower(syn)
			if seen[key] || added >= e.maxExpansions {
				continue
			}
			seen[key] = true
			expanded = append(expanded, key)
			added++
		}
	}

	result.ExpandedTerms = expanded[1:]
	result.QueryString = strings.Join(expanded, " ")
	return result
}
