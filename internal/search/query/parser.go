// Package query phân tích query tiếng Việt thành các thành phần có cấu
// trúc: intent, địa điểm, yêu cầu dịch vụ, đối tượng, khoảng giá và
// keywords.
package query

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/oneu-vn/voucher-search/internal/models"
	"github.com/oneu-vn/voucher-search/internal/search/location"
)

// Parser phân tích query dựa trên pattern và registry địa điểm.
// Parse là hàm thuần: cùng input luôn cho cùng output.
type Parser struct {
	registry *location.Registry
}

// NewParser tạo parser với registry địa điểm đã khởi tạo
func NewParser(registry *location.Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse phân tích query thành QueryComponents. Query rỗng sau chuẩn hóa
// trả về components với intent general và confidence 0.
func (p *Parser) Parse(rawQuery string) *models.QueryComponents {
	nq := Normalize(rawQuery)

	c := &models.QueryComponents{
		Original:   nq.Original,
		Normalized: nq.Normalized,
		Stripped:   nq.Stripped,
		Intent:     models.IntentGeneral,
	}
	if nq.Normalized == "" {
		return c
	}

	c.Intent, c.IntentScore = p.detectIntent(nq)
	c.Location, c.LocationType = p.extractLocation(nq)
	c.ServiceRequirements = p.extractServiceRequirements(nq)
	c.TargetAudience = p.extractTarget(nq)
	c.PricePreference = p.extractPricePreference(nq)
	c.TimeRequirements = p.extractTimeRequirements(nq)
	c.Modifiers = p.extractModifiers(nq)
	c.Keywords = p.extractKeywords(nq)
	c.Confidence = p.confidence(c)

	return c
}

// matchPhrase so khớp cụm từ theo ranh giới từ, thử cả dạng có dấu
// lẫn bỏ dấu
func matchPhrase(nq NormalizedQuery, phrase string) bool {
	padded := " " + nq.Normalized + " "
	if strings.Contains(padded, " "+phrase+" ") {
		return true
	}
	stripped := " " + nq.Stripped + " "
	return strings.Contains(stripped, " "+StripDiacritics(phrase)+" ")
}

// containsExact so khớp chuỗi con nguyên văn, thử cả hai dạng
func containsExact(nq NormalizedQuery, phrase string) bool {
	return strings.Contains(nq.Normalized, phrase) ||
		strings.Contains(nq.Stripped, StripDiacritics(phrase))
}

// detectIntent chấm điểm từng intent: +0.30 mỗi pattern khớp, +0.20 mỗi
// exact keyword xuất hiện nguyên văn, chặn trần 1.0. Intent điểm cao
// nhất thắng; hòa điểm thì intent đứng trước theo thứ tự tên thắng.
// Không intent nào có điểm thì trả về general.
func (p *Parser) detectIntent(nq NormalizedQuery) (models.Intent, float64) {
	best := models.IntentGeneral
	bestScore := 0.0

	for _, intent := range intentOrder {
		def := intentDefs[intent]
		score := 0.0
		for _, pattern := range def.Patterns {
			if matchPhrase(nq, pattern) {
				score += 0.30
			}
		}
		for _, kw := range def.ExactKeywords {
			if containsExact(nq, kw) {
				score += 0.20
			}
		}
		if score > 1.0 {
			score = 1.0
		}
		if score > bestScore {
			best = intent
			bestScore = score
		}
	}
	return best, bestScore
}

// locationCues là các giới từ báo hiệu địa điểm đứng sau
var locationCues = []string{"tai", "o", "trong", "gan", "khu vuc", "quanh"}

// extractLocation tìm địa điểm trong query qua registry. Match sớm nhất
// thắng; nhiều form cùng vị trí thì form dài nhất thắng. LocationType là
// "explicit" khi có giới từ chỉ nơi chốn đứng ngay trước, ngược lại
// "implicit".
func (p *Parser) extractLocation(nq NormalizedQuery) (string, string) {
	m := p.registry.FindIn(nq.Stripped)
	if m == nil {
		return "", ""
	}

	prefix := strings.TrimSpace(nq.Stripped[:max(m.Start, 0)])
	words := strings.Fields(prefix)
	if len(words) > 0 {
		last := words[len(words)-1]
		for _, cue := range locationCues {
			if last == cue {
				return m.Canonical, "explicit"
			}
		}
		if len(words) > 1 {
			lastTwo := words[len(words)-2] + " " + last
			for _, cue := range locationCues {
				if lastTwo == cue {
					return m.Canonical, "explicit"
				}
			}
		}
	}
	return m.Canonical, "implicit"
}

func (p *Parser) extractServiceRequirements(nq NormalizedQuery) []string {
	var tags []string
	for _, def := range serviceTagDefs {
		for _, phrase := range def.Phrases {
			if matchPhrase(nq, phrase) {
				tags = append(tags, def.Tag)
				break
			}
		}
	}
	return tags
}

func (p *Parser) extractTarget(nq NormalizedQuery) string {
	for _, def := range targetDefs {
		for _, phrase := range def.Phrases {
			if matchPhrase(nq, phrase) {
				return def.Audience
			}
		}
	}
	return ""
}

func (p *Parser) extractPricePreference(nq NormalizedQuery) string {
	for _, def := range priceDefs {
		for _, phrase := range def.Phrases {
			if matchPhrase(nq, phrase) {
				return def.Range
			}
		}
	}
	return ""
}

func (p *Parser) extractTimeRequirements(nq NormalizedQuery) []string {
	var tags []string
	for _, def := range timeDefs {
		for _, phrase := range def.Phrases {
			if matchPhrase(nq, phrase) {
				tags = append(tags, def.Tag)
				break
			}
		}
	}
	return tags
}

func (p *Parser) extractModifiers(nq NormalizedQuery) []string {
	var tags []string
	for _, def := range modifierDefs {
		for _, phrase := range def.Phrases {
			if matchPhrase(nq, phrase) {
				tags = append(tags, def.Tag)
				break
			}
		}
	}
	return tags
}

// extractKeywords lấy các từ còn lại sau khi bỏ stopword và bỏ các từ
// đã bị surface form của địa điểm tiêu thụ. Giữ nguyên thứ tự xuất hiện.
func (p *Parser) extractKeywords(nq NormalizedQuery) []string {
	consumed := map[string]bool{}
	if m := p.registry.FindIn(nq.Stripped); m != nil {
		for _, w := range strings.Fields(m.Surface) {
			consumed[w] = true
		}
	}

	tokens := Tokenize(nq.Normalized)
	strippedTokens := Tokenize(nq.Stripped)

	keywords := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		if stopwords[tok] {
			continue
		}
		if i < len(strippedTokens) && consumed[strippedTokens[i]] {
			continue
		}
		keywords = append(keywords, tok)
	}
	return lo.Uniq(keywords)
}

// confidence = min(1, 0.5*intentScore + 0.3 nếu có location + 0.2 nếu
// có keywords)
func (p *Parser) confidence(c *models.QueryComponents) float64 {
	conf := 0.5 * c.IntentScore
	if c.Location != "" {
		conf += 0.3
	}
	if len(c.Keywords) > 0 {
		conf += 0.2
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

// ExplainParsing sinh mô tả tiếng Việt cho kết quả phân tích, dùng cho
// trường explanations của response.
func ExplainParsing(c *models.QueryComponents) string {
	parts := []string{fmt.Sprintf("intent: %s", c.Intent)}
	if c.Location != "" {
		parts = append(parts, fmt.Sprintf("địa điểm: %s", c.Location))
	}
	if len(c.ServiceRequirements) > 0 {
		parts = append(parts, fmt.Sprintf("yêu cầu: %s", strings.Join(c.ServiceRequirements, ", ")))
	}
	if c.TargetAudience != "" {
		parts = append(parts, fmt.Sprintf("đối tượng: %s", c.TargetAudience))
	}
	if c.PricePreference != "" {
		parts = append(parts, fmt.Sprintf("khoảng giá: %s", c.PricePreference))
	}
	parts = append(parts, fmt.Sprintf("độ tin cậy: %.2f", c.Confidence))
	return "Phân tích query: " + strings.Join(parts, "; ")
}
