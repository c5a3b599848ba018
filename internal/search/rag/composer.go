package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/oneu-vn/voucher-search/internal/models"
)

// DefaultMaxContextTokens là ngân sách token mặc định cho phần context
const DefaultMaxContextTokens = 4000

// systemPrompt ràng buộc model chỉ trả lời dựa trên context
const systemPrompt = `Bạn là trợ lý tư vấn voucher ưu đãi tại Việt Nam.
Quy tắc bắt buộc:
- Chỉ dùng thông tin trong danh sách voucher được cung cấp, không bịa thêm.
- Trả lời bằng tiếng Việt, thân thiện và ngắn gọn.
- Nhắc tên voucher cụ thể khi gợi ý.
- Nếu danh sách không có voucher phù hợp, nói thẳng là chưa tìm thấy.`

// noResultAnswer là câu trả lời cố định khi không truy hồi được gì
const noResultAnswer = "Xin lỗi, mình chưa tìm thấy voucher nào phù hợp với yêu cầu của bạn. " +
	"Bạn thử đổi từ khóa hoặc mở rộng khu vực tìm kiếm nhé."

// Generator sinh câu trả lời từ prompt, thường là Gemini
type Generator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
	IsAvailable() bool
}

// Answer là kết quả của bước RAG
type Answer struct {
	Text       string
	Confidence float64
	// Fallback báo câu trả lời sinh từ template vì generator lỗi
	Fallback bool
}

// Composer ghép context và điều phối sinh câu trả lời
type Composer struct {
	generator Generator
	estimator *TokenEstimator
	maxTokens int
}

// NewComposer tạo composer với ngân sách token cho context
func NewComposer(generator Generator, maxTokens int) *Composer {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxContextTokens
	}
	return &Composer{
		generator: generator,
		estimator: NewTokenEstimator(),
		maxTokens: maxTokens,
	}
}

// Compose sinh câu trả lời từ kết quả truy hồi. Không có kết quả trả
// về template cố định với confidence 0. Generator lỗi trả về danh sách
// Markdown từ template với cờ Fallback, không trả lỗi lên caller.
func (c *Composer) Compose(ctx context.Context, components *models.QueryComponents, results []models.SearchResult) (*Answer, error) {
	if len(results) == 0 {
		return &Answer{Text: noResultAnswer, Confidence: 0}, nil
	}

	confidence := c.confidence(results)

	if c.generator == nil || !c.generator.IsAvailable() {
		return &Answer{Text: c.fallbackAnswer(components, results), Confidence: confidence, Fallback: true}, nil
	}

	prompt := c.buildPrompt(components, results)
	text, err := c.generator.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		// deadline của request tổng thể phải nổi lên; timeout riêng của
		// generator chỉ rơi về template
		if ctx.Err() != nil {
			return nil, models.ErrDeadlineExceeded.WithDetail("generator không kịp deadline của request")
		}
		return &Answer{Text: c.fallbackAnswer(components, results), Confidence: confidence, Fallback: true}, nil
	}

	return &Answer{Text: text, Confidence: confidence}, nil
}

// confidence = clamp(mean(similarity)) * (1 + 0.1 nếu có từ 3 kết quả),
// chặn về [0,1]
func (c *Composer) confidence(results []models.SearchResult) float64 {
	var sum float64
	for _, r := range results {
		sum += r.SimilarityScore
	}
	mean := sum / float64(len(results))
	if mean < 0 {
		mean = 0
	} else if mean > 1 {
		mean = 1
	}
	if len(results) >= 3 {
		mean *= 1.1
	}
	if mean > 1 {
		mean = 1
	}
	return mean
}

// buildPrompt ghép query và các block voucher trong ngân sách token.
// Kết quả xếp hạng cao vào trước; block vượt ngân sách bị bỏ.
func (c *Composer) buildPrompt(components *models.QueryComponents, results []models.SearchResult) string {
	var sb strings.Builder
	sb.WriteString("Câu hỏi của khách: " + components.Original + "\n")
	if style := c.responseStyle(components); style != "" {
		sb.WriteString(style + "\n")
	}
	sb.WriteString("\nDanh sách voucher tìm được:\n")

	used := c.estimator.Estimate(sb.String())
	for i, r := range results {
		block := c.voucherBlock(i+1, &r)
		cost := c.estimator.Estimate(block)
		if used+cost > c.maxTokens {
			break
		}
		sb.WriteString(block)
		used += cost
	}

	sb.WriteString("\nHãy tư vấn cho khách dựa trên danh sách trên.")
	return sb.String()
}

// responseStyle điều chỉnh giọng trả lời theo thành phần query
func (c *Composer) responseStyle(components *models.QueryComponents) string {
	var hints []string
	if components.Location != "" {
		hints = append(hints, "khách quan tâm khu vực "+components.Location)
	}
	if components.TargetAudience != "" {
		hints = append(hints, "nhóm khách: "+components.TargetAudience)
	}
	if components.PricePreference != "" {
		hints = append(hints, "khoảng giá mong muốn: "+components.PricePreference)
	}
	if len(hints) == 0 {
		return ""
	}
	return "Lưu ý: " + strings.Join(hints, "; ") + "."
}

// voucherBlock dựng một block context cho một voucher
func (c *Composer) voucherBlock(ordinal int, r *models.SearchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d. %s\n", ordinal, r.VoucherName)
	if r.ContentSnippet != "" {
		fmt.Fprintf(&sb, "   Mô tả: %s\n", r.ContentSnippet)
	}
	if r.Location.Name != "" {
		fmt.Fprintf(&sb, "   Địa điểm: %s\n", r.Location.Name)
	}
	if r.PriceInfo.Price > 0 {
		fmt.Fprintf(&sb, "   Giá: %d VND (%s)\n", r.PriceInfo.Price, r.PriceInfo.PriceRange)
	}
	return sb.String()
}

// fallbackAnswer dựng danh sách Markdown khi không sinh được câu trả lời
func (c *Composer) fallbackAnswer(components *models.QueryComponents, results []models.SearchResult) string {
	var sb strings.Builder
	sb.WriteString("Mình tìm được các voucher sau phù hợp với yêu cầu của bạn:\n\n")
	for i, r := range results {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sb, "- **%s**", r.VoucherName)
		if r.Location.Name != "" {
			fmt.Fprintf(&sb, " (%s)", r.Location.Name)
		}
		if r.PriceInfo.Price > 0 {
			fmt.Fprintf(&sb, ", giá %d VND", r.PriceInfo.Price)
		}
		sb.WriteString("\n")
	}
	if components.Location != "" {
		fmt.Fprintf(&sb, "\nCác kết quả được ưu tiên quanh khu vực %s.", components.Location)
	}
	return sb.String()
}
