// Package rag ghép context từ kết quả truy hồi và sinh câu trả lời
// tiếng Việt có trích dẫn voucher.
package rag

import (
	"github.com/pkoukk/tiktoken-go"
)

// TokenEstimator ước lượng số token của text để giữ context trong
// ngân sách. Dùng tokenizer cl100k_base; nếu không nạp được thì ước
// lượng thô theo số ký tự.
type TokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenEstimator tạo estimator, không bao giờ lỗi
func NewTokenEstimator() *TokenEstimator {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return &TokenEstimator{}
	}
	return &TokenEstimator{encoding: enc}
}

// Estimate trả về số token ước lượng của text
func (t *TokenEstimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	if t.encoding != nil {
		return len(t.encoding.Encode(text, nil, nil))
	}
	// xấp xỉ 4 ký tự một token
	n := len([]rune(text)) / 4
	if n == 0 {
		n = 1
	}
	return n
}
