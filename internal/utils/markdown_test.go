package utils

import (
	"strings"
	"testing"
)

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "chuỗi rỗng",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text",
			input:    "Ưu đãi buffet hải sản",
			expected: "Ưu đãi buffet hải sản",
		},
		{
			name:     "in đậm",
			input:    "Giảm **50%** cho nhóm 4 người",
			expected: "Giảm 50% cho nhóm 4 người",
		},
		{
			name:     "in nghiêng",
			input:    "Áp dụng *cuối tuần* này",
			expected: "Áp dụng cuối tuần này",
		},
		{
			name:     "link",
			input:    "Đặt chỗ tại [website](https://example.com) của quán",
			expected: "Đặt chỗ tại website của quán",
		},
		{
			name:     "heading",
			input:    "# Điều kiện áp dụng\n\nKhông gộp khuyến mãi khác",
			expected: "Điều kiện áp dụng\n\nKhông gộp khuyến mãi khác",
		},
		{
			name:     "code inline",
			input:    "Nhập mã `GIAM50` khi thanh toán",
			expected: "Nhập mã GIAM50 khi thanh toán",
		},
		{
			name:     "danh sách",
			input:    "- Món khai vị\n- Món chính\n- Tráng miệng",
			expected: "- Món khai vị\n\n- Món chính\n\n- Tráng miệng",
		},
		{
			name:     "blockquote",
			input:    "> Lưu ý đặt bàn trước\n> ít nhất 1 ngày",
			expected: "Lưu ý đặt bàn trước\nít nhất 1 ngày",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripMarkdown(tt.input)
			if result != tt.expected {
				t.Errorf("StripMarkdown(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSnippet(t *testing.T) {
	t.Run("text ngắn giữ nguyên", func(t *testing.T) {
		got := Snippet("Buffet hải sản tươi sống", 100)
		if got != "Buffet hải sản tươi sống" {
			t.Errorf("Snippet() = %q", got)
		}
	})

	t.Run("bỏ markdown và gom dòng", func(t *testing.T) {
		got := Snippet("Giảm **50%**\n\ncho nhóm", 100)
		if got != "Giảm 50% cho nhóm" {
			t.Errorf("Snippet() = %q", got)
		}
	})

	t.Run("cắt tại ranh giới từ", func(t *testing.T) {
		long := strings.Repeat("voucher ưu đãi ", 30)
		got := Snippet(long, 50)
		if !strings.HasSuffix(got, "...") {
			t.Errorf("Snippet() thiếu dấu ba chấm: %q", got)
		}
		if len([]rune(got)) > 53 {
			t.Errorf("Snippet() quá dài: %d runes", len([]rune(got)))
		}
		if strings.Contains(strings.TrimSuffix(got, "..."), "  ") {
			t.Errorf("Snippet() chứa khoảng trắng kép: %q", got)
		}
	})

	t.Run("maxRunes không dương giữ nguyên", func(t *testing.T) {
		got := Snippet("Ưu đãi hấp dẫn", 0)
		if got != "Ưu đãi hấp dẫn" {
			t.Errorf("Snippet() = %q", got)
		}
	})
}
