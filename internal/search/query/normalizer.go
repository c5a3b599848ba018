package query

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// NormalizedQuery giữ ba dạng của cùng một query: nguyên bản,
// đã chuẩn hóa (giữ dấu) và đã bỏ dấu.
type NormalizedQuery struct {
	Original   string
	Normalized string
	Stripped   string
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Giữ chữ, số, khoảng trắng và dấu câu có nghĩa: - . , ( ) [ ] /
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}\s\-.,()\[\]/]`)
)

// Normalize chuẩn hóa query: NFC, lowercase, bỏ ký tự điều khiển,
// gom khoảng trắng. Hàm thuần, chuỗi rỗng vào thì rỗng ra.
func Normalize(q string) NormalizedQuery {
	result := NormalizedQuery{Original: q}

	s := norm.NFC.String(q)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = punctuationRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	result.Normalized = s
	result.Stripped = StripDiacritics(s)
	return result
}

// StripDiacritics bỏ dấu tiếng Việt, kể cả đ -> d
func StripDiacritics(s string) string {
	stripped := unidecode.Unidecode(s)
	// unidecode có thể sinh khoảng trắng thừa quanh ký tự đặc biệt
	stripped = whitespaceRe.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(stripped)
}

// Tokenize tách query đã chuẩn hóa thành các từ
func Tokenize(normalized string) []string {
	return strings.Fields(normalized)
}
