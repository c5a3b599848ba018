package models

import (
	"errors"
	"fmt"
)

// Mã lỗi ổn định trả về cho caller
const (
	CodeBadRequest           = "BadRequest"
	CodeEmbeddingUnavailable = "EmbeddingUnavailable"
	CodeIndexUnavailable     = "IndexUnavailable"
	CodeGeneratorUnavailable = "GeneratorUnavailable"
	CodeDeadlineExceeded     = "DeadlineExceeded"
	CodeOverloaded           = "Overloaded"
	CodeInvalidDocument      = "InvalidDocument"
	CodeNotFound             = "NotFound"
)

var (
	ErrQueryTooShort       = &SearchError{Code: CodeBadRequest, Message: "query phải có ít nhất 2 ký tự sau khi chuẩn hóa", Component: "facade"}
	ErrInvalidTopK         = &SearchError{Code: CodeBadRequest, Message: "top_k phải nằm trong khoảng 1..50", Component: "facade"}
	ErrInvalidMode         = &SearchError{Code: CodeBadRequest, Message: "mode không hợp lệ (dùng: vector, hybrid, rag)", Component: "facade"}
	ErrInvalidMinScore     = &SearchError{Code: CodeBadRequest, Message: "min_score phải nằm trong khoảng [0,1]", Component: "facade"}
	ErrUnknownFilterValue  = &SearchError{Code: CodeBadRequest, Message: "giá trị filter không được hỗ trợ", Component: "facade"}
	ErrEmbeddingService    = &SearchError{Code: CodeEmbeddingUnavailable, Message: "không tạo được embedding cho query", Component: "embedding"}
	ErrIndexUnavailable    = &SearchError{Code: CodeIndexUnavailable, Message: "index engine không phản hồi", Component: "index"}
	ErrGeneratorService    = &SearchError{Code: CodeGeneratorUnavailable, Message: "generator không phản hồi", Component: "generator"}
	ErrDeadlineExceeded    = &SearchError{Code: CodeDeadlineExceeded, Message: "hết thời gian xử lý request", Component: "facade"}
	ErrOverloaded          = &SearchError{Code: CodeOverloaded, Message: "hệ thống đang quá tải, thử lại sau", Component: "facade"}
	ErrInvalidDocument     = &SearchError{Code: CodeInvalidDocument, Message: "voucher không thỏa mãn invariant của index", Component: "index"}
	ErrVoucherNotFound     = &SearchError{Code: CodeNotFound, Message: "không tìm thấy voucher", Component: "index"}
)

// SearchError mang mã lỗi machine-readable, thông điệp cho người dùng
// và component gây lỗi.
type SearchError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Component string `json:"component"`
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetail tạo bản sao với thông điệp chi tiết hơn, giữ nguyên code
func (e *SearchError) WithDetail(format string, args ...interface{}) *SearchError {
	return &SearchError{
		Code:      e.Code,
		Message:   fmt.Sprintf("%s: %s", e.Message, fmt.Sprintf(format, args...)),
		Component: e.Component,
	}
}

// AsSearchError trích SearchError từ một error chain, nil nếu không có
func AsSearchError(err error) *SearchError {
	var se *SearchError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
