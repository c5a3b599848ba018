// Package handlers chứa các HTTP handler của API voucher.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/oneu-vn/voucher-search/internal/models"
	"github.com/oneu-vn/voucher-search/internal/search"
)

// SearchHandler phục vụ endpoint tìm kiếm thống nhất
type SearchHandler struct {
	engine *search.Engine
	logger *zap.Logger
}

// NewSearchHandler tạo handler tìm kiếm
func NewSearchHandler(engine *search.Engine, logger *zap.Logger) *SearchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchHandler{engine: engine, logger: logger}
}

// ErrorResponse là body trả về khi request thất bại
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Component string `json:"component,omitempty"`
}

// Search godoc
// @Summary Tìm kiếm voucher
// @Description ## Tìm kiếm voucher thống nhất
// @Description
// @Description Endpoint duy nhất cho cả ba chế độ tìm kiếm.
// @Description
// @Description ### Chế độ (tham số `mode`)
// @Description - **vector**: Tìm theo cosine similarity thuần trên embedding. Không điều chỉnh địa lý.
// @Description - **hybrid** (mặc định): Kết hợp BM25 và vector, sau đó re-rank theo địa lý. Khuyên dùng.
// @Description - **rag**: Như hybrid, kèm câu trả lời tiếng Việt sinh từ các voucher tìm được.
// @Description
// @Description ### Suy giảm có kiểm soát
// @Description Khi tầng rag quá tải hoặc generator lỗi, response vẫn trả kết quả truy hồi
// @Description với `metadata.degraded=true` và `metadata.failed_component` ghi thành phần hỏng.
// @Tags search
// @Accept json
// @Produce json
// @Param q query string true "Query tiếng Việt tự nhiên" example("quán ăn tại hải phòng có chỗ cho trẻ em chơi")
// @Param mode query string false "Chế độ tìm kiếm" Enums(vector, hybrid, rag) default(hybrid)
// @Param top_k query int false "Số kết quả trả về" default(10) minimum(1) maximum(50)
// @Param location query string false "Lọc cứng theo địa điểm (nhận cả alias, ví dụ: sài gòn)" example("hải phòng")
// @Param service query string false "Lọc cứng theo loại dịch vụ" example("restaurant")
// @Param price_range query string false "Lọc cứng theo khoảng giá" Enums(budget, mid-range, premium, luxury, unknown)
// @Param strict_location query bool false "Chỉ giữ kết quả trùng hoặc lân cận địa điểm trong query" default(false)
// @Param min_score query number false "Score tối thiểu sau boost" default(0) minimum(0) maximum(1)
// @Param expand query bool false "Mở rộng query bằng từ đồng nghĩa" default(false)
// @Success 200 {object} models.SearchResponse
// @Failure 400 {object} ErrorResponse "Tham số không hợp lệ"
// @Failure 404 {object} ErrorResponse "Không tìm thấy"
// @Failure 429 {object} ErrorResponse "Hệ thống quá tải"
// @Failure 503 {object} ErrorResponse "Backend không phản hồi"
// @Failure 504 {object} ErrorResponse "Hết thời gian xử lý"
// @Router /api/v1/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindErrorResponse(err))
		return
	}

	// Filters bind riêng vì nằm trong struct lồng
	if err := c.ShouldBindQuery(&req.Filters); err != nil {
		c.JSON(http.StatusBadRequest, bindErrorResponse(err))
		return
	}

	resp, err := h.engine.Search(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SearchHandler) writeError(c *gin.Context, err error) {
	se := models.AsSearchError(err)
	if se == nil {
		h.logger.Error("lỗi không phân loại được", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "Internal",
			Message: "lỗi nội bộ",
		})
		return
	}

	status := statusFor(se.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("search thất bại",
			zap.String("code", se.Code),
			zap.String("component", se.Component),
			zap.String("message", se.Message),
		)
	}
	c.JSON(status, ErrorResponse{
		Code:      se.Code,
		Message:   se.Message,
		Component: se.Component,
	})
}

// statusFor ánh xạ mã lỗi nội bộ sang HTTP status
func statusFor(code string) int {
	switch code {
	case models.CodeBadRequest:
		return http.StatusBadRequest
	case models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeOverloaded:
		return http.StatusTooManyRequests
	case models.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	case models.CodeEmbeddingUnavailable, models.CodeIndexUnavailable, models.CodeGeneratorUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// bindErrorResponse đổi lỗi binding của gin thành ErrorResponse dễ đọc
func bindErrorResponse(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return ErrorResponse{
			Code:      models.CodeBadRequest,
			Message:   "tham số " + fe.Field() + " không thỏa mãn ràng buộc " + fe.Tag(),
			Component: "api",
		}
	}
	return ErrorResponse{
		Code:      models.CodeBadRequest,
		Message:   err.Error(),
		Component: "api",
	}
}
