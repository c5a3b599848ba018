package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oneu-vn/voucher-search/internal/models"
	"github.com/oneu-vn/voucher-search/internal/search"
)

// VoucherHandler phục vụ tra cứu voucher theo id
type VoucherHandler struct {
	engine *search.Engine
	logger *zap.Logger
}

// NewVoucherHandler tạo handler voucher
func NewVoucherHandler(engine *search.Engine, logger *zap.Logger) *VoucherHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoucherHandler{engine: engine, logger: logger}
}

// GetByID godoc
// @Summary Lấy voucher theo id
// @Description Trả về document voucher đầy đủ, không kèm embeddings
// @Tags vouchers
// @Produce json
// @Param id path string true "Voucher id"
// @Success 200 {object} models.Voucher
// @Failure 404 {object} ErrorResponse "Không tìm thấy voucher"
// @Failure 503 {object} ErrorResponse "Index không phản hồi"
// @Router /api/v1/vouchers/{id} [get]
func (h *VoucherHandler) GetByID(c *gin.Context) {
	voucher, err := h.engine.GetVoucher(c.Request.Context(), c.Param("id"))
	if err != nil {
		se := models.AsSearchError(err)
		if se == nil {
			h.logger.Error("lỗi không phân loại được", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "Internal", Message: "lỗi nội bộ"})
			return
		}
		c.JSON(statusFor(se.Code), ErrorResponse{
			Code:      se.Code,
			Message:   se.Message,
			Component: se.Component,
		})
		return
	}

	c.JSON(http.StatusOK, voucher)
}

// Delete godoc
// @Summary Xóa voucher khỏi index
// @Description Xóa document theo id; id không tồn tại vẫn trả về 204
// @Tags vouchers
// @Param id path string true "Voucher id"
// @Success 204 "Đã xóa"
// @Failure 503 {object} ErrorResponse "Index không phản hồi"
// @Router /api/v1/vouchers/{id} [delete]
func (h *VoucherHandler) Delete(c *gin.Context) {
	if err := h.engine.DeleteVoucher(c.Request.Context(), c.Param("id")); err != nil {
		se := models.AsSearchError(err)
		if se == nil {
			h.logger.Error("lỗi không phân loại được", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "Internal", Message: "lỗi nội bộ"})
			return
		}
		c.JSON(statusFor(se.Code), ErrorResponse{
			Code:      se.Code,
			Message:   se.Message,
			Component: se.Component,
		})
		return
	}

	c.Status(http.StatusNoContent)
}
