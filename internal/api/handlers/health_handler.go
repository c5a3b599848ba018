package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger là backend kiểm tra được bằng một round-trip
type Pinger interface {
	Ping(ctx context.Context) error
}

// Availability là backend chỉ báo được trạng thái cục bộ
type Availability interface {
	IsAvailable() bool
}

// HealthHandler phục vụ các endpoint health check
type HealthHandler struct {
	index    Pinger
	embedder Availability
}

// NewHealthHandler tạo handler health check
func NewHealthHandler(index Pinger, embedder Availability) *HealthHandler {
	return &HealthHandler{index: index, embedder: embedder}
}

// HealthResponse là body của các endpoint health
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Error     string            `json:"error,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// Liveness godoc
// @Summary Liveness check
// @Description Xác nhận tiến trình còn sống, không kiểm tra phụ thuộc bên ngoài
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /liveness [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().Unix(),
	})
}

// Readiness godoc
// @Summary Readiness check
// @Description Kiểm tra sẵn sàng nhận traffic: Elasticsearch phản hồi và Gemini khởi tạo xong
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /readiness [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "ready",
		Checks:    make(map[string]string),
		Timestamp: time.Now().Unix(),
	}

	if err := h.index.Ping(ctx); err == nil {
		response.Checks["elasticsearch"] = "ok"
	} else {
		response.Checks["elasticsearch"] = "failed"
		response.Status = "not_ready"
		response.Error = err.Error()
	}

	if h.embedder.IsAvailable() {
		response.Checks["gemini"] = "ok"
	} else {
		response.Checks["gemini"] = "failed"
		response.Status = "not_ready"
		if response.Error == "" {
			response.Error = "client Gemini chưa khởi tạo"
		}
	}

	statusCode := http.StatusOK
	if response.Status == "not_ready" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}

// Health godoc
// @Summary Health check tổng hợp
// @Description Kiểm tra sức khỏe toàn bộ phụ thuộc, dùng cho monitoring bên ngoài
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Checks:    make(map[string]string),
		Timestamp: time.Now().Unix(),
	}

	if err := h.index.Ping(ctx); err == nil {
		response.Checks["elasticsearch"] = "ok"
	} else {
		response.Checks["elasticsearch"] = "failed"
		response.Status = "unhealthy"
		response.Error = err.Error()
	}

	if h.embedder.IsAvailable() {
		response.Checks["gemini"] = "ok"
	} else {
		response.Checks["gemini"] = "failed"
		response.Status = "unhealthy"
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}
