// Package logging dựng zap logger từ cấu hình.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New tạo logger production với mức log cho trước.
// Mức không nhận dạng được rơi về info.
func New(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
