// internal/logger/logger.go
//
// Package logger 封裝 zerolog：建立結構化 logger，並可放入 context 傳遞。
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ContextKey 為 logger 在 context 中使用的 key 型別。
type ContextKey string

// LoggerKey 為 context 中存放 logger 的 key。
const LoggerKey ContextKey = "logger"

// New 建立輸出到 stderr 的主控台 logger（stdout 保留給 CLI 輸出）。
func New() zerolog.Logger {
	return NewConsole(os.Stderr)
}

// NewConsole 建立輸出人類可讀格式到 w 的 logger。
func NewConsole(w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    w != os.Stderr,
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// NewWithWriter 建立輸出 JSON 行到 w 的 logger。
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// Nop 回傳不輸出任何內容的 logger。
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// WithLevel 依字串設定層級；無法辨識時維持 info。
func WithLevel(l zerolog.Logger, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return l.Level(lvl)
}

// WithContext 將 logger 放入 context。
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext 由 context 取得 logger；不存在時回傳 fallback。
func FromContext(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return fallback
}
