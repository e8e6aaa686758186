// Package logger holds the process-wide loggers.
//
// Errors (syntax errors, timeouts) go to the main logger on stderr so that
// stdout stays free for script results. Beep diagnostics go to a separate
// diagnostic logger which writes to stdout by default.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	globalLogger *slog.Logger
	diagnostics  *slog.Logger
)

// ParseLevel ログレベル文字列をslog.Levelに変換
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}

// InitLogger ログレベルに応じてslogを初期化
func InitLogger(level string) error {
	return InitLoggerWithWriter(level, os.Stderr)
}

// InitLoggerWithWriter 出力先を指定してslogを初期化
func InitLoggerWithWriter(level string, w io.Writer) error {
	slogLevel, err := ParseLevel(level)
	if err != nil {
		return err
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slogLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)

	return nil
}

// GetLogger グローバルロガーを取得
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		// デフォルトロガーを返す
		return slog.Default()
	}
	return globalLogger
}

// SetDiagnostics beep出力用のロガーを設定（nilでデフォルトに戻す）
func SetDiagnostics(l *slog.Logger) {
	diagnostics = l
}

// GetDiagnostics beep出力用のロガーを取得
func GetDiagnostics() *slog.Logger {
	if diagnostics == nil {
		diagnostics = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	return diagnostics
}
