// Package observability はログ・トレース・メトリクスの初期化をまとめる。
package observability

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// NewLogger は format=console なら開発用、それ以外は JSON の本番用ロガーを返す。
func NewLogger(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}

	return cfg.Build()
}
