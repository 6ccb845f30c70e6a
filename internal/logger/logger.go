package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// presets maps a deployment environment to the zap base config it starts from.
var presets = map[string]func() zap.Config{
	"prod":       zap.NewProductionConfig,
	"production": zap.NewProductionConfig,
	"local":      zap.NewDevelopmentConfig,
	"dev":        zap.NewDevelopmentConfig,
	"docker":     zap.NewDevelopmentConfig,
	"test":       zap.NewDevelopmentConfig,
}

// New builds the process logger for env. Production environments write JSON, the others a
// colored console. An empty level keeps the preset's default. Every entry carries service=docflow.
func New(env, level string) (*zap.Logger, error) {
	preset, ok := presets[env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}
	cfg := preset()

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", "docflow")),
	)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}
