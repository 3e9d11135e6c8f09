package telemetry

import (
	"go.opentelemetry.io/contrib/bridges/otelzap"
	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BridgeLogger tees base into the OTLP log pipeline. Entries below minLevel
// stay local. A nil provider returns base unchanged.
func BridgeLogger(base *zap.Logger, provider otellog.LoggerProvider, minLevel zapcore.Level) *zap.Logger {
	if provider == nil {
		return base
	}
	otelCore := otelzap.NewCore(InstrumentationName, otelzap.WithLoggerProvider(provider))
	filtered, err := zapcore.NewIncreaseLevelCore(otelCore, minLevel)
	if err != nil {
		// minLevel is below the otel core's own level; export everything
		filtered = otelCore
	}
	return base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, filtered)
	}))
}
