package elastic

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TransportLogger writes one zap entry per HTTP round trip. Successful round trips are
// logged at debug, failed ones at warn, so the logger's level decides what gets through.
type TransportLogger struct {
	logger *zap.Logger
}

// NewTransportLogger wraps logger with its own minimum level.
func NewTransportLogger(logger *zap.Logger, level zapcore.Level) *TransportLogger {
	return &TransportLogger{
		logger: logger.Named("elasticsearch").WithOptions(zap.IncreaseLevel(level)),
	}
}

// LogRoundTrip implements elastictransport.Logger.
func (l *TransportLogger) LogRoundTrip(
	req *http.Request, res *http.Response, err error, start time.Time, dur time.Duration,
) error {
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Time("start", start),
		zap.Duration("duration", dur),
	}
	if res != nil {
		fields = append(fields, zap.Int("status", res.StatusCode))
	}

	switch {
	case err != nil:
		l.logger.Warn("elasticsearch request failed", append(fields, zap.Error(err))...)
	case res != nil && res.StatusCode >= 500:
		l.logger.Warn("elasticsearch request failed", fields...)
	default:
		l.logger.Debug("elasticsearch request", fields...)
	}
	return nil
}

// RequestBodyEnabled implements elastictransport.Logger.
func (l *TransportLogger) RequestBodyEnabled() bool { return false }

// ResponseBodyEnabled implements elastictransport.Logger.
func (l *TransportLogger) ResponseBodyEnabled() bool { return false }
