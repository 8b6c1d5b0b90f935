// Package logging builds zap loggers and renders bus events as log entries.
package logging

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	eventbus "github.com/hanpama/modgraph/internal/eventbus"
	events "github.com/hanpama/modgraph/internal/events"
	reqid "github.com/hanpama/modgraph/internal/reqid"
)

const requestIDField = "request_id"

// New returns a logger writing to stdout: JSON by default, a colored console
// format when pretty is set.
func New(pretty bool, development bool, level zapcore.LevelEnabler) *zap.Logger {
	return NewZapLogger(zapcore.AddSync(os.Stdout), pretty, development, level)
}

func NewZapLogger(syncer zapcore.WriteSyncer, pretty, development bool, level zapcore.LevelEnabler) *zap.Logger {
	var encoder zapcore.Encoder
	if pretty {
		encoder = consoleEncoder()
	} else {
		encoder = jsonEncoder()
	}

	var opts []zap.Option
	if development {
		opts = append(opts, zap.AddCaller(), zap.Development())
	}
	opts = append(opts, zap.AddStacktrace(zap.ErrorLevel))

	logger := zap.New(zapcore.NewCore(encoder, syncer, level), opts...)
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return logger.With(zap.String("hostname", host), zap.Int("pid", os.Getpid()))
}

func baseEncoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeDuration = zapcore.SecondsDurationEncoder
	ec.TimeKey = "time"
	return ec
}

func jsonEncoder() zapcore.Encoder {
	ec := baseEncoderConfig()
	ec.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendInt64(int64(math.Trunc(float64(t.UnixNano()) / float64(time.Millisecond))))
	}
	return zapcore.NewJSONEncoder(ec)
}

func consoleEncoder() zapcore.Encoder {
	ec := baseEncoderConfig()
	ec.ConsoleSeparator = " "
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05 PM")
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// ParseLevel maps a level name such as "info" or "WARN" to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "INFO", "":
		return zapcore.InfoLevel, nil
	case "WARN", "WARNING":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	case "FATAL":
		return zapcore.FatalLevel, nil
	case "PANIC":
		return zapcore.PanicLevel, nil
	}
	return -1, fmt.Errorf("unknown log level %q", s)
}

// Attach writes one entry per finished HTTP request, finished GraphQL
// operation and delivered subscription result published on the global bus.
func Attach(logger *zap.Logger) (detach func()) {
	offs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			logger.Info("http request",
				withRequestID(ctx,
					zap.String("method", e.Request.Method),
					zap.String("path", e.Request.URL.Path),
					zap.Int("status", e.Status),
					zap.Int("operations", e.Operations),
					zap.Duration("latency", e.Duration),
				)...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
			fields := withRequestID(ctx,
				zap.String("operation_name", e.OperationName),
				zap.String("operation_type", e.OperationType),
				zap.Duration("latency", e.Duration),
				zap.Int("error_count", len(e.Errors)),
			)
			if len(e.Errors) > 0 {
				logger.Warn("graphql operation failed", append(fields, zap.Errors("errors", e.Errors))...)
				return
			}
			logger.Info("graphql operation", fields...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.SubscriptionResult) {
			logger.Debug("subscription result",
				withRequestID(ctx,
					zap.String("operation_name", e.OperationName),
					zap.Int("sequence", e.Sequence),
					zap.Int("error_count", len(e.Errors)),
				)...)
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func withRequestID(ctx context.Context, fields ...zap.Field) []zap.Field {
	if rid, ok := reqid.FromContext(ctx); ok {
		return append([]zap.Field{zap.String(requestIDField, rid)}, fields...)
	}
	return fields
}
