package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "requestID"
	EndpointKey  ContextKey = "endpoint"
)

func init() {
	RegisterContextKey(RequestIDKey, "request_id")
	RegisterContextKey(EndpointKey, "endpoint")
}

type LogManager interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)

	DebugF(format string, args ...any)
	InfoF(format string, args ...any)
	WarnF(format string, args ...any)
	ErrorF(format string, args ...any)

	DebugFCtx(ctx context.Context, format string, args ...any)
	InfoFCtx(ctx context.Context, format string, args ...any)
	WarnFCtx(ctx context.Context, format string, args ...any)
	ErrorFCtx(ctx context.Context, format string, args ...any)

	With(keyValues ...any) LogManager

	Sync() error
	SetLogLevel(level string) error
}

// LoggerOptions configures NewLogger. Zero values give an info level
// console logger writing to stdout.
type LoggerOptions struct {
	Level        string
	Encoding     string // "json" or "console"
	OutputPaths  []string
	EnableCaller bool
}

// NewLogger builds a zap logger whose level can be changed later with SetLogLevel.
// An unknown level falls back to info.
func NewLogger(opts LoggerOptions) (LogManager, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	encoding := opts.Encoding
	if encoding == "" {
		encoding = "console"
	}
	outputs := opts.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	if encoding == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if !opts.EnableCaller {
		encoderCfg.CallerKey = zapcore.OmitKey
	}

	z, err := zap.Config{
		Level:            level,
		Development:      level.Level() == zap.DebugLevel,
		Encoding:         encoding,
		EncoderConfig:    encoderCfg,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, err
	}

	return &logger{Log: z.Sugar(), atomicLevel: level}, nil
}

// NewNop returns a logger that discards everything. Library types fall back to it when no logger is configured.
func NewNop() LogManager {
	return FromZap(zap.NewNop())
}

// FromZap adapts an existing zap logger.
func FromZap(z *zap.Logger) LogManager {
	return &logger{
		Log:         z.Sugar(),
		atomicLevel: zap.NewAtomicLevelAt(z.Level()),
	}
}
