package logger

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the structured logger used across the service. Every call takes
// the request context so request-scoped fields end up on each line.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, msg string, fields ...interface{})
	Error(ctx context.Context, msg string, fields ...interface{})
	Fatal(ctx context.Context, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	Sync() error
}

type zapLogger struct {
	z *zap.SugaredLogger
}

var _ Logger = (*zapLogger)(nil)

// New builds a Logger from functional options.
func New(opts ...Option) (Logger, error) {
	options := &Options{
		Level:           "info",
		Format:          "console",
		EnableCaller:    true,
		StacktraceLevel: "panic",
		Rotation: RotationOptions{
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
			Compress:   true,
		},
	}
	for _, o := range opts {
		o(options)
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "level",
		TimeKey:       "ts",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if options.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	level := zap.NewAtomicLevelAt(levelFromString(options.Level))

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	if options.File != "" {
		if err := os.MkdirAll(filepath.Dir(options.File), 0755); err != nil {
			return nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   options.File,
			MaxSize:    options.Rotation.MaxSize, // MB
			MaxBackups: options.Rotation.MaxBackups,
			MaxAge:     options.Rotation.MaxAge, // days
			Compress:   options.Rotation.Compress,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level))
	}

	var zapOptions []zap.Option
	if options.EnableCaller {
		zapOptions = append(zapOptions, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	zapOptions = append(zapOptions, zap.AddStacktrace(levelFromString(options.StacktraceLevel)))

	z := zap.New(zapcore.NewTee(cores...), zapOptions...)
	return &zapLogger{z: z.Sugar()}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return &zapLogger{z: zap.NewNop().Sugar()}
}

func (l *zapLogger) With(fields ...interface{}) Logger {
	return &zapLogger{z: l.z.With(fields...)}
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.z.Debugw(msg, append(FromContext(ctx), fields...)...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.z.Infow(msg, append(FromContext(ctx), fields...)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...interface{}) {
	l.z.Warnw(msg, append(FromContext(ctx), fields...)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, fields ...interface{}) {
	l.z.Errorw(msg, append(FromContext(ctx), fields...)...)
}

func (l *zapLogger) Fatal(ctx context.Context, msg string, fields ...interface{}) {
	l.z.Fatalw(msg, append(FromContext(ctx), fields...)...)
}

func (l *zapLogger) Sync() error {
	return l.z.Sync()
}

func levelFromString(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}
