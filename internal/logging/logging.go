package logging

import (
	"io"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

type Field struct {
	Key   string
	Value any
}

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Enabled(level Level) bool
}

// Options selects where log lines go. File output is rotated; Console
// receives a human-readable rendition and may be nil.
type Options struct {
	File    string
	Console io.Writer
	Level   Level
}

type zapLogger struct {
	base  *zap.Logger
	level Level
}

// New builds a Logger from opts. The returned closer flushes buffered
// entries and should be called before exit.
func New(opts Options) (Logger, func() error) {
	cores := make([]zapcore.Core, 0, 2)
	threshold := zapLevel(opts.Level)
	if strings.TrimSpace(opts.File) != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(jsonEncoder(), zapcore.AddSync(rotator), threshold))
	}
	if opts.Console != nil {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(opts.Console), threshold))
	}
	if len(cores) == 0 {
		return Nop(), func() error { return nil }
	}
	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return &zapLogger{base: base, level: opts.Level}, base.Sync
}

// NewJSON writes JSON lines to out. Used for tests and piped output.
func NewJSON(out io.Writer, level Level) Logger {
	if out == nil {
		return Nop()
	}
	core := zapcore.NewCore(jsonEncoder(), zapcore.AddSync(out), zapLevel(level))
	return &zapLogger{base: zap.New(core), level: level}
}

func Nop() Logger {
	return &zapLogger{base: zap.NewNop(), level: Error + 1}
}

func jsonEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func (l *zapLogger) Enabled(level Level) bool {
	if l == nil {
		return false
	}
	return level >= l.level
}

func (l *zapLogger) With(fields ...Field) Logger {
	if l == nil {
		return Nop()
	}
	return &zapLogger{base: l.base.With(zapFields(fields)...), level: l.level}
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.log(Debug, msg, fields) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.log(Info, msg, fields) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.log(Warn, msg, fields) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.log(Error, msg, fields) }

func (l *zapLogger) log(level Level, msg string, fields []Field) {
	if l == nil || level < l.level {
		return
	}
	if ce := l.base.Check(zapLevel(level), msg); ce != nil {
		ce.Write(zapFields(fields)...)
	}
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		switch v := field.Value.(type) {
		case error:
			out = append(out, zap.String(field.Key, v.Error()))
		case time.Duration:
			out = append(out, zap.Duration(field.Key, v))
		default:
			out = append(out, zap.Any(field.Key, v))
		}
	}
	return out
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case Debug:
		return zapcore.DebugLevel
	case Warn:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func NewRequestID() string {
	id, err := gonanoid.New(16)
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return id
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}
