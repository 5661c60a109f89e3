package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/aws/smithy-go/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr at the given level.
// When file is set, every message down to debug is also written there.
func New(level string, file string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info", "":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", level)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeCaller = nil
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.Lock(os.Stderr),
			zap.NewAtomicLevelAt(zapLevel),
		),
	}

	if file != "" {
		sink, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		fileConfig := zap.NewDevelopmentEncoderConfig()
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(fileConfig),
			zapcore.AddSync(sink),
			zap.NewAtomicLevelAt(zapcore.DebugLevel),
		))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// SmithyLogger routes AWS SDK client logs through zap.
type SmithyLogger struct {
	logger *zap.Logger
}

func NewSmithyLogger(logger *zap.Logger) *SmithyLogger {
	return &SmithyLogger{logger: logger.Named("aws")}
}

// Logf implements logging.Logger. Warnings stay warnings, everything else is debug output.
func (l *SmithyLogger) Logf(classification logging.Classification, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if classification == logging.Warn {
		l.logger.Warn(message)
		return
	}
	l.logger.Debug(message)
}
