package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide sugared logger. Initialized once in main; tests
// get a no-op fallback from init so package tests never nil-deref.
var Log *zap.SugaredLogger

func init() {
	Log = zap.NewNop().Sugar()
}

// InitLogger sets up zap writing to stdout and a rotating file.
func InitLogger(filePath string) {
	lj := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encCfg)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
		zapcore.NewCore(encoder, zapcore.AddSync(lj), zapcore.DebugLevel),
	)
	Log = zap.New(core, zap.AddCaller()).Sugar()
}

// SyncLogger flushes buffered log entries; call on shutdown.
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}
