package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOption 日志初始化参数
type LogOption struct {
	Format   string // console / json
	LogDir   string // 为空时只输出到 stdout
	Level    string // debug / info / warn / error
	Compress bool   // 是否压缩轮转后的旧文件
}

const (
	logFileName   = "app.log"
	maxSizeMB     = 200
	maxBackups    = 10
	maxAgeDays    = 7
	defaultFormat = "console"
)

var sugar atomic.Pointer[zap.SugaredLogger]

func init() {
	// 未调用 Init 之前使用 stdout console 输出，保证测试与工具命令可用
	sugar.Store(newSugar(defaultFormat, zapcore.InfoLevel, zapcore.AddSync(os.Stdout)))
}

// Init 按配置初始化全局 logger，可重复调用（后一次覆盖前一次）
func Init(opt LogOption) error {
	level, err := parseLevel(opt.Level)
	if err != nil {
		return err
	}

	writers := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if opt.LogDir != "" {
		if err := os.MkdirAll(opt.LogDir, 0o755); err != nil {
			return fmt.Errorf("create log dir %s: %w", opt.LogDir, err)
		}
		writers = append(writers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(opt.LogDir, logFileName),
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   opt.Compress,
			LocalTime:  true,
		}))
	}

	sugar.Store(newSugar(opt.Format, level, zapcore.NewMultiWriteSyncer(writers...)))
	return nil
}

func newSugar(format string, level zapcore.Level, ws zapcore.WriteSyncer) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if strings.EqualFold(format, "json") {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, ws, level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func Debugf(format string, args ...any) {
	sugar.Load().Debugf(format, args...)
}

func Infof(format string, args ...any) {
	sugar.Load().Infof(format, args...)
}

func Warnf(format string, args ...any) {
	sugar.Load().Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	sugar.Load().Errorf(format, args...)
}

// Sync 刷新缓冲区，进程退出前调用
func Sync() {
	_ = sugar.Load().Sync()
}
