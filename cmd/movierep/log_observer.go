package main

import (
	"io"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/John-Robertt/movierep/internal/app/run"
	"github.com/John-Robertt/movierep/internal/config"
	"github.com/John-Robertt/movierep/internal/domain"
)

var _ run.Observer = (*logObserver)(nil)

// newLogger 构造写到 w 的 console logger；verbose=false 时只输出 warn 及以上。
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core)
}

// logObserver 把 run 层事件写成结构化日志（stderr），不触碰 stdout。
type logObserver struct {
	log *zap.Logger
}

func newLogObserver(l *zap.Logger) *logObserver {
	return &logObserver{log: l}
}

func (o *logObserver) OnStart(eff config.EffectiveConfig) {
	o.log.Info("开始",
		zap.String("path", eff.DataPath),
		zap.Bool("dir", eff.DataIsDir),
		zap.String("schema", eff.Schema),
		zap.Int("top_k", eff.TopK),
		zap.Int("like_scale", eff.LikeScale),
		zap.Strings("exclude_dirs", eff.ExcludeDirs),
	)
}

func (o *logObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zf := make([]zap.Field, 0, len(keys)+2)
	zf = append(zf, zap.String("phase", name))
	for _, k := range keys {
		zf = append(zf, zap.Any(k, fields[k]))
	}
	zf = append(zf, zap.Duration("dur", dur))
	o.log.Info("阶段完成", zf...)
}

func (o *logObserver) OnReportDone(idx, total int, res domain.ReportResult, dur time.Duration) {
	fields := []zap.Field{
		zap.Int("idx", idx),
		zap.Int("total", total),
		zap.String("kind", res.Kind),
		zap.String("query", res.Query),
		zap.String("status", res.Status),
		zap.Duration("dur", dur),
	}
	if res.Status == domain.StatusNoData {
		o.log.Info("报表无数据", fields...)
		return
	}
	o.log.Info("报表完成", fields...)
}
