package run

import (
	"time"

	"github.com/John-Robertt/movierep/internal/config"
	"github.com/John-Robertt/movierep/internal/domain"
)

// Observer 用于把“运行进度/阶段/报表结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - 事件按顺序在调用 ExecuteWithObserver 的 goroutine 上触发。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段（scan/load/engine）结束时调用，用于打印阶段统计与耗时。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnReportDone 在每个报表构建完成时调用；idx 从 1 开始。
	OnReportDone(idx, total int, res domain.ReportResult, dur time.Duration)
}
