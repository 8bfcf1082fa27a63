package run

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/John-Robertt/movierep/internal/config"
	"github.com/John-Robertt/movierep/internal/domain"
	"github.com/John-Robertt/movierep/internal/engine"
	"github.com/John-Robertt/movierep/internal/loader"
	"github.com/John-Robertt/movierep/internal/scan"
)

// Request 描述一次运行要构建哪些报表；未设置的报表不构建。
type Request struct {
	Summary   bool
	Year      domain.Opt[int]
	Genre     domain.Opt[string]
	VotesYear domain.Opt[int]
}

// Count 返回请求的报表数。
func (r Request) Count() int {
	n := 0
	if r.Summary {
		n++
	}
	if r.Year.Known() {
		n++
	}
	if r.Genre.Known() {
		n++
	}
	if r.VotesYear.Known() {
		n++
	}
	return n
}

// Execute 执行一次 run：发现数据源 -> 加载 -> 构建报表，并返回对外稳定的 RunReport。
//
// 加载阶段的任何错误都使整个 run 失败（不产生部分报表）；
// 查询无结果不是错误，对应报表的 status=no_data。
func Execute(ctx context.Context, eff config.EffectiveConfig, req Request) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, req, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出阶段信息（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, req Request, obs Observer) domain.RunReport {
	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Path:      eff.DataPath,
		Schema:    eff.Schema,
		StartedAt: time.Now().UTC(),
		Reports:   make([]domain.ReportResult, 0, req.Count()),
	}
	fail := func(code, msg string) domain.RunReport {
		rr.Failed(code, msg)
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	schema, err := loader.SchemaByName(eff.Schema)
	if err != nil {
		return fail(domain.ErrCodeConfigInvalid, err.Error())
	}

	scanStarted := time.Now()
	paths, display, err := resolveSources(eff)
	if err != nil {
		return fail(domain.ErrCodeIOFailed, err.Error())
	}
	rr.Sources = display
	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{"files": len(paths)}, time.Since(scanStarted))
	}
	if err := ctx.Err(); err != nil {
		return fail(domain.ErrCodeCanceled, err.Error())
	}

	loadStarted := time.Now()
	movies, err := loader.LoadFiles(paths, schema)
	if err != nil {
		code := loader.Code(err)
		if code == "" {
			code = domain.ErrCodeIOFailed
		}
		return fail(code, err.Error())
	}
	rr.Records = len(movies)
	if obs != nil {
		obs.OnPhaseDone("load", map[string]any{"records": len(movies), "schema": schema.Name}, time.Since(loadStarted))
	}
	if err := ctx.Err(); err != nil {
		return fail(domain.ErrCodeCanceled, err.Error())
	}

	engineStarted := time.Now()
	eng := engine.New(movies, engine.WithTopK(eff.TopK), engine.WithLikeScale(eff.LikeScale))
	if obs != nil {
		obs.OnPhaseDone("engine", map[string]any{
			"records":    eng.Len(),
			"top_k":      eff.TopK,
			"like_scale": eff.LikeScale,
		}, time.Since(engineStarted))
	}

	total := req.Count()
	for _, job := range plan(req) {
		if err := ctx.Err(); err != nil {
			return fail(domain.ErrCodeCanceled, err.Error())
		}
		started := time.Now()
		res := job(eng)
		rr.Reports = append(rr.Reports, res)
		if obs != nil {
			obs.OnReportDone(len(rr.Reports), total, res, time.Since(started))
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

type reportJob func(*engine.Engine) domain.ReportResult

// plan 固定报表顺序：summary, year, genre, votes。
func plan(req Request) []reportJob {
	jobs := make([]reportJob, 0, 4)
	if req.Summary {
		jobs = append(jobs, func(e *engine.Engine) domain.ReportResult {
			s := e.Summary()
			return domain.ReportResult{Kind: domain.KindSummary, Status: domain.StatusOK, Summary: &s}
		})
	}
	if y, ok := req.Year.Get(); ok {
		jobs = append(jobs, func(e *engine.Engine) domain.ReportResult {
			res := domain.ReportResult{Kind: domain.KindYear, Query: strconv.Itoa(y), Status: domain.StatusNoData}
			if rep, ok := e.Year(y); ok {
				res.Status, res.Year = domain.StatusOK, &rep
			}
			return res
		})
	}
	if g, ok := req.Genre.Get(); ok {
		jobs = append(jobs, func(e *engine.Engine) domain.ReportResult {
			res := domain.ReportResult{Kind: domain.KindGenre, Query: g, Status: domain.StatusNoData}
			if rep, ok := e.Genre(g); ok {
				res.Status, res.Genre = domain.StatusOK, &rep
			}
			return res
		})
	}
	if y, ok := req.VotesYear.Get(); ok {
		jobs = append(jobs, func(e *engine.Engine) domain.ReportResult {
			res := domain.ReportResult{Kind: domain.KindVotes, Query: strconv.Itoa(y), Status: domain.StatusNoData}
			if rep, ok := e.Votes(y); ok {
				res.Status, res.Votes = domain.StatusOK, &rep
			}
			return res
		})
	}
	return jobs
}

// resolveSources 返回待加载的绝对路径，以及写入报告的展示路径（目录模式下为相对路径）。
func resolveSources(eff config.EffectiveConfig) (paths, display []string, err error) {
	if !eff.DataIsDir {
		return []string{eff.DataPath}, []string{eff.DataPath}, nil
	}

	files, err := scan.ScanDatasets(eff.DataPath, eff.ExcludeDirs)
	if err != nil {
		return nil, nil, fmt.Errorf("扫描 %q 失败：%w", eff.DataPath, err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("目录 %q 下没有数据文件（.csv/.html/.htm）", eff.DataPath)
	}
	paths = make([]string, 0, len(files))
	display = make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.AbsPath)
		display = append(display, f.RelPath)
	}
	return paths, display, nil
}
