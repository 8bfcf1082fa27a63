// Package xlsx 把 RunReport 编码为 Excel 工作簿（--out *.xlsx）。
//
// 布局：
// - "run" 表：运行元信息（键值两列）
// - 每个报表一张表，表名即报表类型（summary/year/genre/votes）；同类型在一次运行中至多一个
// - 未知值写空单元格
package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/John-Robertt/movierep/internal/domain"
)

// RunSheet 是运行元信息所在的表名。
const RunSheet = "run"

// Encode 生成工作簿的字节内容；调用方负责落盘（通常经由 fsx.WriteFileAtomicReplace）。
func Encode(rr domain.RunReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), RunSheet); err != nil {
		return nil, err
	}
	if err := writeRows(f, RunSheet, runRows(rr)); err != nil {
		return nil, err
	}

	for _, r := range rr.Reports {
		if _, err := f.NewSheet(r.Kind); err != nil {
			return nil, fmt.Errorf("创建表 %q 失败：%w", r.Kind, err)
		}
		if err := writeRows(f, r.Kind, reportRows(r)); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func runRows(rr domain.RunReport) [][]any {
	return [][]any{
		{"path", rr.Path},
		{"schema", rr.Schema},
		{"sources", strings.Join(rr.Sources, "\n")},
		{"started_at", rr.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00")},
		{"finished_at", rr.FinishedAt.UTC().Format("2006-01-02T15:04:05Z07:00")},
		{"records", rr.Records},
		{"status", rr.Status},
		{"error_code", rr.ErrorCode},
		{"error_msg", rr.ErrorMsg},
		{"ok", rr.Summary.OK},
		{"no_data", rr.Summary.NoData},
	}
}

// reportRows 第一行固定为 kind/query/status，空一行后是报表数据（no_data 时没有数据部分）。
func reportRows(r domain.ReportResult) [][]any {
	rows := [][]any{
		{"kind", "query", "status"},
		{r.Kind, r.Query, r.Status},
		{},
	}

	switch {
	case r.Summary != nil:
		rows = append(rows,
			[]any{"total", "avg_rating"},
			[]any{r.Summary.Total, cell(r.Summary.AvgRating)},
		)
	case r.Year != nil:
		y := r.Year
		hi, hiOK := y.Highest.Get()
		lo, loOK := y.Lowest.Get()
		rows = append(rows,
			[]any{"year", "highest_title", "highest_rating", "lowest_title", "lowest_rating", "avg_runtime"},
			[]any{y.Year, titleCell(hi, hiOK), ratingCell(hi, hiOK), titleCell(lo, loOK), ratingCell(lo, loOK), cell(y.AvgRuntime)},
		)
	case r.Genre != nil:
		g := r.Genre
		rows = append(rows,
			[]any{"genre", "count", "avg_rating"},
			[]any{g.Genre, g.Count, cell(g.AvgRating)},
		)
	case r.Votes != nil:
		v := r.Votes
		rows = append(rows,
			[]any{"year", "unit"},
			[]any{v.Year, v.Unit},
			[]any{},
			[]any{"rank", "title", "votes", "likes"},
		)
		for i, e := range v.Top {
			rows = append(rows, []any{i + 1, e.Title, e.Votes, e.Likes})
		}
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return fmt.Errorf("写入表 %q 第 %d 行失败：%w", sheet, i+1, err)
		}
	}
	return nil
}

func cell(o domain.Opt[float64]) any {
	if v, ok := o.Get(); ok {
		return v
	}
	return ""
}

func titleCell(rt domain.RatedTitle, ok bool) any {
	if !ok {
		return ""
	}
	return rt.Title
}

func ratingCell(rt domain.RatedTitle, ok bool) any {
	if !ok {
		return ""
	}
	return rt.Rating
}
