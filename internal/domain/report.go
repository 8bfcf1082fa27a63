package domain

import (
	"encoding/json"
	"time"
)

const (
	KindSummary = "summary"
	KindYear    = "year"
	KindGenre   = "genre"
	KindVotes   = "votes"
)

const (
	StatusOK     = "ok"
	StatusNoData = "no_data"
	StatusFailed = "failed"
)

const (
	ErrCodeParseFailed       = "parse_failed"
	ErrCodeSchemaMismatch    = "schema_mismatch"
	ErrCodeIOFailed          = "io_failed"
	ErrCodeCanceled          = "canceled"
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeConfigMissingPath = "config_missing_path"
	ErrCodeDataNotFound      = "data_not_found"
)

// RatedTitle 是某条记录的标题与评分（用于最高/最低评分）。
type RatedTitle struct {
	Title  string  `json:"title"`
	Rating float64 `json:"rating"`
}

// YearReport 是某年份的评分/片长汇总。
// Highest/Lowest 未知表示该年份没有任何已知评分的记录（仍然可能有片长数据）。
type YearReport struct {
	Year       int             `json:"year"`
	Highest    Opt[RatedTitle] `json:"highest"`
	Lowest     Opt[RatedTitle] `json:"lowest"`
	AvgRuntime Opt[float64]    `json:"avg_runtime"`
}

type GenreReport struct {
	Genre     string       `json:"genre"`
	Count     int          `json:"count"`
	AvgRating Opt[float64] `json:"avg_rating"`
}

type VoteEntry struct {
	Title string `json:"title"`
	Votes int    `json:"votes"`
	Likes int    `json:"likes"`
}

// VotesReport 是某年份按票数降序的 top 列表；Unit 是 like 权重的分母。
type VotesReport struct {
	Year int         `json:"year"`
	Unit int         `json:"unit"`
	Top  []VoteEntry `json:"top"`
}

type SummaryReport struct {
	Total     int          `json:"total"`
	AvgRating Opt[float64] `json:"avg_rating"`
}

// ReportResult 是一次报表请求的结果；Status=no_data 时对应的报表指针为 nil。
type ReportResult struct {
	Kind   string `json:"kind"`
	Query  string `json:"query"`
	Status string `json:"status"`

	Summary *SummaryReport `json:"summary,omitempty"`
	Year    *YearReport    `json:"year,omitempty"`
	Genre   *GenreReport   `json:"genre,omitempty"`
	Votes   *VotesReport   `json:"votes,omitempty"`
}

// RunReport 是对外稳定输出（stdout JSON / --out）的结构。
type RunReport struct {
	Path    string   `json:"path"`
	Schema  string   `json:"schema"`
	Sources []string `json:"sources"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Records int `json:"records"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Summary RunSummary     `json:"summary"`
	Reports []ReportResult `json:"reports"`
}

type RunSummary struct {
	OK     int `json:"ok"`
	NoData int `json:"no_data"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) 未失败时 status=ok
// 3) summary 由 reports 计算得出（reports 保持请求顺序，不排序）
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	if r.Status == "" {
		r.Status = StatusOK
	}
	if r.Sources == nil {
		r.Sources = []string{}
	}
	if r.Reports == nil {
		r.Reports = []ReportResult{}
	}

	var s RunSummary
	for _, it := range r.Reports {
		switch it.Status {
		case StatusOK:
			s.OK++
		case StatusNoData:
			s.NoData++
		}
	}
	r.Summary = s
}

// Failed 把 RunReport 标记为失败（加载/配置错误不产生任何报表）。
func (r *RunReport) Failed(code, msg string) {
	r.Status = StatusFailed
	r.ErrorCode = code
	r.ErrorMsg = msg
	r.Reports = nil
	r.Records = 0
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
