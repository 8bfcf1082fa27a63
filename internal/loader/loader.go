// Package loader 把原始行（列名 -> 字符串）转换为强类型的 domain.Movie。
//
// 缺失值规则（硬约束）：
// - 文本列：去首尾空白；缺失 -> ""（OrigTitle 例外：缺失保持缺失）
// - 数值列：去首尾空白；"" 或 \N -> 未知；其余必须能解析，否则整个加载失败
package loader

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/John-Robertt/movierep/internal/dataset"
	"github.com/John-Robertt/movierep/internal/domain"
)

// Missing 是数据集约定的缺失值哨兵。
const Missing = `\N`

// Error 是加载阶段的结构化错误（带 error_code）。
// 任何 Error 都意味着没有部分结果。
type Error struct {
	Code    string
	Source  string
	Line    int
	Column  string
	Value   string
	Missing []string // 仅 schema_mismatch
	Err     error
}

func (e *Error) Error() string {
	switch e.Code {
	case domain.ErrCodeSchemaMismatch:
		return fmt.Sprintf("%s：%q 缺少必填列 %s", e.Code, e.Source, strings.Join(e.Missing, ", "))
	case domain.ErrCodeParseFailed:
		if e.Column == "" {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return fmt.Sprintf("%s：%q 第 %d 行列 %s 的值 %q 无法解析：%v", e.Code, e.Source, e.Line, e.Column, e.Value, e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadFiles 依次读取 paths 并拼接为一个记录序列（保持文件顺序与行顺序）。
func LoadFiles(paths []string, s Schema) ([]domain.Movie, error) {
	var movies []domain.Movie
	for _, p := range paths {
		tab, err := dataset.ReadFile(p)
		if err != nil {
			// 能定位到行的读取错误是格式问题（如列数不一致），其余按 I/O 处理。
			var de *dataset.Error
			if errors.As(err, &de) && de.Line > 0 {
				return nil, &Error{Code: domain.ErrCodeParseFailed, Source: p, Line: de.Line, Err: err}
			}
			return nil, &Error{Code: domain.ErrCodeIOFailed, Source: p, Err: err}
		}
		ms, err := Load(tab, s)
		if err != nil {
			return nil, err
		}
		if movies == nil {
			movies = ms
			continue
		}
		movies = append(movies, ms...)
	}
	if movies == nil {
		movies = []domain.Movie{}
	}
	return movies, nil
}

// Load 按 schema 把 tab 的每一行转换为 Movie；输出与输入等长且同序。
func Load(tab dataset.Table, s Schema) ([]domain.Movie, error) {
	if missing := s.MissingColumns(tab.Header); len(missing) > 0 {
		return nil, &Error{Code: domain.ErrCodeSchemaMismatch, Source: tab.Source, Missing: missing}
	}

	movies := make([]domain.Movie, 0, len(tab.Rows))
	for i, row := range tab.Rows {
		line := 0
		if i < len(tab.Lines) {
			line = tab.Lines[i]
		}
		m, err := parseRow(row, s)
		if err != nil {
			var fe *fieldError
			if errors.As(err, &fe) {
				return nil, &Error{
					Code:   domain.ErrCodeParseFailed,
					Source: tab.Source,
					Line:   line,
					Column: fe.column,
					Value:  fe.value,
					Err:    fe.err,
				}
			}
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, nil
}

type fieldError struct {
	column string
	value  string
	err    error
}

func (e *fieldError) Error() string { return fmt.Sprintf("%s=%q: %v", e.column, e.value, e.err) }

func parseRow(row dataset.Row, s Schema) (domain.Movie, error) {
	m := domain.Movie{
		ID:        text(row, s.ID),
		TitleType: text(row, s.TitleType),
		Title:     text(row, s.Title),
		OrigTitle: optText(row, s.OrigTitle),
		Genres:    text(row, s.Genres),
	}

	var err error
	if m.Year, err = optInt(row, s.Year, true); err != nil {
		return domain.Movie{}, err
	}
	if m.RuntimeMin, err = optInt(row, s.Runtime, false); err != nil {
		return domain.Movie{}, err
	}
	if m.Rating, err = optFloat(row, s.Rating); err != nil {
		return domain.Movie{}, err
	}
	if m.Votes, err = optInt(row, s.Votes, false); err != nil {
		return domain.Movie{}, err
	}
	return m, nil
}

func text(row dataset.Row, col string) string {
	if col == "" {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func optText(row dataset.Row, col string) domain.Opt[string] {
	if col == "" {
		return domain.None[string]()
	}
	v, ok := row[col]
	if !ok {
		return domain.None[string]()
	}
	return domain.Some(strings.TrimSpace(v))
}

// raw 返回去空白后的值；ok=false 表示未知（列不存在、空串或 \N）。
func raw(row dataset.Row, col string) (string, bool) {
	if col == "" {
		return "", false
	}
	v, ok := row[col]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" || v == Missing {
		return "", false
	}
	return v, true
}

func optInt(row dataset.Row, col string, allowNegative bool) (domain.Opt[int], error) {
	v, ok := raw(row, col)
	if !ok {
		return domain.None[int](), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return domain.None[int](), &fieldError{column: col, value: v, err: err}
	}
	if n < 0 && !allowNegative {
		return domain.None[int](), &fieldError{column: col, value: v, err: errors.New("不能为负数")}
	}
	return domain.Some(n), nil
}

func optFloat(row dataset.Row, col string) (domain.Opt[float64], error) {
	v, ok := raw(row, col)
	if !ok {
		return domain.None[float64](), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return domain.None[float64](), &fieldError{column: col, value: v, err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return domain.None[float64](), &fieldError{column: col, value: v, err: errors.New("不是有限数值")}
	}
	return domain.Some(f), nil
}
