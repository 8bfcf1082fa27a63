// Package dataset 把数据源文件读成“表头 + 行映射”的中间形态（只做结构化，不做类型转换）。
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Row 是一行原始数据：列名 -> 原始字符串。
type Row = map[string]string

// Table 是一个数据源文件的内容。
//
// 不变量：
// - Rows 与 Lines 等长，顺序与源文件一致
// - Header 保持源文件顺序，且列名唯一
type Table struct {
	Source string
	Header []string
	Rows   []Row
	Lines  []int // 每行在源文件中的起始行号（HTML 为 <tr> 序号）
}

// HasColumn 判断表头中是否存在列 name（精确匹配）。
func (t Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// Error 是读取数据源时的结构化错误。
type Error struct {
	Source string
	Line   int // 0 表示无法定位到行
	Err    error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("读取 %q 第 %d 行失败：%v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("读取 %q 失败：%v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsSupportedExt 判断扩展名（小写，含 '.'）是否是支持的数据源格式。
func IsSupportedExt(ext string) bool {
	switch ext {
	case ".csv", ".html", ".htm":
		return true
	default:
		return false
	}
}

// ReadFile 按扩展名选择解析器：.csv -> CSV；.html/.htm -> HTML 表格。
func ReadFile(path string) (Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupportedExt(ext) {
		return Table{}, &Error{Source: path, Err: fmt.Errorf("不支持的数据源格式 %q（只支持 .csv/.html/.htm）", ext)}
	}

	f, err := os.Open(path)
	if err != nil {
		return Table{}, &Error{Source: path, Err: err}
	}
	defer f.Close()

	if ext == ".csv" {
		return ReadCSV(f, path)
	}
	return ReadHTMLTable(f, path)
}

func newTable(source string, header []string) (Table, error) {
	seen := make(map[string]struct{}, len(header))
	for _, h := range header {
		if _, dup := seen[h]; dup {
			return Table{}, &Error{Source: source, Line: 1, Err: fmt.Errorf("重复的列名 %q", h)}
		}
		seen[h] = struct{}{}
	}
	return Table{
		Source: source,
		Header: header,
		Rows:   make([]Row, 0, 256),
		Lines:  make([]int, 0, 256),
	}, nil
}

func (t *Table) add(line int, cells []string) {
	row := make(Row, len(t.Header))
	for i, h := range t.Header {
		row[h] = cells[i]
	}
	t.Rows = append(t.Rows, row)
	t.Lines = append(t.Lines, line)
}
