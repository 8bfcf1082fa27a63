package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const utf8BOM = "\ufeff"

// ReadCSV 读取带表头的 CSV（标准引号/转义规则，UTF-8）。
//
// - 首个表头单元格的 BOM 会被去掉
// - 字段数与表头不一致的记录视为错误（不猜测、不补齐）
func ReadCSV(r io.Reader, source string) (Table, error) {
	cr := csv.NewReader(bufio.NewReaderSize(r, 64*1024))
	cr.FieldsPerRecord = 0 // 以表头字段数为准

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, &Error{Source: source, Err: fmt.Errorf("文件为空，缺少表头")}
		}
		return Table{}, &Error{Source: source, Line: 1, Err: err}
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	t, err := newTable(source, header)
	if err != nil {
		return Table{}, err
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return Table{}, &Error{Source: source, Line: pe.StartLine, Err: pe.Err}
			}
			return Table{}, &Error{Source: source, Err: err}
		}
		line, _ := cr.FieldPos(0)
		t.add(line, rec)
	}
	return t, nil
}
