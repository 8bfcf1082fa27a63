package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReadHTMLTable 读取 HTML 文档中的第一个 <table>。
//
// 规则：
// - 第一行（th 或 td）是表头；其余行是记录
// - 只取当前表格的直属行，嵌套表格忽略
// - 单元格取纯文本；goquery 不执行 JS，隐藏单元格同样可读
func ReadHTMLTable(r io.Reader, source string) (Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Table{}, &Error{Source: source, Err: err}
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return Table{}, &Error{Source: source, Err: fmt.Errorf("文档中没有 <table>")}
	}

	var (
		t       Table
		started bool
		readErr error
	)
	rowsOf(table).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := cellTexts(tr)
		line := i + 1
		if !started {
			if len(cells) == 0 {
				return true
			}
			t, readErr = newTable(source, cells)
			if readErr != nil {
				return false
			}
			started = true
			return true
		}
		if len(cells) == 0 {
			return true
		}
		if len(cells) != len(t.Header) {
			readErr = &Error{Source: source, Line: line, Err: fmt.Errorf("单元格数 %d 与表头列数 %d 不一致", len(cells), len(t.Header))}
			return false
		}
		t.add(line, cells)
		return true
	})
	if readErr != nil {
		return Table{}, readErr
	}
	if !started {
		return Table{}, &Error{Source: source, Err: fmt.Errorf("表格为空，缺少表头")}
	}
	return t, nil
}

// rowsOf 返回 table 的直属行（含 thead/tbody/tfoot 下的行），不进入嵌套表格。
func rowsOf(table *goquery.Selection) *goquery.Selection {
	direct := table.ChildrenFiltered("tr")
	sections := table.ChildrenFiltered("thead, tbody, tfoot").ChildrenFiltered("tr")
	return direct.AddSelection(sections)
}

func cellTexts(tr *goquery.Selection) []string {
	cells := tr.ChildrenFiltered("th, td")
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		// 嵌套表格的文本不属于本单元格。
		own := c.Clone().Find("table").Remove().End()
		out = append(out, strings.TrimSpace(own.Text()))
	})
	return out
}
