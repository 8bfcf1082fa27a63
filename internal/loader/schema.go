package loader

import (
	"fmt"
	"strings"
)

const (
	SchemaIMDb   = "imdb"
	SchemaSimple = "simple"
)

// Schema 是某个数据集变体的固定列契约：字段 -> 列名。
// 列名为空表示该变体没有这一列。
type Schema struct {
	Name string

	ID        string
	TitleType string
	Title     string
	OrigTitle string
	Year      string
	Runtime   string
	Genres    string
	Rating    string
	Votes     string

	// Optional 中的列允许在表头中缺失。
	Optional []string
}

// IMDb 是主数据集（MoviesDataset.csv）的列契约；展示标题取 originalTitle。
var IMDb = Schema{
	Name:      SchemaIMDb,
	ID:        "id",
	TitleType: "titleType",
	Title:     "originalTitle",
	Year:      "startYear",
	Runtime:   "runtimeMinutes",
	Genres:    "genres",
	Rating:    "rating",
	Votes:     "numVotes",
}

// Simple 是精简导出的列契约；Orgtitle 可以整列缺失。
var Simple = Schema{
	Name:      SchemaSimple,
	Title:     "title",
	OrigTitle: "Orgtitle",
	Year:      "year",
	Runtime:   "duration",
	Genres:    "genre",
	Rating:    "rating",
	Votes:     "votes",
	Optional:  []string{"Orgtitle"},
}

// SchemaByName 按名称（大小写不敏感）查找内置变体。
func SchemaByName(name string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SchemaIMDb:
		return IMDb, nil
	case SchemaSimple:
		return Simple, nil
	default:
		return Schema{}, fmt.Errorf("schema 只能是 imdb 或 simple，实际是 %q", name)
	}
}

// Columns 返回该变体声明的全部列名（按字段顺序，跳过空列名）。
func (s Schema) Columns() []string {
	all := []string{s.ID, s.TitleType, s.Title, s.OrigTitle, s.Year, s.Runtime, s.Genres, s.Rating, s.Votes}
	out := make([]string, 0, len(all))
	for _, c := range all {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Required 返回必须出现在表头中的列名。
func (s Schema) Required() []string {
	opt := make(map[string]struct{}, len(s.Optional))
	for _, c := range s.Optional {
		opt[c] = struct{}{}
	}
	cols := s.Columns()
	out := cols[:0]
	for _, c := range cols {
		if _, ok := opt[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// MissingColumns 返回表头中缺失的必填列（按 Required 的顺序）。
func (s Schema) MissingColumns(header []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, c := range s.Required() {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}
