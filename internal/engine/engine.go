// Package engine 在内存中的不可变记录集上构建报表。
//
// 约束：
// - Engine 构造后只读；所有报表方法都是纯函数，可重复、可并发调用
// - 查询不存在（年份/类型）不是错误：返回 ok=false（no data）
// - 未知值（domain.Opt）在任何聚合步骤都被跳过，不当作 0
// - 并列时一律按输入顺序取第一个，保证输出稳定
package engine

import (
	"strings"

	"github.com/John-Robertt/movierep/internal/domain"
)

const (
	// DefaultTopK 是 votes 报表的条目上限。
	DefaultTopK = 10
	// DefaultLikeScale 是 like 权重的缩放常数（历史值，保留兼容；可通过配置调整）。
	DefaultLikeScale = 80
)

// GenreSep 是 genres 字段的分隔符；不支持转义。
const GenreSep = ","

type Engine struct {
	movies []domain.Movie
	tags   []map[string]struct{} // 与 movies 同下标的 genre 集合

	topK      int
	likeScale int
}

type Option func(*Engine)

// WithTopK 设置 votes 报表的条目上限（<1 时忽略）。
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k >= 1 {
			e.topK = k
		}
	}
}

// WithLikeScale 设置 like 权重的缩放常数（<1 时忽略）。
func WithLikeScale(s int) Option {
	return func(e *Engine) {
		if s >= 1 {
			e.likeScale = s
		}
	}
}

// New 持有 movies（调用方之后不得修改它），并为每条记录预先拆分 genre 集合。
func New(movies []domain.Movie, opts ...Option) *Engine {
	e := &Engine{
		movies:    movies,
		tags:      make([]map[string]struct{}, len(movies)),
		topK:      DefaultTopK,
		likeScale: DefaultLikeScale,
	}
	for _, o := range opts {
		o(e)
	}
	for i := range movies {
		e.tags[i] = splitTags(movies[i].Genres)
	}
	return e
}

// Len 返回记录数。
func (e *Engine) Len() int { return len(e.movies) }

// splitTags 按分隔符拆分为集合；标签保持原样（不去空白、大小写敏感），空标签丢弃。
func splitTags(genres string) map[string]struct{} {
	if genres == "" {
		return nil
	}
	parts := strings.Split(genres, GenreSep)
	set := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		set[p] = struct{}{}
	}
	return set
}

// Year 构建某年份的评分/片长报表。
//
// - 最高/最低评分只在已知评分的记录中比较；并列取输入顺序第一个
// - 该年份没有任何已知评分：Highest/Lowest 未知，但报表仍然返回
// - 平均片长只统计已知片长；都未知时为未知
func (e *Engine) Year(year int) (domain.YearReport, bool) {
	var (
		found    bool
		hi, lo   int = -1, -1
		runtimes mean
	)
	for i := range e.movies {
		m := &e.movies[i]
		if y, ok := m.Year.Get(); !ok || y != year {
			continue
		}
		found = true

		if r, ok := m.Rating.Get(); ok {
			if hi < 0 || r > e.movies[hi].Rating.Or(0) {
				hi = i
			}
			if lo < 0 || r < e.movies[lo].Rating.Or(0) {
				lo = i
			}
		}
		if rt, ok := m.RuntimeMin.Get(); ok {
			runtimes.addInt(rt)
		}
	}
	if !found {
		return domain.YearReport{}, false
	}

	rep := domain.YearReport{
		Year:       year,
		AvgRuntime: runtimes.value(),
	}
	if hi >= 0 {
		rep.Highest = domain.Some(e.rated(hi))
		rep.Lowest = domain.Some(e.rated(lo))
	}
	return rep, true
}

func (e *Engine) rated(i int) domain.RatedTitle {
	return domain.RatedTitle{Title: e.movies[i].Title, Rating: e.movies[i].Rating.Or(0)}
}

// Genre 构建某个 genre 标签的数量/平均评分报表。
// 匹配是对拆分后标签集合的精确成员判断，不做子串匹配。
func (e *Engine) Genre(genre string) (domain.GenreReport, bool) {
	var (
		count   int
		ratings mean
	)
	for i := range e.movies {
		if _, ok := e.tags[i][genre]; !ok {
			continue
		}
		count++
		if r, ok := e.movies[i].Rating.Get(); ok {
			ratings.addFloat(r)
		}
	}
	if count == 0 {
		return domain.GenreReport{}, false
	}
	return domain.GenreReport{
		Genre:     genre,
		Count:     count,
		AvgRating: ratings.value(),
	}, true
}

// Summary 返回全量记录数与已知评分的平均值。
func (e *Engine) Summary() domain.SummaryReport {
	var ratings mean
	for i := range e.movies {
		if r, ok := e.movies[i].Rating.Get(); ok {
			ratings.addFloat(r)
		}
	}
	return domain.SummaryReport{
		Total:     len(e.movies),
		AvgRating: ratings.value(),
	}
}
