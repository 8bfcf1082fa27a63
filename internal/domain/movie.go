package domain

// Movie 是数据集中一行解析后的强类型记录。
//
// 不变量：
// - 加载后只读；报表层只读取，不修改、不删除
// - 数值字段若 Known 则一定是合法值（解析失败在加载期就是致命错误）
// - Genres 保留原始逗号分隔串，拆分由报表引擎负责
type Movie struct {
	ID        string
	TitleType string
	// Title 是展示用标题（imdb 变体取 originalTitle，simple 变体取 title）。
	Title     string
	OrigTitle Opt[string] // 仅 simple 变体有该列；缺失就是缺失

	Year       Opt[int]
	RuntimeMin Opt[int]
	Genres     string
	Rating     Opt[float64]
	Votes      Opt[int]
}
