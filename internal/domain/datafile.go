package domain

// DataFile 描述一次扫描得到的数据集文件（只做 stat，不读内容）。
//
// 不变量：AbsPath 必须是 clean + absolute。
type DataFile struct {
	AbsPath string
	RelPath string
	Ext     string // ".csv" / ".html" / ".htm"
	Size    int64
}
