package engine

import (
	"github.com/shopspring/decimal"

	"github.com/John-Robertt/movierep/internal/domain"
)

// mean 用十进制累加，结果与累加顺序无关（float64 直接累加会因顺序产生尾差）。
type mean struct {
	sum decimal.Decimal
	n   int64
}

func (m *mean) addFloat(v float64) {
	m.sum = m.sum.Add(decimal.NewFromFloat(v))
	m.n++
}

func (m *mean) addInt(v int) {
	m.sum = m.sum.Add(decimal.NewFromInt(int64(v)))
	m.n++
}

// value 在没有任何输入时返回未知。
func (m *mean) value() domain.Opt[float64] {
	if m.n == 0 {
		return domain.None[float64]()
	}
	return domain.Some(m.sum.Div(decimal.NewFromInt(m.n)).InexactFloat64())
}
