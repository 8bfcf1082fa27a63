package domain

import "encoding/json"

// Opt 表示一个可能“未知”的值（数据集里的 \N 或空串）。
//
// 约束：未知不是零值；聚合时必须跳过未知，而不是把它当成 0 参与计算。
type Opt[T any] struct {
	v  T
	ok bool
}

func Some[T any](v T) Opt[T] { return Opt[T]{v: v, ok: true} }

func None[T any]() Opt[T] { return Opt[T]{} }

func (o Opt[T]) Get() (T, bool) { return o.v, o.ok }

func (o Opt[T]) Known() bool { return o.ok }

// Or 在未知时返回 def。
func (o Opt[T]) Or(def T) T {
	if !o.ok {
		return def
	}
	return o.v
}

// MarshalJSON：未知输出 null，已知输出裸值。
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
