package engine

import (
	"container/heap"

	"github.com/John-Robertt/movierep/internal/domain"
)

// Votes 构建某年份按票数降序的 top 列表，并计算 like 权重。
//
// - 只统计年份匹配且票数已知的记录；没有则 no data
// - top-K 用大小为 K 的最小堆选取：O(n log k)，不对全量排序
// - 并列票数按输入顺序（先出现的排前）
// - Unit = ceil(第一名票数 / likeScale)，为 0 时取 1；Likes = ceil(票数 / Unit)
func (e *Engine) Votes(year int) (domain.VotesReport, bool) {
	h := make(topHeap, 0, e.topK)
	found := false
	for i := range e.movies {
		m := &e.movies[i]
		if y, ok := m.Year.Get(); !ok || y != year {
			continue
		}
		v, ok := m.Votes.Get()
		if !ok {
			continue
		}
		found = true
		pushBounded(&h, voteCand{idx: i, votes: v}, e.topK)
	}
	if !found {
		return domain.VotesReport{}, false
	}

	ranked := drainDesc(&h)
	unit := likeUnit(ranked[0].votes, e.likeScale)

	top := make([]domain.VoteEntry, 0, len(ranked))
	for _, c := range ranked {
		top = append(top, domain.VoteEntry{
			Title: e.movies[c.idx].Title,
			Votes: c.votes,
			Likes: ceilDiv(c.votes, unit),
		})
	}
	return domain.VotesReport{Year: year, Unit: unit, Top: top}, true
}

// likeUnit 计算 like 权重的分母；票数为 0 时分母会是 0，这里固定回退为 1。
func likeUnit(topVotes, scale int) int {
	if scale < 1 {
		scale = DefaultLikeScale
	}
	u := ceilDiv(topVotes, scale)
	if u < 1 {
		return 1
	}
	return u
}

// ceilDiv 要求 a >= 0, b >= 1；不做 a+b-1，避免票数接近 MaxInt 时溢出。
func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

type voteCand struct {
	idx   int // 输入顺序
	votes int
}

// better 定义排名：票数高者优先；票数相同则输入顺序靠前者优先。
func better(a, b voteCand) bool {
	if a.votes != b.votes {
		return a.votes > b.votes
	}
	return a.idx < b.idx
}

// topHeap 是最小堆：堆顶是当前保留集合中排名最差的候选。
type topHeap []voteCand

func (h topHeap) Len() int           { return len(h) }
func (h topHeap) Less(i, j int) bool { return better(h[j], h[i]) }
func (h topHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *topHeap) Push(x any) { *h = append(*h, x.(voteCand)) }

func (h *topHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

func pushBounded(h *topHeap, c voteCand, k int) {
	if h.Len() < k {
		heap.Push(h, c)
		return
	}
	if better(c, (*h)[0]) {
		(*h)[0] = c
		heap.Fix(h, 0)
	}
}

// drainDesc 依次弹出最差者并倒序填充，得到从好到差的排名。
func drainDesc(h *topHeap) []voteCand {
	out := make([]voteCand, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(voteCand)
	}
	return out
}
