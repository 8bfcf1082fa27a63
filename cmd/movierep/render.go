package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/John-Robertt/movierep/internal/domain"
)

const likeSymbol = "😀"

// renderText 按报表顺序输出文本，报表之间空一行。
// 未知值输出 N/A；no_data 输出对应的提示行。
func renderText(w io.Writer, rr domain.RunReport) {
	for i, r := range rr.Reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		switch r.Kind {
		case domain.KindSummary:
			renderSummary(w, r.Summary)
		case domain.KindYear:
			renderYear(w, r.Year)
		case domain.KindGenre:
			renderGenre(w, r.Genre)
		case domain.KindVotes:
			renderVotes(w, r.Votes)
		}
	}
}

func renderSummary(w io.Writer, s *domain.SummaryReport) {
	if s == nil {
		return
	}
	fmt.Fprintf(w, "Total movies: %d\n", s.Total)
	fmt.Fprintf(w, "Average rating: %s\n", fixed(s.AvgRating, 2))
}

func renderYear(w io.Writer, y *domain.YearReport) {
	if y == nil {
		fmt.Fprintln(w, "No data found for the specified year.")
		return
	}
	fmt.Fprintf(w, "Highest rating:%s\n", ratedTitle(y.Highest))
	fmt.Fprintf(w, "Lowest rating:%s\n", ratedTitle(y.Lowest))
	fmt.Fprintf(w, "Average mean minutes: %s\n", fixed(y.AvgRuntime, 1))
}

func renderGenre(w io.Writer, g *domain.GenreReport) {
	if g == nil {
		fmt.Fprintln(w, "No data found for the specified genre.")
		return
	}
	fmt.Fprintf(w, "Movies found: %d\n", g.Count)
	fmt.Fprintf(w, "Average mean rating: %s\n", fixed(g.AvgRating, 1))
}

func renderVotes(w io.Writer, v *domain.VotesReport) {
	if v == nil {
		fmt.Fprintln(w, "No data found for the specified year.")
		return
	}
	for _, e := range v.Top {
		fmt.Fprintln(w, e.Title)
		fmt.Fprintf(w, "%s %d\n", strings.Repeat(likeSymbol, e.Likes), e.Votes)
	}
}

func ratedTitle(o domain.Opt[domain.RatedTitle]) string {
	rt, ok := o.Get()
	if !ok {
		return "N/A"
	}
	return rating(rt.Rating) + " - " + rt.Title
}

// rating 保留数据集中的原始精度，但至少一位小数（8 -> 8.0，7.25 -> 7.25）。
func rating(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.Exponent() >= 0 {
		return d.StringFixed(1)
	}
	return d.String()
}

func fixed(o domain.Opt[float64], places int32) string {
	v, ok := o.Get()
	if !ok {
		return "N/A"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}
