package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/John-Robertt/movierep/internal/domain"
)

func TestRenderText_AllKinds(t *testing.T) {
	rr := domain.RunReport{Reports: []domain.ReportResult{
		{Kind: domain.KindSummary, Status: domain.StatusOK, Summary: &domain.SummaryReport{Total: 3, AvgRating: domain.Some(5.75)}},
		{Kind: domain.KindYear, Query: "1999", Status: domain.StatusOK, Year: &domain.YearReport{
			Year:       1999,
			Highest:    domain.Some(domain.RatedTitle{Title: "A", Rating: 8}),
			Lowest:     domain.Some(domain.RatedTitle{Title: "B", Rating: 6.25}),
			AvgRuntime: domain.Some(120.0),
		}},
		{Kind: domain.KindGenre, Query: "Short", Status: domain.StatusOK, Genre: &domain.GenreReport{Genre: "Short", Count: 1, AvgRating: domain.Some(5.6)}},
		{Kind: domain.KindVotes, Query: "1999", Status: domain.StatusOK, Votes: &domain.VotesReport{Year: 1999, Unit: 13, Top: []domain.VoteEntry{
			{Title: "A", Votes: 26, Likes: 2},
			{Title: "B", Votes: 0, Likes: 0},
		}}},
	}}

	var buf bytes.Buffer
	renderText(&buf, rr)

	want := strings.Join([]string{
		"Total movies: 3",
		"Average rating: 5.75",
		"",
		"Highest rating:8.0 - A",
		"Lowest rating:6.25 - B",
		"Average mean minutes: 120.0",
		"",
		"Movies found: 1",
		"Average mean rating: 5.6",
		"",
		"A",
		"😀😀 26",
		"B",
		" 0",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("文本输出不符合预期：\ngot=%q\nwant=%q", buf.String(), want)
	}
}

func TestRenderText_NoDataAndUnknown(t *testing.T) {
	rr := domain.RunReport{Reports: []domain.ReportResult{
		{Kind: domain.KindYear, Query: "1888", Status: domain.StatusNoData},
		{Kind: domain.KindGenre, Query: "Dram", Status: domain.StatusNoData},
		{Kind: domain.KindVotes, Query: "1888", Status: domain.StatusNoData},
		{Kind: domain.KindYear, Query: "2001", Status: domain.StatusOK, Year: &domain.YearReport{Year: 2001}},
		{Kind: domain.KindGenre, Query: "Horror", Status: domain.StatusOK, Genre: &domain.GenreReport{Genre: "Horror", Count: 2}},
		{Kind: domain.KindSummary, Status: domain.StatusOK, Summary: &domain.SummaryReport{}},
	}}

	var buf bytes.Buffer
	renderText(&buf, rr)

	want := strings.Join([]string{
		"No data found for the specified year.",
		"",
		"No data found for the specified genre.",
		"",
		"No data found for the specified year.",
		"",
		"Highest rating:N/A",
		"Lowest rating:N/A",
		"Average mean minutes: N/A",
		"",
		"Movies found: 2",
		"Average mean rating: N/A",
		"",
		"Total movies: 0",
		"Average rating: N/A",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("文本输出不符合预期：\ngot=%q\nwant=%q", buf.String(), want)
	}
}

func TestRating_KeepsPrecision(t *testing.T) {
	cases := map[float64]string{
		8:    "8.0",
		10:   "10.0",
		7.25: "7.25",
		0:    "0.0",
		5.9:  "5.9",
	}
	for in, want := range cases {
		if got := rating(in); got != want {
			t.Fatalf("rating(%v)：期望 %q，实际 %q", in, want, got)
		}
	}
}

func TestFixed_RoundsHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{2.25, "2.3"},
		{0.35, "0.4"},
		{5.75, "5.8"},
		{120, "120.0"},
	}
	for _, c := range cases {
		if got := fixed(domain.Some(c.in), 1); got != c.want {
			t.Fatalf("fixed(%v)：期望 %q，实际 %q", c.in, c.want, got)
		}
	}
	if got := fixed(domain.None[float64](), 1); got != "N/A" {
		t.Fatalf("未知值期望 N/A，实际 %q", got)
	}
}
