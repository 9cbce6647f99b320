package stats

import (
	"testing"
	"time"

	"github.com/tsumo-app/tsumo-server/models"
)

func strPtr(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleGames() []models.Game {
	return []models.Game{
		{
			ID:       "g1",
			GroupID:  strPtr("grp"),
			GameType: models.GameTypeFourPlayer,
			Date:     day(2025, time.March, 3).Add(20 * time.Hour),
			TableFee: 500,
			GameFee:  500,
			Players: []models.PlayerScore{
				{UserID: "u1", Rank: 1, FinalAmount: 14000},
				{UserID: "u2", Rank: 2, FinalAmount: 4000},
				{UserID: "u3", Rank: 3, FinalAmount: -6000},
				{UserID: "u4", Rank: 4, FinalAmount: -16000},
			},
		},
		{
			ID:       "g2",
			GameType: models.GameTypeFree,
			Date:     day(2025, time.March, 10),
			Players: []models.PlayerScore{
				{UserID: "u2", Rank: 1, FinalAmount: 16000},
				{UserID: "u1", Rank: 2, FinalAmount: 2000},
				{UserID: "u3", Rank: 3, FinalAmount: -7000},
				{UserID: "u4", Rank: 4, FinalAmount: -15000},
			},
		},
		{
			ID:       "g3",
			GroupID:  strPtr("grp"),
			GameType: models.GameTypeFourPlayer,
			Date:     day(2025, time.March, 10).Add(3 * time.Hour),
			TableFee: 300,
			Players: []models.PlayerScore{
				{UserID: "u1", Rank: 4, FinalAmount: -9000},
				{UserID: "u2", Rank: 1, FinalAmount: 12000},
				{UserID: "u3", Rank: 2, FinalAmount: 1000},
				{UserID: "u4", Rank: 3, FinalAmount: -4000},
			},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleGames(), "u1")

	if s.Income != 16000 {
		t.Errorf("income = %d, want 16000", s.Income)
	}
	if s.Expenses != 9000 {
		t.Errorf("expenses = %d, want 9000", s.Expenses)
	}
	if s.Net != 7000 {
		t.Errorf("net = %d, want 7000", s.Net)
	}
	// Fees is the whole per-game pool, not u1's share: 1000 + 0 + 300.
	// Known accounting quirk, preserved on purpose.
	if s.Fees != 1300 {
		t.Errorf("fees = %d, want 1300", s.Fees)
	}
	if s.Total != 7000-1300 {
		t.Errorf("total = %d, want %d", s.Total, 7000-1300)
	}

	if s.RankCounts[1] != 1 || s.RankCounts[2] != 1 || s.RankCounts[4] != 1 {
		t.Errorf("rank counts = %v", s.RankCounts)
	}
	sum := 0
	for _, c := range s.RankCounts {
		sum += c
	}
	if sum != 3 {
		t.Errorf("rank counts cover %d games, want 3", sum)
	}

	if want := (1.0 + 2.0 + 4.0) / 3.0; s.AverageRank != want {
		t.Errorf("average rank = %v, want %v", s.AverageRank, want)
	}
	if want := 1.0 / 3.0 * 100.0; s.WinRate != want {
		t.Errorf("win rate = %v, want %v", s.WinRate, want)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, "u1")
	if s.Income != 0 || s.Expenses != 0 || s.Net != 0 || s.Fees != 0 || s.Total != 0 {
		t.Errorf("empty input produced non-zero money fields: %+v", s)
	}
	if s.AverageRank != 0 || s.WinRate != 0 {
		t.Errorf("empty input produced non-zero rates: avg=%v win=%v", s.AverageRank, s.WinRate)
	}
	if len(s.RankCounts) != 0 || len(s.RankPercentages) != 0 {
		t.Errorf("empty input produced rank data: %+v", s)
	}
}

func TestSummarizeSkipsAbsentPlayer(t *testing.T) {
	s := Summarize(sampleGames(), "nobody")
	if s.Income != 0 || s.Expenses != 0 || len(s.RankCounts) != 0 {
		t.Errorf("absent player accumulated data: %+v", s)
	}
	// The denominator still counts all games passed in.
	if s.GameCount != 3 {
		t.Errorf("game count = %d, want 3", s.GameCount)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	games := sampleGames()
	reversed := []models.Game{games[2], games[1], games[0]}

	a := Summarize(games, "u3")
	b := Summarize(reversed, "u3")

	if a.Income != b.Income || a.Expenses != b.Expenses || a.Fees != b.Fees ||
		a.AverageRank != b.AverageRank || a.WinRate != b.WinRate {
		t.Errorf("summaries differ under reordering:\n%+v\n%+v", a, b)
	}
	for rank, count := range a.RankCounts {
		if b.RankCounts[rank] != count {
			t.Errorf("rank %d: count %d vs %d after reorder", rank, count, b.RankCounts[rank])
		}
	}
}

func TestDailyTotals(t *testing.T) {
	start := day(2025, time.April, 1)
	end := day(2025, time.April, 30)

	games := []models.Game{
		{Date: day(2025, time.April, 2).Add(21 * time.Hour), Players: []models.PlayerScore{{UserID: "u1", Rank: 1, FinalAmount: 5000}}},
		{Date: day(2025, time.April, 2).Add(23 * time.Hour), Players: []models.PlayerScore{{UserID: "u1", Rank: 3, FinalAmount: -2000}}},
		{Date: day(2025, time.April, 15), Players: []models.PlayerScore{{UserID: "u1", Rank: 2, FinalAmount: 1000}}},
		{Date: day(2025, time.April, 29), Players: []models.PlayerScore{{UserID: "u1", Rank: 4, FinalAmount: -8000}}},
		// Other player's game and out-of-period game must not leak in.
		{Date: day(2025, time.April, 10), Players: []models.PlayerScore{{UserID: "u2", Rank: 1, FinalAmount: 9999}}},
		{Date: day(2025, time.May, 1), Players: []models.PlayerScore{{UserID: "u1", Rank: 1, FinalAmount: 7777}}},
	}

	totals := DailyTotals(games, "u1", start, end)
	if len(totals) != 30 {
		t.Fatalf("expected 30 entries, got %d", len(totals))
	}

	nonZero := 0
	for i, dt := range totals {
		wantDay := start.AddDate(0, 0, i)
		if !dt.Date.Equal(wantDay) {
			t.Fatalf("entry %d: date %v, want %v", i, dt.Date, wantDay)
		}
		if dt.Amount != 0 {
			nonZero++
		}
	}
	if nonZero != 3 {
		t.Errorf("expected 3 non-zero days, got %d", nonZero)
	}

	if totals[1].Amount != 3000 {
		t.Errorf("April 2 total = %d, want 3000 (same-day games summed)", totals[1].Amount)
	}
	if totals[14].Amount != 1000 {
		t.Errorf("April 15 total = %d, want 1000", totals[14].Amount)
	}
	if totals[28].Amount != -8000 {
		t.Errorf("April 29 total = %d, want -8000", totals[28].Amount)
	}
}

func TestFilterGames(t *testing.T) {
	games := sampleGames()
	from := day(2025, time.March, 1)
	to := day(2025, time.March, 31).Add(24*time.Hour - time.Nanosecond)

	if got := len(FilterGames(games, from, to, FilterAll)); got != 3 {
		t.Errorf("all: %d games, want 3", got)
	}
	if got := len(FilterGames(games, from, to, FilterFourPlayer)); got != 2 {
		t.Errorf("four-player: %d games, want 2", got)
	}
	if got := len(FilterGames(games, from, to, FilterFree)); got != 1 {
		t.Errorf("free: %d games, want 1", got)
	}
	if got := len(FilterGames(games, day(2025, time.March, 5), to, FilterAll)); got != 2 {
		t.Errorf("date-restricted: %d games, want 2", got)
	}
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(day(2025, time.February, 14))
	if !start.Equal(day(2025, time.February, 1)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(day(2025, time.February, 28)) {
		t.Errorf("end = %v", end)
	}
}
