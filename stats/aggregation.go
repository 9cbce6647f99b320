// Package stats reduces collections of settled games into per-player
// summaries, calendar rollups and group leaderboards. Like package scoring
// it is pure: no I/O, no state, and any subset of games can be aggregated
// with identical logic.
package stats

import (
	"time"

	"github.com/tsumo-app/tsumo-server/models"
)

// GameFilter selects a game-type subset for aggregation.
type GameFilter string

const (
	FilterAll         GameFilter = "all"
	FilterFourPlayer  GameFilter = "four_player"
	FilterThreePlayer GameFilter = "three_player"
	FilterFree        GameFilter = "free"
)

// Summary is the aggregate view of one player's settled games.
//
// Fees accumulates the whole per-game fee pool (table fee + game fee), not
// the player's share of it.
type Summary struct {
	Income   int `json:"income"`
	Expenses int `json:"expenses"`
	Net      int `json:"net"`
	Fees     int `json:"fees"`
	Total    int `json:"total"`

	RankCounts      map[int]int     `json:"rank_counts"`
	RankPercentages map[int]float64 `json:"rank_percentages"`
	AverageRank     float64         `json:"average_rank"`
	WinRate         float64         `json:"win_rate"`
	GameCount       int             `json:"game_count"`
}

// Summarize reduces games into a Summary for one player. Games the player
// did not take part in contribute nothing; empty input yields an all-zero
// summary. Percentages divide by the full length of the input slice.
func Summarize(games []models.Game, userID string) Summary {
	s := Summary{
		RankCounts:      make(map[int]int),
		RankPercentages: make(map[int]float64),
	}

	totalRank := 0
	winCount := 0

	for i := range games {
		result, ok := games[i].PlayerResult(userID)
		if !ok {
			continue
		}

		if result.FinalAmount > 0 {
			s.Income += result.FinalAmount
		} else {
			s.Expenses += -result.FinalAmount
		}

		s.Fees += games[i].TableFee + games[i].GameFee

		s.RankCounts[result.Rank]++
		totalRank += result.Rank
		if result.Rank == 1 {
			winCount++
		}
	}

	s.Net = s.Income - s.Expenses
	s.Total = s.Net - s.Fees
	s.GameCount = len(games)

	if len(games) > 0 {
		for rank, count := range s.RankCounts {
			s.RankPercentages[rank] = float64(count) / float64(len(games)) * 100.0
		}
		s.AverageRank = float64(totalRank) / float64(len(games))
		s.WinRate = float64(winCount) / float64(len(games)) * 100.0
	}

	return s
}

// DayTotal is one calendar day's settled total for a player.
type DayTotal struct {
	Date   time.Time `json:"date"`
	Amount int       `json:"amount"`
}

// DailyTotals buckets the player's final amounts into calendar days and
// returns one entry per day of [periodStart, periodEnd] inclusive, in
// ascending order, zero-filled for days without games. Day boundaries
// follow periodStart's location.
func DailyTotals(games []models.Game, userID string, periodStart, periodEnd time.Time) []DayTotal {
	loc := periodStart.Location()
	start := startOfDay(periodStart, loc)
	end := startOfDay(periodEnd, loc)

	byDay := make(map[time.Time]int)
	for i := range games {
		result, ok := games[i].PlayerResult(userID)
		if !ok {
			continue
		}
		day := startOfDay(games[i].Date, loc)
		if day.Before(start) || day.After(end) {
			continue
		}
		byDay[day] += result.FinalAmount
	}

	var totals []DayTotal
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		totals = append(totals, DayTotal{Date: day, Amount: byDay[day]})
	}
	return totals
}

// FilterGames returns the games within [from, to] inclusive matching the
// game-type filter.
func FilterGames(games []models.Game, from, to time.Time, filter GameFilter) []models.Game {
	out := make([]models.Game, 0, len(games))
	for i := range games {
		g := games[i]
		if g.Date.Before(from) || g.Date.After(to) {
			continue
		}
		switch filter {
		case FilterFourPlayer:
			if g.GameType != models.GameTypeFourPlayer {
				continue
			}
		case FilterThreePlayer:
			if g.GameType != models.GameTypeThreePlayer {
				continue
			}
		case FilterFree:
			if !g.IsFreeGame() {
				continue
			}
		}
		out = append(out, g)
	}
	return out
}

// MonthRange returns the first and last day (at day granularity) of the
// month containing t, in t's location.
func MonthRange(t time.Time) (time.Time, time.Time) {
	loc := t.Location()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, -1)
	return start, end
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
