// Package scoring converts raw game results (ranks and point totals) into
// zero-sum monetary settlement under a configurable rule set. All functions
// are pure and total: malformed rule strings degrade to documented defaults
// instead of failing.
package scoring

import (
	"strconv"
	"strings"

	"github.com/tsumo-app/tsumo-server/models"
)

var (
	defaultRate = []int{1000, 2000, 3000}
	defaultUma  = []int{10000, 20000}
)

// ParseRate parses a delimited rate string ("1000-2000-3000") into base
// points per rank. Fewer than three parseable components falls back to the
// default rate.
func ParseRate(rate string) []int {
	parts := parseInts(rate)
	if len(parts) < 3 {
		return defaultRate
	}
	return parts
}

// ParseUma parses a delimited uma string ("10000-20000") into rank bonuses
// for the top ranks. Fewer than two parseable components falls back to the
// default uma.
func ParseUma(uma string) []int {
	parts := parseInts(uma)
	if len(parts) < 2 {
		return defaultUma
	}
	return parts
}

func parseInts(s string) []int {
	fields := strings.Split(s, "-")
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// SettleScores computes the pre-fee settlement amount for every player.
//
// Per player at rank r (index r-1): base points from the rate table, uma
// from the uma table — the rank just past uma coverage absorbs the negative
// sum of all uma paid out above it — plus, for first place only, the top
// prize (when set), the chip pool and the first-place bonus. A final
// zero-sum adjustment of -total/len(players) (truncating integer division)
// is applied to every player; when the total is not evenly divisible the
// residual is dropped, so the post-adjustment sum may be off by up to
// len(players)-1.
//
// Players are returned in input order with rank and identity untouched.
func SettleScores(players []models.PlayerScore, rules models.RuleSet, chipPool int) []models.PlayerScore {
	if len(players) == 0 {
		return nil
	}

	basePoints := ParseRate(rules.Rate)
	uma := ParseUma(rules.Uma)

	settled := make([]models.PlayerScore, len(players))
	copy(settled, players)

	for i := range settled {
		amount := 0
		index := settled[i].Rank - 1

		if index >= 0 && index < len(basePoints) {
			amount += basePoints[index]
		}

		if index >= 0 && index < len(uma) {
			amount += uma[index]
		} else if index == len(uma) {
			// Last covered place pays out the uma collected above it.
			amount -= sum(uma)
		}

		if settled[i].Rank == 1 {
			if rules.TopPrize != models.TopPrizeNone {
				if prize, err := strconv.Atoi(rules.TopPrize); err == nil {
					amount += prize
				}
			}
			amount += chipPool
			amount += rules.FirstPlaceBonus
		}

		settled[i].Amount = amount
	}

	total := 0
	for i := range settled {
		total += settled[i].Amount
	}
	if total != 0 {
		adjustment := -total / len(settled)
		for i := range settled {
			settled[i].Amount += adjustment
		}
	}

	for i := range settled {
		settled[i].FinalAmount = settled[i].Amount
	}

	return settled
}

// DistributeFees subtracts an equal fee share from every player's final
// amount. The share is (tableFee+gameFee)/playerCount with truncating
// division; any remainder is simply not collected.
func DistributeFees(players []models.PlayerScore, tableFee, gameFee, playerCount int) []models.PlayerScore {
	if playerCount <= 0 {
		return players
	}

	feePerPlayer := (tableFee + gameFee) / playerCount

	out := make([]models.PlayerScore, len(players))
	copy(out, players)
	for i := range out {
		out[i].FinalAmount -= feePerPlayer
	}
	return out
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
