package models

// TopPrizeNone disables the flat first-place prize. The same sentinel is
// used for the call bonus.
const TopPrizeNone = "none"

// RuleSet holds the scoring parameters of a single game session. It is
// embedded in the Game record and immutable once the game is settled.
//
// Oka, OkaPerThousand and CallBonus are carried as configuration but are
// not consumed by the settlement arithmetic.
type RuleSet struct {
	Rate     string `json:"rate"`      // base points per rank, e.g. "1000-2000-3000"
	Uma      string `json:"uma"`       // rank bonus for the top ranks, e.g. "10000-20000"
	TopPrize string `json:"top_prize"` // flat bonus to 1st place, or "none"

	StartingPoints  int `json:"starting_points"`
	ReturnPoints    int `json:"return_points"`
	FirstPlaceBonus int `json:"first_place_bonus"`

	RedDora        bool   `json:"red_dora"`
	FlyingEnd      bool   `json:"flying_end"`
	Oka            int    `json:"oka"`
	OkaPerThousand int    `json:"oka_per_thousand"`
	CallBonus      string `json:"call_bonus"`
}

// DefaultRuleSet returns the rule set new sessions start from.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Rate:            "1000-2000-3000",
		Uma:             "10000-20000",
		TopPrize:        TopPrizeNone,
		StartingPoints:  25000,
		ReturnPoints:    30000,
		FirstPlaceBonus: 10000,
		RedDora:         true,
		FlyingEnd:       true,
		Oka:             20000,
		OkaPerThousand:  2000,
		CallBonus:       TopPrizeNone,
	}
}
