package models

import "time"

// GameType mirrors the game_type ENUM in the database.
type GameType string

const (
	GameTypeFourPlayer  GameType = "four_player"
	GameTypeThreePlayer GameType = "three_player"
	GameTypeFree        GameType = "free"
)

// PlayerCount returns the required player count for the type, or 0 when
// the type does not constrain it.
func (t GameType) PlayerCount() int {
	switch t {
	case GameTypeFourPlayer:
		return 4
	case GameTypeThreePlayer:
		return 3
	default:
		return 0
	}
}

// PlayerScore is one participant's result within a game. Amount is the
// settled amount before fees, FinalAmount the amount after fee
// distribution.
type PlayerScore struct {
	UserID      string `json:"user_id"`
	Rank        int    `json:"rank"`
	Score       int    `json:"score"`
	Amount      int    `json:"amount"`
	FinalAmount int    `json:"final_amount"`
}

// Game is a single settled game session. A nil GroupID marks a free
// (unaffiliated) game, which never contributes to any group ranking.
type Game struct {
	ID       string        `json:"id" db:"id"`
	GroupID  *string       `json:"group_id,omitempty" db:"group_id"`
	GameType GameType      `json:"game_type" db:"game_type"`
	Date     time.Time     `json:"date" db:"date"`
	Players  []PlayerScore `json:"players" db:"players"`
	Rate     string        `json:"rate" db:"rate"`
	Chip     int           `json:"chip" db:"chip"`
	TableFee int           `json:"table_fee" db:"table_fee"`
	GameFee  int           `json:"game_fee" db:"game_fee"`
	Rules    RuleSet       `json:"rules" db:"rules"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (g *Game) IsFreeGame() bool {
	return g.GroupID == nil
}

// PlayerResult returns the score entry for the given user, if present.
func (g *Game) PlayerResult(userID string) (PlayerScore, bool) {
	for _, p := range g.Players {
		if p.UserID == userID {
			return p, true
		}
	}
	return PlayerScore{}, false
}
