package stats

import (
	"sort"

	"github.com/tsumo-app/tsumo-server/models"
)

// RankingRow is one member's cumulative settled total within a group.
type RankingRow struct {
	UserID     string `json:"user_id"`
	TotalScore int    `json:"total_score"`
}

// GroupRanking builds a leaderboard of cumulative final amounts for the
// group's members. Only games carrying the group's ID contribute; free
// games never do. Every member appears, with total 0 when they have no
// games — membership, not participation, defines presence. Ties keep the
// member list's original order (stable sort).
func GroupRanking(groupID string, games []models.Game, members []models.GroupMember) []RankingRow {
	memberIDs := make(map[string]bool, len(members))
	totals := make(map[string]int, len(members))
	order := make([]string, 0, len(members))

	for _, m := range members {
		if memberIDs[m.UserID] {
			continue
		}
		memberIDs[m.UserID] = true
		totals[m.UserID] = 0
		order = append(order, m.UserID)
	}

	for i := range games {
		if games[i].GroupID == nil || *games[i].GroupID != groupID {
			continue
		}
		for _, p := range games[i].Players {
			if memberIDs[p.UserID] {
				totals[p.UserID] += p.FinalAmount
			}
		}
	}

	rows := make([]RankingRow, 0, len(order))
	for _, userID := range order {
		rows = append(rows, RankingRow{UserID: userID, TotalScore: totals[userID]})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalScore > rows[j].TotalScore
	})

	return rows
}

// InferMembers derives a membership list from the player IDs observed in
// the group's games, in first-seen order. This is the degraded fallback
// for when the members collection is unavailable: it can include players
// who have since left and misses members who never played.
func InferMembers(groupID string, games []models.Game, ownerID string) []models.GroupMember {
	seen := make(map[string]bool)
	var members []models.GroupMember

	for i := range games {
		if games[i].GroupID == nil || *games[i].GroupID != groupID {
			continue
		}
		for _, p := range games[i].Players {
			if seen[p.UserID] {
				continue
			}
			seen[p.UserID] = true
			role := models.RoleMember
			if p.UserID == ownerID {
				role = models.RoleOwner
			}
			members = append(members, models.GroupMember{
				GroupID: groupID,
				UserID:  p.UserID,
				Role:    role,
			})
		}
	}
	return members
}
