package scoring

import (
	"testing"

	"github.com/tsumo-app/tsumo-server/models"
)

func fourPlayers() []models.PlayerScore {
	return []models.PlayerScore{
		{UserID: "u1", Rank: 1, Score: 35000},
		{UserID: "u2", Rank: 2, Score: 28000},
		{UserID: "u3", Rank: 3, Score: 22000},
		{UserID: "u4", Rank: 4, Score: 15000},
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []int
	}{
		{"standard", "1000-2000-3000", []int{1000, 2000, 3000}},
		{"four components kept", "1000-2000-3000-500", []int{1000, 2000, 3000, 500}},
		{"garbage falls back", "bad-data", []int{1000, 2000, 3000}},
		{"too few falls back", "1000-2000", []int{1000, 2000, 3000}},
		{"empty falls back", "", []int{1000, 2000, 3000}},
		{"partial garbage skipped", "1000-x-2000-3000", []int{1000, 2000, 3000}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseRate(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("ParseRate(%q) = %v, want %v", tc.in, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("ParseRate(%q) = %v, want %v", tc.in, got, tc.want)
				}
			}
		})
	}
}

func TestParseUma(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []int
	}{
		{"standard", "10000-20000", []int{10000, 20000}},
		{"single falls back", "10000", []int{10000, 20000}},
		{"garbage falls back", "nope", []int{10000, 20000}},
		{"three kept", "5000-10000-15000", []int{5000, 10000, 15000}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseUma(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("ParseUma(%q) = %v, want %v", tc.in, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("ParseUma(%q) = %v, want %v", tc.in, got, tc.want)
				}
			}
		})
	}
}

func TestSettleScoresFourPlayer(t *testing.T) {
	rules := models.DefaultRuleSet() // rate 1000-2000-3000, uma 10000-20000, bonus 10000

	settled := SettleScores(fourPlayers(), rules, 1000)
	if len(settled) != 4 {
		t.Fatalf("expected 4 settled players, got %d", len(settled))
	}

	// Pre-adjustment amounts: rank1 = 1000+10000+1000+10000 = 22000,
	// rank2 = 2000+20000, rank3 = 3000-30000, rank4 = 0.
	// Total 17000, adjustment -4250 each.
	want := []int{17750, 17750, -31250, -4250}
	total := 0
	for i, p := range settled {
		if p.Amount != want[i] {
			t.Errorf("player %d: amount = %d, want %d", i, p.Amount, want[i])
		}
		if p.FinalAmount != p.Amount {
			t.Errorf("player %d: final amount %d differs from pre-fee amount %d", i, p.FinalAmount, p.Amount)
		}
		total += p.Amount
	}
	if total != 0 {
		t.Errorf("settled amounts sum to %d, want 0", total)
	}

	// Input order, rank and identity must be preserved.
	in := fourPlayers()
	for i := range settled {
		if settled[i].UserID != in[i].UserID || settled[i].Rank != in[i].Rank || settled[i].Score != in[i].Score {
			t.Errorf("player %d: identity fields mutated: %+v", i, settled[i])
		}
	}
}

func TestSettleScoresTopPrize(t *testing.T) {
	rules := models.DefaultRuleSet()
	rules.TopPrize = "5000"
	rules.FirstPlaceBonus = 0

	base := SettleScores(fourPlayers(), models.RuleSet{
		Rate:     rules.Rate,
		Uma:      rules.Uma,
		TopPrize: models.TopPrizeNone,
	}, 0)
	withPrize := SettleScores(fourPlayers(), models.RuleSet{
		Rate:     rules.Rate,
		Uma:      rules.Uma,
		TopPrize: "5000",
	}, 0)

	// The prize raises the pool by 5000, of which -5000/4 is clawed back
	// from everyone; first place nets +5000 - 1250 relative to baseline.
	diff := withPrize[0].Amount - base[0].Amount
	if diff != 5000-5000/4 {
		t.Errorf("top prize delta for first place = %d, want %d", diff, 5000-5000/4)
	}
	for i := 1; i < 4; i++ {
		if withPrize[i].Amount-base[i].Amount != -(5000 / 4) {
			t.Errorf("player %d: top prize delta = %d, want %d", i, withPrize[i].Amount-base[i].Amount, -(5000 / 4))
		}
	}
}

func TestSettleScoresMalformedRules(t *testing.T) {
	rules := models.DefaultRuleSet()
	rules.Rate = "bad-data"
	rules.Uma = "???"
	rules.FirstPlaceBonus = 10000

	bad := SettleScores(fourPlayers(), rules, 1000)
	good := SettleScores(fourPlayers(), models.DefaultRuleSet(), 1000)

	for i := range bad {
		if bad[i].Amount != good[i].Amount {
			t.Errorf("player %d: malformed rules settled to %d, default to %d", i, bad[i].Amount, good[i].Amount)
		}
	}
}

func TestSettleScoresThreePlayer(t *testing.T) {
	players := []models.PlayerScore{
		{UserID: "u1", Rank: 1, Score: 45000},
		{UserID: "u2", Rank: 2, Score: 35000},
		{UserID: "u3", Rank: 3, Score: 25000},
	}
	rules := models.DefaultRuleSet()
	rules.FirstPlaceBonus = 0

	settled := SettleScores(players, rules, 0)

	// rank3 sits just past uma coverage and absorbs -30000.
	// Pre-adjustment: 11000, 22000, -27000; total 6000, adjustment -2000.
	want := []int{9000, 20000, -29000}
	for i, p := range settled {
		if p.Amount != want[i] {
			t.Errorf("player %d: amount = %d, want %d", i, p.Amount, want[i])
		}
	}
}

func TestSettleScoresZeroSumProperty(t *testing.T) {
	ruleSets := []models.RuleSet{
		models.DefaultRuleSet(),
		{Rate: "500-1500-2500", Uma: "5000-10000", TopPrize: "3000", FirstPlaceBonus: 7000},
		{Rate: "1-2-4", Uma: "10-30", TopPrize: models.TopPrizeNone, FirstPlaceBonus: 13},
		{Rate: "broken", Uma: "also-broken", TopPrize: models.TopPrizeNone},
	}
	perms := [][]int{
		{1, 2, 3, 4},
		{4, 3, 2, 1},
		{2, 4, 1, 3},
		{3, 1, 4, 2},
	}

	for ri, rules := range ruleSets {
		for _, chip := range []int{0, 1000, 333} {
			for _, ranks := range perms {
				players := make([]models.PlayerScore, len(ranks))
				for i, r := range ranks {
					players[i] = models.PlayerScore{UserID: string(rune('a' + i)), Rank: r}
				}
				settled := SettleScores(players, rules, chip)
				total := 0
				for _, p := range settled {
					total += p.Amount
				}
				// Truncating adjustment may leave up to n-1 units behind.
				if total <= -len(players) || total >= len(players) {
					t.Errorf("rules %d chip %d ranks %v: post-adjustment total %d, |total| must be < %d", ri, chip, ranks, total, len(players))
				}
			}
		}
	}
}

func TestDistributeFees(t *testing.T) {
	settled := SettleScores(fourPlayers(), models.DefaultRuleSet(), 0)
	preTotal := 0
	for _, p := range settled {
		preTotal += p.FinalAmount
	}

	final := DistributeFees(settled, 500, 500, 4)
	for i, p := range final {
		if settled[i].FinalAmount-p.FinalAmount != 250 {
			t.Errorf("player %d: fee deducted %d, want 250", i, settled[i].FinalAmount-p.FinalAmount)
		}
		if p.Amount != settled[i].Amount {
			t.Errorf("player %d: pre-fee amount changed by fee distribution", i)
		}
	}

	postTotal := 0
	for _, p := range final {
		postTotal += p.FinalAmount
	}
	if preTotal-postTotal != 250*4 {
		t.Errorf("fee conservation: collected %d, want %d", preTotal-postTotal, 250*4)
	}
}

func TestDistributeFeesTruncation(t *testing.T) {
	players := []models.PlayerScore{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}}

	// 1000+1 over 3 players truncates to 333 each; 2 units go uncollected.
	final := DistributeFees(players, 1000, 1, 3)
	for i, p := range final {
		if p.FinalAmount != -333 {
			t.Errorf("player %d: final amount %d, want -333", i, p.FinalAmount)
		}
	}
}
