package server

import "sort"

const (
	battleBaseXP       = 50
	battleDefaultBonus = 25
	battleFirstBonus   = 100
	battleSecondBonus  = 75
	battleThirdBonus   = 50
)

// battleXP is the reward for a placement: a podium bonus that decreases
// with rank plus a flat participation bonus.
func battleXP(rank int) int {
	bonus := battleDefaultBonus
	switch rank {
	case 1:
		bonus = battleFirstBonus
	case 2:
		bonus = battleSecondBonus
	case 3:
		bonus = battleThirdBonus
	}
	return bonus + battleBaseXP
}

// computeRankings orders participants by the mode's comparator. A score
// of zero means did-not-finish and always sorts last. Ties keep join
// order, which the input slice already carries.
func computeRankings(mode string, participants []Participant) []Ranking {
	ordered := make([]Participant, len(participants))
	copy(ordered, participants)

	asc := lowerIsBetter(mode)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Score == 0 || b.Score == 0 {
			return a.Score != 0 && b.Score == 0
		}
		if asc {
			return a.Score < b.Score
		}
		return a.Score > b.Score
	})

	rankings := make([]Ranking, 0, len(ordered))
	for i, p := range ordered {
		rank := i + 1
		rankings = append(rankings, Ranking{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
			Rank:     rank,
			XPEarned: battleXP(rank),
		})
	}
	return rankings
}
