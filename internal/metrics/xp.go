package metrics

import "github.com/dvloznov/lifeos/internal/domain"

// LevelCost scales the XP needed to leave a level: level n costs n*LevelCost.
const LevelCost = 1000

// LevelThreshold is the XP at which level rolls over into level+1.
func LevelThreshold(level int) int {
	if level < 1 {
		level = 1
	}
	return level * LevelCost
}

// AddXP awards amount XP, carrying over as many level-ups as it covers.
// Negative awards walk back down through earlier levels, so an award followed
// by its negation restores the profile. Level 1 with 0 XP is the floor.
func AddXP(p domain.UserProfile, amount int) domain.UserProfile {
	if p.Level < 1 {
		p.Level = 1
	}
	p.XP += amount
	for p.XP < 0 && p.Level > 1 {
		p.Level--
		p.XP += LevelThreshold(p.Level)
	}
	if p.XP < 0 {
		p.XP = 0
	}
	for p.XP >= LevelThreshold(p.Level) {
		p.XP -= LevelThreshold(p.Level)
		p.Level++
	}
	p.Rank = domain.RankFor(p.Level)
	return p
}
