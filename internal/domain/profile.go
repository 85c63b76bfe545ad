package domain

import "cloud.google.com/go/civil"

// UserProfile holds the gamified progression state.
type UserProfile struct {
	Name         string      `json:"name"`
	XP           int         `json:"xp"`
	Level        int         `json:"level"`
	Rank         string      `json:"rank"`
	SystemicRisk int         `json:"systemicRisk"`
	BirthDate    *civil.Date `json:"birthDate"`
	Mission      string      `json:"mission"`
}

// DefaultProfile returns the profile created on first launch.
func DefaultProfile() UserProfile {
	return UserProfile{
		Name:  "Operator",
		Level: 1,
		Rank:  RankFor(1),
	}
}

// RankFor maps a level onto its rank title. Thresholds sit at 5, 10, 20 and 50.
func RankFor(level int) string {
	switch {
	case level >= 50:
		return "Sovereign"
	case level >= 20:
		return "Architect"
	case level >= 10:
		return "Strategist"
	case level >= 5:
		return "Operator"
	default:
		return "Initiate"
	}
}
