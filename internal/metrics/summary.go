package metrics

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/lifeos/internal/domain"
)

// Summary is the dashboard view of all derived figures.
type Summary struct {
	BankA        decimal.Decimal `json:"bankA"`
	BankB        decimal.Decimal `json:"bankB"`
	BankC        decimal.Decimal `json:"bankC"`
	LiquidCash   decimal.Decimal `json:"liquidCash"`
	NetWorth     decimal.Decimal `json:"netWorth"`
	DailyDecay   decimal.Decimal `json:"dailyInflationDecay"`
	MonthIncome  decimal.Decimal `json:"monthIncome"`
	MonthExpense decimal.Decimal `json:"monthExpense"`
	SavingsRate  decimal.Decimal `json:"savingsRate"`
	WeightedROI  decimal.Decimal `json:"weightedROI"`
	RiskScore    int             `json:"riskScore"`

	ActiveStreaks int    `json:"activeStreaks"`
	BestStreak    int    `json:"bestStreak"`
	DoneToday     int    `json:"doneToday"`
	HabitCount    int    `json:"habitCount"`
	Level         int    `json:"level"`
	XP            int    `json:"xp"`
	Rank          string `json:"rank"`
}

func Summarize(rec domain.FinancialRecord, habits []domain.Habit, p domain.UserProfile, today civil.Date) Summary {
	income, expense := MonthTotals(rec.Transactions, today)
	s := Summary{
		BankA:        rec.BankA,
		BankB:        rec.BankB,
		BankC:        rec.BankC,
		LiquidCash:   LiquidCash(rec),
		NetWorth:     NetWorth(rec),
		DailyDecay:   DailyInflationDecay(rec),
		MonthIncome:  income,
		MonthExpense: expense,
		SavingsRate:  SavingsRate(rec.Transactions, today),
		WeightedROI:  WeightedROI(rec.Assets),
		RiskScore:    RiskScore(rec),
		HabitCount:   len(habits),
		Level:        p.Level,
		XP:           p.XP,
		Rank:         p.Rank,
	}
	for _, h := range habits {
		if h.Streak > 0 {
			s.ActiveStreaks++
		}
		if h.Streak > s.BestStreak {
			s.BestStreak = h.Streak
		}
		if h.History.Contains(today) {
			s.DoneToday++
		}
	}
	return s
}
