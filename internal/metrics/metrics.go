// Package metrics derives the dashboard figures from the ledger and runs the XP/level progression.
package metrics

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/ledger"
)

// AnnualInflationRate is the yearly purchasing-power loss applied to idle cash.
var AnnualInflationRate = decimal.RequireFromString("0.06")

var hundred = decimal.NewFromInt(100)

// LiquidCash is the sum of the three bank balances.
func LiquidCash(rec domain.FinancialRecord) decimal.Decimal {
	return rec.BankA.Add(rec.BankB).Add(rec.BankC)
}

// GrossAssets is liquid cash plus asset values and business valuations.
func GrossAssets(rec domain.FinancialRecord) decimal.Decimal {
	total := LiquidCash(rec)
	for _, a := range rec.Assets {
		total = total.Add(a.Value)
	}
	for _, b := range rec.Businesses {
		total = total.Add(b.Valuation)
	}
	return total
}

// TotalDebt sums outstanding loans.
func TotalDebt(rec domain.FinancialRecord) decimal.Decimal {
	total := decimal.Zero
	for _, l := range rec.Loans {
		total = total.Add(l.Amount)
	}
	return total
}

// NetWorth is gross assets minus loans.
func NetWorth(rec domain.FinancialRecord) decimal.Decimal {
	return GrossAssets(rec).Sub(TotalDebt(rec))
}

// DailyInflationDecay is the value liquid cash loses per day at AnnualInflationRate, rounded to two decimals.
func DailyInflationDecay(rec domain.FinancialRecord) decimal.Decimal {
	liquid := LiquidCash(rec)
	if !liquid.IsPositive() {
		return decimal.Zero
	}
	return liquid.Mul(AnnualInflationRate).Div(decimal.NewFromInt(365)).Round(2)
}

// MonthTotals returns income and expense (as a positive figure) for the calendar month of today.
func MonthTotals(txs []domain.Transaction, today civil.Date) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, tx := range ledger.MonthTransactions(txs, today) {
		if tx.Amount.IsPositive() {
			income = income.Add(tx.Amount)
		} else {
			expense = expense.Add(tx.Amount.Abs())
		}
	}
	return income, expense
}

// SavingsRate is the share of this month's income not spent, as a percentage.
// It is 0 when there was no income.
func SavingsRate(txs []domain.Transaction, today civil.Date) decimal.Decimal {
	income, expense := MonthTotals(txs, today)
	if income.IsZero() {
		return decimal.Zero
	}
	return income.Sub(expense).Div(income).Mul(hundred).Round(2)
}

// WeightedROI is the value-weighted mean ROI of assets. It is 0 when assets hold no value.
func WeightedROI(assets []domain.Asset) decimal.Decimal {
	value, weighted := decimal.Zero, decimal.Zero
	for _, a := range assets {
		value = value.Add(a.Value)
		weighted = weighted.Add(a.Value.Mul(a.ROI))
	}
	if value.IsZero() {
		return decimal.Zero
	}
	return weighted.Div(value).Round(2)
}

// RiskScore rates leverage from 0 to 100 as debt over gross assets.
func RiskScore(rec domain.FinancialRecord) int {
	debt := TotalDebt(rec)
	if !debt.IsPositive() {
		return 0
	}
	gross := GrossAssets(rec)
	if !gross.IsPositive() {
		return 100
	}
	score := debt.Div(gross).Mul(hundred).Round(0).IntPart()
	if score > 100 {
		return 100
	}
	return int(score)
}
