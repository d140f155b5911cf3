// Package calculator derives money amounts from share claims.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitclaim/internal/models"
)

// ItemShares computes how much each claimer owes for one item.
// Based on the algorithm: claimer_amount = item_amount × (claimer_shares / total_shares)
// Returns an empty map when nobody has claimed the item.
func ItemShares(item models.Item) map[string]float64 {
	shares := make(map[string]float64, len(item.Claimers))

	total := item.TotalShares()
	if total == 0 {
		return shares
	}

	for _, c := range item.Claimers {
		shares[c.UserID] += item.Amount * float64(c.Shares) / float64(total)
	}
	return shares
}

// Owed sums every user's share across all items, including any
// auto-distributed remainder item. Users with no claims are absent.
func Owed(items []models.Item) map[string]float64 {
	owed := make(map[string]float64)
	for _, item := range items {
		for user, amount := range ItemShares(item) {
			owed[user] += amount
		}
	}
	return owed
}

// Sum adds amounts exactly in decimal, so receipt values such as 0.1 + 0.2
// compare equal to a declared 0.3.
func Sum(amounts ...float64) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	return sum
}

// Remainder is the signed gap between the declared total and the sum of the
// itemised amounts. It is negative when the items overcount the total.
// ok is false when the two agree exactly and no remainder item is needed.
func Remainder(declaredTotal float64, items []models.Item) (amount float64, ok bool) {
	amounts := make([]float64, 0, len(items))
	for _, item := range items {
		if item.AutoDistributed {
			continue
		}
		amounts = append(amounts, item.Amount)
	}

	gap := decimal.NewFromFloat(declaredTotal).Sub(Sum(amounts...))
	if gap.IsZero() {
		return 0, false
	}
	return gap.InexactFloat64(), true
}
