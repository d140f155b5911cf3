package ledger

import (
	"github.com/mmynk/splitclaim/internal/calculator"
	"github.com/mmynk/splitclaim/internal/models"
)

// Reconciled is a bill's derived state before participant names are resolved.
type Reconciled struct {
	// Items are copies of the real items followed by the synthetic
	// remainder item when the declared total differs from their sum.
	Items []models.Item

	// ParticipantIDs lists everyone with a claim on a real item, in order
	// of first appearance.
	ParticipantIDs []string
}

// Reconcile derives the view of bill. It never mutates bill, and the same
// bill always yields the same result.
func Reconcile(bill *models.Bill) Reconciled {
	items := make([]models.Item, 0, len(bill.Items)+1)
	seen := make(map[string]bool)
	var participants []string

	for _, item := range bill.Items {
		if item.AutoDistributed {
			continue
		}
		item.Claimers = append([]models.Claimer{}, item.Claimers...)
		items = append(items, item)

		for _, c := range item.Claimers {
			if !seen[c.UserID] {
				seen[c.UserID] = true
				participants = append(participants, c.UserID)
			}
		}
	}

	if remainder, ok := calculator.Remainder(bill.Total, items); ok {
		unaccounted := models.Item{
			ID:              models.UnaccountedItemID,
			Name:            models.UnaccountedItemName,
			Amount:          remainder,
			Claimers:        make([]models.Claimer, 0, len(participants)),
			AutoDistributed: true,
		}
		for _, id := range participants {
			unaccounted.Claimers = append(unaccounted.Claimers, models.Claimer{UserID: id, Shares: 1})
		}
		items = append(items, unaccounted)
	}

	return Reconciled{Items: items, ParticipantIDs: participants}
}
