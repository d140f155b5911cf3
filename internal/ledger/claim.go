package ledger

import "github.com/mmynk/splitclaim/internal/models"

// ClaimEffect describes what a claim did to an item's claimers.
type ClaimEffect string

const (
	ClaimAdded     ClaimEffect = "added"
	ClaimUpdated   ClaimEffect = "updated"
	ClaimRemoved   ClaimEffect = "removed"
	ClaimUnchanged ClaimEffect = "unchanged"
)

// ApplyClaim sets userID's share count on item.
//
//   - an existing entry is overwritten, or removed when shares is 0
//   - a missing entry is appended when shares is positive
//   - shares of 0 with no entry is a no-op
//
// Applying the same claim twice leaves the item as applying it once.
func ApplyClaim(item *models.Item, userID string, shares int) ClaimEffect {
	for i, c := range item.Claimers {
		if c.UserID != userID {
			continue
		}
		switch {
		case shares == 0:
			item.Claimers = append(item.Claimers[:i:i], item.Claimers[i+1:]...)
			return ClaimRemoved
		case c.Shares == shares:
			return ClaimUnchanged
		default:
			item.Claimers[i].Shares = shares
			return ClaimUpdated
		}
	}

	if shares > 0 {
		item.Claimers = append(item.Claimers, models.Claimer{UserID: userID, Shares: shares})
		return ClaimAdded
	}
	return ClaimUnchanged
}
