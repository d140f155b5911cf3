package models

import "time"

// UnaccountedItemID is the reserved id of the synthetic remainder item.
const UnaccountedItemID = "unaccounted"

// UnaccountedItemName is the display name of the synthetic remainder item.
const UnaccountedItemName = "Unaccounted"

// Bill represents a receipt that is being split among participants.
// It is the canonical record owned by the bill's ledger actor.
type Bill struct {
	// ID is the opaque, externally generated identifier (UUID format).
	ID string `json:"id"`

	// Name is the human-readable name for the bill (e.g., "Dinner").
	Name string `json:"name"`

	// CreatedAt is when the bill was recorded.
	CreatedAt time.Time `json:"date"`

	// Items are the line items extracted from the receipt, in receipt order.
	// Only their Claimers change after creation.
	Items []Item `json:"items"`

	// Total is the declared total as extracted, including tax, tip and fees.
	Total float64 `json:"total"`

	// Currency is the currency symbol or code printed on the receipt.
	// It is carried along but never converted.
	Currency string `json:"currency,omitempty"`
}

// Item represents a single line item on a bill.
type Item struct {
	// ID is unique within the bill (UUID format, or UnaccountedItemID).
	ID string `json:"id"`

	// Name is the description printed on the receipt (e.g., "Pizza").
	Name string `json:"name"`

	// Amount is the price of the line. Real items are never negative;
	// the synthetic remainder item may be.
	Amount float64 `json:"amount"`

	// Claimers lists who claimed shares of this item, in claim order.
	Claimers []Claimer `json:"claimers"`

	// AutoDistributed marks the synthetic remainder item. Never persisted.
	AutoDistributed bool `json:"autoDistributed"`
}

// Claimer is one user's share count against an item.
type Claimer struct {
	// UserID is the public id of the claiming user.
	UserID string `json:"id"`

	// Shares is the number of shares claimed. Always positive when stored.
	Shares int `json:"shares"`
}

// FindItem returns the real item with the given id, or nil.
func (b *Bill) FindItem(itemID string) *Item {
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			return &b.Items[i]
		}
	}
	return nil
}

// TotalShares is the sum of all claimers' shares on the item.
func (i *Item) TotalShares() int {
	total := 0
	for _, c := range i.Claimers {
		total += c.Shares
	}
	return total
}

// Participant is a user who claimed at least one share of the bill.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Owed is what this participant owes across all items, including their
	// part of the unaccounted remainder.
	Owed float64 `json:"owed"`
}

// BillView is the reconciled bill returned to readers. It is derived on
// every read and never stored.
type BillView struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Currency string    `json:"currency,omitempty"`
	Total    float64   `json:"total"`

	// Items are the real items followed by the synthetic remainder item, if any.
	Items []Item `json:"items"`

	// Participants maps public user id to participant details.
	Participants map[string]Participant `json:"participants"`
}
