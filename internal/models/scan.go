package models

// ScanResult is the structured payload produced by receipt extraction.
// The extractor is an external collaborator; this is its contract.
type ScanResult struct {
	// Items are the extracted line items, in receipt order.
	Items []ScanItem `json:"items" validate:"dive"`

	// Total is the amount due including tax, tip and other fees.
	Total float64 `json:"total" validate:"gte=0"`

	// Currency is the symbol or code found on the receipt.
	Currency string `json:"currencySymbolOrCode" validate:"max=16"`
}

// ScanItem is one extracted line.
type ScanItem struct {
	Name   string  `json:"name" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
}
