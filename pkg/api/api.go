// Package api defines the splitclaim.v1 wire messages. Messages travel as
// JSON over Connect; see package apiconnect for handlers and clients.
package api

// ScanItem is one line extracted from a receipt.
type ScanItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ScanResult is the output of receipt extraction, the input of CreateBill.
type ScanResult struct {
	Items                []ScanItem `json:"items"`
	Total                float64    `json:"total"`
	CurrencySymbolOrCode string     `json:"currencySymbolOrCode"`
}

type Claimer struct {
	ID     string `json:"id"`
	Shares int    `json:"shares"`
}

type Item struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Amount          float64   `json:"amount"`
	Claimers        []Claimer `json:"claimers"`
	AutoDistributed bool      `json:"autoDistributed"`
}

// BillScan is the itemised part of a bill view.
type BillScan struct {
	Items                []Item  `json:"items"`
	Total                float64 `json:"total"`
	CurrencySymbolOrCode string  `json:"currencySymbolOrCode"`
}

type Participant struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Owed float64 `json:"owed"`
}

// Bill is the reconciled view of a bill. Date is RFC 3339.
type Bill struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Date         string                 `json:"date"`
	Scan         BillScan               `json:"scan"`
	Participants map[string]Participant `json:"participants"`
}

type CreateBillRequest struct {
	Name string      `json:"name"`
	Scan *ScanResult `json:"scan"`
}

type CreateBillResponse struct {
	BillID string `json:"billId"`
}

type GetBillRequest struct {
	BillID string `json:"billId"`
}

type GetBillResponse struct {
	Bill *Bill `json:"bill"`
}

// ClaimItemRequest sets the caller's shares on an item; 0 withdraws.
// The caller is identified by the bearer credential.
type ClaimItemRequest struct {
	BillID string `json:"billId"`
	ItemID string `json:"itemId"`
	Shares int    `json:"shares"`
}

type ClaimItemResponse struct {
	BillID string `json:"billId"`
}

// UpsertUserRequest registers the caller or renames them. Callers without
// a credential, or with an unknown one, are issued a new identity.
type UpsertUserRequest struct {
	Name string `json:"name"`
}

// UpsertUserResponse is only ever sent to the credential's owner.
type UpsertUserResponse struct {
	ID        string `json:"id"`
	PrivateID string `json:"privateId"`
	Name      string `json:"name"`
}

type ResolveIdentityRequest struct{}

// ResolveIdentityResponse is only ever sent to the credential's owner.
type ResolveIdentityResponse struct {
	ID        string `json:"id"`
	PrivateID string `json:"privateId"`
	Name      string `json:"name"`
}
