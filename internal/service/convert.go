package service

import (
	"time"

	"github.com/mmynk/splitclaim/internal/models"
	"github.com/mmynk/splitclaim/pkg/api"
)

func scanFromAPI(scan *api.ScanResult) *models.ScanResult {
	if scan == nil {
		return nil
	}

	items := make([]models.ScanItem, len(scan.Items))
	for i, item := range scan.Items {
		items[i] = models.ScanItem{Name: item.Name, Amount: item.Amount}
	}
	return &models.ScanResult{
		Items:    items,
		Total:    scan.Total,
		Currency: scan.CurrencySymbolOrCode,
	}
}

func billToAPI(view *models.BillView) *api.Bill {
	items := make([]api.Item, len(view.Items))
	for i, item := range view.Items {
		claimers := make([]api.Claimer, len(item.Claimers))
		for j, c := range item.Claimers {
			claimers[j] = api.Claimer{ID: c.UserID, Shares: c.Shares}
		}
		items[i] = api.Item{
			ID:              item.ID,
			Name:            item.Name,
			Amount:          item.Amount,
			Claimers:        claimers,
			AutoDistributed: item.AutoDistributed,
		}
	}

	participants := make(map[string]api.Participant, len(view.Participants))
	for id, p := range view.Participants {
		participants[id] = api.Participant{ID: p.ID, Name: p.Name, Owed: p.Owed}
	}

	return &api.Bill{
		ID:   view.ID,
		Name: view.Name,
		Date: view.Date.UTC().Format(time.RFC3339),
		Scan: api.BillScan{
			Items:                items,
			Total:                view.Total,
			CurrencySymbolOrCode: view.Currency,
		},
		Participants: participants,
	}
}
