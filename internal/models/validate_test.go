package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateShares(t *testing.T) {
	tests := []struct {
		shares  int
		wantErr bool
	}{
		{0, false},
		{1, false},
		{MaxShares, false},
		{-1, true},
		{MaxShares + 1, true},
	}

	for _, tt := range tests {
		err := ValidateShares(tt.shares)
		if tt.wantErr {
			require.Error(t, err, "shares=%d", tt.shares)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), "shares")
		} else {
			assert.NoError(t, err, "shares=%d", tt.shares)
		}
	}
}

func TestValidateScan(t *testing.T) {
	t.Run("valid receipt", func(t *testing.T) {
		scan := &ScanResult{
			Items:    []ScanItem{{Name: "Pizza", Amount: 20}, {Name: "Soda", Amount: 5}},
			Total:    28,
			Currency: "USD",
		}
		assert.NoError(t, ValidateScan(scan))
	})

	t.Run("no items is allowed", func(t *testing.T) {
		assert.NoError(t, ValidateScan(&ScanResult{Total: 12.5}))
	})

	t.Run("nil scan", func(t *testing.T) {
		assert.ErrorIs(t, ValidateScan(nil), ErrValidation)
	})

	t.Run("negative item amount", func(t *testing.T) {
		scan := &ScanResult{Items: []ScanItem{{Name: "Refund", Amount: -3}}, Total: 0}
		err := ValidateScan(scan)
		require.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "Amount")
	})

	t.Run("unnamed item", func(t *testing.T) {
		scan := &ScanResult{Items: []ScanItem{{Amount: 3}}, Total: 3}
		assert.ErrorIs(t, ValidateScan(scan), ErrValidation)
	})

	t.Run("negative total", func(t *testing.T) {
		assert.ErrorIs(t, ValidateScan(&ScanResult{Total: -1}), ErrValidation)
	})
}

func TestValidateNames(t *testing.T) {
	assert.NoError(t, ValidateBillName("Dinner"))
	assert.ErrorIs(t, ValidateBillName("   "), ErrValidation)
	assert.NoError(t, ValidateUserName("Alice"))
	assert.ErrorIs(t, ValidateUserName(""), ErrValidation)
}

func TestBillFindItem(t *testing.T) {
	bill := &Bill{Items: []Item{{ID: "a", Name: "Pizza"}, {ID: "b", Name: "Soda"}}}

	item := bill.FindItem("b")
	require.NotNil(t, item)
	assert.Equal(t, "Soda", item.Name)

	// Returned pointer aliases the bill's slice so claims mutate in place.
	item.Claimers = append(item.Claimers, Claimer{UserID: "u1", Shares: 2})
	assert.Equal(t, 2, bill.Items[1].TotalShares())

	assert.Nil(t, bill.FindItem(UnaccountedItemID))
}
