package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mmynk/splitclaim/internal/actor"
	"github.com/mmynk/splitclaim/internal/calculator"
	"github.com/mmynk/splitclaim/internal/metrics"
	"github.com/mmynk/splitclaim/internal/models"
	"github.com/mmynk/splitclaim/internal/storage"
)

// ErrUnresolvedParticipant is returned by GetBill when a claimer has no
// display name in the user directory. A bill is never shown with anonymous
// participants.
var ErrUnresolvedParticipant = errors.New("participant has no display name")

// Directory is the part of the user directory the ledger reads.
type Directory interface {
	// Authenticate resolves a bearer credential, failing with
	// models.ErrUnauthorized when it is missing or unknown.
	Authenticate(ctx context.Context, privateID string) (*models.User, error)

	// DisplayName returns the name for a public user id.
	DisplayName(ctx context.Context, userID string) (string, error)
}

// Ledger serves bill operations, one mailbox per bill id.
type Ledger struct {
	store   storage.BillStore
	users   Directory
	bills   *actor.Registry[string]
	clock   clockwork.Clock
	metrics *metrics.LedgerMetrics
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used to timestamp new bills.
func WithClock(clock clockwork.Clock) Option {
	return func(l *Ledger) { l.clock = clock }
}

// WithMetrics enables operation metrics.
func WithMetrics(m *metrics.LedgerMetrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// New creates a ledger over store, resolving users through users.
func New(store storage.BillStore, users Directory, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		users: users,
		bills: actor.NewRegistry[string](),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LiveBills reports how many bills currently have operations in flight.
func (l *Ledger) LiveBills() int {
	return l.bills.Len()
}

// CreateBill records a new bill under id from an extracted receipt. Each
// extracted line becomes an item with a fresh id and no claimers.
// Reusing an id fails with models.ErrConflict.
func (l *Ledger) CreateBill(ctx context.Context, id, name string, scan *models.ScanResult) (bill *models.Bill, err error) {
	defer func() { l.metrics.ObserveOperation("create_bill", err) }()

	if id == "" {
		return nil, fmt.Errorf("%w: bill id required", models.ErrValidation)
	}
	if err := models.ValidateBillName(name); err != nil {
		return nil, err
	}
	if err := models.ValidateScan(scan); err != nil {
		return nil, err
	}

	bill = &models.Bill{
		ID:        id,
		Name:      strings.TrimSpace(name),
		CreatedAt: l.clock.Now().UTC(),
		Items:     make([]models.Item, len(scan.Items)),
		Total:     scan.Total,
		Currency:  scan.Currency,
	}
	for i, line := range scan.Items {
		bill.Items[i] = models.Item{
			ID:       uuid.NewString(),
			Name:     line.Name,
			Amount:   line.Amount,
			Claimers: []models.Claimer{},
		}
	}

	err = l.bills.Do(ctx, id, func(ctx context.Context) error {
		return l.store.CreateBill(ctx, bill)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Bill created", "bill_id", id, "items_count", len(bill.Items), "total", bill.Total)
	return bill, nil
}

// GetBill returns the reconciled view of a bill. It never writes.
func (l *Ledger) GetBill(ctx context.Context, id string) (view *models.BillView, err error) {
	defer func() { l.metrics.ObserveOperation("get_bill", err) }()

	var bill *models.Bill
	err = l.bills.Do(ctx, id, func(ctx context.Context) error {
		var err error
		bill, err = l.store.GetBill(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	rec := Reconcile(bill)
	owed := calculator.Owed(rec.Items)

	participants := make(map[string]models.Participant, len(rec.ParticipantIDs))
	for _, userID := range rec.ParticipantIDs {
		name, err := l.users.DisplayName(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnresolvedParticipant, userID, err)
		}
		participants[userID] = models.Participant{ID: userID, Name: name, Owed: owed[userID]}
	}

	return &models.BillView{
		ID:           bill.ID,
		Name:         bill.Name,
		Date:         bill.CreatedAt,
		Currency:     bill.Currency,
		Total:        bill.Total,
		Items:        rec.Items,
		Participants: participants,
	}, nil
}

// ClaimItem sets the caller's share count on one real item of a bill.
// shares of 0 withdraws the claim. The synthetic remainder item cannot be
// claimed; it is always split evenly among participants.
func (l *Ledger) ClaimItem(ctx context.Context, privateID, billID, itemID string, shares int) (err error) {
	defer func() { l.metrics.ObserveOperation("claim_item", err) }()

	if err := models.ValidateShares(shares); err != nil {
		return err
	}

	user, err := l.users.Authenticate(ctx, privateID)
	if err != nil {
		return err
	}

	var effect ClaimEffect
	err = l.bills.Do(ctx, billID, func(ctx context.Context) error {
		bill, err := l.store.GetBill(ctx, billID)
		if err != nil {
			return err
		}

		if itemID == models.UnaccountedItemID {
			return fmt.Errorf("%w: %s is distributed automatically", models.ErrValidation, models.UnaccountedItemName)
		}

		item := bill.FindItem(itemID)
		if item == nil {
			return fmt.Errorf("%w: item %s on bill %s", models.ErrNotFound, itemID, billID)
		}

		effect = ApplyClaim(item, user.ID, shares)
		if effect == ClaimUnchanged {
			return nil
		}
		return l.store.PutBill(ctx, bill)
	})
	if err != nil {
		return err
	}

	l.metrics.ObserveClaim(string(effect))
	slog.Info("Claim applied",
		"bill_id", billID,
		"item_id", itemID,
		"user_id", user.ID,
		"shares", shares,
		"effect", effect,
	)
	return nil
}
