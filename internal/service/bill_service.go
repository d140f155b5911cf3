package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/splitclaim/internal/middleware"
	"github.com/mmynk/splitclaim/internal/models"
	"github.com/mmynk/splitclaim/pkg/api"
	"github.com/mmynk/splitclaim/pkg/api/apiconnect"
)

const notifyTimeout = 2 * time.Second

// Ledger is the bill ledger the service coordinates.
type Ledger interface {
	CreateBill(ctx context.Context, id, name string, scan *models.ScanResult) (*models.Bill, error)
	GetBill(ctx context.Context, id string) (*models.BillView, error)
	ClaimItem(ctx context.Context, privateID, billID, itemID string, shares int) error
}

// Notifier tells a bill's viewers that it changed.
type Notifier interface {
	Notify(ctx context.Context, billID, token string) error
}

// ChangeToken is the message viewers receive after a claim.
func ChangeToken(billID, itemID string, shares int) string {
	return fmt.Sprintf("%s:%s:%d", billID, itemID, shares)
}

var _ apiconnect.BillServiceHandler = (*BillService)(nil)

// BillService implements the Connect BillService. It applies claims
// through the ledger and then notifies viewers.
type BillService struct {
	ledger   Ledger
	notifier Notifier
}

// NewBillService creates a BillService. notifier may be nil.
func NewBillService(ledger Ledger, notifier Notifier) *BillService {
	return &BillService{ledger: ledger, notifier: notifier}
}

// CreateBill records a bill from a receipt scan under a fresh id.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	slog.Info("CreateBill request received", "name", req.Msg.Name)

	bill, err := s.ledger.CreateBill(ctx, uuid.NewString(), req.Msg.Name, scanFromAPI(req.Msg.Scan))
	if err != nil {
		slog.Error("CreateBill failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateBillResponse{BillID: bill.ID}), nil
}

// GetBill returns the reconciled view of a bill.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	slog.Debug("GetBill request received", "bill_id", req.Msg.BillID)

	view, err := s.ledger.GetBill(ctx, req.Msg.BillID)
	if err != nil {
		slog.Error("GetBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetBillResponse{Bill: billToAPI(view)}), nil
}

// ClaimItem applies the caller's claim, then broadcasts a change token.
// A failed broadcast is logged and never fails the claim.
func (s *BillService) ClaimItem(ctx context.Context, req *connect.Request[api.ClaimItemRequest]) (*connect.Response[api.ClaimItemResponse], error) {
	msg := req.Msg
	slog.Info("ClaimItem request received", "bill_id", msg.BillID, "item_id", msg.ItemID, "shares", msg.Shares)

	err := s.ledger.ClaimItem(ctx, middleware.GetPrivateID(ctx), msg.BillID, msg.ItemID, msg.Shares)
	if err != nil {
		slog.Error("ClaimItem failed", "bill_id", msg.BillID, "item_id", msg.ItemID, "error", err)
		return nil, toConnectError(err)
	}

	s.notify(ctx, msg.BillID, ChangeToken(msg.BillID, msg.ItemID, msg.Shares))

	return connect.NewResponse(&api.ClaimItemResponse{BillID: msg.BillID}), nil
}

func (s *BillService) notify(ctx context.Context, billID, token string) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, billID, token); err != nil {
		slog.Warn("Change notification failed", "bill_id", billID, "error", err)
	}
}
