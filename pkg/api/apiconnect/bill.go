package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitclaim/pkg/api"
)

const BillServiceName = "splitclaim.v1.BillService"

const (
	BillServiceCreateBillProcedure = "/splitclaim.v1.BillService/CreateBill"
	BillServiceGetBillProcedure    = "/splitclaim.v1.BillService/GetBill"
	BillServiceClaimItemProcedure  = "/splitclaim.v1.BillService/ClaimItem"
)

// BillServiceHandler is implemented by the server.
type BillServiceHandler interface {
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	ClaimItem(context.Context, *connect.Request[api.ClaimItemRequest]) (*connect.Response[api.ClaimItemResponse], error)
}

// NewBillServiceHandler returns the mount path and handler for svc.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createBill := connect.NewUnaryHandler(BillServiceCreateBillProcedure, svc.CreateBill, opts...)
	getBill := connect.NewUnaryHandler(BillServiceGetBillProcedure, svc.GetBill, opts...)
	claimItem := connect.NewUnaryHandler(BillServiceClaimItemProcedure, svc.ClaimItem, opts...)

	return "/" + BillServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case BillServiceCreateBillProcedure:
			createBill.ServeHTTP(w, r)
		case BillServiceGetBillProcedure:
			getBill.ServeHTTP(w, r)
		case BillServiceClaimItemProcedure:
			claimItem.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// BillServiceClient calls a remote BillService.
type BillServiceClient interface {
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	ClaimItem(context.Context, *connect.Request[api.ClaimItemRequest]) (*connect.Response[api.ClaimItemResponse], error)
}

type billServiceClient struct {
	createBill *connect.Client[api.CreateBillRequest, api.CreateBillResponse]
	getBill    *connect.Client[api.GetBillRequest, api.GetBillResponse]
	claimItem  *connect.Client[api.ClaimItemRequest, api.ClaimItemResponse]
}

// NewBillServiceClient builds a client for the service at baseURL.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BillServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &billServiceClient{
		createBill: connect.NewClient[api.CreateBillRequest, api.CreateBillResponse](httpClient, baseURL+BillServiceCreateBillProcedure, opts...),
		getBill:    connect.NewClient[api.GetBillRequest, api.GetBillResponse](httpClient, baseURL+BillServiceGetBillProcedure, opts...),
		claimItem:  connect.NewClient[api.ClaimItemRequest, api.ClaimItemResponse](httpClient, baseURL+BillServiceClaimItemProcedure, opts...),
	}
}

func (c *billServiceClient) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *billServiceClient) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *billServiceClient) ClaimItem(ctx context.Context, req *connect.Request[api.ClaimItemRequest]) (*connect.Response[api.ClaimItemResponse], error) {
	return c.claimItem.CallUnary(ctx, req)
}
