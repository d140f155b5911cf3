package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitclaim/pkg/api"
)

const UserServiceName = "splitclaim.v1.UserService"

const (
	UserServiceUpsertUserProcedure      = "/splitclaim.v1.UserService/UpsertUser"
	UserServiceResolveIdentityProcedure = "/splitclaim.v1.UserService/ResolveIdentity"
)

// UserServiceHandler is implemented by the server.
type UserServiceHandler interface {
	UpsertUser(context.Context, *connect.Request[api.UpsertUserRequest]) (*connect.Response[api.UpsertUserResponse], error)
	ResolveIdentity(context.Context, *connect.Request[api.ResolveIdentityRequest]) (*connect.Response[api.ResolveIdentityResponse], error)
}

// NewUserServiceHandler returns the mount path and handler for svc.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	upsertUser := connect.NewUnaryHandler(UserServiceUpsertUserProcedure, svc.UpsertUser, opts...)
	resolveIdentity := connect.NewUnaryHandler(UserServiceResolveIdentityProcedure, svc.ResolveIdentity, opts...)

	return "/" + UserServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case UserServiceUpsertUserProcedure:
			upsertUser.ServeHTTP(w, r)
		case UserServiceResolveIdentityProcedure:
			resolveIdentity.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UserServiceClient calls a remote UserService.
type UserServiceClient interface {
	UpsertUser(context.Context, *connect.Request[api.UpsertUserRequest]) (*connect.Response[api.UpsertUserResponse], error)
	ResolveIdentity(context.Context, *connect.Request[api.ResolveIdentityRequest]) (*connect.Response[api.ResolveIdentityResponse], error)
}

type userServiceClient struct {
	upsertUser      *connect.Client[api.UpsertUserRequest, api.UpsertUserResponse]
	resolveIdentity *connect.Client[api.ResolveIdentityRequest, api.ResolveIdentityResponse]
}

// NewUserServiceClient builds a client for the service at baseURL.
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) UserServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &userServiceClient{
		upsertUser:      connect.NewClient[api.UpsertUserRequest, api.UpsertUserResponse](httpClient, baseURL+UserServiceUpsertUserProcedure, opts...),
		resolveIdentity: connect.NewClient[api.ResolveIdentityRequest, api.ResolveIdentityResponse](httpClient, baseURL+UserServiceResolveIdentityProcedure, opts...),
	}
}

func (c *userServiceClient) UpsertUser(ctx context.Context, req *connect.Request[api.UpsertUserRequest]) (*connect.Response[api.UpsertUserResponse], error) {
	return c.upsertUser.CallUnary(ctx, req)
}

func (c *userServiceClient) ResolveIdentity(ctx context.Context, req *connect.Request[api.ResolveIdentityRequest]) (*connect.Response[api.ResolveIdentityResponse], error) {
	return c.resolveIdentity.CallUnary(ctx, req)
}
