package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitclaim/internal/identity"
	"github.com/mmynk/splitclaim/internal/middleware"
	"github.com/mmynk/splitclaim/internal/models"
	"github.com/mmynk/splitclaim/pkg/api"
	"github.com/mmynk/splitclaim/pkg/api/apiconnect"
)

var _ apiconnect.UserServiceHandler = (*UserService)(nil)

// UserService implements the Connect UserService.
type UserService struct {
	users *identity.Directory
}

// NewUserService creates a UserService over the user directory.
func NewUserService(users *identity.Directory) *UserService {
	return &UserService{users: users}
}

// UpsertUser registers the caller or renames them. The response carries
// the credential and is only ever returned to its holder.
func (s *UserService) UpsertUser(ctx context.Context, req *connect.Request[api.UpsertUserRequest]) (*connect.Response[api.UpsertUserResponse], error) {
	slog.Info("UpsertUser request received", "has_credential", middleware.GetPrivateID(ctx) != "")

	user, err := s.users.Register(ctx, middleware.GetPrivateID(ctx), req.Msg.Name)
	if err != nil {
		slog.Error("UpsertUser failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.UpsertUserResponse{
		ID:        user.ID,
		PrivateID: user.PrivateID,
		Name:      user.Name,
	}), nil
}

// ResolveIdentity returns the caller's identity, credential included.
// A missing credential is unauthenticated; an unknown one is not found.
func (s *UserService) ResolveIdentity(ctx context.Context, _ *connect.Request[api.ResolveIdentityRequest]) (*connect.Response[api.ResolveIdentityResponse], error) {
	privateID := middleware.GetPrivateID(ctx)
	if privateID == "" {
		return nil, toConnectError(fmt.Errorf("%w: credential required", models.ErrUnauthorized))
	}

	user, err := s.users.Resolve(ctx, privateID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ResolveIdentityResponse{
		ID:        user.ID,
		PrivateID: user.PrivateID,
		Name:      user.Name,
	}), nil
}
