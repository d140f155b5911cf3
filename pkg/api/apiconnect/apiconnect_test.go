package apiconnect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitclaim/pkg/api"
)

type stubUsers struct{}

func (stubUsers) UpsertUser(_ context.Context, req *connect.Request[api.UpsertUserRequest]) (*connect.Response[api.UpsertUserResponse], error) {
	return connect.NewResponse(&api.UpsertUserResponse{ID: "pub", Name: req.Msg.Name}), nil
}

func (stubUsers) ResolveIdentity(context.Context, *connect.Request[api.ResolveIdentityRequest]) (*connect.Response[api.ResolveIdentityResponse], error) {
	return connect.NewResponse(&api.ResolveIdentityResponse{ID: "pub", PrivateID: "priv", Name: "Alice"}), nil
}

func newUserServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.Handle(NewUserServiceHandler(stubUsers{}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestUserService_PlainJSON(t *testing.T) {
	srv := newUserServer(t)

	resp, err := http.Post(srv.URL+UserServiceResolveIdentityProcedure, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]string{"id": "pub", "privateId": "priv", "name": "Alice"}, body)
}

func TestUserService_Client(t *testing.T) {
	srv := newUserServer(t)
	client := NewUserServiceClient(http.DefaultClient, srv.URL+"/")

	resp, err := client.UpsertUser(context.Background(), connect.NewRequest(&api.UpsertUserRequest{Name: "Bob"}))
	require.NoError(t, err)
	assert.Equal(t, "Bob", resp.Msg.Name)

	t.Run("unknown procedure", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/"+UserServiceName+"/Nope", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
