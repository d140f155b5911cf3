package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitclaim/internal/metrics"
	"github.com/mmynk/splitclaim/pkg/api"
)

const credential = "0b5c7a3e-2f1d-4c8e-9a6b-1d2e3f4a5b6c"

func TestParseBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"absent", "", "", false},
		{"well formed", "Bearer " + credential, credential, false},
		{"wrong scheme", "Basic " + credential, "", true},
		{"too short", "Bearer abc", "", true},
		{"trailing space", "Bearer " + credential + " ", "", true},
		{"bad characters", "Bearer 0b5c7a3e_2f1d_4c8e_9a6b_1d2e3f4a5b6c", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearer(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedCredential)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCredentials(t *testing.T) {
	var seen string
	next := connect.UnaryFunc(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen = GetPrivateID(ctx)
		return connect.NewResponse(&api.GetBillResponse{}), nil
	})
	handler := Credentials()(next)

	t.Run("credential lands in context", func(t *testing.T) {
		req := connect.NewRequest(&api.GetBillRequest{})
		req.Header().Set("Authorization", "Bearer "+credential)

		_, err := handler(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, credential, seen)
	})

	t.Run("anonymous passes through", func(t *testing.T) {
		seen = "unset"
		_, err := handler(context.Background(), connect.NewRequest(&api.GetBillRequest{}))
		require.NoError(t, err)
		assert.Empty(t, seen)
	})

	t.Run("malformed header is unauthenticated", func(t *testing.T) {
		req := connect.NewRequest(&api.GetBillRequest{})
		req.Header().Set("Authorization", "Bearer nope")

		_, err := handler(context.Background(), req)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	m := metrics.NewRPCMetrics(prometheus.NewRegistry())
	interceptor := LoggingInterceptor(m)

	ok := interceptor(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&api.GetBillResponse{}), nil
	})
	failing := interceptor(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("bill not found"))
	})

	ctx := WithPrivateID(context.Background(), credential)
	_, err := ok(ctx, connect.NewRequest(&api.GetBillRequest{}))
	require.NoError(t, err)
	_, err = failing(ctx, connect.NewRequest(&api.GetBillRequest{}))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("", "not_found")))

	logs := buf.String()
	assert.Contains(t, logs, "RPC ok")
	assert.Contains(t, logs, "bill not found")
	assert.NotContains(t, logs, credential, "credentials must never be logged")
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("listed origin is echoed", func(t *testing.T) {
		h := CORS([]string{"https://split.example"})(next)
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Origin", "https://split.example")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "https://split.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin gets no grant", func(t *testing.T) {
		h := CORS([]string{"https://split.example"})(next)
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		h := CORS([]string{"*"})(next)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})
}
