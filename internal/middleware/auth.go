package middleware

import (
	"context"
	"errors"
	"regexp"

	"connectrpc.com/connect"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// PrivateIDKey is the context key for the caller's bearer credential.
const PrivateIDKey contextKey = "private_id"

var (
	// ErrMalformedCredential is returned for an Authorization header that is
	// present but not a well-formed bearer credential.
	ErrMalformedCredential = errors.New("malformed bearer credential")

	bearerPattern = regexp.MustCompile(`^Bearer ([a-zA-Z0-9-]{36})$`)
)

// GetPrivateID extracts the caller's credential from the context.
// Returns empty string if the request carried none.
func GetPrivateID(ctx context.Context) string {
	privateID, _ := ctx.Value(PrivateIDKey).(string)
	return privateID
}

// WithPrivateID returns ctx carrying privateID.
func WithPrivateID(ctx context.Context, privateID string) context.Context {
	return context.WithValue(ctx, PrivateIDKey, privateID)
}

// ParseBearer extracts the credential from an Authorization header value.
// An empty header yields "" and no error.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", nil
	}
	m := bearerPattern.FindStringSubmatch(header)
	if m == nil {
		return "", ErrMalformedCredential
	}
	return m[1], nil
}

// Credentials returns an interceptor that puts the bearer credential, if
// any, into the request context. A malformed header is rejected outright;
// whether a credential is required and known is left to each operation.
func Credentials() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			privateID, err := ParseBearer(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			if privateID != "" {
				ctx = WithPrivateID(ctx, privateID)
			}
			return next(ctx, req)
		}
	}
}
