package mcp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrUnauthorized indicates a missing or wrong bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// TokenMatches reports whether an Authorization header carries token.
func TokenMatches(header, token string) bool {
	got := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(token string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("%w: missing headers", ErrUnauthorized)
			}
			if !TokenMatches(extra.Header.Get("Authorization"), token) {
				return nil, fmt.Errorf("%w: invalid bearer token", ErrUnauthorized)
			}
			return next(ctx, method, req)
		}
	}
}
