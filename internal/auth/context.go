package auth

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type ctxKey string

const (
	merchantIDKey ctxKey = "merchant_id"
	userIDKey     ctxKey = "user_id"
)

// WithIdentity binds the tenant/user identity the surrounding layer resolved.
// The core trusts it but never validates it.
func WithIdentity(ctx context.Context, merchantID, userID string) context.Context {
	ctx = context.WithValue(ctx, merchantIDKey, merchantID)
	return context.WithValue(ctx, userIDKey, userID)
}

func GetMerchantID(ctx context.Context) string {
	if val, ok := ctx.Value(merchantIDKey).(string); ok {
		return val
	}

	// Fallback to incoming gRPC metadata
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if val := md.Get("x-merchant-id"); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}

// UnaryServerInterceptor resolves the caller identity from incoming metadata
// once, so downstream code reads it with plain context lookups.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		return handler(WithIdentity(ctx, GetMerchantID(ctx), GetUserID(ctx)), req)
	}
}

func GetUserID(ctx context.Context) string {
	if val, ok := ctx.Value(userIDKey).(string); ok {
		return val
	}

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if val := md.Get("x-user-id"); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}
