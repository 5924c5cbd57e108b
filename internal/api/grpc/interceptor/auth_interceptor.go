package interceptor

import (
	"context"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"bora-alugar-backend/internal/cache"
	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/security"
)

type AuthInterceptor struct {
	tokenManager security.TokenManager
	denylist     cache.TokenDenylist
}

func NewAuthInterceptor(tm security.TokenManager, denylist cache.TokenDenylist) *AuthInterceptor {
	return &AuthInterceptor{tokenManager: tm, denylist: denylist}
}

// Unary returns a server interceptor function to authenticate and authorize unary RPCs
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		level := config.GetSecurityLevel(info.FullMethod)

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			return handler(ctx, req)
		}

		claims, err := i.authenticate(ctx, level)
		if err != nil {
			return nil, err
		}

		return handler(withIdentity(ctx, claims), req)
	}
}

// Stream guards streaming RPCs such as server reflection
func (i *AuthInterceptor) Stream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		level := config.GetSecurityLevel(info.FullMethod)
		if level == config.SecurityPublic {
			return handler(srv, ss)
		}

		claims, err := i.authenticate(ss.Context(), level)
		if err != nil {
			return err
		}
		return handler(srv, &identityStream{ServerStream: ss, ctx: withIdentity(ss.Context(), claims)})
	}
}

func (i *AuthInterceptor) authenticate(ctx context.Context, level config.SecurityLevel) (*security.UserClaims, error) {
	token, err := i.extractToken(ctx)
	if err != nil {
		return nil, err
	}

	claims, err := i.tokenManager.ValidateToken(token)
	if err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
	}

	revoked, err := i.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, status.Error(codes.Unavailable, "token revocation check failed")
	}
	if revoked {
		return nil, status.Error(codes.Unauthenticated, "token was revoked")
	}

	if err := i.checkSecurityLevel(level, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// withIdentity copies, then sets, so a client-supplied "user-id" header never survives
func withIdentity(ctx context.Context, claims *security.UserClaims) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(nil)
	} else {
		md = md.Copy()
	}
	md.Set("user-id", strconv.Itoa(int(claims.UserID)))
	md.Set("user-role", claims.Role)
	return metadata.NewIncomingContext(ctx, md)
}

type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *identityStream) Context() context.Context {
	return s.ctx
}

func (i *AuthInterceptor) extractToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "metadata is not provided")
	}

	authHeader := md["authorization"]
	if len(authHeader) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}

	token := authHeader[0]
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}

	return token, nil
}

func (i *AuthInterceptor) checkSecurityLevel(level config.SecurityLevel, claims *security.UserClaims) error {
	switch level {
	case config.SecurityRefresh:
		if claims.Type != security.TokenTypeRefresh {
			return status.Error(codes.Unauthenticated, "refresh token required")
		}
	case config.SecurityAccess:
		if claims.Type != security.TokenTypeAccess {
			return status.Error(codes.Unauthenticated, "access token required")
		}
	case config.SecurityAdmin:
		if claims.Type != security.TokenTypeAccess {
			return status.Error(codes.Unauthenticated, "access token required")
		}
		if !claims.IsAdmin() {
			return status.Error(codes.PermissionDenied, "admin role required")
		}
	}
	return nil
}
