package grpc

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	reflectionpb "google.golang.org/grpc/reflection/grpc_reflection_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"bora-alugar-backend/internal/cache"
	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/security"
)

type fixture struct {
	server *Server
	conn   *gogrpc.ClientConn
	tokens security.TokenManager
	dbErr  error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{tokens: security.NewTokenManager(config.JWTConfig{
		Secret:             "test-secret-that-is-long-enough-123",
		AccessTokenExpiry:  15,
		RefreshTokenExpiry: 60,
	})}
	f.server = NewServer(f.tokens, cache.NewMemory(time.Minute), map[string]Check{
		"db": func(ctx context.Context) error { return f.dbErr },
	})

	lis := bufconn.Listen(1 << 20)
	go func() { _ = f.server.Serve(lis) }()
	t.Cleanup(f.server.Stop)

	conn, err := gogrpc.NewClient("passthrough:///bufnet",
		gogrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	f.conn = conn
	return f
}

func (f *fixture) check(t *testing.T) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(f.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestServer_HealthFollowsChecks(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, f.check(t))

	f.dbErr = errors.New("connection refused")
	assert.False(t, f.server.Probe(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, f.check(t))

	f.dbErr = nil
	assert.True(t, f.server.Probe(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, f.check(t))
}

func reflect(t *testing.T, f *fixture, token string) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	}

	stream, err := reflectionpb.NewServerReflectionClient(f.conn).ServerReflectionInfo(ctx)
	require.NoError(t, err)
	if err := stream.Send(&reflectionpb.ServerReflectionRequest{
		MessageRequest: &reflectionpb.ServerReflectionRequest_ListServices{},
	}); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	_, err = stream.Recv()
	return err
}

func TestServer_ReflectionIsAdminOnly(t *testing.T) {
	f := newFixture(t)

	err := reflect(t, f, "")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	member, err := f.tokens.GenerateAccessToken(7, "ana@example.com", "USER")
	require.NoError(t, err)
	err = reflect(t, f, member)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	admin, err := f.tokens.GenerateAccessToken(1, "admin@example.com", "ADMIN")
	require.NoError(t, err)
	assert.NoError(t, reflect(t, f, admin))
}
